package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/storeprobe/internal/domain"
	apimw "github.com/hamed0406/storeprobe/internal/httpapi/middleware"
	"github.com/hamed0406/storeprobe/internal/probe"
)

// ProbeFactory builds a fresh probe that reports into out.
type ProbeFactory func(out io.Writer) *probe.Probe

type Server struct {
	Logger   *zap.Logger
	NewProbe ProbeFactory

	mu   sync.RWMutex
	last *probeResponse
}

func NewServer(l *zap.Logger, newProbe ProbeFactory) *Server {
	return &Server{Logger: l, NewProbe: newProbe}
}

type RouterConfig struct {
	Keys           apimw.Keys
	AllowedOrigins []string // empty allows any origin
	ProbeRPM       int
	ProbeBurst     int
	TrustedProxies []string // peers whose X-Forwarded-For is believed
}

func (s *Server) Router(rc RouterConfig) http.Handler {
	r := chi.NewRouter()
	if len(rc.AllowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: rc.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "X-API-Key"},
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/probe", func(r chi.Router) {
		r.With(apimw.RequireAdmin(rc.Keys), apimw.RateLimit(rc.ProbeRPM, rc.ProbeBurst, rc.TrustedProxies...)).
			Get("/", s.handleProbe)
		r.With(apimw.RequireAny(rc.Keys)).Get("/last", s.handleLast)
	})

	return r
}

type probeResponse struct {
	domain.ProbeResult
	Class     string    `json:"class,omitempty"` // "configuration" or "connectivity" on failure
	Report    string    `json:"report,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

func classOf(err error) string {
	var cfgErr *probe.ConfigurationError
	var connErr *probe.ConnectivityError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &connErr):
		return "connectivity"
	default:
		return "unknown"
	}
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	var report bytes.Buffer
	p := s.NewProbe(&report)
	res, err := p.Run(r.Context())

	out := probeResponse{
		ProbeResult: res,
		Class:       classOf(err),
		Report:      report.String(),
		CheckedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	last := out
	last.Report = ""
	s.last = &last
	s.mu.Unlock()

	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
	}
	s.Logger.Info("probe_served",
		zap.Bool("success", res.Success),
		zap.Int("records", res.RecordCount),
		zap.String("class", out.Class),
		zap.Int("status", status),
	)
	writeJSON(w, status, out)
}

// handleLast returns the outcome of the most recent probe without running
// a new one. The report text is not kept.
func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no probe has run yet"})
		return
	}
	status := http.StatusOK
	if !last.Success {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, last)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
