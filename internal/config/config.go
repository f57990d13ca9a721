package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const (
	KeyEndpoint   = "SUPABASE_URL"
	KeyCredential = "SUPABASE_KEY"

	// Older backend scripts name the service credential this way.
	keyCredentialAlias = "SUPABASE_SERVICE_ROLE_KEY"
)

type Config struct {
	Endpoint   string // store URL, e.g. https://abc.supabase.co
	Credential string // service role key; never log it unredacted

	LogDir       string        // logs directory
	HTTPTimeout  time.Duration // store client timeout
	SlackWebhook string        // empty disables failure notifications

	// Readiness API (cmd/api) only.
	Addr           string
	AllowedOrigins []string
	AdminAPIKeys   []string
	PublicAPIKeys  []string
	ProbeRPM       int
	ProbeBurst     int
	TrustedProxies []string
}

// Env looks up one configuration value. os.LookupEnv satisfies it.
type Env func(key string) (string, bool)

func OSEnv() Env { return os.LookupEnv }

// MapEnv serves values from m, so callers can load a Config without
// touching the process environment.
func MapEnv(m map[string]string) Env {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// MissingKeyError reports a required key that is unset or blank.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return e.Key + " is not set"
}

// Load reads the configuration from env. Every missing required key is
// reported; the returned error combines one *MissingKeyError per key and
// can be split with multierr.Errors. Optional values fall back to defaults.
func Load(env Env) (Config, error) {
	var errs error

	endpoint := get(env, KeyEndpoint)
	if endpoint == "" {
		errs = multierr.Append(errs, &MissingKeyError{Key: KeyEndpoint})
	}

	credential := get(env, KeyCredential)
	if credential == "" {
		credential = get(env, keyCredentialAlias)
	}
	if credential == "" {
		errs = multierr.Append(errs, &MissingKeyError{Key: KeyCredential})
	}

	cfg := Config{
		Endpoint:       endpoint,
		Credential:     credential,
		LogDir:         getOr(env, "LOG_DIR", "logs"),
		HTTPTimeout:    time.Duration(intOr(env, "HTTP_TIMEOUT_MS", 10000, 1)) * time.Millisecond,
		SlackWebhook:   get(env, "SLACK_WEBHOOK_URL"),
		Addr:           getOr(env, "API_ADDR", "127.0.0.1:8080"),
		AllowedOrigins: list(env, "ALLOWED_ORIGINS"),
		AdminAPIKeys:   list(env, "ADMIN_API_KEYS"),
		PublicAPIKeys:  list(env, "PUBLIC_API_KEYS"),
		ProbeRPM:       intOr(env, "PROBE_RPM", 30, 0),
		ProbeBurst:     intOr(env, "PROBE_BURST", 5, 1),
		TrustedProxies: list(env, "TRUSTED_PROXIES"),
	}
	return cfg, errs
}

// Missing lists the keys named by the *MissingKeyError values in err.
func Missing(err error) []string {
	var keys []string
	for _, e := range multierr.Errors(err) {
		if mk, ok := e.(*MissingKeyError); ok {
			keys = append(keys, mk.Key)
		}
	}
	return keys
}

func get(env Env, key string) string {
	v, ok := env(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func getOr(env Env, key, def string) string {
	if v := get(env, key); v != "" {
		return v
	}
	return def
}

// intOr parses key, keeping def when the value is absent, malformed or below min.
func intOr(env Env, key string, def, min int) int {
	v := get(env, key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return def
	}
	return n
}

func list(env Env, key string) []string {
	v := get(env, key)
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
