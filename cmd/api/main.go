// Command api serves the store preflight probe over HTTP so deploy
// tooling can gate on it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hamed0406/storeprobe/internal/config"
	"github.com/hamed0406/storeprobe/internal/httpapi"
	apimw "github.com/hamed0406/storeprobe/internal/httpapi/middleware"
	"github.com/hamed0406/storeprobe/internal/logging"
	"github.com/hamed0406/storeprobe/internal/probe"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile, addr string

	cmd := &cobra.Command{
		Use:           "api",
		Short:         "Serve the store preflight probe over HTTP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			env := config.OSEnv()

			// The store keys are checked per probe, so the server starts without them.
			cfg, cfgErr := config.Load(env)
			if addr != "" {
				cfg.Addr = addr
			}

			logger, err := logging.NewLogger(cfg.LogDir, zapcore.InfoLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if cfgErr != nil {
				logger.Warn("config_incomplete", zap.Strings("missing", config.Missing(cfgErr)))
			}

			api := httpapi.NewServer(logger, func(out io.Writer) *probe.Probe {
				return &probe.Probe{
					Env:     env,
					EnvFile: envFile,
					Out:     out,
					Logger:  logger,
				}
			})
			srv := &http.Server{
				Addr: cfg.Addr,
				Handler: api.Router(httpapi.RouterConfig{
					Keys:           apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys},
					AllowedOrigins: cfg.AllowedOrigins,
					ProbeRPM:       cfg.ProbeRPM,
					ProbeBurst:     cfg.ProbeBurst,
					TrustedProxies: cfg.TrustedProxies,
				}),
				ReadHeaderTimeout: 5 * time.Second,
			}
			if len(cfg.AdminAPIKeys) == 0 {
				logger.Warn("auth_disabled", zap.String("hint", "set ADMIN_API_KEYS to protect /api/probe"))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, srv, logger)
		},
	}

	cmd.Flags().StringVarP(&envFile, "env-file", "e", config.DefaultEnvFile, "Env file read for values missing from the environment")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides API_ADDR)")
	return cmd
}

// serve runs srv until ctx is cancelled, then drains in-flight probes.
func serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("api_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
