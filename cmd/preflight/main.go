// Command preflight checks that the job store is reachable with the
// credentials in the environment before the scraper or backend is started.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hamed0406/storeprobe/internal/config"
	"github.com/hamed0406/storeprobe/internal/logging"
	"github.com/hamed0406/storeprobe/internal/probe"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := probe.ExitOK
	cmd := newRootCmd(stdout, stderr, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "✖", err)
		return 1
	}
	return code
}

func newRootCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	var (
		envFile    string
		collection string
		limit      int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Verify the job store is reachable with the configured credentials",
		Long: `Verify the job store is reachable with the configured credentials.

Reads SUPABASE_URL and SUPABASE_KEY from the environment, falling back to
the env file, then reads a small sample of the jobs table and prints a
report. Exits 0 when the store answered, 1 otherwise.

Example:
  preflight
  preflight --env-file job-scraper/backend/.env`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 || limit > probe.DefaultLimit {
				return fmt.Errorf("--limit must be between 1 and %d, got %d", probe.DefaultLimit, limit)
			}
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			env := config.OSEnv()

			// Missing keys are the probe's to report; only the log settings are needed here.
			cfg, _ := config.Load(env)
			level := zapcore.InfoLevel
			if verbose {
				level = zapcore.DebugLevel
			}
			logger, err := logging.NewLogger(cfg.LogDir, level)
			if err != nil {
				fmt.Fprintln(stderr, "⚠ file logging disabled:", err)
				logger = zap.NewNop()
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := &probe.Probe{
				Env:        env,
				EnvFile:    envFile,
				Collection: collection,
				Limit:      limit,
				Out:        stdout,
				Logger:     logger,
			}
			_, err = p.Run(ctx)
			*code = probe.ExitCode(err)
			return nil
		},
	}

	cmd.Flags().StringVarP(&envFile, "env-file", "e", config.DefaultEnvFile, "Env file read for values missing from the environment")
	cmd.Flags().StringVarP(&collection, "collection", "c", probe.DefaultCollection, "Collection to sample")
	cmd.Flags().IntVarP(&limit, "limit", "n", probe.DefaultLimit, "Maximum records to read (1-5)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	return cmd
}
