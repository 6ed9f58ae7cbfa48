// Planforged is the plan validation and quality-evaluation daemon.
//
// It exposes the structural validator, the rubric evaluator, and the
// draft-refinement loop over HTTP.
//
// Usage:
//
//	# Start with defaults
//	planforged
//
//	# Configure via environment
//	SERVER_PORT=8640 GENERATOR_API_KEY=sk-ant-... planforged
//
//	# Or via config file
//	planforged --config ~/.config/planforge/config.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forgelabs/planforge/internal/config"
	"github.com/forgelabs/planforge/internal/evaluation"
	"github.com/forgelabs/planforge/internal/generate"
	forgehttp "github.com/forgelabs/planforge/internal/http"
	"github.com/forgelabs/planforge/internal/logging"
	"github.com/forgelabs/planforge/internal/refine"
	"github.com/forgelabs/planforge/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "planforged",
	Short: "Plan validation and quality-evaluation daemon",
	Long: `planforged serves the plan quality pipeline over HTTP: structural
validation, rubric scoring, and iterative draft refinement against the
Anthropic API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("planforged by Forge Labs\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/planforge/config.yaml)")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run starts the daemon and blocks until the context is cancelled.
//
//  1. Loads and validates configuration
//  2. Initializes logger and telemetry
//  3. Builds the evaluation service and, when an API key is present,
//     the generator-backed refinement loop
//  4. Starts the HTTP server
//  5. Performs graceful shutdown on context cancellation
func run(ctx context.Context) error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	logger.Info("starting planforged",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout.Duration()),
	)

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: version,
		Endpoint:       cfg.Observability.Endpoint,
		Protocol:       cfg.Observability.Protocol,
		Insecure:       cfg.Observability.Insecure,
	})
	if err != nil {
		logger.Warn("telemetry setup failed, continuing without export", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tel.Shutdown(shutdownCtx); err != nil {
				logger.Warn("telemetry shutdown failed", zap.Error(err))
			}
		}()
	}

	evaluator, err := evaluation.NewService(&evaluation.Config{
		ExpectedPhases: cfg.Evaluation.ExpectedPhases,
	}, logger.Named("evaluation"))
	if err != nil {
		return fmt.Errorf("failed to create evaluation service: %w", err)
	}

	loop, err := buildRefineLoop(cfg, evaluator, logger)
	if err != nil {
		return err
	}

	srv, err := forgehttp.NewServer(evaluator, loop, logger.Named("http"), &forgehttp.Config{
		Host:           "0.0.0.0",
		Port:           cfg.Server.Port,
		ExpectedPhases: cfg.Evaluation.ExpectedPhases,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// buildRefineLoop wires the Anthropic-backed generator into the
// refinement loop. Returns a nil loop when no API key is configured,
// which disables the refine endpoint.
func buildRefineLoop(cfg *config.Config, evaluator evaluation.Service, logger *zap.Logger) (*refine.Loop, error) {
	if !cfg.Generator.APIKey.IsSet() {
		logger.Info("no generator API key configured, refinement disabled")
		return nil, nil
	}

	client, err := generate.NewClaudeClient(
		cfg.Generator.APIKey.Value(),
		cfg.Generator.BaseURL,
		cfg.Generator.Model,
		logger.Named("generate"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft generator: %w", err)
	}

	loop, err := refine.NewLoop(&refine.Config{
		MaxIterations:     cfg.Refine.MaxIterations,
		DraftTimeout:      cfg.Refine.DraftTimeout.Duration(),
		RequestsPerMinute: cfg.Refine.RequestsPerMinute,
		AcceptBestEffort:  cfg.Refine.AcceptBestEffort,
	}, client, evaluator, logger.Named("refine"))
	if err != nil {
		return nil, fmt.Errorf("failed to create refine loop: %w", err)
	}

	logger.Info("refinement enabled",
		zap.String("model", cfg.Generator.Model),
		zap.Int("max_iterations", cfg.Refine.MaxIterations),
	)
	return loop, nil
}
