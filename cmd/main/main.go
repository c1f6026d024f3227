package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/plutus/internal/config"
	"github.com/UnknownOlympus/plutus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/plutus/internal/mail"
	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/parser"
	"github.com/UnknownOlympus/plutus/internal/render"
	"github.com/UnknownOlympus/plutus/internal/report"
	"github.com/UnknownOlympus/plutus/internal/services/payroll"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cfg := config.MustLoad()

	logger := setupLogger(cfg.Env)

	err := run(ctx, cfg, logger)
	stop()
	if err != nil {
		log.Fatalf("Payslip run failed: %v", err)
	}
}

// run processes one batch. Only configuration and load failures are returned,
// failed records are reported in the logs and the summary file.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	duplicates, err := render.ParseDuplicatePolicy(cfg.Output.DuplicatePolicy)
	if err != nil {
		return fmt.Errorf("invalid DUPLICATE_POLICY: %w", err)
	}

	// Create a separate registry so only the payslip metrics and runtime collectors are pushed
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	defer pushMetrics(logger, cfg.Metrics, reg)

	employeeParser := parser.NewEmployeeParser(logger, appMetrics)
	renderer := render.NewPayslipRenderer(render.Options{
		OutputDir:  cfg.Output.Dir,
		IssuerName: cfg.Output.IssuerName,
		Duplicates: duplicates,
		Compress:   true,
	}, appMetrics)
	sender := mail.NewSender(cfg.SMTP, logger, appMetrics)
	service := payroll.NewPayroll(logger, employeeParser, renderer, sender, appMetrics, cfg.Output.IssuerName)

	logger.InfoContext(ctx, "Starting payslip run",
		"input", cfg.Input.Path, "output", cfg.Output.Dir, "smtp_host", cfg.SMTP.Host, "duplicates", string(duplicates))

	summary, err := service.Start(ctx, cfg.Input.Path)
	if err != nil {
		return err
	}

	if cfg.Output.SummaryPath != "" {
		if err = report.WriteSummary(cfg.Output.SummaryPath, summary); err != nil {
			logger.ErrorContext(ctx, "Failed to write batch summary", sl.Err(err))
		} else {
			logger.InfoContext(ctx, "Batch summary written", "path", cfg.Output.SummaryPath)
		}
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		logger.WarnContext(ctx, "Run was interrupted before all records were processed")
	}

	return nil
}

func pushMetrics(logger *slog.Logger, cfg config.MetricsConfig, gatherer prometheus.Gatherer) {
	if cfg.PushgatewayURL == "" {
		return
	}

	const pushTimeout = 10 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	if err := metrics.Push(ctx, cfg.PushgatewayURL, cfg.Job, gatherer); err != nil {
		logger.WarnContext(ctx, "Metrics were not pushed", sl.Err(err))
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
// Every environment keeps info level, the per-record progress lines are the run's console output.
func setupLogger(env string) *slog.Logger {
	dropTime := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{Key: "", Value: slog.Value{}}
		}
		return a
	}

	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       slog.LevelInfo,
			ReplaceAttr: dropTime,
		}))
	default:
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:       slog.LevelInfo,
			ReplaceAttr: dropTime,
		}))
		logger.Error(
			"The env parameter was not specified, or was invalid. Using plain text logging." +
				" Please specify the value of `ENV`: local, development, production")

		return logger
	}
}
