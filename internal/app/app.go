package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"AnesthUpdate/internal/config"
	"AnesthUpdate/internal/dashboard"
	"AnesthUpdate/internal/infrastructure/gemini"
	"AnesthUpdate/internal/infrastructure/line"
	"AnesthUpdate/internal/infrastructure/pubmed"
	"AnesthUpdate/internal/infrastructure/scheduler"
	"AnesthUpdate/internal/logging"
	"AnesthUpdate/internal/scanner"
	"AnesthUpdate/internal/store"
	"AnesthUpdate/internal/usecase"
)

// Application wires config to stores, collaborators, and pipelines.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	papers       *store.PaperStore
	processedIDs *store.ProcessedIDs
	summarizer   *gemini.Client
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	return &Application{
		cfg:          cfg,
		logger:       baseLogger,
		papers:       store.NewPaperStore(cfg.Storage.PapersPath, baseLogger.With("component", "store.papers")),
		processedIDs: store.NewProcessedIDs(cfg.Storage.ProcessedIDsPath, baseLogger.With("component", "store.ids")),
		summarizer:   gemini.NewClient(cfg.Gemini, baseLogger.With("component", "gemini")),
	}
}

// Papers exposes the record store for read-only commands.
func (a *Application) Papers() *store.PaperStore {
	return a.papers
}

func (a *Application) batch() (*usecase.Batch, error) {
	if !a.summarizer.Configured() {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the batch pipeline")
	}

	registry := scanner.NewRegistry()
	registry.Register(pubmed.NewScanner(a.cfg.PubMed, nil, a.logger.With("component", "pubmed")))
	source := scanner.NewRegistrySource(registry, "pubmed", a.logger.With("component", "source"))

	notifier := line.NewNotifier(
		a.cfg.Notifications.Line.ChannelAccessToken,
		a.cfg.Notifications.Line.DashboardURL,
		a.logger.With("component", "line"),
	)

	return usecase.NewBatch(usecase.BatchDeps{
		Source:       source,
		Summarizer:   a.summarizer,
		Notifier:     notifier,
		Papers:       a.papers,
		ProcessedIDs: a.processedIDs,
		MaxResults:   a.cfg.PubMed.MaxResults,
		Logger:       a.logger.With("component", "batch"),
	}), nil
}

// RunBatch executes a single ingestion run.
func (a *Application) RunBatch(ctx context.Context) error {
	batch, err := a.batch()
	if err != nil {
		return err
	}
	return batch.Run(ctx)
}

// RunDaemon executes ingestion runs on the configured interval until
// interrupted.
func (a *Application) RunDaemon(ctx context.Context) error {
	batch, err := a.batch()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := scheduler.NewTickerScheduler(a.cfg.Scheduler.Interval)
	sched := usecase.NewScheduler(driver, batch)
	if err := sched.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}

// RunRepair executes the dedup + re-summarization pass.
func (a *Application) RunRepair(ctx context.Context) (usecase.RepairReport, error) {
	if !a.summarizer.Configured() {
		return usecase.RepairReport{}, fmt.Errorf("GEMINI_API_KEY is required for the repair pipeline")
	}

	repair := usecase.NewRepair(usecase.RepairDeps{
		Summarizer: a.summarizer,
		Papers:     a.papers,
		Logger:     a.logger.With("component", "repair"),
	})
	return repair.Run(ctx)
}

// RunServe starts the read-only dashboard API.
func (a *Application) RunServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := dashboard.NewServer(a.papers, a.logger.With("component", "dashboard"))
	a.logger.Info("dashboard listening", "addr", a.cfg.Dashboard.Addr)
	return server.ListenAndServe(ctx, a.cfg.Dashboard.Addr)
}
