package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/italolelis/spotdl_exporter/internal/bridge"
	"github.com/italolelis/spotdl_exporter/internal/config"
	"github.com/italolelis/spotdl_exporter/internal/content"
	"github.com/italolelis/spotdl_exporter/internal/downloader"
	"github.com/italolelis/spotdl_exporter/internal/host"
	"github.com/italolelis/spotdl_exporter/internal/logctx"
	"github.com/italolelis/spotdl_exporter/internal/notifier"
	"github.com/italolelis/spotdl_exporter/internal/presence"
	"github.com/italolelis/spotdl_exporter/internal/prompt"
	"github.com/italolelis/spotdl_exporter/internal/retry"
	"github.com/italolelis/spotdl_exporter/internal/storage"
	"github.com/italolelis/spotdl_exporter/internal/storage/sqlite"
	"github.com/italolelis/spotdl_exporter/internal/telemetry"
	"github.com/italolelis/spotdl_exporter/internal/tui"
)

const serviceName = "spotdl_exporter"

var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	logOut, closeLog, err := openLogOutput(cfg.LogFile)
	if err != nil {
		slog.Error("failed to open log file", "path", cfg.LogFile, "err", err)
		os.Exit(1)
	}
	defer closeLog()

	handler := slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger := slog.New(logctx.NewContextHandler(handler))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("spotdl exporter starting...", "version", version, "log_level", cfg.LogLevel, "executor_url", cfg.ExecutorURL)

	if err := run(logctx.WithLogger(ctx, logger), cfg); err != nil {
		logger.Error("fatal error", "err", err)
		fmt.Fprintln(os.Stderr, "spotdl_exporter:", err)
		closeLog()
		os.Exit(1)
	}
}

// openLogOutput keeps logs off the terminal the UI draws on. "-" logs to stderr.
func openLogOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stderr, func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	return f, func() { f.Close() }, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logctx.LoggerFromContext(ctx)

	// =========================================================================
	// Start Telemetry
	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Telemetry.ShutdownTimeout)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown telemetry", "err", err)
		}
	}()

	// =========================================================================
	// Start Database
	var settings storage.SettingsRepository

	database, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		// the last path is a convenience; run without it
		logger.Error("DB error, last download path will not be remembered", "err", err)
	} else {
		defer database.Close()

		settings = sqlite.NewInstrumentedSettingsRepository(database, tel)
	}

	store := storage.NewPathStore(settings)

	// =========================================================================
	// Start Host UI
	app := tui.NewApp()

	screen := host.NewScreen(content.NormalizeLocation(cfg.StartLocation))
	screen.OnChange(app.Refresh)

	loader := host.NewLoader(screen, cfg.SpotifyBaseURL, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, cfg.PageTimeout)

	// =========================================================================
	// Start Notification
	notif := buildNotifier(app, cfg)

	// =========================================================================
	// Start Downloader
	executor := bridge.NewInstrumentedExecutor(bridge.NewClient(cfg.ExecutorURL, notif, nil), tel)
	resolver := content.NewResolver(cfg.SpotifyBaseURL)
	modal := prompt.NewModal(app)

	dl := downloader.NewDownloader(screen, resolver, modal, store, executor, notif, tel)

	// =========================================================================
	// Start Presence Controller
	policy := retry.NewPolicy(cfg.Presence.Backoff, cfg.Presence.RetryInterval, cfg.Presence.MaxInterval, cfg.Presence.MaxAttempts)
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("invalid presence retry policy: %w", err)
	}

	controller := presence.NewController(screen, clockwork.NewRealClock(), policy, tel)

	// =========================================================================
	// Start Main Loop
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(
		tui.NewModel(ctx, screen, loader, dl, resolver),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	app.Attach(program)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()

		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("terminal ui error: %w", err)
		}

		logger.Info("terminal ui closed")

		return nil
	})

	g.Go(func() error {
		return controller.Run(gctx, screen.Navigations(), screen.Mutations())
	})

	if cfg.Telemetry.Enabled {
		server := setupServer(gctx, tel, cfg)

		g.Go(func() error {
			logger.Info("Initializing metrics support", "host", cfg.Telemetry.MetricsAddress)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}

			return nil
		})

		g.Go(func() error {
			<-gctx.Done()

			logger.Info("start shutdown")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Telemetry.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to gracefully shutdown the server", "err", err)

				if err = server.Close(); err != nil {
					return fmt.Errorf("could not stop server gracefully: %w", err)
				}
			}

			return nil
		})
	}

	return g.Wait()
}

func buildNotifier(app *tui.App, cfg *config.Config) notifier.Notifier {
	notifiers := notifier.Multi{app}

	if cfg.DiscordWebhookURL != "" {
		notifiers = append(notifiers, notifier.NewDiscordNotifier(cfg.DiscordWebhookURL))
	}

	return notifiers
}

// setupServer prepares the metrics and health endpoints.
func setupServer(ctx context.Context, tel *telemetry.Telemetry, cfg *config.Config) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(telemetry.RequestID)
	r.Use(telemetry.HTTPLogging)

	r.Handle("/metrics", tel.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck
	})

	return &http.Server{
		Addr:              cfg.Telemetry.MetricsAddress,
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           r,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}
