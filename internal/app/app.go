package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattdonders/njtstatus/internal/config"
	"github.com/mattdonders/njtstatus/internal/lines"
	"github.com/mattdonders/njtstatus/internal/logging"
	"github.com/mattdonders/njtstatus/internal/njt"
	"github.com/mattdonders/njtstatus/internal/prefs"
	"github.com/mattdonders/njtstatus/internal/state"
	"github.com/mattdonders/njtstatus/internal/syncer"
	"github.com/mattdonders/njtstatus/internal/ui"
)

// Options configure the application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/njtstatus/prefs.toml
	PollEvery  int    // seconds; zero keeps the configured interval
}

// Run boots the status client and its UI until the context is cancelled or
// the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}

	logger, closer, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()

	userPrefs := prefs.Load(opts.PrefsPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := &state.Store{}
	loop, err := Wire(ctx, cfg, store, njt.NewClient(cfg.Timeout), logger)
	if err != nil {
		return err
	}
	go loop.Run(ctx)

	// Request status right away, as the window did on load
	loop.Refresh()
	StartPoller(ctx, loop, cfg.PollInterval)

	logger.Info("njtstatus started", "endpoint", cfg.Endpoint, "poll", cfg.PollInterval.String())
	defer logger.Info("njtstatus stopped")

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Refresh:   loop.Refresh,
		Clock24h:  cfg.Clock24h,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogFile,
	})
}

// Wire builds the registry, transport and state machine and binds them to a
// new Loop whose state changes are published to store. The caller starts the
// loop with Run.
func Wire(ctx context.Context, cfg config.Config, store *state.Store, fetcher njt.StatusFetcher, logger *slog.Logger) (*Loop, error) {
	registry, err := lines.New(lines.DefaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("init line registry: %w", err)
	}

	loop := NewLoop()
	transport := njt.NewTransport(ctx, fetcher, loop.Post, logging.Component(logger, "transport"))

	machine, err := syncer.New(syncer.Options{
		Registry: registry,
		Sender:   transport,
		Endpoint: cfg.Endpoint,
		Cookie:   cfg.RequestCookie,
		Logger:   logging.Component(logger, "syncer"),
	})
	if err != nil {
		return nil, fmt.Errorf("init state machine: %w", err)
	}
	machine.Subscribe(store.Update)
	store.Update(machine.Snapshot())

	loop.Bind(machine)
	return loop, nil
}
