package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/shelver/internal/abs"
	"github.com/five82/shelver/internal/config"
	"github.com/five82/shelver/internal/library"
	"github.com/five82/shelver/internal/logging"
	"github.com/five82/shelver/internal/prefs"
	"github.com/five82/shelver/internal/state"
	"github.com/five82/shelver/internal/ui"
)

// Options configure the shelver application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/shelver/prefs.toml
	LogLevel   string // overrides the config file when set
	Library    string // overrides the config file when set
	PollEvery  int    // seconds; zero uses default
}

// Session is a verified connection to one library.
type Session struct {
	Config  config.Config
	Client  *abs.Client
	Status  *abs.StatusResponse
	Library *library.Library
}

// Connect builds the API client from cfg, checks the server version and
// resolves the configured library.
func Connect(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Session, error) {
	client, err := abs.NewClient(cfg.ServerURL, cfg.Token,
		abs.WithLogger(log),
		abs.WithTimeout(cfg.RequestTimeout),
		abs.WithRetryMax(cfg.RetryMax),
	)
	if err != nil {
		return nil, fmt.Errorf("init abs client: %w", err)
	}

	status, err := client.CheckServer(ctx)
	if err != nil {
		return nil, fmt.Errorf("check server %s: %w", client.BaseURL(), err)
	}

	lib, err := client.ResolveLibrary(ctx, cfg.Library)
	if err != nil {
		return nil, fmt.Errorf("resolve library: %w", err)
	}

	log.Info().
		Str("server", client.BaseURL()).
		Str("version", status.ServerVersion).
		Str("library", lib.Name).
		Msg("connected")

	return &Session{Config: cfg, Client: client, Status: status, Library: lib}, nil
}

// LoadConfig reads the config file and applies the option overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Library != "" {
		cfg.Library = opts.Library
	}
	return cfg, nil
}

// Run boots the shelver TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	log, closer, err := logging.File(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closer.Close()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	session, err := Connect(ctx, cfg, log)
	if err != nil {
		return err
	}

	store := &state.Store{}
	store.Online(*session.Status, 0)

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}
	StartPoller(ctx, store, session.Client, interval, log)

	shelf := NewShelf(session.Client, session.Library, userPrefs, log)
	if err := shelf.Preload(ctx); err != nil {
		// The failed tab shows the error and offers a retry.
		log.Warn().Err(err).Msg("preload incomplete")
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		Fetcher:    session.Client,
		Library:    session.Library,
		Audiobooks: shelf.Audiobooks,
		Series:     shelf.Series,
		Podcasts:   shelf.Podcasts,
		Store:      store,
		ServerURL:  session.Client.BaseURL(),
		PollTick:   time.Second,
		Prefs:      userPrefs,
		PrefsPath:  opts.PrefsPath,
		Logger:     log,
	})
}
