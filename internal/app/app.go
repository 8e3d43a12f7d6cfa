package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ssebasarias/Dahell/internal/config"
	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/gateway"
	"github.com/ssebasarias/Dahell/internal/logging"
	"github.com/ssebasarias/Dahell/internal/prefs"
	"github.com/ssebasarias/Dahell/internal/state"
	"github.com/ssebasarias/Dahell/internal/ui"
)

// Options configure the Dahell console.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/dahell/prefs.toml
	APIURL     string // overrides config and environment when set
	// LogStderr routes logs to stderr. Headless commands set it.
	LogStderr bool
}

// Env holds the wired components shared by the TUI and headless commands.
type Env struct {
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *zap.Logger
	Level     zap.AtomicLevel
	Client    *dahell.Client
	Gateway   *gateway.Gateway
	Store     *state.Store
}

// Setup loads configuration and builds the logger, client, gateway and store.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIURL); v != "" {
		cfg.APIURL = v
	}

	logger, level, err := logging.New(logging.Options{
		File:   cfg.LogFile,
		Level:  cfg.LogLevel,
		Stderr: opts.LogStderr,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	client, err := dahell.NewClient(cfg.APIURL, cfg.RequestTimeout)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	prefsPath := opts.PrefsPath
	if strings.TrimSpace(prefsPath) == "" {
		prefsPath = prefs.DefaultPath()
	}

	env := &Env{
		Config:    cfg,
		Prefs:     prefs.Load(prefsPath),
		PrefsPath: prefsPath,
		Logger:    logger,
		Level:     level,
		Client:    client,
		Gateway:   gateway.New(client, logger, cfg.RequestTimeout),
		Store:     &state.Store{},
	}
	env.Store.SetScreen(state.ParseScreen(env.Prefs.StartScreen))

	logger.Info("dahell starting",
		zap.String("api_url", client.BaseURL()),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.String("start_screen", env.Prefs.StartScreen),
	)
	return env, nil
}

// Close flushes the logger.
func (e *Env) Close() {
	if e == nil || e.Logger == nil {
		return
	}
	_ = e.Logger.Sync()
}

// Run boots the console until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	pollers := StartPollers(ctx, env)
	defer pollers.Stop()

	err = ui.Run(ui.Options{
		Context:   ctx,
		Gateway:   env.Gateway,
		Store:     env.Store,
		Config:    env.Config,
		Prefs:     env.Prefs,
		PrefsPath: env.PrefsPath,
		Logger:    env.Logger.With(zap.String("component", "ui")),
		Refresh:   pollers.Refresh,
	})
	if err != nil {
		env.Logger.Error("ui exited", zap.Error(err))
		return err
	}
	env.Logger.Info("dahell stopped")
	return nil
}
