package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evanschultz/tick/internal/adapters/storage/jsonfile"
	"github.com/evanschultz/tick/internal/adapters/storage/sqlite"
	"github.com/evanschultz/tick/internal/app"
	"github.com/evanschultz/tick/internal/config"
	"github.com/evanschultz/tick/internal/platform"
	"github.com/evanschultz/tick/internal/tui"
)

// storeCloser is a key-value store that owns an underlying resource.
type storeCloser interface {
	app.Store
	Close() error
}

// session is the resolved runtime for one command invocation.
type session struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	store      storeCloser
	svc        *app.Service
	fx         *tui.Effects
}

// resolvePaths applies flag and environment overrides on top of platform defaults.
func resolvePaths(opts *rootOptions) (platform.Paths, string, string, bool, error) {
	paths, err := platform.ForProcess(opts.appName, opts.devMode)
	if err != nil {
		return platform.Paths{}, "", "", false, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TICK_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("TICK_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}
	return paths, configPath, dbPath, dbOverridden, nil
}

// loadConfig reads the config file and layers flag and environment overrides on top.
// The file backend defaults to the platform JSON path unless the database was moved.
func loadConfig(opts *rootOptions) (platform.Paths, string, config.Config, error) {
	paths, configPath, dbPath, dbOverridden, err := resolvePaths(opts)
	if err != nil {
		return platform.Paths{}, "", config.Config{}, err
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return platform.Paths{}, "", config.Config{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
		if cfg.Storage.Backend == config.StorageFile {
			cfg.Storage.FilePath = ""
		}
	}
	if backend := strings.TrimSpace(opts.storage); backend != "" {
		cfg.Storage.Backend = config.StorageBackend(strings.ToLower(backend))
	}
	if strings.TrimSpace(cfg.Storage.FilePath) == "" && cfg.Database.Path == paths.DBPath {
		cfg.Storage.FilePath = paths.FilePath
	}
	if err := cfg.Validate(); err != nil {
		return platform.Paths{}, "", config.Config{}, fmt.Errorf("validate config: %w", err)
	}
	return paths, configPath, cfg, nil
}

// openSession loads config, configures logging, opens the store and initializes the
// task list. Interactive sessions route notices and animations into the TUI effects
// registry and keep the console log sink quiet.
func openSession(ctx context.Context, opts *rootOptions, command string, interactive bool) (*session, error) {
	paths, configPath, cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := newRuntimeLogger(opts.stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if interactive {
		logger.SetConsoleEnabled(false)
	}
	s := &session{paths: paths, configPath: configPath, cfg: cfg, logger: logger}

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	s.store = store

	svcCfg := app.ServiceConfig{
		Notifier: consoleNotifier{out: opts.stderr},
		Logger:   logger,
	}
	if interactive {
		s.fx = tui.NewEffects(time.Now, cfg.ToastDuration(), cfg.UI.Animations)
		svcCfg = app.ServiceConfig{
			Notifier: s.fx,
			Animator: s.fx,
			Tooltips: s.fx,
			Logger:   logger,
		}
	}
	s.svc = app.NewService(store, time.Now, svcCfg)
	s.svc.Initialize(ctx)
	return s, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *runtimeLogger) (storeCloser, error) {
	switch cfg.Storage.Backend {
	case config.StorageFile:
		path := cfg.StoreFilePath()
		logger.Info("opening json file store", "path", path)
		store, err := jsonfile.Open(path)
		if err != nil {
			logger.Error("json file store open failed", "path", path, "err", err)
			return nil, fmt.Errorf("open json file store: %w", err)
		}
		return store, nil
	default:
		logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
		repo, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
			return nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		logger.Info("sqlite repository ready", "db_path", cfg.Database.Path, "migrations", "ensured")
		if saved, ok, err := repo.UpdatedAt(ctx, app.KeyTasks); err == nil && ok {
			logger.Debug("task list last saved", "at", saved.Format(time.RFC3339))
		}
		return repo, nil
	}
}

// Close releases the store and the dev log sink.
func (s *session) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("store close failed", "err", err)
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if err := s.logger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close runtime log sink: %w", err))
	}
	return errors.Join(errs...)
}

// withSession opens a CLI session, runs fn with start/complete/failed logging, and
// closes the session.
func withSession(ctx context.Context, opts *rootOptions, command string, fn func(*session) error) (err error) {
	s, err := openSession(ctx, opts, command, false)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	s.logger.Info("command flow start", "command", command)
	if err := fn(s); err != nil {
		s.logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	s.logger.Info("command flow complete", "command", command)
	return nil
}

// runTUI opens an interactive session and runs the task list program.
func runTUI(ctx context.Context, opts *rootOptions) (err error) {
	s, err := openSession(ctx, opts, "tui", true)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	s.logger.Info("command flow start", "command", "tui")
	model := tui.NewModel(s.svc,
		tui.WithEffects(s.fx),
		tui.WithThemeMode(tui.ThemeMode(s.cfg.UI.Theme)),
	)
	if _, err := programFactory(model).Run(); err != nil {
		s.logger.Error("command flow failed", "command", "tui", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	s.logger.Info("command flow complete", "command", "tui")
	return nil
}
