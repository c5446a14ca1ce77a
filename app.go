package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"cardlink/config"
	"cardlink/debug"
	"cardlink/routing"
	"cardlink/storage"
)

// app holds what every subcommand shares: configuration, logger and the
// session store.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	storeDir   string
	memory     bool
	logLevel   string

	cfg      config.Config
	logger   *slog.Logger
	store    storage.Store
	recorder *debug.Recorder
}

// Commands annotated with storeOptional keep working on an in-memory store
// when the session store cannot be opened, for example while another
// process holds its directory lock.
const (
	storeAnnotation = "cardlink.store"
	storeOptional   = "optional"
)

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "cardlink",
		Short:        "Orthogonal connector routing with a recordable debug trace",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&a.storeDir, "store", "", "debug session store directory (default from config)")
	pf.BoolVar(&a.memory, "memory", false, "keep the session store in memory for this run")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(routeCmd(a))
	root.AddCommand(debugCmd(a))
	root.AddCommand(sessionsCmd(a))
	root.AddCommand(viewCmd(a))
	return root
}

// setup loads configuration, applies flag overrides and opens the store.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Storage.Dir = a.storeDir
	}
	if a.memory {
		cfg.Storage.InMemory = true
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	store, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	a.store = store
	a.recorder = debug.NewRecorder(store, debug.Options{
		MaxSessions: cfg.Debug.MaxSessions,
		Logger:      a.logger,
	})
	a.logger.Debug("session store opened", "dir", cfg.Storage.Dir, "inMemory", cfg.Storage.InMemory)
	return nil
}

// openStore opens the configured badger store. Commands that only record
// into the history fall back to a throwaway memory store when it is busy.
func (a *app) openStore(cmd *cobra.Command) (storage.Store, error) {
	store, err := storage.OpenBadger(storage.BadgerConfig{
		Path:     a.cfg.Storage.Dir,
		InMemory: a.cfg.Storage.InMemory,
		Logger:   a.logger,
	})
	if err == nil {
		return store, nil
	}
	if cmd.Annotations[storeAnnotation] != storeOptional {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	a.logger.Warn("session store unavailable, sessions from this run are not kept",
		"dir", a.cfg.Storage.Dir, "error", err)
	return storage.NewMemoryStore(), nil
}

func (a *app) teardown() error {
	closer, ok := a.store.(io.Closer)
	a.store = nil
	if !ok {
		return nil
	}
	err := closer.Close()
	if err != nil && !errors.Is(err, storage.ErrClosed) {
		return fmt.Errorf("close session store: %w", err)
	}
	return nil
}

// newRouter builds a router from configuration that records into the session
// history whenever recording is enabled.
func (a *app) newRouter(observer routing.Observer) *routing.Router {
	return routing.NewRouter(routing.Options{
		Margin:    a.cfg.Routing.Margin,
		CacheSize: a.cfg.Routing.CacheSize,
		Tracer:    a.recorder,
		Observer:  observer,
		Logger:    a.logger,
	})
}
