package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/nikbrunner/bmboard/internal/backend"
	"github.com/nikbrunner/bmboard/internal/config"
	"github.com/nikbrunner/bmboard/internal/logging"
	"github.com/nikbrunner/bmboard/internal/prompt"
	"github.com/nikbrunner/bmboard/internal/storage"
	"github.com/nikbrunner/bmboard/internal/store"
)

// env is everything a command needs, opened from the config file.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	storage storage.Storage
	backend backend.StorageBackend
	store   *store.Store

	closers []io.Closer
}

// openStorage loads the config, the logger and durable storage.
func openStorage(opts *options) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, logCloser := logging.New(cfg.Log)
	e := &env{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	st, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	e.storage = st
	e.closers = append(e.closers, st)
	return e, nil
}

// dialogFunc builds the store's dialog once the logger exists.
type dialogFunc func(logger *slog.Logger) store.Dialog

// openEnv opens storage and the backend for the persisted mode, and builds
// a store that asks its questions through newDialog. A nil newDialog
// prompts on the terminal. The store is not started.
func openEnv(ctx context.Context, opts *options, newDialog dialogFunc) (*env, error) {
	e, err := openStorage(opts)
	if err != nil {
		return nil, err
	}

	mode, err := backend.ParseMode(storage.LoadMode(e.storage, e.cfg.Mode))
	if err != nil {
		e.Close()
		return nil, err
	}

	switch mode {
	case backend.ModeSync:
		e.backend, err = backend.NewRemoteBackend(ctx, backend.RemoteParams{
			URL:    e.cfg.Sync.RedisURL,
			Prefix: e.cfg.Sync.Prefix,
			Logger: e.logger,
		})
		if err != nil {
			e.Close()
			return nil, err
		}
	default:
		e.backend = backend.NewLocalBackend(backend.LocalParams{Storage: e.storage, Logger: e.logger})
	}
	e.closers = append(e.closers, e.backend)

	if newDialog == nil {
		newDialog = terminalDialog
	}
	e.store = store.New(store.Params{
		Backend:         e.backend,
		Storage:         e.storage,
		Dialog:          newDialog(e.logger),
		Logger:          e.logger,
		RebuildDebounce: e.cfg.Store.RebuildDebounce,
		PersistDebounce: e.cfg.Store.PersistDebounce,
	})
	e.logger.Info("opened board", "mode", string(mode), "storage", e.cfg.Storage.Driver)
	return e, nil
}

// start subscribes the store and waits for the first full view.
func (e *env) start(ctx context.Context) error {
	if err := e.store.Start(ctx); err != nil {
		return err
	}
	select {
	case <-e.store.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close waits for background store work, then releases everything in
// reverse order of opening.
func (e *env) Close() error {
	var errs []error
	if e.store != nil {
		e.store.Wait()
		errs = append(errs, e.store.Close())
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	return errors.Join(errs...)
}

func terminalDialog(logger *slog.Logger) store.Dialog {
	fd := os.Stdin.Fd()
	return prompt.New(prompt.Params{
		Logger:     logger,
		Accessible: !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd),
	})
}
