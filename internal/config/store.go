package config

import (
	"log/slog"
	"sync"

	"github.com/dshills/codemate/internal/config/loader"
	"github.com/dshills/codemate/internal/config/watcher"
)

// ChangeHandler is called after a successful reload.
type ChangeHandler func(old, cur *Config)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for reload failures.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLookup replaces os.LookupEnv for environment overrides.
func WithLookup(fn LookupFunc) StoreOption {
	return func(s *Store) {
		s.lookup = fn
	}
}

// WithFileSystem sets the file system the loader reads from.
func WithFileSystem(fsys loader.FileSystem) StoreOption {
	return func(s *Store) {
		s.loader = loader.NewWithFS(fsys)
	}
}

// Store holds the current configuration.
type Store struct {
	path   string
	loader *loader.Loader
	lookup LookupFunc
	logger *slog.Logger

	mu       sync.RWMutex
	cfg      *Config
	handlers []ChangeHandler
	watcher  *watcher.Watcher
	closed   bool
}

// Open loads the configuration at path into a new Store.
func Open(path string, opts ...StoreOption) (*Store, error) {
	s := &Store{
		path:   path,
		loader: loader.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cfg, err := load(s.loader, path, s.lookup)
	if err != nil {
		return nil, err
	}
	s.cfg = cfg
	return s, nil
}

// Path returns the config file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns a copy of the current configuration.
func (s *Store) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// OnChange registers fn to run after each successful reload.
func (s *Store) OnChange(fn ChangeHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, fn)
}

// Reload re-reads the file. On error the current configuration is kept.
func (s *Store) Reload() error {
	cfg, err := load(s.loader, s.path, s.lookup)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	old := s.cfg
	s.cfg = cfg
	handlers := append([]ChangeHandler(nil), s.handlers...)
	s.mu.Unlock()

	for _, h := range handlers {
		h(old.Clone(), cfg.Clone())
	}
	return nil
}

// Watch reloads the configuration whenever the file changes.
func (s *Store) Watch(opts ...watcher.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if s.watcher != nil {
		return nil
	}

	opts = append([]watcher.Option{watcher.WithErrorHandler(func(err error) {
		s.logger.Warn("config watcher error", "error", err)
	})}, opts...)
	w, err := watcher.New(s.path, s.onFileEvent, opts...)
	if err != nil {
		return err
	}
	s.watcher = w
	return nil
}

func (s *Store) onFileEvent(ev watcher.Event) {
	if ev.Op == watcher.OpRemove {
		s.logger.Info("config file removed, keeping current settings", "path", ev.Path)
		return
	}
	if err := s.Reload(); err != nil {
		s.logger.Warn("config reload failed", "path", ev.Path, "error", err)
		return
	}
	s.logger.Info("config reloaded", "path", ev.Path, "op", ev.Op.String())
}

// Close stops watching.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		return w.Close()
	}
	return nil
}
