package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Default request settings.
const (
	DefaultPrimaryModel    = "deepseek-reasoner"
	DefaultFallbackModel   = "deepseek-chat"
	DefaultPrimaryTimeout  = 15 * time.Second
	DefaultFallbackTimeout = 30 * time.Second
	DefaultTemperature     = 0.3
	DefaultMaxChainLength  = 2000
)

// Settings controls which models are asked and how long each may take.
type Settings struct {
	PrimaryModel    string
	FallbackModel   string
	PrimaryTimeout  time.Duration
	FallbackTimeout time.Duration
	Temperature     float64
	MaxTokens       int
	MaxChainLength  int
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	return Settings{
		PrimaryModel:    DefaultPrimaryModel,
		FallbackModel:   DefaultFallbackModel,
		PrimaryTimeout:  DefaultPrimaryTimeout,
		FallbackTimeout: DefaultFallbackTimeout,
		Temperature:     DefaultTemperature,
		MaxChainLength:  DefaultMaxChainLength,
	}
}

// withDefaults fills zero fields from DefaultSettings.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.PrimaryModel == "" {
		s.PrimaryModel = d.PrimaryModel
	}
	if s.FallbackModel == "" {
		s.FallbackModel = d.FallbackModel
	}
	if s.PrimaryTimeout <= 0 {
		s.PrimaryTimeout = d.PrimaryTimeout
	}
	if s.FallbackTimeout <= 0 {
		s.FallbackTimeout = d.FallbackTimeout
	}
	return s
}

// RequesterOption configures a Requester.
type RequesterOption func(*Requester)

// WithCache enables reply caching.
func WithCache(c *Cache) RequesterOption {
	return func(r *Requester) {
		r.cache = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) RequesterOption {
	return func(r *Requester) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFallbackNotifier registers fn, called when the primary model timed
// out and the fallback model is about to be asked.
func WithFallbackNotifier(fn func(primary, fallback string)) RequesterOption {
	return func(r *Requester) {
		r.onFallback = fn
	}
}

type loggerKey struct{}

// ContextWithLogger returns a context whose requests log through l.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// Requester sends completion and chat prompts through a Provider.
type Requester struct {
	provider   Provider
	cache      *Cache
	logger     *slog.Logger
	onFallback func(primary, fallback string)

	mu       sync.RWMutex
	settings Settings
}

// NewRequester creates a requester.
func NewRequester(p Provider, s Settings, opts ...RequesterOption) *Requester {
	r := &Requester{
		provider: p,
		logger:   slog.Default(),
		settings: s.withDefaults(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provider returns the provider in use.
func (r *Requester) Provider() Provider {
	return r.provider
}

// Settings returns the current settings.
func (r *Requester) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// SetSettings replaces the settings used by subsequent requests.
func (r *Requester) SetSettings(s Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s.withDefaults()
}

// Complete asks for a completion of code, the text before the cursor.
// The primary model is tried first; only if it times out is the fallback
// model asked.
func (r *Requester) Complete(ctx context.Context, code, language, apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	s := r.Settings()
	prompt := BuildPrompt(language, code)

	reply, err := r.attempt(ctx, s, s.PrimaryModel, s.PrimaryTimeout, prompt, apiKey)
	if err == nil || !errors.Is(err, ErrRequestTimeout) {
		return reply, err
	}

	r.log(ctx).Info("primary model timed out, using fallback",
		"primary", s.PrimaryModel, "fallback", s.FallbackModel, "timeout", s.PrimaryTimeout)
	if r.onFallback != nil {
		r.onFallback(s.PrimaryModel, s.FallbackModel)
	}
	return r.attempt(ctx, s, s.FallbackModel, s.FallbackTimeout, prompt, apiKey)
}

// Chat sends a free-form request straight to the fallback model.
func (r *Requester) Chat(ctx context.Context, request, language, apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	s := r.Settings()
	return r.attempt(ctx, s, s.FallbackModel, s.FallbackTimeout, BuildChatPrompt(language, request), apiKey)
}

func (r *Requester) log(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return r.logger
}

func (r *Requester) attempt(ctx context.Context, s Settings, model string, timeout time.Duration, prompt, apiKey string) (string, error) {
	logger := r.log(ctx)
	if reply, ok := r.cache.Get(model, prompt); ok {
		logger.Debug("completion cache hit", "model", model)
		return reply, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	reply, err := r.provider.Complete(callCtx, Request{
		Model:          model,
		Prompt:         prompt,
		APIKey:         apiKey,
		Temperature:    s.Temperature,
		MaxTokens:      s.MaxTokens,
		MaxChainLength: s.MaxChainLength,
	})
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case ctx.Err() != nil:
			return "", fmt.Errorf("request canceled: %w", ctx.Err())
		case errors.Is(callCtx.Err(), context.DeadlineExceeded) || isDeadline(err):
			logger.Warn("completion request timed out", "provider", r.provider.Name(), "model", model, "elapsed", elapsed)
			return "", &timeoutError{model: model, after: timeout.String()}
		default:
			logger.Warn("completion request failed", "provider", r.provider.Name(), "model", model, "error", err)
			return "", err
		}
	}

	logger.Debug("completion request done", "provider", r.provider.Name(), "model", model,
		"elapsed", elapsed, "bytes", len(reply))
	r.cache.Set(model, prompt, reply)
	return reply, nil
}
