package app

import (
	"context"

	"github.com/dshills/codemate/internal/completion"
	"github.com/dshills/codemate/internal/config"
	"github.com/dshills/codemate/internal/engine/history"
	"github.com/dshills/codemate/internal/preview"
)

// OnceRequest is a single headless request.
type OnceRequest struct {
	// Input is the code to complete, or the chat request when Chat is set.
	Input    string
	Language string
	Chat     bool
	// Provider overrides the configured provider when set.
	Provider completion.Provider
}

// CompleteOnce sends one request and returns the cleaned suggestion,
// passed through the transform hook when one is configured.
func CompleteOnce(ctx context.Context, cfg *config.Config, req OnceRequest, logger *Logger) (string, error) {
	if logger == nil {
		logger = NopLogger()
	}
	if cfg.API.Key == "" {
		return "", completion.ErrMissingAPIKey
	}

	p := req.Provider
	if p == nil {
		var err error
		p, err = completion.NewProvider(cfg.ProviderConfig())
		if err != nil {
			return "", err
		}
	}

	reqLogger, id := logger.WithComponent("once").WithRequestID()
	r := completion.NewRequester(p, cfg.RequestSettings(), completion.WithLogger(reqLogger.Logger))

	kind := history.KindCompletion
	var reply string
	var err error
	if req.Chat {
		kind = history.KindChat
		reply, err = r.Chat(ctx, req.Input, req.Language, cfg.API.Key)
	} else {
		reply, err = r.Complete(ctx, req.Input, req.Language, cfg.API.Key)
	}
	if err != nil {
		return "", NewOperationError("complete", id, err).WithContext(kind.String())
	}

	text := completion.Clean(reply)
	if path := cfg.HookScriptPath(); path != "" {
		h, err := loadHooks(path, logger)
		if err != nil {
			return "", NewComponentError("hooks", "load "+path, err)
		}
		defer h.Close()
		if text, err = h.Transform(ctx, text, kind, req.Language); err != nil {
			return "", NewComponentError("hooks", "transform", err)
		}
	}
	if text == "" {
		return "", preview.ErrEmptyContent
	}
	return text, nil
}
