package completion

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Provider names accepted by NewProvider.
const (
	ProviderDeepSeek  = "deepseek"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Request is a single prompt sent to one model.
type Request struct {
	Model       string
	Prompt      string
	APIKey      string
	Temperature float64
	// MaxTokens limits the reply length. Zero leaves it to the service.
	MaxTokens int
	// MaxChainLength is forwarded to services that accept it.
	MaxChainLength int
}

// Provider sends a prompt to a completion service and returns the reply
// text. Implementations return *RemoteAPIError for failures reported by
// the service and leave deadline errors unwrapped so callers can classify
// them.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderConfig configures NewProvider.
type ProviderConfig struct {
	Name    string
	BaseURL string
	// HTTPClient is used by HTTP based providers. Defaults to a client
	// without timeout; deadlines come from the request context.
	HTTPClient *http.Client
}

// NewProvider creates the provider named in cfg.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	switch strings.ToLower(cfg.Name) {
	case "", ProviderDeepSeek:
		return NewDeepSeek(cfg.BaseURL, client), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg.BaseURL, client), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg.BaseURL, client), nil
	case ProviderGemini:
		return NewGemini(cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Name)
	}
}
