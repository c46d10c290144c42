package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// defaultAnthropicMaxTokens is sent when the request leaves MaxTokens
// unset; the messages API requires a limit.
const defaultAnthropicMaxTokens = 2048

// Anthropic uses the Anthropic messages API.
type Anthropic struct {
	baseURL string
	client  *http.Client
}

// NewAnthropic creates an Anthropic provider. An empty baseURL uses the
// SDK default.
func NewAnthropic(baseURL string, client *http.Client) *Anthropic {
	return &Anthropic{baseURL: baseURL, client: client}
}

// Name returns "anthropic".
func (a *Anthropic) Name() string { return ProviderAnthropic }

// Complete sends req as a single user message and joins the text blocks
// of the reply.
func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(req.APIKey),
		option.WithMaxRetries(0),
	}
	if a.baseURL != "" {
		opts = append(opts, option.WithBaseURL(a.baseURL))
	}
	if a.client != nil {
		opts = append(opts, option.WithHTTPClient(a.client))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	})
	if err != nil {
		return "", a.wrap(ctx, req, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &RemoteAPIError{Provider: a.Name(), Model: req.Model, Status: http.StatusOK, Message: "response has no text"}
	}
	return strings.TrimSpace(sb.String()), nil
}

func (a *Anthropic) wrap(ctx context.Context, req Request, err error) error {
	if isDeadline(err) || ctx.Err() != nil {
		return err
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &RemoteAPIError{Provider: a.Name(), Model: req.Model, Status: apiErr.StatusCode, Message: http.StatusText(apiErr.StatusCode)}
	}
	return &RemoteAPIError{Provider: a.Name(), Model: req.Model, Message: err.Error()}
}
