package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI uses the OpenAI chat completions API.
type OpenAI struct {
	baseURL string
	client  *http.Client
}

// NewOpenAI creates an OpenAI provider. An empty baseURL uses the SDK
// default.
func NewOpenAI(baseURL string, client *http.Client) *OpenAI {
	return &OpenAI{baseURL: baseURL, client: client}
}

// Name returns "openai".
func (o *OpenAI) Name() string { return ProviderOpenAI }

// Complete sends req as a single user message.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(req.APIKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		opts = append(opts, option.WithBaseURL(o.baseURL))
	}
	if o.client != nil {
		opts = append(opts, option.WithHTTPClient(o.client))
	}
	client := openai.NewClient(opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", o.wrap(ctx, req, err)
	}
	if len(resp.Choices) == 0 {
		return "", &RemoteAPIError{Provider: o.Name(), Model: req.Model, Status: http.StatusOK, Message: "response has no choices"}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (o *OpenAI) wrap(ctx context.Context, req Request, err error) error {
	if isDeadline(err) || ctx.Err() != nil {
		return err
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &RemoteAPIError{Provider: o.Name(), Model: req.Model, Status: apiErr.StatusCode, Message: msg}
	}
	return &RemoteAPIError{Provider: o.Name(), Model: req.Model, Message: err.Error()}
}
