package completion

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Gemini uses the Google generative AI API.
type Gemini struct {
	endpoint string
}

// NewGemini creates a Gemini provider. An empty endpoint uses the SDK
// default.
func NewGemini(endpoint string) *Gemini {
	return &Gemini{endpoint: endpoint}
}

// Name returns "gemini".
func (g *Gemini) Name() string { return ProviderGemini }

// Complete sends req to the model and joins the text parts of the first
// candidate.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	opts := []option.ClientOption{option.WithAPIKey(req.APIKey)}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", g.wrap(ctx, req, err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", g.wrap(ctx, req, err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return "", &RemoteAPIError{Provider: g.Name(), Model: req.Model, Message: "response has no text"}
	}
	return strings.TrimSpace(sb.String()), nil
}

func (g *Gemini) wrap(ctx context.Context, req Request, err error) error {
	if isDeadline(err) || ctx.Err() != nil {
		return err
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &RemoteAPIError{Provider: g.Name(), Model: req.Model, Status: apiErr.Code, Message: apiErr.Message}
	}
	return &RemoteAPIError{Provider: g.Name(), Model: req.Model, Message: err.Error()}
}
