package completion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultDeepSeekURL is the DeepSeek API base URL.
const DefaultDeepSeekURL = "https://api.deepseek.com/v1"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DeepSeek talks to the DeepSeek chat completions endpoint, or any other
// OpenAI compatible endpoint, over plain HTTP.
type DeepSeek struct {
	baseURL string
	client  *http.Client
}

// NewDeepSeek creates a DeepSeek provider. An empty baseURL selects
// DefaultDeepSeekURL.
func NewDeepSeek(baseURL string, client *http.Client) *DeepSeek {
	if baseURL == "" {
		baseURL = DefaultDeepSeekURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &DeepSeek{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Name returns "deepseek".
func (d *DeepSeek) Name() string { return ProviderDeepSeek }

// Complete posts req to {base}/chat/completions.
func (d *DeepSeek) Complete(ctx context.Context, req Request) (string, error) {
	body, err := d.encode(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		if isDeadline(err) || ctx.Err() != nil {
			return "", err
		}
		return "", &RemoteAPIError{Provider: d.Name(), Model: req.Model, Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isDeadline(err) || ctx.Err() != nil {
			return "", err
		}
		return "", &RemoteAPIError{Provider: d.Name(), Model: req.Model, Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(data, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &RemoteAPIError{Provider: d.Name(), Model: req.Model, Status: resp.StatusCode, Message: msg}
	}

	content := gjson.GetBytes(data, "choices.0.message.content")
	if !content.Exists() {
		return "", &RemoteAPIError{Provider: d.Name(), Model: req.Model, Status: resp.StatusCode, Message: "response has no choices"}
	}
	return strings.TrimSpace(content.String()), nil
}

func (d *DeepSeek) encode(req Request) ([]byte, error) {
	body, err := sjson.SetBytes(nil, "model", req.Model)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	fields := []struct {
		path  string
		value any
		skip  bool
	}{
		{"messages", []chatMessage{{Role: "user", Content: req.Prompt}}, false},
		{"temperature", req.Temperature, false},
		{"max_tokens", req.MaxTokens, req.MaxTokens <= 0},
		{"maxChainLength", req.MaxChainLength, req.MaxChainLength <= 0},
	}
	for _, f := range fields {
		if f.skip {
			continue
		}
		if body, err = sjson.SetBytes(body, f.path, f.value); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}
	return body, nil
}
