package completion

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestDeepSeekComplete(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"  print(1)\n"}}]}`)
	}))
	defer srv.Close()

	p := NewDeepSeek(srv.URL+"/v1/", nil)
	got, err := p.Complete(context.Background(), Request{
		Model:          "deepseek-chat",
		Prompt:         "complete this",
		APIKey:         "sk-test",
		Temperature:    0.3,
		MaxChainLength: 2000,
	})
	require.NoError(t, err)
	assert.Equal(t, "print(1)", got)

	assert.Equal(t, "deepseek-chat", gjson.GetBytes(body, "model").String())
	assert.Equal(t, "user", gjson.GetBytes(body, "messages.0.role").String())
	assert.Equal(t, "complete this", gjson.GetBytes(body, "messages.0.content").String())
	assert.InDelta(t, 0.3, gjson.GetBytes(body, "temperature").Float(), 1e-9)
	assert.Equal(t, int64(2000), gjson.GetBytes(body, "maxChainLength").Int())
	assert.False(t, gjson.GetBytes(body, "max_tokens").Exists())
}

func TestDeepSeekErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"message":"Authentication Fails"}}`, "Authentication Fails"},
		{"no body", http.StatusInternalServerError, `oops`, "Internal Server Error"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "response has no choices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewDeepSeek(srv.URL, nil).Complete(context.Background(), Request{Model: "m", APIKey: "k"})

			var apiErr *RemoteAPIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, "m", apiErr.Model)
		})
	}
}

func TestDeepSeekDeadlineNotWrapped(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewDeepSeek(srv.URL, nil).Complete(ctx, Request{Model: "m", APIKey: "k"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	var apiErr *RemoteAPIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestNewProvider(t *testing.T) {
	for _, name := range []string{"", "deepseek", "OpenAI", "anthropic", "gemini"} {
		p, err := NewProvider(ProviderConfig{Name: name})
		require.NoError(t, err, name)
		assert.NotEmpty(t, p.Name())
	}

	_, err := NewProvider(ProviderConfig{Name: "llama"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
