package completion

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-openai", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "gpt-4o-mini", gjson.GetBytes(body, "model").String())
		assert.Equal(t, "hello", gjson.GetBytes(body, "messages.0.content").String())

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "fmt.Println(1)"}}]
		}`)
	}))
	defer srv.Close()

	p := NewOpenAI(srv.URL+"/v1/", srv.Client())
	got, err := p.Complete(context.Background(), Request{Model: "gpt-4o-mini", Prompt: "hello", APIKey: "sk-openai"})
	require.NoError(t, err)
	assert.Equal(t, "fmt.Println(1)", got)
}

func TestOpenAIRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad model","type":"invalid_request_error","param":"model","code":"x"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAI(srv.URL+"/v1/", srv.Client()).Complete(context.Background(), Request{Model: "nope", APIKey: "k"})

	var apiErr *RemoteAPIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, ProviderOpenAI, apiErr.Provider)
}

func TestAnthropicComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/messages"), r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, int64(defaultAnthropicMaxTokens), gjson.GetBytes(body, "max_tokens").Int())

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "let x = 1;"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 3, "output_tokens": 4}
		}`)
	}))
	defer srv.Close()

	p := NewAnthropic(srv.URL, srv.Client())
	got, err := p.Complete(context.Background(), Request{Model: "claude-test", Prompt: "hi", APIKey: "sk-ant"})
	require.NoError(t, err)
	assert.Equal(t, "let x = 1;", got)
}

func TestAnthropicRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	_, err := NewAnthropic(srv.URL, srv.Client()).Complete(context.Background(), Request{Model: "m", APIKey: "bad"})

	var apiErr *RemoteAPIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}
