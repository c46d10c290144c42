package completion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider answers per model. Models listed in hang block until the
// request context is done.
type fakeProvider struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	hang    map[string]bool
	calls   []Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	hang := f.hang[req.Model]
	reply, err := f.replies[req.Model], f.errs[req.Model]
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return reply, err
}

func (f *fakeProvider) models() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Model
	}
	return out
}

func fastSettings() Settings {
	s := DefaultSettings()
	s.PrimaryTimeout = 20 * time.Millisecond
	s.FallbackTimeout = 40 * time.Millisecond
	return s
}

func TestCompleteMissingAPIKey(t *testing.T) {
	p := &fakeProvider{}
	r := NewRequester(p, fastSettings())

	_, err := r.Complete(context.Background(), "code", "go", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = r.Chat(context.Background(), "code", "go", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Empty(t, p.models(), "no network call")
}

func TestCompletePrimary(t *testing.T) {
	p := &fakeProvider{replies: map[string]string{DefaultPrimaryModel: "x := 1"}}
	r := NewRequester(p, fastSettings())

	got, err := r.Complete(context.Background(), "x :=", "go", "key")
	require.NoError(t, err)
	assert.Equal(t, "x := 1", got)
	assert.Equal(t, []string{DefaultPrimaryModel}, p.models())

	req := p.calls[0]
	assert.Equal(t, "key", req.APIKey)
	assert.Equal(t, BuildPrompt("go", "x :="), req.Prompt)
	assert.InDelta(t, DefaultTemperature, req.Temperature, 1e-9)
	assert.Equal(t, DefaultMaxChainLength, req.MaxChainLength)
}

func TestCompleteFallsBackOnTimeout(t *testing.T) {
	p := &fakeProvider{
		hang:    map[string]bool{DefaultPrimaryModel: true},
		replies: map[string]string{DefaultFallbackModel: "fallback reply"},
	}
	var notified []string
	r := NewRequester(p, fastSettings(), WithFallbackNotifier(func(primary, fallback string) {
		notified = append(notified, primary, fallback)
	}))

	got, err := r.Complete(context.Background(), "code", "go", "key")
	require.NoError(t, err)
	assert.Equal(t, "fallback reply", got)
	assert.Equal(t, []string{DefaultPrimaryModel, DefaultFallbackModel}, p.models())
	assert.Equal(t, []string{DefaultPrimaryModel, DefaultFallbackModel}, notified)
}

func TestCompleteBothTimeOut(t *testing.T) {
	p := &fakeProvider{hang: map[string]bool{DefaultPrimaryModel: true, DefaultFallbackModel: true}}
	r := NewRequester(p, fastSettings())

	_, err := r.Complete(context.Background(), "code", "go", "key")
	assert.ErrorIs(t, err, ErrRequestTimeout)
	assert.Contains(t, err.Error(), DefaultFallbackModel)
	assert.Len(t, p.models(), 2, "exactly one retry")
}

func TestCompleteRemoteErrorNoFallback(t *testing.T) {
	apiErr := &RemoteAPIError{Provider: "fake", Status: 401, Message: "Authentication Fails"}
	p := &fakeProvider{errs: map[string]error{DefaultPrimaryModel: apiErr}}
	r := NewRequester(p, fastSettings())

	_, err := r.Complete(context.Background(), "code", "go", "key")

	var got *RemoteAPIError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 401, got.Status)
	assert.Equal(t, []string{DefaultPrimaryModel}, p.models())
}

func TestCompleteCanceledNoFallback(t *testing.T) {
	p := &fakeProvider{hang: map[string]bool{DefaultPrimaryModel: true}}
	r := NewRequester(p, fastSettings())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := r.Complete(ctx, "code", "go", "key")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrRequestTimeout)
	assert.Equal(t, []string{DefaultPrimaryModel}, p.models())
}

func TestChatUsesFallbackModel(t *testing.T) {
	p := &fakeProvider{replies: map[string]string{DefaultFallbackModel: "ok"}}
	r := NewRequester(p, fastSettings())

	got, err := r.Chat(context.Background(), "reverse a string", "go", "key")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, []string{DefaultFallbackModel}, p.models())
	assert.Equal(t, BuildChatPrompt("go", "reverse a string"), p.calls[0].Prompt)
}

func TestRequesterCache(t *testing.T) {
	p := &fakeProvider{replies: map[string]string{DefaultPrimaryModel: "cached"}}
	cache := NewCache(time.Minute)
	defer cache.Close()
	r := NewRequester(p, fastSettings(), WithCache(cache))

	for i := 0; i < 3; i++ {
		got, err := r.Complete(context.Background(), "code", "go", "key")
		require.NoError(t, err)
		assert.Equal(t, "cached", got)
	}
	assert.Len(t, p.models(), 1)
	assert.Equal(t, 1, cache.Len())
}

func TestNilCache(t *testing.T) {
	c := NewCache(0)
	assert.Nil(t, c)

	c.Set("m", "p", "r")
	_, ok := c.Get("m", "p")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
	c.Close()
}

func TestSetSettingsFillsDefaults(t *testing.T) {
	r := NewRequester(&fakeProvider{}, Settings{})
	assert.Equal(t, DefaultPrimaryModel, r.Settings().PrimaryModel)

	r.SetSettings(Settings{PrimaryModel: "deepseek-chat", PrimaryTimeout: time.Second})
	s := r.Settings()
	assert.Equal(t, "deepseek-chat", s.PrimaryModel)
	assert.Equal(t, time.Second, s.PrimaryTimeout)
	assert.Equal(t, DefaultFallbackTimeout, s.FallbackTimeout)
}
