package lua

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/codemate/internal/completion"
	"github.com/dshills/codemate/internal/engine/history"
)

// Hook function names looked up in the script.
const (
	TransformHook = "transform"
	OnAcceptHook  = "on_accept"
)

// Hooks calls the hook functions defined by a script.
type Hooks struct {
	state *State
	path  string
}

// Load runs the script at path and returns its hooks.
func Load(path string, opts ...StateOption) (*Hooks, error) {
	h := newHooks(path, opts...)
	if err := h.state.DoFile(path); err != nil {
		h.state.Close()
		return nil, fmt.Errorf("load hook script %s: %w", path, err)
	}
	return h, nil
}

// LoadString runs source and returns its hooks.
func LoadString(source string, opts ...StateOption) (*Hooks, error) {
	h := newHooks("<string>", opts...)
	if err := h.state.DoString(source); err != nil {
		h.state.Close()
		return nil, fmt.Errorf("load hook script: %w", err)
	}
	return h, nil
}

func newHooks(path string, opts ...StateOption) *Hooks {
	h := &Hooks{state: NewState(opts...), path: path}
	h.state.RegisterModule("codemate", map[string]lua.LGFunction{
		"clean": func(L *lua.LState) int {
			L.Push(lua.LString(completion.Clean(L.CheckString(1))))
			return 1
		},
		"log": func(L *lua.LState) int {
			h.state.printFn(L.CheckString(1))
			return 0
		},
	})
	return h
}

// Path returns the script path.
func (h *Hooks) Path() string {
	return h.path
}

// HasTransform reports whether the script defines transform.
func (h *Hooks) HasTransform() bool {
	return h.state.HasFunction(TransformHook)
}

// Transform passes a cleaned suggestion through the script's transform
// function. Text is returned unchanged when the function is not defined or
// returns nil.
func (h *Hooks) Transform(ctx context.Context, text string, kind history.Kind, language string) (string, error) {
	if !h.state.HasFunction(TransformHook) {
		return text, nil
	}

	ret, err := h.state.Call(ctx, TransformHook, lua.LString(text), lua.LString(kind.String()), lua.LString(language))
	if err != nil {
		return "", fmt.Errorf("%s: %w", TransformHook, err)
	}
	if len(ret) == 0 || ret[0] == lua.LNil {
		return text, nil
	}
	s, ok := ret[0].(lua.LString)
	if !ok {
		return "", fmt.Errorf("%s: %w: %s", TransformHook, ErrBadReturn, ret[0].Type())
	}
	return string(s), nil
}

// OnAccept notifies the script of an accepted record.
func (h *Hooks) OnAccept(ctx context.Context, rec history.Record) error {
	if !h.state.HasFunction(OnAcceptHook) {
		return nil
	}
	_, err := h.state.Call(ctx, OnAcceptHook, lua.LNumber(rec.ID), lua.LString(rec.Kind.String()), lua.LString(rec.Content))
	if err != nil {
		return fmt.Errorf("%s: %w", OnAcceptHook, err)
	}
	return nil
}

// Close releases the script state.
func (h *Hooks) Close() error {
	return h.state.Close()
}
