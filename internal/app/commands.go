package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/codemate/internal/preview"
)

// Command names accepted by Execute.
const (
	CmdComplete = "complete"
	CmdChat     = "chat"
	CmdAccept   = "accept"
	CmdReject   = "reject"
	CmdUndo     = "undo"
	CmdRedo     = "redo"
	CmdReveal   = "reveal"
	CmdHistory  = "history"
	CmdSave     = "save"
	CmdQuit     = "quit"
)

type commandFunc func(a *App, arg string) error

var commands = map[string]commandFunc{
	CmdComplete: func(a *App, _ string) error {
		a.TriggerCompletion()
		return nil
	},
	CmdChat: func(a *App, arg string) error {
		a.TriggerChat(arg)
		return nil
	},
	CmdAccept: func(a *App, _ string) error {
		_, err := a.Decide(preview.Accept)
		return err
	},
	CmdReject: func(a *App, _ string) error {
		_, err := a.Decide(preview.Reject)
		return err
	},
	CmdUndo:    func(a *App, _ string) error { return a.UndoLastUpdate() },
	CmdRedo:    func(a *App, _ string) error { return a.RedoLastUpdate() },
	CmdHistory: func(a *App, _ string) error { return a.ShowHistory() },
	CmdSave:    func(a *App, _ string) error { return a.Save() },
	CmdQuit:    func(*App, string) error { return ErrQuit },
	CmdReveal: func(a *App, arg string) error {
		id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 64)
		if err != nil {
			return fmt.Errorf("reveal: invalid update id %q", arg)
		}
		return a.Reveal(id)
	},
}

// Commands returns the command names in sorted order.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs a command by name. complete and chat return as soon as the
// request is queued; their failures are reported to the host. quit returns
// ErrQuit.
func (a *App) Execute(name, arg string) error {
	fn, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return fn(a, arg)
}
