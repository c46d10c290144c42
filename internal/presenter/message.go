package presenter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Commands a history view can send.
const (
	CommandUndo    = "undo"
	CommandRedo    = "redo"
	CommandReveal  = "reveal"
	CommandRefresh = "refresh"
)

// ErrBadMessage is returned for malformed view messages.
var ErrBadMessage = errors.New("bad message")

// Message is a command sent by a history view.
type Message struct {
	Command string
	// ID is the record id for reveal.
	ID *int64
}

// Undo returns an undo message.
func Undo() Message { return Message{Command: CommandUndo} }

// Redo returns a redo message.
func Redo() Message { return Message{Command: CommandRedo} }

// Reveal returns a reveal message for id.
func Reveal(id int64) Message { return Message{Command: CommandReveal, ID: &id} }

// DecodeMessage parses a JSON message such as
// {"command":"reveal","id":3}.
func DecodeMessage(data []byte) (Message, error) {
	if !gjson.ValidBytes(data) {
		return Message{}, fmt.Errorf("%w: invalid JSON", ErrBadMessage)
	}
	cmd := gjson.GetBytes(data, "command")
	if cmd.Type != gjson.String || cmd.Str == "" {
		return Message{}, fmt.Errorf("%w: missing command", ErrBadMessage)
	}

	msg := Message{Command: cmd.Str}
	if id := gjson.GetBytes(data, "id"); id.Exists() {
		if id.Type != gjson.Number || id.Num != math.Trunc(id.Num) {
			return Message{}, fmt.Errorf("%w: id must be a whole number", ErrBadMessage)
		}
		v := id.Int()
		msg.ID = &v
	}
	return msg, nil
}

// Encode returns the JSON form of m.
func (m Message) Encode() ([]byte, error) {
	data, err := sjson.SetBytes(nil, "command", m.Command)
	if err != nil {
		return nil, err
	}
	if m.ID != nil {
		data, err = sjson.SetBytes(data, "id", *m.ID)
	}
	return data, err
}
