package loader

import (
	"bytes"
	"errors"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// TOMLDecoder decodes and encodes TOML.
type TOMLDecoder struct{}

// Decode parses TOML data into v.
func (TOMLDecoder) Decode(source string, data []byte, v any) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		var serr *toml.StrictMissingError
		switch {
		case errors.As(err, &derr):
			pe.Line, pe.Column = derr.Position()
		case errors.As(err, &serr) && len(serr.Errors) > 0:
			pe.Line, pe.Column = serr.Errors[0].Position()
			pe.Message = "unknown key " + strings.Join(serr.Errors[0].Key(), ".")
		}
		return pe
	}
	return nil
}

// Encode renders v as TOML.
func (TOMLDecoder) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
