package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLDecoder decodes and encodes YAML.
type YAMLDecoder struct{}

// Decode parses YAML data into v. An empty document leaves v unchanged.
func (YAMLDecoder) Decode(source string, data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	pe := &ParseError{Path: source, Message: strings.TrimPrefix(err.Error(), "yaml: "), Err: err}
	var line int
	if _, scanErr := fmt.Sscanf(pe.Message, "line %d:", &line); scanErr == nil {
		pe.Line = line
		pe.Message = strings.TrimSpace(strings.TrimPrefix(pe.Message, fmt.Sprintf("line %d:", line)))
	}
	return pe
}

// Encode renders v as YAML.
func (YAMLDecoder) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
