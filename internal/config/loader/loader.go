// Package loader decodes configuration files.
//
// The format is chosen by file extension: .toml files are decoded with
// go-toml, .yaml and .yml files with yaml.v3. Keys the target struct does
// not declare are reported as errors.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions without a decoder.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Format identifies a configuration file format.
type Format uint8

const (
	FormatTOML Format = iota + 1
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Decoder decodes raw file contents into a struct pointer.
type Decoder interface {
	Decode(source string, data []byte, v any) error
}

// Encoder renders a value in a file format.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// DecoderFor returns the decoder for a format.
func DecoderFor(f Format) (Decoder, error) {
	switch f {
	case FormatTOML:
		return TOMLDecoder{}, nil
	case FormatYAML:
		return YAMLDecoder{}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// EncoderFor returns the encoder for a format.
func EncoderFor(f Format) (Encoder, error) {
	switch f {
	case FormatTOML:
		return TOMLDecoder{}, nil
	case FormatYAML:
		return YAMLDecoder{}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Loader reads configuration files into structs.
type Loader struct {
	fs FileSystem
}

// New creates a loader backed by the OS file system.
func New() *Loader {
	return &Loader{fs: DefaultFS()}
}

// NewWithFS creates a loader with a custom file system.
func NewWithFS(fsys FileSystem) *Loader {
	return &Loader{fs: fsys}
}

// LoadInto decodes the file at path into v. Fields of v without a
// counterpart in the file keep their values. A missing file is not an
// error; found reports whether the file existed.
func (l *Loader) LoadInto(path string, v any) (found bool, err error) {
	format, err := FormatOf(path)
	if err != nil {
		return false, err
	}
	dec, err := DecoderFor(format)
	if err != nil {
		return false, err
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := dec.Decode(path, data, v); err != nil {
		return true, err
	}
	return true, nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
