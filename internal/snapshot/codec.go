package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format selects the wire encoding.
type Format uint8

const (
	FormatMsgpack Format = iota
	FormatCBOR
	FormatYAML
)

// ErrUnknownFormat is returned for unrecognized format names.
var ErrUnknownFormat = errors.New("unknown snapshot format")

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatCBOR:
		return "cbor"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseFormat accepts msgpack, cbor, yaml and the empty string (msgpack).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "msgpack", "mp":
		return FormatMsgpack, nil
	case "cbor":
		return FormatCBOR, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected: msgpack|cbor|yaml)", ErrUnknownFormat, s)
	}
}

// FormatForPath guesses a format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbor":
		return FormatCBOR
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatMsgpack
	}
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Encode writes doc to w.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(doc)
	case FormatCBOR:
		return cborEncMode.NewEncoder(w).Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
}

// Decode reads a document from r.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&doc)
	case FormatCBOR:
		err = cbor.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", format, err)
	}
	if doc.Schema != SchemaVersion {
		return nil, fmt.Errorf("snapshot: schema %d, want %d", doc.Schema, SchemaVersion)
	}
	return &doc, nil
}

// Marshal encodes doc into a byte slice.
func Marshal(doc *Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes doc to path through a temp file and a rename.
func WriteFile(path string, doc *Document, format Format) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, doc, format); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile decodes the document at path, picking the format from its extension.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, FormatForPath(path))
}
