package shapeio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/opd-ai/go-collide/pkg/validation"
)

// Format selects the document encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// FormatFromPath picks the encoding from a file extension: .json, or
// .msgpack and .mp for msgpack.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mp":
		return FormatMsgpack, nil
	}
	return 0, fmt.Errorf("unsupported shape file extension %q", filepath.Ext(path))
}

// Marshal encodes doc.
func Marshal(doc *Document, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatMsgpack:
		return msgpack.Marshal(doc)
	}
	return nil, fmt.Errorf("unsupported format %v", f)
}

// Unmarshal decodes a document after checking its size. Shapes are not
// built; call Document.Build for that.
func Unmarshal(data []byte, f Format) (*Document, error) {
	if err := validation.ValidateDocumentSize(data); err != nil {
		return nil, err
	}
	var doc Document
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported format %v", f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %v document: %w", f, err)
	}
	return &doc, nil
}

// ReadFile loads a document, choosing the format from the extension.
func ReadFile(path string) (*Document, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shape file: %w", err)
	}
	return Unmarshal(data, f)
}

// WriteFile stores doc, choosing the format from the extension.
func WriteFile(path string, doc *Document) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(doc, f)
	if err != nil {
		return fmt.Errorf("failed to encode shape file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write shape file: %w", err)
	}
	return nil
}
