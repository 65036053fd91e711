// Package output serializes run reports.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Writer serializes report documents.
type Writer interface {
	// Write outputs a single document.
	Write(data any) error

	// Close flushes buffered output.
	Close() error
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatJSON, "":
		return &jsonWriter{w: bufio.NewWriter(w), pretty: true}, nil
	case FormatJSONL:
		return &jsonWriter{w: bufio.NewWriter(w)}, nil
	case FormatYAML:
		return &yamlWriter{w: bufio.NewWriter(w)}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

type jsonWriter struct {
	w      *bufio.Writer
	pretty bool
}

func (j *jsonWriter) Write(data any) error {
	var out []byte
	var err error
	if j.pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return err
	}
	if _, err := j.w.Write(out); err != nil {
		return err
	}
	if _, err := j.w.WriteString("\n"); err != nil {
		return err
	}
	return nil
}

func (j *jsonWriter) Close() error {
	return j.w.Flush()
}

type yamlWriter struct {
	w *bufio.Writer
}

func (y *yamlWriter) Write(data any) error {
	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func (y *yamlWriter) Close() error {
	return y.w.Flush()
}
