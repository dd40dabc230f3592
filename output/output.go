// Package output provides output formatting for treeinv.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case. Empty selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json or yaml)", s)
}

// Writer handles structured output.
type Writer struct {
	out     io.Writer
	format  Format
	compact bool
}

// Config holds output configuration.
type Config struct {
	Format  Format
	Compact bool
	Output  io.Writer
}

// New creates a new output Writer.
func New(cfg Config) *Writer {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}

	return &Writer{
		out:     cfg.Output,
		format:  cfg.Format,
		compact: cfg.Compact,
	}
}

// Write outputs a value in the configured format. Compact only affects JSON.
func (w *Writer) Write(v any) error {
	if w.format == FormatYAML {
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w.out)
	enc.SetEscapeHTML(false)
	if !w.compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteError writes err as a JSON object to w, or to stderr when w is nil.
func WriteError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(map[string]string{
		"error": err.Error(),
	})
}
