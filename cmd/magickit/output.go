package main

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// result is one classified path.
type result struct {
	Path        string `json:"path" yaml:"path"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// printer writes results in one output format.
type printer interface {
	Print(r result) error
	Flush() error
}

func newPrinter(w io.Writer, format string) (printer, error) {
	switch format {
	case "text":
		return &textPrinter{w: w}, nil
	case "json":
		return &jsonPrinter{enc: json.NewEncoder(w)}, nil
	case "yaml":
		return &yamlPrinter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// textPrinter prints "path: description" lines, as file(1) does. Failed paths
// are left to the log.
type textPrinter struct {
	w io.Writer
}

func (p *textPrinter) Print(r result) error {
	if r.Error != "" {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "%s: %s\n", r.Path, r.Description)
	return err
}

func (p *textPrinter) Flush() error { return nil }

// jsonPrinter prints one JSON object per line.
type jsonPrinter struct {
	enc *json.Encoder
}

func (p *jsonPrinter) Print(r result) error {
	return p.enc.Encode(r)
}

func (p *jsonPrinter) Flush() error { return nil }

// yamlPrinter collects results and prints them as one YAML sequence.
type yamlPrinter struct {
	w       io.Writer
	results []result
}

func (p *yamlPrinter) Print(r result) error {
	p.results = append(p.results, r)
	return nil
}

func (p *yamlPrinter) Flush() error {
	if len(p.results) == 0 {
		return nil
	}
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(p.results); err != nil {
		return err
	}
	p.results = nil
	return enc.Close()
}

// printValue prints v as JSON or YAML, or text in the text format.
func printValue(w io.Writer, format string, v any, text string) error {
	switch format {
	case "text":
		_, err := fmt.Fprintln(w, text)
		return err
	case "json":
		return json.NewEncoder(w).Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
