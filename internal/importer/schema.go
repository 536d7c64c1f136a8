// Package importer reads and writes whole test repositories as YAML or JSON
// documents. The document nests the tree the way it is shown:
//
//	project:
//	  short_id: WEB
//	  name: Web shop
//	defaults:
//	  priority: medium
//	suites:
//	  - name: Checkout
//	    sections:
//	      - name: Payments
//	        cases:
//	          - title: Pays by card
//	            priority: high
//	sections: []   # sections at the root
//	cases: []      # unsectioned test cases
//
// List order is display order.
package importer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Schema is a complete test repository document.
type Schema struct {
	Project  ProjectImport   `json:"project" yaml:"project"`
	Defaults *DefaultsImport `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Suites   []SuiteImport   `json:"suites,omitempty" yaml:"suites,omitempty"`
	Sections []SectionImport `json:"sections,omitempty" yaml:"sections,omitempty"`
	Cases    []CaseImport    `json:"cases,omitempty" yaml:"cases,omitempty"`
}

type ProjectImport struct {
	ShortID string `json:"short_id" yaml:"short_id"`
	Name    string `json:"name" yaml:"name"`
}

// DefaultsImport holds values that cascade to every test case.
type DefaultsImport struct {
	Priority string `json:"priority,omitempty" yaml:"priority,omitempty"`
}

type SuiteImport struct {
	Name     string          `json:"name" yaml:"name"`
	Sections []SectionImport `json:"sections,omitempty" yaml:"sections,omitempty"`
}

type SectionImport struct {
	Name     string          `json:"name" yaml:"name"`
	Sections []SectionImport `json:"sections,omitempty" yaml:"sections,omitempty"`
	Cases    []CaseImport    `json:"cases,omitempty" yaml:"cases,omitempty"`
}

type CaseImport struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    string `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q (want yaml or json)", s)
}

// FormatForPath picks the format from a file extension, defaulting to YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadSchema reads and parses a document, choosing the decoder by extension.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSchema(data, FormatForPath(path))
}

// ParseSchema decodes data. Unknown fields are rejected so typos surface.
func ParseSchema(data []byte, format Format) (*Schema, error) {
	var schema Schema
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	}
	return &schema, nil
}

// Encode renders schema in format.
func Encode(schema *Schema, format Format) ([]byte, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(schema); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
