// Package instance reads problem instances from JSON, YAML and CSV files and
// decodes them into entities.
package instance

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	domainerrors "evroute/internal/domain/errors"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Document is an instance as read from disk, before per-algorithm trimming
// and decoding. Keys follow the JSON field names (nodes, vehicles, ...).
type Document map[string]any

// ReadFile reads path according to its extension. A CSV file holds the nodes;
// vehicles come from a sibling "<name>_vehicles.csv" or "vehicles.csv".
func ReadFile(path string) (Document, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}

		return ParseJSON(data)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}

		return ParseYAML(data)
	case ".csv":
		return NewCSVReader(path).Read()
	default:
		return nil, domainerrors.ErrMalformedInstance.WithDetailsf("unsupported instance format %q", ext)
	}
}

// ParseJSON decodes a JSON instance document. Numbers keep their textual form
// so integer identifiers survive unchanged.
func ParseJSON(data []byte) (Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, domainerrors.ErrMalformedInstance.WithDetailsf("invalid JSON: %v", err)
	}
	if doc == nil {
		return nil, domainerrors.ErrMalformedInstance.WithDetails("instance document is empty")
	}

	return doc, nil
}

// ParseYAML decodes a YAML instance document
func ParseYAML(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domainerrors.ErrMalformedInstance.WithDetailsf("invalid YAML: %v", err)
	}
	if doc == nil {
		return nil, domainerrors.ErrMalformedInstance.WithDetails("instance document is empty")
	}

	return doc, nil
}

// Clone returns a shallow copy of the document
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}

	return out
}

// Has reports whether key is present with a non-nil value
func (d Document) Has(key string) bool {
	v, ok := d[key]

	return ok && v != nil
}

// SetMatrix stores m under key in the same shape a parsed document has
func (d Document) SetMatrix(key string, m [][]float64) {
	rows := make([]any, len(m))
	for i, row := range m {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		rows[i] = cells
	}
	d[key] = rows
}
