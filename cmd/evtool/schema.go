package main

import (
	"encoding/json"
	"io"
	"sort"

	"evroute/internal/usecase"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

func runSchema(w io.Writer, format, algorithm string) error {
	schemas := usecase.Schemas()
	if algorithm != "" {
		s, ok := schemas[algorithm]
		if !ok {
			names := make([]string, 0, len(schemas))
			for name := range schemas {
				names = append(names, name)
			}
			sort.Strings(names)

			return errors.Errorf("unknown algorithm %q, expected one of %v", algorithm, names)
		}
		schemas = map[string]usecase.Schema{algorithm: s}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return errors.Wrap(enc.Encode(schemas), "failed to encode schema")
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(schemas); err != nil {
			return errors.Wrap(err, "failed to encode schema")
		}

		return errors.Wrap(enc.Close(), "failed to encode schema")
	default:
		return errors.Errorf("unknown format %q", format)
	}
}
