package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/san-kum/vsrbench/internal/dynamo"
)

// RunExport is the JSON form of a single episode run.
type RunExport struct {
	Episode   string               `json:"episode"`
	Shape     string               `json:"shape"`
	Settings  dynamo.Settings      `json:"settings"`
	Fields    map[string]any       `json:"fields"`
	Evolution map[string][]float64 `json:"evolution,omitempty"`
}

func NewRunExport(episode, shape string, settings dynamo.Settings, fields []dynamo.Field, evo *dynamo.Series) RunExport {
	out := RunExport{
		Episode:  episode,
		Shape:    shape,
		Settings: settings,
		Fields:   make(map[string]any, len(fields)),
	}
	for _, f := range fields {
		out.Fields[f.Name] = jsonSafe(f.Value)
	}
	if evo != nil && evo.Len() > 0 {
		out.Evolution = make(map[string][]float64)
		for _, name := range evo.Names() {
			out.Evolution[name] = evo.Column(name)
		}
	}
	return out
}

// ExportJSON writes v as indented JSON to path, or to stdout for "-".
func ExportJSON(path string, v any) error {
	if path == "-" {
		return encodeJSON(os.Stdout, v)
	}
	f, err := create(path)
	if err != nil {
		return err
	}
	if err := encodeJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// jsonSafe maps NaN and infinities, which encoding/json rejects, to null.
func jsonSafe(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}
