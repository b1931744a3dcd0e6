package parameters

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gobamm"
)

// ReadCSV reads "name,value" rows. Lines starting with # are comments, a
// leading "Name,Value" header is skipped, and columns after the second are
// ignored (units, references).
func ReadCSV(r io.Reader) (map[string]Entry, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	out := map[string]Entry{}
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parameter csv: %v", gobamm.ErrConfiguration, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("%w: parameter csv line %d: want name,value", gobamm.ErrConfiguration, line)
		}
		name := strings.TrimSpace(rec[0])
		if first && strings.EqualFold(name, "name") {
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("%w: parameter csv line %d: empty name", gobamm.ErrConfiguration, line)
		}
		e, err := entryOf(name, rec[1])
		if err != nil {
			return nil, fmt.Errorf("parameter csv line %d: %w", line, err)
		}
		out[name] = e
	}
	return out, nil
}

// ReadYAML reads a mapping of parameter names to numbers or function names.
func ReadYAML(r io.Reader) (map[string]Entry, error) {
	raw := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parameter yaml: %v", gobamm.ErrConfiguration, err)
	}
	return entries(raw)
}

// ReadTOML reads top-level key/value pairs. Keys with spaces must be quoted.
func ReadTOML(r io.Reader) (map[string]Entry, error) {
	raw := map[string]any{}
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: parameter toml: %v", gobamm.ErrConfiguration, err)
	}
	return entries(raw)
}

func entries(raw map[string]any) (map[string]Entry, error) {
	out := make(map[string]Entry, len(raw))
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		e, err := entryOf(name, raw[name])
		if err != nil {
			return nil, err
		}
		out[name] = e
	}
	return out, nil
}

// Load reads a parameter file, choosing the format by extension.
func Load(path string, opts ...Option) (*Values, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parameter file: %w", err)
	}
	defer f.Close()

	var read func(io.Reader) (map[string]Entry, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		read = ReadCSV
	case ".yaml", ".yml":
		read = ReadYAML
	case ".toml":
		read = ReadTOML
	default:
		return nil, fmt.Errorf("%w: unknown parameter file type %q", gobamm.ErrConfiguration, ext)
	}
	e, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(e, opts...), nil
}
