package simulation

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/njchilds90/gobamm"
)

// Bump when Snapshot changes shape.
const snapshotSchema uint16 = 1

// Snapshot is a self-contained copy of selected output variables, one row
// per output time.
type Snapshot struct {
	Schema      uint16                 `json:"schema" msgpack:"schema"`
	Model       string                 `json:"model" msgpack:"model"`
	Termination string                 `json:"termination" msgpack:"termination"`
	Elapsed     string                 `json:"elapsed" msgpack:"elapsed"`
	T           []float64              `json:"t" msgpack:"t"`
	Variables   map[string][][]float64 `json:"variables" msgpack:"variables"`
}

// Snapshot copies the named variables, or all of them when none are named.
func (r *Result) Snapshot(names ...string) (*Snapshot, error) {
	if len(names) == 0 {
		names = slices.Sorted(maps.Keys(r.Discretised.Variables))
	}
	s := &Snapshot{
		Schema:      snapshotSchema,
		Model:       r.Model,
		Termination: r.Termination,
		Elapsed:     Format(r.Elapsed.Seconds()),
		T:           append([]float64(nil), r.T...),
		Variables:   make(map[string][][]float64, len(names)),
	}
	for _, name := range names {
		v, err := r.Variable(name)
		if err != nil {
			return nil, err
		}
		rows, _ := v.Dims()
		s.Variables[name] = make([][]float64, rows)
		for i := range rows {
			s.Variables[name][i] = append([]float64(nil), v.RawRowView(i)...)
		}
	}
	return s, nil
}

func (s *Snapshot) WriteMsgpack(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(s)
}

// ReadSnapshot decodes a snapshot written by WriteMsgpack.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Schema != snapshotSchema {
		return nil, fmt.Errorf("%w: snapshot schema %d, want %d", gobamm.ErrConfiguration, s.Schema, snapshotSchema)
	}
	return &s, nil
}
