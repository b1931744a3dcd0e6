package gobamm

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON renders s as a nested JSON object for inspection. Numeric payloads
// of vectors and matrices are summarised by their size.
func ToJSON(s Symbol) (string, error) {
	b, err := json.Marshal(toJSON(s))
	return string(b), err
}

func toJSON(s Symbol) map[string]interface{} {
	b := s.node()
	out := map[string]interface{}{
		"kind": b.kind.String(),
		"name": b.name,
		"id":   b.id.String(),
	}
	if len(b.domain) > 0 {
		out["domain"] = []string(b.domain)
	}
	switch n := s.(type) {
	case *Scalar:
		out["value"] = n.value
	case *Vector:
		out["size"] = len(n.data)
	case *Matrix:
		r, c := n.m.Dims()
		out["size"] = fmt.Sprintf("%dx%d", r, c)
	case *StateVector:
		out["slice"] = []int{n.start, n.stop}
	case *Index:
		out["index"] = n.index
	}
	if len(b.children) > 0 {
		cs := make([]map[string]interface{}, len(b.children))
		for i, c := range b.children {
			cs[i] = toJSON(c)
		}
		out["children"] = cs
	}
	return out
}
