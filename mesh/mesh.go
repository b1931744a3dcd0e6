package mesh

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/njchilds90/gobamm"
)

// Mesh is the set of submeshes of a geometry, keyed by domain name.
// It is safe for concurrent use.
type Mesh struct {
	submeshes map[string]*SubMesh

	mu       sync.Mutex
	combined map[string]*SubMesh
}

// New builds a submesh for each domain of geometry with the generator
// submeshTypes[domain] and the point count submeshPts[domain][variable].
// A domain with no generator uses Uniform1D.
func New(geometry Geometry, submeshTypes map[string]Generator, submeshPts map[string]map[string]int) (*Mesh, error) {
	m := &Mesh{
		submeshes: map[string]*SubMesh{},
		combined:  map[string]*SubMesh{},
	}
	for domain, vars := range geometry {
		if _, ok := gobamm.Rank(domain); !ok {
			return nil, fmt.Errorf("%w: unknown geometry domain %q", gobamm.ErrDomain, domain)
		}
		if len(vars) != 1 {
			return nil, fmt.Errorf("%w: domain %q has %d spatial variables, want 1", gobamm.ErrConfiguration, domain, len(vars))
		}
		for name, lims := range vars {
			npts, ok := submeshPts[domain][name]
			if !ok {
				return nil, fmt.Errorf("%w: no point count for %q in domain %q", gobamm.ErrConfiguration, name, domain)
			}
			sub, err := generate(submeshTypes[domain], lims, npts)
			if err != nil {
				return nil, fmt.Errorf("domain %q: %w", domain, err)
			}
			if err := m.add(domain, sub); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func generate(gen Generator, lims Limits, npts int) (*SubMesh, error) {
	min, max, err := lims.evaluate()
	if err != nil {
		return nil, err
	}
	if gen == nil {
		gen = Uniform1D
	}
	return gen(min, max, npts)
}

// FromSubMeshes builds a mesh directly from submeshes.
func FromSubMeshes(subs map[string]*SubMesh) (*Mesh, error) {
	m := &Mesh{
		submeshes: map[string]*SubMesh{},
		combined:  map[string]*SubMesh{},
	}
	for domain, sub := range subs {
		if err := m.add(domain, sub); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Mesh) add(domain string, sub *SubMesh) error {
	if _, ok := gobamm.Rank(domain); !ok {
		return fmt.Errorf("%w: unknown mesh domain %q", gobamm.ErrDomain, domain)
	}
	if _, ghost := gobamm.IsGhost(domain); ghost {
		return fmt.Errorf("%w: ghost cell %q is generated, not given", gobamm.ErrConfiguration, domain)
	}
	left, right, err := sub.ghosts()
	if err != nil {
		return err
	}
	m.submeshes[domain] = sub
	m.submeshes[gobamm.LeftGhost(domain)] = left
	m.submeshes[gobamm.RightGhost(domain)] = right
	return nil
}

// SubMesh returns the submesh of one domain.
func (m *Mesh) SubMesh(domain string) (*SubMesh, bool) {
	s, ok := m.submeshes[domain]
	return s, ok
}

// Domains lists the mesh domains in canonical order. Ghost cells are left
// out; they are reached through SubMesh and CombineSubmeshes.
func (m *Mesh) Domains() []string {
	out := make([]string, 0, len(m.submeshes))
	for d := range m.submeshes {
		if _, ghost := gobamm.IsGhost(d); ghost {
			continue
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b string) int {
		ra, _ := gobamm.Rank(a)
		rb, _ := gobamm.Rank(b)
		return ra - rb
	})
	return out
}

// CombineSubmeshes joins the submeshes of domains into one. The domains must
// be given in canonical order and each must end where the next begins.
// Results are cached.
func (m *Mesh) CombineSubmeshes(domains ...string) (*SubMesh, error) {
	if len(domains) == 0 {
		return nil, fmt.Errorf("%w: no domains to combine", gobamm.ErrConfiguration)
	}
	if err := gobamm.ValidateDomain(domains); err != nil {
		return nil, err
	}
	key := strings.Join(domains, "\x00")

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.combined[key]; ok {
		return s, nil
	}

	first, ok := m.submeshes[domains[0]]
	if !ok {
		return nil, fmt.Errorf("%w: domain %q is not in the mesh", gobamm.ErrConfiguration, domains[0])
	}
	edges := slices.Clone(first.Edges)
	for i := 1; i < len(domains); i++ {
		sub, ok := m.submeshes[domains[i]]
		if !ok {
			return nil, fmt.Errorf("%w: domain %q is not in the mesh", gobamm.ErrConfiguration, domains[i])
		}
		last := edges[len(edges)-1]
		if !coincide(last, sub.Edges[0]) {
			return nil, fmt.Errorf("%w: submesh %q ends at %g but %q starts at %g",
				gobamm.ErrConfiguration, domains[i-1], last, domains[i], sub.Edges[0])
		}
		edges = append(edges, sub.Edges[1:]...)
	}
	s, err := NewSubMesh(edges)
	if err != nil {
		return nil, err
	}
	// Keep the nodes of the parts exactly, so values sampled per domain and
	// on the combined mesh agree.
	s.Nodes = s.Nodes[:0]
	for _, d := range domains {
		s.Nodes = append(s.Nodes, m.submeshes[d].Nodes...)
	}
	for i := range s.DNodes {
		s.DNodes[i] = s.Nodes[i+1] - s.Nodes[i]
	}
	m.combined[key] = s
	return s, nil
}

func coincide(a, b float64) bool {
	return math.Abs(a-b) <= 1e-12*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
