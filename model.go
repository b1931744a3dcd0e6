package gobamm

import (
	"fmt"
	"maps"
	"slices"
)

// ============================================================
// Equations: insertion-ordered map keyed by structural ID
// ============================================================

// Equation pairs a key symbol (a Variable or a Concatenation of Variables)
// with the expression attached to it.
type Equation struct {
	Key  Symbol
	Expr Symbol
}

type Equations struct {
	order   []ID
	entries map[ID]Equation
}

func NewEquations() *Equations {
	return &Equations{entries: map[ID]Equation{}}
}

// Set attaches expr to key, keeping the position of an existing key.
func (e *Equations) Set(key, expr Symbol) {
	id := key.ID()
	if _, ok := e.entries[id]; !ok {
		e.order = append(e.order, id)
	}
	e.entries[id] = Equation{Key: key, Expr: expr}
}

func (e *Equations) Get(id ID) (Equation, bool) {
	eq, ok := e.entries[id]
	return eq, ok
}

func (e *Equations) Len() int { return len(e.order) }

// All returns the equations in insertion order.
func (e *Equations) All() []Equation {
	out := make([]Equation, len(e.order))
	for i, id := range e.order {
		out[i] = e.entries[id]
	}
	return out
}

// Keys returns the key symbols in insertion order.
func (e *Equations) Keys() []Symbol {
	out := make([]Symbol, len(e.order))
	for i, id := range e.order {
		out[i] = e.entries[id].Key
	}
	return out
}

// ============================================================
// Boundary conditions
// ============================================================

// BoundaryCondition holds the values at the two ends of a 1-D domain.
type BoundaryCondition struct {
	Left, Right Symbol
}

// BoundaryConditions is keyed by the structural ID of the symbol the
// condition applies to: the operand of a Gradient (Dirichlet values) or of a
// Divergence (boundary fluxes).
type BoundaryConditions map[ID]BoundaryCondition

// ============================================================
// Model
// ============================================================

type Model struct {
	RHS                *Equations
	InitialConditions  *Equations
	BoundaryConditions BoundaryConditions
	Variables          map[string]Symbol
	Events             map[string]Symbol
}

func NewModel() *Model {
	return &Model{
		RHS:                NewEquations(),
		InitialConditions:  NewEquations(),
		BoundaryConditions: BoundaryConditions{},
		Variables:          map[string]Symbol{},
		Events:             map[string]Symbol{},
	}
}

// Update merges sub-models into m. The same key may not carry two different
// equations, and an output name may not be bound to two different trees.
func (m *Model) Update(models ...*Model) error {
	for _, sub := range models {
		if err := mergeEquations(m.RHS, sub.RHS, "rhs"); err != nil {
			return err
		}
		if err := mergeEquations(m.InitialConditions, sub.InitialConditions, "initial condition"); err != nil {
			return err
		}
		for id, bc := range sub.BoundaryConditions {
			if old, ok := m.BoundaryConditions[id]; ok && (old.Left.ID() != bc.Left.ID() || old.Right.ID() != bc.Right.ID()) {
				return fmt.Errorf("%w: conflicting boundary conditions for %s", ErrConfiguration, id)
			}
			m.BoundaryConditions[id] = bc
		}
		if err := mergeNamed(m.Variables, sub.Variables, "variable"); err != nil {
			return err
		}
		if err := mergeNamed(m.Events, sub.Events, "event"); err != nil {
			return err
		}
	}
	return nil
}

func mergeEquations(dst, src *Equations, what string) error {
	for _, eq := range src.All() {
		if old, ok := dst.Get(eq.Key.ID()); ok && old.Expr.ID() != eq.Expr.ID() {
			return fmt.Errorf("%w: two %s equations for %s", ErrConfiguration, what, eq.Key)
		}
		dst.Set(eq.Key, eq.Expr)
	}
	return nil
}

func mergeNamed(dst, src map[string]Symbol, what string) error {
	for _, name := range slices.Sorted(maps.Keys(src)) {
		s := src[name]
		if old, ok := dst[name]; ok && old.ID() != s.ID() {
			return fmt.Errorf("%w: %s %q is defined twice", ErrConfiguration, what, name)
		}
		dst[name] = s
	}
	return nil
}

// Check verifies that every unknown has a constant initial condition.
func (m *Model) Check() error {
	for _, eq := range m.RHS.All() {
		ic, ok := m.InitialConditions.Get(eq.Key.ID())
		if !ok {
			return fmt.Errorf("%w: no initial condition for %s", ErrConfiguration, eq.Key)
		}
		if !IsConstant(ic.Expr) {
			return fmt.Errorf("%w: initial condition for %s depends on unknowns: %s", ErrConfiguration, eq.Key, ic.Expr)
		}
	}
	return nil
}
