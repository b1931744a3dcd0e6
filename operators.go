package gobamm

import (
	"fmt"
	"slices"
)

// toSymbol wraps Go numbers as Scalars and rejects every other non-Symbol.
func toSymbol(x any) (Symbol, error) {
	switch v := x.(type) {
	case Symbol:
		return v, nil
	case float64:
		return S(v), nil
	case float32:
		return S(float64(v)), nil
	case int:
		return S(float64(v)), nil
	case int8:
		return S(float64(v)), nil
	case int16:
		return S(float64(v)), nil
	case int32:
		return S(float64(v)), nil
	case int64:
		return S(float64(v)), nil
	case uint:
		return S(float64(v)), nil
	case uint8:
		return S(float64(v)), nil
	case uint16:
		return S(float64(v)), nil
	case uint32:
		return S(float64(v)), nil
	case uint64:
		return S(float64(v)), nil
	}
	return nil, fmt.Errorf("%w: %v (%T)", ErrTypeUnsupported, x, x)
}

// ============================================================
// Unary: Negate and AbsoluteValue
// ============================================================

type Unary struct{ base }

func NegOf(x any) (Symbol, error) { return unaryOf(KindNegate, "-", x) }
func AbsOf(x any) (Symbol, error) { return unaryOf(KindAbsoluteValue, "abs", x) }

func unaryOf(kind Kind, name string, x any) (Symbol, error) {
	child, err := toSymbol(x)
	if err != nil {
		return nil, err
	}
	u := &Unary{}
	u.init(kind, name, child.node().domain, []Symbol{child})
	return u, nil
}

func (u *Unary) Child() Symbol { return u.children[0] }

func (u *Unary) String() string {
	if u.kind == KindNegate {
		return "-" + u.children[0].String()
	}
	return "abs(" + u.children[0].String() + ")"
}

// ============================================================
// Binary: arithmetic between two children
// ============================================================

type Binary struct{ base }

var binaryNames = map[Kind]string{
	KindAddition:             "+",
	KindSubtraction:          "-",
	KindMultiplication:       "*",
	KindDivision:             "/",
	KindPower:                "**",
	KindMatrixMultiplication: "@",
}

func AddOf(a, b any) (Symbol, error) { return binaryOf(KindAddition, a, b) }
func SubOf(a, b any) (Symbol, error) { return binaryOf(KindSubtraction, a, b) }
func MulOf(a, b any) (Symbol, error) { return binaryOf(KindMultiplication, a, b) }
func DivOf(a, b any) (Symbol, error) { return binaryOf(KindDivision, a, b) }
func PowOf(a, b any) (Symbol, error) { return binaryOf(KindPower, a, b) }

// MatMulOf multiplies the matrix m by the column vector x.
func MatMulOf(m, x Symbol) (Symbol, error) { return binaryOf(KindMatrixMultiplication, m, x) }

// MatMulIn is MatMulOf with the domain of the product given explicitly. A
// discretised operator uses it when its operand was extended with ghost
// cells but the result lives on the original domain.
func MatMulIn(domain Domain, m, x Symbol) (Symbol, error) {
	if m == nil || x == nil {
		return nil, fmt.Errorf("%w: nil operand of @", ErrTypeUnsupported)
	}
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	n := &Binary{}
	n.init(KindMatrixMultiplication, binaryNames[KindMatrixMultiplication], domain, []Symbol{m, x})
	return n, nil
}

func binaryOf(kind Kind, a, b any) (Symbol, error) {
	left, err := toSymbol(a)
	if err != nil {
		return nil, err
	}
	right, err := toSymbol(b)
	if err != nil {
		return nil, err
	}
	domain, err := mergeDomains(left.node().domain, right.node().domain)
	if err != nil {
		return nil, err
	}
	n := &Binary{}
	n.init(kind, binaryNames[kind], domain, []Symbol{left, right})
	return n, nil
}

func (b *Binary) Left() Symbol  { return b.children[0] }
func (b *Binary) Right() Symbol { return b.children[1] }

func (b *Binary) String() string {
	return "(" + b.children[0].String() + " " + b.name + " " + b.children[1].String() + ")"
}

// ============================================================
// Concatenation: children from disjoint domains
// ============================================================

type Concatenation struct{ base }

// ConcatOf joins children whose domains are non-empty, disjoint and given in
// canonical order. The result spans the union of the child domains.
func ConcatOf(children ...Symbol) (*Concatenation, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: concatenation needs at least one child", ErrConfiguration)
	}
	var domain Domain
	for _, c := range children {
		if c == nil {
			return nil, fmt.Errorf("%w: nil concatenation child", ErrTypeUnsupported)
		}
		d := c.node().domain
		if len(d) == 0 {
			return nil, fmt.Errorf("%w: concatenation child %s has no domain", ErrDomain, c)
		}
		domain = append(domain, d...)
	}
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	n := &Concatenation{}
	n.init(KindConcatenation, "concatenation", domain, slices.Clone(children))
	return n, nil
}

func (c *Concatenation) String() string { return callString("concatenation", c.children) }

// ============================================================
// Stack: discretised concatenation
// ============================================================

type Stack struct{ base }

// NewStack stacks the values of children into one vector. Scalar-valued
// children contribute one entry each.
func NewStack(domain Domain, children ...Symbol) (*Stack, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: stack needs at least one child", ErrConfiguration)
	}
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	n := &Stack{}
	n.init(KindStack, "stack", domain, slices.Clone(children))
	return n, nil
}

func (s *Stack) String() string { return callString("stack", s.children) }

// ============================================================
// Index: single entry of a vector
// ============================================================

type Index struct {
	base
	index int
}

// NewIndex picks entry i of the vector child. Negative i counts from the end.
func NewIndex(child Symbol, i int) (*Index, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: nil index child", ErrTypeUnsupported)
	}
	n := &Index{index: i}
	n.init(KindIndex, fmt.Sprintf("index[%d]", i), child.node().domain, []Symbol{child}, uint64(int64(i)))
	return n, nil
}

func (x *Index) Index() int     { return x.index }
func (x *Index) String() string { return fmt.Sprintf("%s[%d]", x.children[0], x.index) }

// ============================================================
// SpatialOperator: Gradient and Divergence
// ============================================================

type SpatialOperator struct{ base }

func GradOf(x Symbol) (Symbol, error)       { return spatialOf(KindGradient, "grad", x) }
func DivergenceOf(x Symbol) (Symbol, error) { return spatialOf(KindDivergence, "div", x) }

func spatialOf(kind Kind, name string, x Symbol) (Symbol, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil operand of %s", ErrTypeUnsupported, name)
	}
	n := &SpatialOperator{}
	n.init(kind, name, x.node().domain, []Symbol{x})
	return n, nil
}

func (s *SpatialOperator) Child() Symbol  { return s.children[0] }
func (s *SpatialOperator) String() string { return s.name + "(" + s.children[0].String() + ")" }

// ============================================================
// Function: elementwise external callable
// ============================================================

// Func is a scalar callable applied elementwise by a Function node.
type Func func(args ...float64) float64

type Function struct {
	base
	fn Func
}

// FuncOf applies fn, registered under name, to args. Two Function nodes with
// the same name and arguments share an ID.
func FuncOf(name string, fn Func, args ...Symbol) (*Function, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: function %q has no callable", ErrConfiguration, name)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: function %q needs at least one argument", ErrConfiguration, name)
	}
	for _, a := range args {
		if a == nil {
			return nil, fmt.Errorf("%w: nil argument of %q", ErrTypeUnsupported, name)
		}
	}
	domain, err := commonDomain(args)
	if err != nil {
		return nil, err
	}
	f := &Function{fn: fn}
	f.init(KindFunction, name, domain, slices.Clone(args))
	return f, nil
}

func (f *Function) Callable() Func { return f.fn }
func (f *Function) String() string { return callString(f.name, f.children) }

// ============================================================
// Rebuild
// ============================================================

// WithChildren returns a node of the same kind and payload as s with its
// children replaced. Leaves are returned unchanged. Passes use it to copy
// nodes they do not rewrite.
func WithChildren(s Symbol, children []Symbol) (Symbol, error) {
	b := s.node()
	if len(children) != len(b.children) {
		return nil, fmt.Errorf("%w: %s has %d children, got %d", ErrConfiguration, b.kind, len(b.children), len(children))
	}
	if len(children) == 0 {
		return s, nil
	}
	if sameChildren(b.children, children) {
		return s, nil
	}
	switch n := s.(type) {
	case *Unary:
		return unaryOf(n.kind, n.name, children[0])
	case *Binary:
		if n.kind == KindMatrixMultiplication {
			return MatMulIn(n.domain, children[0], children[1])
		}
		return binaryOf(n.kind, children[0], children[1])
	case *Concatenation:
		return ConcatOf(children...)
	case *Stack:
		return NewStack(n.domain, children...)
	case *Index:
		return NewIndex(children[0], n.index)
	case *SpatialOperator:
		return spatialOf(n.kind, n.name, children[0])
	case *Function:
		return FuncOf(n.name, n.fn, children...)
	case *FunctionParameter:
		return NewFunctionParameter(n.name, children...)
	}
	return nil, fmt.Errorf("%w: cannot rebuild %s", ErrConfiguration, b.kind)
}

func sameChildren(a, b []Symbol) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
