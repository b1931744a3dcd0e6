package gobamm

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// ============================================================
// Core Interface
// ============================================================

// Symbol is an immutable node of an expression tree. The set of
// implementations is closed: every node kind is defined in this package.
type Symbol interface {
	Kind() Kind
	Name() string
	Domain() Domain
	Children() []Symbol
	ID() ID
	String() string

	node() *base
}

// ID is the structural hash of a tree. Trees with the same kind, name,
// domain, payload and children share an ID.
type ID uint64

func (id ID) String() string { return fmt.Sprintf("%016x", uint64(id)) }

// Kind tags the concrete node type of a Symbol.
type Kind uint8

const (
	KindScalar Kind = iota + 1
	KindParameter
	KindFunctionParameter
	KindVariable
	KindVector
	KindMatrix
	KindStateVector
	KindNegate
	KindAbsoluteValue
	KindAddition
	KindSubtraction
	KindMultiplication
	KindDivision
	KindPower
	KindMatrixMultiplication
	KindConcatenation
	KindStack
	KindIndex
	KindGradient
	KindDivergence
	KindFunction
)

var kindNames = map[Kind]string{
	KindScalar:               "Scalar",
	KindParameter:            "Parameter",
	KindFunctionParameter:    "FunctionParameter",
	KindVariable:             "Variable",
	KindVector:               "Vector",
	KindMatrix:               "Matrix",
	KindStateVector:          "StateVector",
	KindNegate:               "Negate",
	KindAbsoluteValue:        "AbsoluteValue",
	KindAddition:             "Addition",
	KindSubtraction:          "Subtraction",
	KindMultiplication:       "Multiplication",
	KindDivision:             "Division",
	KindPower:                "Power",
	KindMatrixMultiplication: "MatrixMultiplication",
	KindConcatenation:        "Concatenation",
	KindStack:                "Stack",
	KindIndex:                "Index",
	KindGradient:             "Gradient",
	KindDivergence:           "Divergence",
	KindFunction:             "Function",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ============================================================
// base: fields shared by every node
// ============================================================

type base struct {
	kind     Kind
	name     string
	domain   Domain
	children []Symbol
	id       ID
}

func (b *base) Kind() Kind         { return b.kind }
func (b *base) Name() string       { return b.name }
func (b *base) Domain() Domain     { return slices.Clone(b.domain) }
func (b *base) Children() []Symbol { return slices.Clone(b.children) }
func (b *base) ID() ID             { return b.id }
func (b *base) node() *base        { return b }

// init fills b and computes its structural hash. payload carries the leaf
// data that the name alone does not identify.
func (b *base) init(kind Kind, name string, domain Domain, children []Symbol, payload ...uint64) {
	b.kind = kind
	b.name = name
	if len(domain) > 0 {
		b.domain = slices.Clone(domain)
	}
	b.children = children

	h := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	put(uint64(kind))
	put(uint64(len(name)))
	_, _ = h.WriteString(name)
	put(uint64(len(domain)))
	for _, d := range domain {
		put(uint64(len(d)))
		_, _ = h.WriteString(d)
	}
	put(uint64(len(children)))
	for _, c := range children {
		put(uint64(c.ID()))
	}
	for _, p := range payload {
		put(p)
	}
	b.id = ID(h.Sum64())
}

func floatBits(vs []float64) []uint64 {
	out := make([]uint64, len(vs))
	for i, v := range vs {
		out[i] = math.Float64bits(v)
	}
	return out
}

// Repr renders a node as Kind(id, name, children=[...], domain=[...]).
func Repr(s Symbol) string {
	b := s.node()
	names := make([]string, len(b.children))
	for i, c := range b.children {
		names[i] = c.Name()
	}
	return fmt.Sprintf("%s(%s, %s, children=%q, domain=%q)", b.kind, b.id, b.name, names, []string(b.domain))
}
