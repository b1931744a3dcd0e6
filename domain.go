package gobamm

import (
	"fmt"
	"slices"
	"strings"
)

// ============================================================
// Domains
// ============================================================

// Known spatial domains.
const (
	NegativeElectrode = "negative electrode"
	Separator         = "separator"
	PositiveElectrode = "positive electrode"
	NegativeParticle  = "negative particle"
	PositiveParticle  = "positive particle"
	TestDomain        = "test"
)

const (
	leftGhostSuffix  = "_left ghost cell"
	rightGhostSuffix = "_right ghost cell"
)

// KnownDomains is the canonical domain ordering. Each domain is flanked by
// its left and right ghost cells in the full ordering.
var KnownDomains = []string{
	NegativeElectrode,
	Separator,
	PositiveElectrode,
	NegativeParticle,
	PositiveParticle,
	TestDomain,
}

var domainRank = func() map[string]int {
	r := make(map[string]int, 3*len(KnownDomains))
	for i, d := range KnownDomains {
		r[LeftGhost(d)] = 3 * i
		r[d] = 3*i + 1
		r[RightGhost(d)] = 3*i + 2
	}
	return r
}()

// Domain is an ordered list of domain names.
type Domain []string

// WholeCell returns the negative electrode, separator and positive electrode.
func WholeCell() Domain {
	return Domain{NegativeElectrode, Separator, PositiveElectrode}
}

func LeftGhost(d string) string  { return d + leftGhostSuffix }
func RightGhost(d string) string { return d + rightGhostSuffix }

// IsGhost reports whether name is a ghost cell and returns the domain it flanks.
func IsGhost(name string) (string, bool) {
	if base, ok := strings.CutSuffix(name, leftGhostSuffix); ok {
		return base, true
	}
	if base, ok := strings.CutSuffix(name, rightGhostSuffix); ok {
		return base, true
	}
	return "", false
}

// Rank returns the position of name in the canonical ordering.
func Rank(name string) (int, bool) {
	r, ok := domainRank[name]
	return r, ok
}

// ValidateDomain checks that d is empty or a strictly increasing run of the
// canonical ordering.
func ValidateDomain(d Domain) error {
	prev := -1
	for _, name := range d {
		r, ok := domainRank[name]
		if !ok {
			return fmt.Errorf("%w: domain %q is not one of %v", ErrDomain, name, KnownDomains)
		}
		if r == prev {
			return fmt.Errorf("%w: duplicate domain %q in %v", ErrDomain, name, []string(d))
		}
		if r < prev {
			return fmt.Errorf("%w: domain %v is not in canonical order", ErrDomain, []string(d))
		}
		prev = r
	}
	return nil
}

// ParseDomain converts a decoded configuration value into a Domain. It accepts
// a string list or a list of strings of type []any.
func ParseDomain(v any) (Domain, error) {
	var d Domain
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Domain:
		d = slices.Clone(x)
	case []string:
		d = slices.Clone(x)
	case []any:
		d = make(Domain, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%w: domain entry %v (%T) is not a string", ErrTypeUnsupported, e, e)
			}
			d = append(d, s)
		}
	default:
		return nil, fmt.Errorf("%w: domain must be a list, got %T", ErrTypeUnsupported, v)
	}
	if err := ValidateDomain(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d Domain) Equal(o Domain) bool { return slices.Equal(d, o) }

func (d Domain) String() string { return "[" + strings.Join(d, ", ") + "]" }

// mergeDomains returns the domain of a node built from children with domains
// a and b: they must match when both are set.
func mergeDomains(a, b Domain) (Domain, error) {
	switch {
	case len(a) == 0:
		return b, nil
	case len(b) == 0 || a.Equal(b):
		return a, nil
	}
	return nil, fmt.Errorf("%w: children have different domains %v and %v", ErrDomain, a, b)
}
