package models

import (
	"fmt"

	"github.com/njchilds90/gobamm"
)

// HomogeneousReaction is a uniform interfacial current: 1/ln in the negative
// electrode, zero in the separator and -1/lp in the positive electrode.
func HomogeneousReaction() (gobamm.Symbol, error) {
	var b gobamm.Builder
	j := b.Concat(
		b.Div(b.Scalar(1, gobamm.NegativeElectrode), b.Parameter(NegativeElectrodeWidth)),
		b.Scalar(0, gobamm.Separator),
		b.Div(b.Neg(b.Scalar(1, gobamm.PositiveElectrode)), b.Parameter(PositiveElectrodeWidth)),
	)
	return j, b.Err()
}

// ExchangeCurrentDensity is j0(c) in one electrode. A nil domain means the
// domain of c; a nil c means the "concentration" variable on domain. The
// domain of c must be empty or equal to domain.
func ExchangeCurrentDensity(c gobamm.Symbol, domain gobamm.Domain) (gobamm.Symbol, error) {
	if domain == nil && c != nil {
		domain = c.Domain()
	}
	electrode, err := electrodeOf(domain)
	if err != nil {
		return nil, err
	}
	var b gobamm.Builder
	if c == nil {
		c = b.Variable("concentration", electrode)
	} else if d := c.Domain(); len(d) != 0 && !d.Equal(domain) {
		return nil, fmt.Errorf("%w: concentration on %v does not match %v", gobamm.ErrDomain, d, domain)
	}

	if electrode == gobamm.NegativeElectrode {
		return b.Mul(b.Parameter(NegativeExchangeCurrent, electrode), c), b.Err()
	}
	cw := b.Div(b.Sub(1, b.Mul(c, b.Parameter(ElectrolyteMolarVolume))), b.Parameter(WaterMolarVolume))
	j0 := b.Mul(b.Mul(b.Parameter(PositiveExchangeCurrent, electrode), b.Pow(c, 2)), cw)
	return j0, b.Err()
}

func electrodeOf(domain gobamm.Domain) (string, error) {
	if len(domain) == 1 && (domain[0] == gobamm.NegativeElectrode || domain[0] == gobamm.PositiveElectrode) {
		return domain[0], nil
	}
	return "", fmt.Errorf("%w: domain %v is not a single electrode", gobamm.ErrDomain, domain)
}

// InterfacialCurrent is the linearised Butler-Volmer current j0(c)*eta for
// concentration c and overpotential eta.
//
// On one electrode c and eta are used as given. On the whole cell both must
// be three-part concatenations (or nil); the electrode parts are used and
// the separator current is zero. Nil inputs mean the "concentration" and
// "overpotential" variables of each electrode. A nil domain means the whole
// cell.
func InterfacialCurrent(c, eta gobamm.Symbol, domain gobamm.Domain) (gobamm.Symbol, error) {
	if domain == nil {
		domain = gobamm.WholeCell()
	}
	if domain.Equal(gobamm.WholeCell()) {
		cn, cp, err := electrodeParts(c, "concentration")
		if err != nil {
			return nil, err
		}
		etan, etap, err := electrodeParts(eta, "overpotential")
		if err != nil {
			return nil, err
		}
		jn, err := electrodeCurrent(cn, etan, gobamm.Domain{gobamm.NegativeElectrode})
		if err != nil {
			return nil, err
		}
		jp, err := electrodeCurrent(cp, etap, gobamm.Domain{gobamm.PositiveElectrode})
		if err != nil {
			return nil, err
		}
		var b gobamm.Builder
		return b.Concat(jn, b.Scalar(0, gobamm.Separator), jp), b.Err()
	}

	electrode, err := electrodeOf(domain)
	if err != nil {
		return nil, err
	}
	var b gobamm.Builder
	if c == nil {
		c = b.Variable("concentration", electrode)
	}
	if eta == nil {
		eta = b.Variable("overpotential", electrode)
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	return electrodeCurrent(c, eta, domain)
}

func electrodeCurrent(c, eta gobamm.Symbol, domain gobamm.Domain) (gobamm.Symbol, error) {
	j0, err := ExchangeCurrentDensity(c, domain)
	if err != nil {
		return nil, err
	}
	return gobamm.MulOf(j0, eta)
}

// electrodeParts splits a whole-cell concatenation into its electrode parts.
func electrodeParts(s gobamm.Symbol, name string) (neg, pos gobamm.Symbol, err error) {
	if s == nil {
		var b gobamm.Builder
		neg = b.Variable(name, gobamm.NegativeElectrode)
		pos = b.Variable(name, gobamm.PositiveElectrode)
		return neg, pos, b.Err()
	}
	children := s.Children()
	if s.Kind() != gobamm.KindConcatenation || len(children) != 3 {
		return nil, nil, fmt.Errorf("%w: %s must concatenate the three cell domains", gobamm.ErrDomain, s)
	}
	return children[0], children[2], nil
}
