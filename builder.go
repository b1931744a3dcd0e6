package gobamm

// Builder composes expressions and keeps the first error. Once an error is
// recorded every method returns nil, so model code can build a whole
// expression and check Err once.
//
//	var b gobamm.Builder
//	flux := b.Neg(b.Mul(b.Pow(eps, 1.5), b.Grad(c)))
//	if err := b.Err(); err != nil {
//		return err
//	}
type Builder struct {
	err error
}

func (b *Builder) Err() error { return b.err }

func (b *Builder) keep(s Symbol, err error) Symbol {
	if err != nil {
		b.err = err
		return nil
	}
	return s
}

func (b *Builder) Add(x, y any) Symbol {
	if b.err != nil {
		return nil
	}
	return b.keep(AddOf(x, y))
}

func (b *Builder) Sub(x, y any) Symbol {
	if b.err != nil {
		return nil
	}
	return b.keep(SubOf(x, y))
}

func (b *Builder) Mul(x, y any) Symbol {
	if b.err != nil {
		return nil
	}
	return b.keep(MulOf(x, y))
}

func (b *Builder) Div(x, y any) Symbol {
	if b.err != nil {
		return nil
	}
	return b.keep(DivOf(x, y))
}

func (b *Builder) Pow(x, y any) Symbol {
	if b.err != nil {
		return nil
	}
	return b.keep(PowOf(x, y))
}

func (b *Builder) Neg(x any) Symbol {
	if b.err != nil {
		return nil
	}
	return b.keep(NegOf(x))
}

func (b *Builder) Abs(x any) Symbol {
	if b.err != nil {
		return nil
	}
	return b.keep(AbsOf(x))
}

func (b *Builder) Grad(x Symbol) Symbol {
	if b.err != nil {
		return nil
	}
	return b.keep(GradOf(x))
}

func (b *Builder) Divergence(x Symbol) Symbol {
	if b.err != nil {
		return nil
	}
	return b.keep(DivergenceOf(x))
}

func (b *Builder) Concat(children ...Symbol) Symbol {
	if b.err != nil {
		return nil
	}
	c, err := ConcatOf(children...)
	if err != nil {
		return b.keep(nil, err)
	}
	return c
}

func (b *Builder) Scalar(v float64, domain ...string) Symbol {
	if b.err != nil {
		return nil
	}
	s, err := NewScalar(v, domain...)
	if err != nil {
		return b.keep(nil, err)
	}
	return s
}

func (b *Builder) Parameter(name string, domain ...string) Symbol {
	if b.err != nil {
		return nil
	}
	p, err := NewParameter(name, domain...)
	if err != nil {
		return b.keep(nil, err)
	}
	return p
}

func (b *Builder) FunctionParameter(name string, args ...Symbol) Symbol {
	if b.err != nil {
		return nil
	}
	p, err := NewFunctionParameter(name, args...)
	if err != nil {
		return b.keep(nil, err)
	}
	return p
}

func (b *Builder) Variable(name string, domain ...string) Symbol {
	if b.err != nil {
		return nil
	}
	v, err := NewVariable(name, domain...)
	if err != nil {
		return b.keep(nil, err)
	}
	return v
}
