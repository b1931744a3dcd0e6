package gobamm

// ============================================================
// Traversal
// ============================================================

// Walk visits s and its descendants depth-first, parent before children.
// Returning false from fn skips the children of that node.
func Walk(s Symbol, fn func(Symbol) bool) {
	if !fn(s) {
		return
	}
	for _, c := range s.node().children {
		Walk(c, fn)
	}
}

// PreOrder lists s and its descendants depth-first, parent before children.
// Shared subtrees appear once per reference.
func PreOrder(s Symbol) []Symbol {
	var out []Symbol
	Walk(s, func(n Symbol) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Contains reports whether any node of s has one of the given kinds.
func Contains(s Symbol, kinds ...Kind) bool {
	found := false
	Walk(s, func(n Symbol) bool {
		if found {
			return false
		}
		for _, k := range kinds {
			if n.Kind() == k {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// IsConstant reports whether s depends on no unknown and no unresolved parameter.
func IsConstant(s Symbol) bool {
	return !Contains(s, KindVariable, KindStateVector, KindParameter, KindFunctionParameter)
}

// EvaluatesToNumber reports whether s evaluates, with no state, to a scalar.
func EvaluatesToNumber(s Symbol) bool {
	v, err := Evaluate(s, 0, nil)
	return err == nil && v.IsScalar()
}

func HasGradient(s Symbol) bool           { return Contains(s, KindGradient) }
func HasDivergence(s Symbol) bool         { return Contains(s, KindDivergence) }
func HasSpatialDerivatives(s Symbol) bool { return Contains(s, KindGradient, KindDivergence) }
