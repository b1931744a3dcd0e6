package gobamm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gobamm"
)

func must[T any](t *testing.T) func(T, error) T {
	return func(v T, err error) T {
		t.Helper()
		require.NoError(t, err)
		return v
	}
}

func variable(t *testing.T, name string, domain ...string) *gobamm.Variable {
	t.Helper()
	v, err := gobamm.NewVariable(name, domain...)
	require.NoError(t, err)
	return v
}

func parameter(t *testing.T, name string, domain ...string) *gobamm.Parameter {
	t.Helper()
	p, err := gobamm.NewParameter(name, domain...)
	require.NoError(t, err)
	return p
}
