package simulation_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/simulation"
)

func TestResult_Snapshot(t *testing.T) {
	res, err := reactionDiffusion(t).Run(context.Background(), []float64{0, 0.1})
	require.NoError(t, err)

	snap, err := res.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "reaction-diffusion", snap.Model)
	assert.Equal(t, "final time", snap.Termination)
	assert.Equal(t, []float64{0, 0.1}, snap.T)
	assert.Len(t, snap.Variables, 2)
	require.Len(t, snap.Variables["c_e"], 2)
	assert.Equal(t, res.Final(), snap.Variables["c_e"][1])

	var buf bytes.Buffer
	require.NoError(t, snap.WriteMsgpack(&buf))
	back, err := simulation.ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap, back)

	_, err = res.Snapshot("phi_e")
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)
}

func TestReadSnapshot_Errors(t *testing.T) {
	_, err := simulation.ReadSnapshot(bytes.NewReader([]byte{0xc1}))
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, (&simulation.Snapshot{Schema: 99}).WriteMsgpack(&buf))
	_, err = simulation.ReadSnapshot(&buf)
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)
}
