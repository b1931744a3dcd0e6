package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/simulation"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRun_CSV(t *testing.T) {
	out, errOut, err := execute(t, "run", "--solver", "rk45", "--tol", "1e-5",
		"--points", "negative electrode=3,separator=3,positive electrode=3",
		"--stop", "0.1", "--times", "3", "--vars", "c_e")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "t", records[0][0])
	assert.Len(t, records[0], 10)
	assert.Contains(t, errOut, "solved reaction-diffusion (rk45, 9 unknowns)")
	assert.Contains(t, errOut, "final time")
}

func TestRun_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	out, _, err := execute(t, "run", "--solver", "rk45",
		"--points", "negative electrode=2,separator=2,positive electrode=2",
		"--stop", "0.05", "--times", "2", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "t,y0,y1,"))
}

func TestRun_Formats(t *testing.T) {
	args := []string{"run", "--solver", "rk45",
		"--points", "negative electrode=2,separator=2,positive electrode=2",
		"--stop", "0.05", "--times", "2", "--vars", "c_e"}

	out, _, err := execute(t, append(args, "--format", "json")...)
	require.NoError(t, err)
	var snap simulation.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Len(t, snap.Variables["c_e"], 2)

	out, _, err = execute(t, append(args, "--format", "msgpack")...)
	require.NoError(t, err)
	back, err := simulation.ReadSnapshot(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, snap.T, back.T)

	_, _, err = execute(t, append(args, "--format", "xml")...)
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)
}

func TestRun_Errors(t *testing.T) {
	_, _, err := execute(t, "run", "--model", "spm")
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)

	_, _, err = execute(t, "run", "--solver", "cvode")
	assert.ErrorIs(t, err, gobamm.ErrBackendUnavailable)

	_, _, err = execute(t, "run", "testdata/absent.toml")
	assert.Error(t, err)

	_, _, err = execute(t, "--log-level", "loud", "version")
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)

	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs([]string{"--color", "sometimes", "version"})
	assert.ErrorIs(t, root.Execute(), gobamm.ErrConfiguration)
}

func TestParams_Defaults(t *testing.T) {
	out, _, err := execute(t, "params")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "NAME"))
	assert.Contains(t, out, "Separator width")
	assert.Contains(t, out, "electrolyte_diffusivity_Gu1997")
}

func TestParams_File(t *testing.T) {
	out, _, err := execute(t, "params", "../../parameters/testdata/cell.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "NAME"))

	_, _, err = execute(t, "params", "--model", "spm")
	assert.ErrorIs(t, err, gobamm.ErrConfiguration)
}

func TestMesh(t *testing.T) {
	out, _, err := execute(t, "mesh", "--points", "separator=7")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], gobamm.NegativeElectrode))
	assert.Contains(t, lines[2], " 7 ")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gobamm "+version)
	assert.Contains(t, out, "rk45")
}

func TestPrintError(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	err := fmt.Errorf("run: %w", &gobamm.MissingParameterError{Name: "Separator width"})
	printError(&buf, err)
	missing := &gobamm.MissingParameterError{Name: "Separator width"}
	assert.Equal(t, "error: run: "+missing.Error()+"\n"+
		"  caused by: "+missing.Error()+"\n"+
		"  caused by: "+gobamm.ErrMissingParameter.Error()+"\n"+
		"  hint: add \"Separator width\" to the parameter file or [parameters].overrides\n", buf.String())

	buf.Reset()
	printError(&buf, fmt.Errorf("simulate: %w", fmt.Errorf("solver: %w", errors.New("step too small"))))
	assert.Equal(t, "error: simulate: solver: step too small\n"+
		"  caused by: solver: step too small\n"+
		"  caused by: step too small\n", buf.String())

	buf.Reset()
	printError(&buf, errors.New("boom"))
	assert.Equal(t, "error: boom\n", buf.String())
}
