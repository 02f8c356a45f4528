package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: passing
examples:
  - "a:b c"
  - "a b"
rules: |
  a:b <=> _ c ;
accept:
  - "a:b c"
reject:
  - "a c"
expect_lost: []
`

const failingScenario = `name: failing
examples:
  - "a:b c"
  - "a b"
rules: |
  a:b => _ c ;
reject:
  - "a:b c"
`

func writeScenario(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func runTestCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format, Color: "never"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommand_RequiresArgs(t *testing.T) {
	_, err := runTestCmd(t, "text")
	assert.Error(t, err)
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, err := runTestCmd(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommand_EmptyDir(t *testing.T) {
	out, err := runTestCmd(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommand_Passing(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "passing.yaml", passingScenario)

	out, err := runTestCmd(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ passing")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_Failing(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "passing.yaml", passingScenario)
	writeScenario(t, dir, "failing.yml", failingScenario)

	out, err := runTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ failing")
	assert.Contains(t, out, "Assertion failed: reject")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "passing.yaml", passingScenario)
	writeScenario(t, dir, "failing.yaml", failingScenario)

	out, err := runTestCmd(t, "text", dir, "--filter", "pass*")
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.NotContains(t, out, "failing")
}

func TestTestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "failing.yaml", failingScenario)

	out, err := runTestCmd(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "failing", resp.Data.Scenarios[0].Name)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

func TestTestCommand_Golden(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "passing.yaml", passingScenario)

	out, err := runTestCmd(t, "text", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "passing (golden updated)")

	goldenPath := filepath.Join(dir, "golden", "passing.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario":"passing"`)

	_, err = runTestCmd(t, "text", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte("{}"), 0o644))
	out, err = runTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "Golden file mismatch")
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: [unclosed\n")

	out, err := runTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "Load error:")
}
