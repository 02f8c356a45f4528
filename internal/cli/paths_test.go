package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPathsCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewPathsCommand(&RootOptions{Format: format, Color: "never"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestPaths_ByName(t *testing.T) {
	bundle := compileBundle(t, testRules)

	out, err := runPathsCmd(t, "text", bundle, "a:b <=> _ c ;", "-n", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "a:b <=> _ c ;\n  (empty string)\n")
	assert.Contains(t, out, "  a:b c\n")
	assert.NotContains(t, out, "  a:b b\n")
}

func TestPaths_ByOrdinalJSON(t *testing.T) {
	bundle := compileBundle(t, testRules)

	out, err := runPathsCmd(t, "json", bundle, "0", "--limit", "100")
	require.NoError(t, err)

	var resp struct {
		Data PathsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "a:b <=> _ c ;", resp.Data.Rule)
	assert.Equal(t, "<=>", resp.Data.Operator)
	assert.NotEmpty(t, resp.Data.Hash)
	assert.Positive(t, resp.Data.States)
	require.NotEmpty(t, resp.Data.Paths)
	assert.Equal(t, "", resp.Data.Paths[0])
	assert.Contains(t, resp.Data.Paths, "a:b c")
	assert.NotContains(t, resp.Data.Paths, "a c")
}

func TestPaths_Limit(t *testing.T) {
	bundle := compileBundle(t, testRules)

	out, err := runPathsCmd(t, "json", bundle, "0", "-n", "1")
	require.NoError(t, err)

	var resp struct {
		Data PathsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{""}, resp.Data.Paths)
}

func TestPaths_UnknownRule(t *testing.T) {
	bundle := compileBundle(t, testRules)

	out, err := runPathsCmd(t, "text", bundle, "7")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `no rule "7" in bundle`)
}

func TestPaths_FromDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	_, err := runCompileCmd(t, "text", testExamples, testRules, "--db", dbPath)
	require.NoError(t, err)

	out, err := runPathsCmd(t, "text", "latest", "0", "--db", dbPath, "-n", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "  a:b c\n")

	_, err = runPathsCmd(t, "text", "no-such-run", "0", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
