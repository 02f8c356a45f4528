package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/twolc/internal/store"
)

func runRunsCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRunsCommand(&RootOptions{Format: format, Color: "never"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func recordTestRun(t *testing.T, rules string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	_, err := runCompileCmd(t, "text", testExamples, rules, "--db", dbPath)
	if err != nil {
		require.Equal(t, ExitFailure, GetExitCode(err))
	}
	return dbPath
}

func TestRuns_RequiresDatabase(t *testing.T) {
	_, err := runRunsCmd(t, "text", "list")
	assert.Error(t, err)
}

func TestRuns_MissingDatabase(t *testing.T) {
	out, err := runRunsCmd(t, "text", "list", "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "database not found")
}

func TestRuns_ListEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := runRunsCmd(t, "text", "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestRuns_List(t *testing.T) {
	dbPath := recordTestRun(t, testRules)

	out, err := runRunsCmd(t, "text", "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "   1 rule(s)  "+testRules)

	out, err = runRunsCmd(t, "json", "list", "--db", dbPath)
	require.NoError(t, err)
	var resp struct {
		Data []store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, testExamples, resp.Data[0].Examples)
}

func TestRuns_ShowLatest(t *testing.T) {
	dbPath := recordTestRun(t, brokenRules)

	out, err := runRunsCmd(t, "text", "show", "latest", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "  rules:    "+brokenRules)
	assert.Contains(t, out, "a:b <=> _ c ;")
	assert.Contains(t, out, "Diagnostics:")
	assert.Contains(t, out, "error line 2: invalid pair")
	assert.Contains(t, out, "      q:r => _ ;")
}

func TestRuns_ShowJSON(t *testing.T) {
	dbPath := recordTestRun(t, testRules)

	out, err := runRunsCmd(t, "json", "show", "latest", "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Data RunDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Rules, 1)
	assert.Equal(t, "a:b <=> _ c ;", resp.Data.Rules[0].Name)
	assert.Empty(t, resp.Data.Diagnostics)

	byID, err := runRunsCmd(t, "json", "show", resp.Data.Run.ID, "--db", dbPath)
	require.NoError(t, err)
	assert.JSONEq(t, out, byID)
}

func TestRuns_ShowUnknown(t *testing.T) {
	dbPath := recordTestRun(t, testRules)

	out, err := runRunsCmd(t, "text", "show", "missing", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "run not found: missing")
}
