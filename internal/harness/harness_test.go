package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/twolc/internal/ir"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"biconditional", "anchored_right_arrow", "isolated_errors", "from_files"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "%v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_ReportsWarnings(t *testing.T) {
	result, err := Run(loadTestScenario(t, "anchored_right_arrow"))
	require.NoError(t, err)

	require.Len(t, result.Report.Rules, 1)
	assert.Equal(t, ir.TestFailed, result.Report.Rules[0].Positive)
	require.Len(t, result.Report.Diagnostics, 1)
	assert.Equal(t, ir.SeverityWarning, result.Report.Diagnostics[0].Severity)
	assert.Equal(t, []string{"b a"}, result.Check.Lost)
}

func TestRun_FailedExpectations(t *testing.T) {
	lost := []string{"a:b c"}
	scenario := &Scenario{
		Name:        "failing",
		Description: "every expectation is wrong",
		Examples:    []string{"a:b c", "a b"},
		Rules:       "a:b <=> _ c ;\n",
		Accept:      []string{"a c"},
		Reject:      []string{"a b"},
		ExpectErrors: []ExpectedError{
			{Kind: "syntax error", Line: 1},
		},
		ExpectLost: &lost,
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Assertion failed: accept")
	assert.Contains(t, result.Errors[1], "Assertion failed: reject")
	assert.Contains(t, result.Errors[2], "Assertion failed: expect_errors")
	assert.Contains(t, result.Errors[3], "Assertion failed: expect_lost")
}

func TestRun_WrongErrorKind(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_kind",
		Description: "an invalid pair is not a syntax error",
		Examples:    []string{"a b"},
		Rules:       "q:r => _ ;\n",
		ExpectErrors: []ExpectedError{
			{Kind: "syntax error", Line: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: syntax error at line 1")
	assert.Contains(t, result.Errors[0], "Compile errors:")
}

func TestRun_UnknownPairInAccept(t *testing.T) {
	scenario := &Scenario{
		Name:        "unknown_pair",
		Description: "accept strings must use alphabet pairs",
		Examples:    []string{"a b"},
		Rules:       "a => _ b ;\n",
		Accept:      []string{"a z"},
		Reject:      []string{"z"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "not in the alphabet")
}

func TestHarness_Workers(t *testing.T) {
	h := New(WithWorkers(4))
	result, err := h.Run(context.Background(), loadTestScenario(t, "isolated_errors"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
	assert.Len(t, result.Report.Rules, 2)
}

func TestRun_MissingRulesFile(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing",
		Description: "rules file vanished",
		Examples:    []string{"a b"},
		RulesFile:   filepath.Join(t.TempDir(), "missing.twolc"),
	}

	_, err := Run(scenario)
	assert.Error(t, err)
}
