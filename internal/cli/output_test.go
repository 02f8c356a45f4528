package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	require.NoError(t, formatter.Error("E001", "compilation failed", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "compilation failed", resp.Error.Message)
}

func TestOutputFormatter_JSONFailureKeepsData(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Failure(ErrCodeCheck, "1 example(s) lost", map[string]int{"lost": 1}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, ErrCodeCheck, resp.Error.Code)
}

func TestOutputFormatter_JSONDoesNotEscapeRuleOperators(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success("a:b <=> _ c ;"))
	assert.Contains(t, buf.String(), "a:b <=> _ c ;")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Error("E001", "compilation failed", nil))
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "compilation failed")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	require.NoError(t, formatter.Error("E001", "compilation failed", map[string]string{"file": "rules.twolc"}))
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			errBuf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "text",
				Writer:    buf,
				ErrWriter: errBuf,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Processing %s", "rules.twolc")

			assert.Empty(t, buf.String())
			if tt.wantLog {
				assert.Contains(t, errBuf.String(), "Processing rules.twolc")
			} else {
				assert.Empty(t, errBuf.String())
			}
		})
	}
}

func TestOutputFormatter_Colors(t *testing.T) {
	buf := &bytes.Buffer{}

	plain := &OutputFormatter{Writer: buf, Color: "never"}
	assert.Equal(t, "ok", plain.OK("ok"))
	assert.Equal(t, "bad", plain.Fail("bad"))

	colored := &OutputFormatter{Writer: buf, Color: "always"}
	assert.NotEqual(t, "ok", colored.OK("ok"))
	assert.Contains(t, colored.OK("ok"), "\x1b[")
	assert.Contains(t, colored.OK("ok"), "ok")

	// A buffer is not a terminal.
	auto := &OutputFormatter{Writer: buf, Color: "auto"}
	assert.Equal(t, "warn", auto.Warn("warn"))
}

func TestOutputFormatter_Logger(t *testing.T) {
	errBuf := &bytes.Buffer{}
	quiet := &OutputFormatter{ErrWriter: errBuf}
	quiet.Logger().Warn("statement failed")
	assert.Empty(t, errBuf.String())

	verbose := &OutputFormatter{ErrWriter: errBuf, Verbose: true}
	verbose.Logger().Debug("rule compiled", "error", "none")
	assert.Contains(t, errBuf.String(), "rule compiled")
	assert.Contains(t, errBuf.String(), "err=none")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "missing")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "inner", errors.New("cause")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Contains(t, wrapped.Error(), "inner: cause")
}
