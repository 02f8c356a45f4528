package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	c := New()
	c.RuleCompiled("=>", 3*time.Millisecond, 5)
	c.RuleCompiled("=>", time.Millisecond, 7)
	c.RuleCompiled("<=>", time.Millisecond, 12)
	c.CompileFailed("invalid pair")
	c.ExampleMismatch("positive")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.rules.WithLabelValues("=>")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rules.WithLabelValues("<=>")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errors.WithLabelValues("invalid pair")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.mismatches.WithLabelValues("positive")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.duration))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.RuleCompiled("=>", time.Second, 1)
	c.CompileFailed("x")
	c.ExampleMismatch("negative")
	assert.Nil(t, c.Registry())
	assert.NoError(t, c.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New()
	c.RuleCompiled("/<=", time.Millisecond, 3)

	path := filepath.Join(t.TempDir(), "twolc.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `twolc_rules_compiled_total{operator="/<="} 1`)
	assert.Contains(t, string(data), "twolc_rule_states_bucket")
}
