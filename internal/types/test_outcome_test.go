package types

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_Variants(t *testing.T) {
	ok := Success("return 1")
	assert.True(t, ok.OK())
	assert.Equal(t, OutcomeSuccess, ok.Kind())
	assert.Equal(t, "return 1", ok.Text())
	assert.Nil(t, ok.Diagnostics())

	bad := Failure("a", "b")
	assert.False(t, bad.OK())
	assert.Equal(t, OutcomeFailure, bad.Kind())
	assert.Equal(t, []string{"a", "b"}, bad.Diagnostics())

	var zero Outcome
	assert.False(t, zero.OK())
	assert.Equal(t, "unknown", zero.Kind().String())
}

func TestOutcome_FailureNeverEmpty(t *testing.T) {
	require.Len(t, Failure().Diagnostics(), 1)
}

func TestOutcome_DiagnosticsAreCopied(t *testing.T) {
	in := []string{"x"}
	o := Failure(in...)
	in[0] = "mutated"
	got := o.Diagnostics()
	got[0] = "mutated again"
	assert.Equal(t, []string{"x"}, o.Diagnostics())
}

func TestBuildReport_WriteSummary(t *testing.T) {
	var buf bytes.Buffer
	r := BuildReport{Total: 2, Elapsed: 1500 * time.Millisecond}
	require.NoError(t, r.WriteSummary(&buf))
	assert.Equal(t, "Compiled successfully in 1500ms\n", buf.String())

	buf.Reset()
	r = BuildReport{
		Total:       3,
		Failures:    2,
		Diagnostics: [][]string{{"e1 in <a>", "e2 in <a>"}, {"e3 in <b>"}},
	}
	require.NoError(t, r.WriteSummary(&buf))
	assert.Equal(t, "e1 in <a>\ne2 in <a>\ne3 in <b>\nCompilation failed: 2 of 3 units failed\n", buf.String())
}
