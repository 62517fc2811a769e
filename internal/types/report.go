package types

import (
	"fmt"
	"io"
	"time"
)

// BuildReport is the sole return value of a build run.
type BuildReport struct {
	Total    int           `json:"total"`
	Failures int           `json:"failures"`
	Written  int           `json:"written"`
	Workers  int           `json:"workers"`
	Elapsed  time.Duration `json:"elapsed"`

	// One block per failed unit, in discovery order.
	Diagnostics [][]string `json:"diagnostics,omitempty"`
}

// OK reports whether no unit failed.
func (r BuildReport) OK() bool { return r.Failures == 0 }

// Lines flattens the diagnostic blocks.
func (r BuildReport) Lines() []string {
	var out []string
	for _, b := range r.Diagnostics {
		out = append(out, b...)
	}
	return out
}

// WriteSummary prints the human-readable result.
func (r BuildReport) WriteSummary(w io.Writer) error {
	if r.OK() {
		_, err := fmt.Fprintf(w, "Compiled successfully in %dms\n", r.Elapsed.Milliseconds())
		return err
	}
	for _, line := range r.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Compilation failed: %d of %d units failed\n", r.Failures, r.Total)
	return err
}
