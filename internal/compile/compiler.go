// Package compile runs the external source-to-target compiler on one unit.
package compile

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	t "ulabuild/internal/types"
)

// Compiler translates one complete source text. Implementations must be
// safe for concurrent use with independent inputs.
type Compiler interface {
	Compile(source string) t.Outcome
}

// CompilerFunc adapts an in-process function to Compiler.
type CompilerFunc func(source string) t.Outcome

func (f CompilerFunc) Compile(source string) t.Outcome { return f(source) }

// ExecCompiler runs an external command per unit. The source is written to
// stdin; a zero exit status makes stdout the translated text, anything else
// turns each non-blank stderr line into a diagnostic.
type ExecCompiler struct {
	Path string
	Args []string
}

// NewExecCompiler splits a command line on whitespace.
func NewExecCompiler(commandLine string) (*ExecCompiler, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, errors.New("compile: compiler command is empty")
	}
	return &ExecCompiler{Path: fields[0], Args: fields[1:]}, nil
}

func (c *ExecCompiler) Compile(source string) t.Outcome {
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Stdin = strings.NewReader(source)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diags := splitLines(stderr.String())
		if len(diags) == 0 {
			diags = []string{fmt.Sprintf("compiler %s: %v", c.Path, err)}
		}
		return t.Failure(diags...)
	}
	return t.Success(stdout.String())
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
