package git

import (
	"context"
	"strings"
)

// MockCommandRunner returns canned results keyed by the git subcommand line.
type MockCommandRunner struct {
	RunFunc func(dir, name string, args ...string) (Result, error)
	Calls   [][]string
}

func (m *MockCommandRunner) Run(_ context.Context, dir, name string, args ...string) (Result, error) {
	m.Calls = append(m.Calls, append([]string{name}, args...))
	if m.RunFunc == nil {
		return Result{}, nil
	}
	return m.RunFunc(dir, name, args...)
}

// callsWith returns how many recorded calls start with prefix.
func (m *MockCommandRunner) callsWith(prefix ...string) int {
	n := 0
	for _, c := range m.Calls {
		if len(c) >= len(prefix) && strings.Join(c[:len(prefix)], " ") == strings.Join(prefix, " ") {
			n++
		}
	}
	return n
}

func ok(stdout string) (Result, error) {
	return Result{Stdout: []byte(stdout)}, nil
}

func exit(code int, stderr string) (Result, error) {
	return Result{ExitCode: code, Stderr: []byte(stderr)}, nil
}
