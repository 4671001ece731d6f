// Package process runs allow-listed local commands as ToolAction tools.
//
// A tool receives the selection on stdin as {"tool": name, "values": [[...]]}
// and answers on stdout with the new values, either as a bare 2-D array or as
// an object with a "values" field. A null entry leaves the cell unchanged.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/registry"
)

// Runner holds the allow-list of commands that may run as tools.
type Runner struct {
	registry map[string]RegisteredProcess
	baseDir  string
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string
	Env     map[string]string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(tools map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			r.registry[name] = RegisteredProcess{
				Command: tool.Command,
				Args:    tool.Args,
				Env:     tool.Environment,
			}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = RegisteredProcess{
		Command: command,
		Args:    args,
	}
}

// Names returns the allow-listed tool names, sorted.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install registers every allow-listed command in reg. Names already taken in
// reg, such as the built-in copy and paste, are refused.
func (r *Runner) Install(reg *registry.Registry) error {
	taken := make(map[string]bool)
	for _, name := range reg.Names() {
		taken[name] = true
	}
	for _, name := range r.Names() {
		if taken[strings.ToLower(name)] {
			return fmt.Errorf("tool %q is already registered", name)
		}
		reg.Register(name, r.Tool(name))
	}
	return nil
}

// Tool returns the registry function that runs the named command.
func (r *Runner) Tool(name string) registry.ToolFunction {
	return func(ctx context.Context, inv *registry.Invocation) error {
		proc, ok := r.registry[name]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
		}
		out, err := r.run(ctx, name, proc, inv.Values)
		if err != nil {
			return err
		}
		return apply(inv, out)
	}
}

type request struct {
	Tool   string  `json:"tool"`
	Values [][]any `json:"values"`
}

type response struct {
	Values [][]any `json:"values"`
}

func (r *Runner) run(ctx context.Context, name string, proc RegisteredProcess, values [][]any) ([][]any, error) {
	input, err := json.Marshal(request{Tool: name, Values: values})
	if err != nil {
		return nil, fmt.Errorf("%w: encode selection: %v", domain.ErrToolFailed, err)
	}

	// Security: the selection only travels on stdin, never as command arguments.
	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Stdin = bytes.NewReader(input)

	rows, cols := len(values), 0
	if rows > 0 {
		cols = len(values[0])
	}
	env := []string{
		"SHEETPILOT_TOOL=" + name,
		"SHEETPILOT_ROWS=" + strconv.Itoa(rows),
		"SHEETPILOT_COLS=" + strconv.Itoa(cols),
	}
	for k, v := range proc.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", domain.ErrToolFailed, name, err, strings.TrimSpace(stderr.String()))
	}
	return decodeOutput(name, stdout.Bytes())
}

func decodeOutput(name string, data []byte) ([][]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var values [][]any
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return nil, fmt.Errorf("%w: %s: invalid output: %v", domain.ErrToolFailed, name, err)
		}
		return values, nil
	}
	var resp response
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: invalid output: %v", domain.ErrToolFailed, name, err)
	}
	return resp.Values, nil
}

// apply writes the tool output over the selection. Only cells accepted by the
// action's filter change.
func apply(inv *registry.Invocation, out [][]any) error {
	if len(out) > len(inv.Values) {
		return fmt.Errorf("%w: %d rows returned for a %d-row selection", domain.ErrToolFailed, len(out), len(inv.Values))
	}
	for i, row := range out {
		if len(row) > len(inv.Values[i]) {
			return fmt.Errorf("%w: row %d has %d values for %d cells", domain.ErrToolFailed, i+1, len(row), len(inv.Values[i]))
		}
	}
	for i, row := range out {
		for j, v := range row {
			if v == nil || !inv.Filter.Match(inv.Values[i][j]) {
				continue
			}
			inv.Put(i, j, v)
		}
	}
	return nil
}
