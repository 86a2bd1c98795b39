package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/cohsim/config"
	"github.com/sarchlab/cohsim/hooking"
	"github.com/sarchlab/cohsim/mem/cache/coherence"
	"github.com/sarchlab/cohsim/report"
)

// UnknownFunctionMessage is printed for calls to functions that do not exist.
const UnknownFunctionMessage = "Not found expected function, skip it!"

// RunnerBuilder can build runners.
type RunnerBuilder struct {
	out         io.Writer
	quietEcho   bool
	hooks       []hooking.Hook
	onBuild     []func(*coherence.Hierarchy)
	onStatement []func(Statement)
}

// MakeRunnerBuilder creates a RunnerBuilder that writes to stdout.
func MakeRunnerBuilder() RunnerBuilder {
	return RunnerBuilder{
		out: os.Stdout,
	}
}

// WithOutput sets where the echoed lines and the results are written.
func (b RunnerBuilder) WithOutput(w io.Writer) RunnerBuilder {
	b.out = w
	return b
}

// WithQuietEcho stops the runner from echoing each line and the pages each
// access loads. Results are still reported.
func (b RunnerBuilder) WithQuietEcho(quiet bool) RunnerBuilder {
	b.quietEcho = quiet
	return b
}

// WithHook adds a hook to the hierarchy once it is built.
func (b RunnerBuilder) WithHook(hook hooking.Hook) RunnerBuilder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// WithBuildCallback registers a function called right after the hierarchy is
// built.
func (b RunnerBuilder) WithBuildCallback(
	f func(*coherence.Hierarchy),
) RunnerBuilder {
	b.onBuild = append(b.onBuild[:len(b.onBuild):len(b.onBuild)], f)
	return b
}

// WithStatementCallback registers a function called after each statement is
// executed.
func (b RunnerBuilder) WithStatementCallback(f func(Statement)) RunnerBuilder {
	b.onStatement = append(b.onStatement[:len(b.onStatement):len(b.onStatement)], f)
	return b
}

// Build creates a runner. The hierarchy it drives is given the name.
func (b RunnerBuilder) Build(name string) *Runner {
	return &Runner{
		name:        name,
		builder:     config.NewBuilder(),
		reporter:    report.NewReporter(b.out),
		out:         b.out,
		quietEcho:   b.quietEcho,
		hooks:       b.hooks,
		onBuild:     b.onBuild,
		onStatement: b.onStatement,
	}
}

// Runner replays a script. Configuration statements are collected until the
// first access, which builds the hierarchy.
type Runner struct {
	name        string
	builder     *config.Builder
	hierarchy   *coherence.Hierarchy
	reporter    *report.Reporter
	out         io.Writer
	quietEcho   bool
	hooks       []hooking.Hook
	onBuild     []func(*coherence.Hierarchy)
	onStatement []func(Statement)
}

// Hierarchy returns the hierarchy built by the runner, or nil if no access
// has been executed yet.
func (r *Runner) Hierarchy() *coherence.Hierarchy {
	return r.hierarchy
}

// Run executes every statement of the script. It stops at the first fatal
// error. Rejected accesses are reported and the run continues.
func (r *Runner) Run(ctx context.Context, script io.Reader) error {
	parser := NewParser(script)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s, err := parser.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		err = r.Execute(s)
		if err != nil {
			return err
		}
	}
}

// Execute runs one statement.
func (r *Runner) Execute(s Statement) error {
	r.echo(s.Text)

	var err error

	switch {
	case s.Command != nil:
		err = r.configure(s)
	case s.Request != nil:
		err = r.access(*s.Request)
	default:
		_, err = fmt.Fprintln(r.out, UnknownFunctionMessage)
	}

	if err != nil {
		return err
	}

	for _, f := range r.onStatement {
		f(s)
	}

	return nil
}

func (r *Runner) configure(s Statement) error {
	if r.hierarchy != nil {
		return fmt.Errorf("%w: line %d %q",
			config.ErrReconfigure, s.Line, s.Text)
	}

	err := r.builder.Apply(s.Command)
	if err != nil {
		return fmt.Errorf("line %d %q: %w", s.Line, s.Text, err)
	}

	return nil
}

func (r *Runner) access(req coherence.Request) error {
	err := r.ensureHierarchy()
	if err != nil {
		return err
	}

	outcome := r.hierarchy.Access(req)

	if !outcome.Rejected() {
		r.echo(report.LoadingLine(outcome))
	}

	return r.reporter.Report(outcome)
}

func (r *Runner) ensureHierarchy() error {
	if r.hierarchy != nil {
		return nil
	}

	c, err := r.builder.Build()
	if err != nil {
		return err
	}

	h, err := coherence.MakeBuilder().WithConfig(c).Build(r.name)
	if err != nil {
		return err
	}

	for _, hook := range r.hooks {
		h.AcceptHook(hook)
	}

	r.hierarchy = h

	for _, f := range r.onBuild {
		f(h)
	}

	return nil
}

func (r *Runner) echo(line string) {
	if r.quietEcho {
		return
	}

	fmt.Fprintln(r.out, line)
}
