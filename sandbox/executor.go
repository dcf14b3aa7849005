package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"

	"dida/chart"
	"dida/dataset"
)

// ExecResult is the structured outcome of one sandbox run. On failure only
// Error is meaningful; no partial result is surfaced.
type ExecResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`

	// Result is the value the code assigned to `result` (may be nil).
	Result interface{} `json:"-"`
	// Table is the table binding as the code left it. The executor always
	// runs against a deep copy, so the caller's table is untouched either
	// way; agents with in-place semantics adopt Table on success.
	Table *dataset.Table `json:"-"`
	// Image is the rendered PNG when the code drew on the plot canvas.
	Image []byte `json:"-"`
}

// Executor runs generated Go code in a yaegi interpreter with an explicit
// binding set: the table copy as `df`, a fresh Canvas as `plot`, and a
// whitelisted stdlib subset. Each run gets a fresh interpreter and canvas,
// so nothing is shared between invocations.
type Executor struct {
	validator *CodeValidator
	timeout   time.Duration
	logger    func(string)
}

// NewExecutor creates an executor with the given wall-clock timeout.
func NewExecutor(timeout time.Duration, logger func(string)) *Executor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Executor{
		validator: NewCodeValidator(),
		timeout:   timeout,
		logger:    logger,
	}
}

func (e *Executor) log(msg string) {
	if e.logger != nil {
		e.logger(msg)
	}
}

func failure(format string, args ...interface{}) *ExecResult {
	return &ExecResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Run executes code against a deep copy of table and captures the `result`
// value, the table binding, stdout, and any rendered chart.
func (e *Executor) Run(ctx context.Context, code string, table *dataset.Table) *ExecResult {
	e.log(fmt.Sprintf("[SANDBOX] Run started - code length: %d, rows: %d", len(code), table.NumRows()))

	validation := e.validator.ValidateCode(code)
	if !validation.Valid {
		e.log(fmt.Sprintf("[SANDBOX] Code blocked: %v", validation.Errors))
		return failure("code validation failed: %s", strings.Join(validation.Errors, "; "))
	}
	for _, warning := range validation.Warnings {
		e.log(fmt.Sprintf("[SANDBOX] Warning: %s", warning))
	}

	work := table.Copy()
	canvas := chart.NewCanvas()

	var stdout bytes.Buffer
	interpreter := interp.New(interp.Options{Stdout: &stdout, Stderr: &stdout})
	if err := interpreter.Use(restrictedStdlibSymbols()); err != nil {
		return failure("failed to load sandbox stdlib: %v", err)
	}
	if err := interpreter.Use(didaSymbols()); err != nil {
		return failure("failed to load sandbox bindings: %v", err)
	}

	src := wrapCode(code)

	type evalOutcome struct {
		result interface{}
		table  *dataset.Table
		err    error
	}
	done := make(chan evalOutcome, 1)

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- evalOutcome{err: fmt.Errorf("panic during execution: %v", r)}
			}
		}()

		if _, err := interpreter.Eval(src); err != nil {
			done <- evalOutcome{err: fmt.Errorf("code evaluation failed: %v", err)}
			return
		}

		v, err := interpreter.Eval("main.Run")
		if err != nil {
			done <- evalOutcome{err: fmt.Errorf("sandbox entry point not found: %v", err)}
			return
		}
		run, ok := v.Interface().(func(*dataset.Table, *chart.Canvas) (interface{}, *dataset.Table))
		if !ok {
			done <- evalOutcome{err: fmt.Errorf("sandbox entry point has unexpected signature")}
			return
		}

		result, out := run(work, canvas)
		done <- evalOutcome{result: result, table: out}
	}()

	select {
	case outcome := <-done:
		if outcome.err != nil {
			e.log(fmt.Sprintf("[SANDBOX] Execution failed: %v", outcome.err))
			return &ExecResult{Success: false, Error: outcome.err.Error(), Output: stdout.String()}
		}

		image, err := canvas.Capture()
		if err != nil {
			e.log(fmt.Sprintf("[SANDBOX] Chart capture failed: %v", err))
			return &ExecResult{Success: false, Error: err.Error(), Output: stdout.String()}
		}

		out := outcome.table
		if out == nil {
			out = work
		}
		e.log(fmt.Sprintf("[SANDBOX] Execution succeeded - output: %d bytes, chart: %v", stdout.Len(), image != nil))
		return &ExecResult{
			Success: true,
			Result:  outcome.result,
			Table:   out,
			Output:  stdout.String(),
			Image:   image,
		}

	case <-execCtx.Done():
		e.log(fmt.Sprintf("[SANDBOX] Execution timed out after %v", e.timeout))
		return failure("execution timed out after %v", e.timeout)
	}
}

// wrapCode embeds generated statements into a sandbox entry point. The code
// assigns to `result` and may mutate or reassign `df`; both come back as
// returns. Only whitelisted stdlib packages referenced by the code are
// imported, since an unused import would fail evaluation.
func wrapCode(code string) string {
	var imports strings.Builder
	imports.WriteString("\t\"dida/chart\"\n\t\"dida/dataset\"\n")
	for _, pkg := range stdlibPackages {
		if containsIdentifier(code, pkg+".") {
			fmt.Fprintf(&imports, "\t%q\n", pkg)
		}
	}

	return fmt.Sprintf(`package main

import (
%s)

func Run(df *dataset.Table, plot *chart.Canvas) (result interface{}, out *dataset.Table) {
	_ = plot
%s
	return result, df
}
`, imports.String(), code)
}
