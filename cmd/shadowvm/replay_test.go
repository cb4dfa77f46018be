package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofraser/evosuite-sub000/symbolic"
	"github.com/google/go-cmp/cmp"
)

const absTrace = `
method: {owner: Example, name: abs, desc: (I)I, static: true, maxLocals: 1}
args:
  - {type: I, name: x, value: -5, min: -100, max: 100}
instructions:
  - ILOAD 0
  - IFGE 0
  - ILOAD 0
  - INEG
  - IRETURN
`

const loadTrace = `
method: {owner: Example, name: get, desc: "([II)I", static: true, maxLocals: 2}
args:
  - {type: "[I", ref: a}
  - {type: I, name: i, value: 1}
arrays:
  a: {type: "[I", elems: [10, 20, 30]}
instructions:
  - ALOAD 0
  - ILOAD 1
  - IALOAD a
  - IRETURN
`

func TestReplayCommand_Run(t *testing.T) {
	t.Run("PathCondition", func(t *testing.T) {
		out, err := replay(t, absTrace)
		if err != nil {
			t.Fatal(err)
		} else if diff := cmp.Diff("0. x < (int 0)\n", out); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ArrayAccess", func(t *testing.T) {
		out, err := replay(t, loadTrace)
		if err != nil {
			t.Fatal(err)
		} else if diff := cmp.Diff("0. i >= (int 0)\n1. i < (int 3)\n", out); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SMT", func(t *testing.T) {
		out, err := replay(t, absTrace, "-smt")
		if err != nil {
			t.Fatal(err)
		} else if !strings.Contains(out, "(declare-const x Int)\n(assert (and (>= x (- 100)) (<= x 100)))\n(assert (< x 0))\n") {
			t.Fatalf("unexpected output:\n%s", out)
		}
	})
	t.Run("Dump", func(t *testing.T) {
		out, err := replay(t, absTrace, "-dump")
		if err != nil {
			t.Fatal(err)
		} else if !strings.Contains(out, "SYMBOLIC ENVIRONMENT") || !strings.Contains(out, "BranchIndex") {
			t.Fatalf("unexpected output:\n%s", out)
		}
	})
	t.Run("ErrUnknownInstruction", func(t *testing.T) {
		_, err := replay(t, strings.Replace(absTrace, "INEG", "IFOO", 1))
		if err == nil || err.Error() != "instruction #3: unknown instruction: IFOO" {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("ErrArgumentCount", func(t *testing.T) {
		_, err := replay(t, strings.Replace(absTrace, "IFGE 0", "IFGE", 1))
		if err == nil || err.Error() != "instruction #1: IFGE: expected 1 arguments, got 0" {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("ErrMalformedTrace", func(t *testing.T) {
		_, err := replay(t, strings.Replace(absTrace, "  - ILOAD 0\n  - IFGE 0\n", "  - IFGE 0\n", 1))
		if err == nil || !strings.HasPrefix(err.Error(), "instruction #0: IFGE: assert: ") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("ErrUnknownField", func(t *testing.T) {
		if _, err := replay(t, absTrace+"bogus: 1\n"); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("ErrTraceRequired", func(t *testing.T) {
		if err := NewReplayCommand().Run(context.Background(), nil); err == nil || err.Error() != "trace required" {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRun_Help(t *testing.T) {
	if err := run(context.Background(), []string{"help"}); err != flag.ErrHelp {
		t.Fatalf("unexpected error: %v", err)
	} else if err := run(context.Background(), []string{"bogus"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestReplayer(t *testing.T) {
	t.Run("ArrayStoreUpdatesHost", func(t *testing.T) {
		r := MustNewReplayer(t, &Trace{
			Method: TraceMethod{Owner: "Example", Name: "set", Desc: "([II)V", Static: true, MaxLocals: 2},
			Args: []TraceArg{
				{Type: "[I", Ref: "a"},
				{Type: "I", Name: "x", Value: "7"},
			},
			Arrays: map[string]TraceArray{"a": {Type: "[I", Elems: []string{"0", "0"}}},
		})
		MustExec(t, r, "ALOAD 0", "ICONST 1", "ILOAD 1", "IASTORE a", "ALOAD 0", "ICONST 1", "IALOAD a")

		x := r.Machine.Env.TopFrame().Locals.GetBv32(1)
		if v := r.stack().PopBv32(); v != x {
			t.Fatalf("unexpected value: %s", v)
		}

		a, err := r.Host.Array("a")
		if err != nil {
			t.Fatal(err)
		} else if v := a.Load(1); v != int32(7) {
			t.Fatalf("unexpected host element: %v", v)
		}
	})
	t.Run("DivisionByZero", func(t *testing.T) {
		r := MustNewReplayer(t, &Trace{
			Method: TraceMethod{Owner: "Example", Name: "div", Desc: "(I)I", Static: true, MaxLocals: 1},
			Args:   []TraceArg{{Type: "I", Name: "x", Value: "0"}},
		})
		MustExec(t, r, "BIPUSH 10", "ILOAD 0", "IDIV")

		x := r.Machine.Env.TopFrame().Locals.GetBv32(0)
		if r.Faults != 1 {
			t.Fatalf("unexpected fault count: %d", r.Faults)
		} else if diff := cmp.Diff([]symbolic.Constraint{symbolic.Eq(x, symbolic.NewIntegerConstant(0))}, r.Machine.PathCondition.Pending()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("GETFIELD", func(t *testing.T) {
		r := MustNewReplayer(t, &Trace{
			Method:  TraceMethod{Owner: "Point", Name: "getX", Desc: "()I", MaxLocals: 1},
			Args:    []TraceArg{{Type: "LPoint;", Ref: "p"}},
			Objects: map[string]TraceObject{"p": {Class: "Point"}},
		})
		MustExec(t, r, "ALOAD 0", "GETFIELD p Point x I 3", "ALOAD 0", "GETFIELD null Point x I 0")

		if r.Faults != 1 {
			t.Fatalf("unexpected fault count: %d", r.Faults)
		} else if v := r.stack().PopBv32(); v.ConcreteValue() != 3 {
			t.Fatalf("unexpected value: %s", v)
		}
	})
	t.Run("INSTANCEOF", func(t *testing.T) {
		r := MustNewReplayer(t, &Trace{
			Method:  TraceMethod{Owner: "Example", Name: "m", Desc: "(Ljava/lang/Object;)Z", Static: true, MaxLocals: 1},
			Args:    []TraceArg{{Type: "Ljava/lang/Object;", Ref: "b"}},
			Classes: map[string]string{"B": "A"},
			Objects: map[string]TraceObject{"b": {Class: "B"}},
		})
		MustExec(t, r, "ALOAD 0", "INSTANCEOF b A")

		if v := r.stack().PopBv32(); v.ConcreteValue() != 1 {
			t.Fatalf("unexpected value: %s", v)
		}
	})
	t.Run("CALL", func(t *testing.T) {
		r := MustNewReplayer(t, &Trace{
			Method: TraceMethod{Owner: "Example", Name: "m", Desc: "(D)V", Static: true, MaxLocals: 2},
			Args:   []TraceArg{{Type: "D", Name: "d", Value: "2.5"}},
		})
		MustExec(t, r, "DLOAD 0", "CALL (D)J static 2")

		if v := r.stack().PopBv64(); v.ConcreteValue() != 2 || v.ContainsSymbolicVariable() {
			t.Fatalf("unexpected value: %s", v)
		}
	})
	t.Run("ErrStackUnderflow", func(t *testing.T) {
		r := MustNewReplayer(t, &Trace{
			Method: TraceMethod{Owner: "Example", Name: "m", Desc: "()V", Static: true, MaxLocals: 1},
		})
		if err := r.Exec("IADD"); err == nil || !strings.HasPrefix(err.Error(), "IADD: assert: ") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("ErrWidthMismatch", func(t *testing.T) {
		r := MustNewReplayer(t, &Trace{
			Method: TraceMethod{Owner: "Example", Name: "m", Desc: "(J)V", Static: true, MaxLocals: 2},
			Args:   []TraceArg{{Type: "J", Name: "l", Value: "1"}},
		})
		if err := r.Exec("ILOAD 0"); err == nil || !strings.HasPrefix(err.Error(), "ILOAD: ") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("ErrArgumentsDoNotMatchDescriptor", func(t *testing.T) {
		_, err := NewReplayer(&Trace{
			Method: TraceMethod{Owner: "Example", Name: "m", Desc: "(J)V", Static: true, MaxLocals: 2},
			Args:   []TraceArg{{Type: "I", Name: "i", Value: "1"}},
		})
		if err == nil || !strings.HasPrefix(err.Error(), "start Example.m(J)V: ") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("ErrArgumentOutOfRange", func(t *testing.T) {
		_, err := NewReplayer(&Trace{
			Method: TraceMethod{Owner: "Example", Name: "m", Desc: "(B)V", Static: true, MaxLocals: 1},
			Args:   []TraceArg{{Type: "B", Name: "b", Value: "200"}},
		})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

// replay writes trace to a temporary file and replays it.
func replay(tb testing.TB, trace string, args ...string) (string, error) {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "trace.yaml")
	if err := os.WriteFile(path, []byte(trace), 0666); err != nil {
		tb.Fatal(err)
	}

	var buf bytes.Buffer
	cmd := NewReplayCommand()
	cmd.Stdout = &buf
	err := cmd.Run(context.Background(), append(args, path))
	return buf.String(), err
}

// MustNewReplayer returns a replayer for trace. Fatal on error.
func MustNewReplayer(tb testing.TB, trace *Trace) *Replayer {
	tb.Helper()
	r, err := NewReplayer(trace)
	if err != nil {
		tb.Fatal(err)
	}
	return r
}

// MustExec executes each line on r. Fatal on error.
func MustExec(tb testing.TB, r *Replayer, lines ...string) {
	tb.Helper()
	for _, line := range lines {
		if err := r.Exec(line); err != nil {
			tb.Fatal(err)
		}
	}
}
