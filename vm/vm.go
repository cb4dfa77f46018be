// Package vm implements the symbolic shadow of a stack-based bytecode
// machine. The host interpreter calls one method per executed instruction;
// the shadow keeps a symbolic operand stack, locals and heap in lockstep and
// records the constraints that describe the concrete path.
//
// Faults of the program under test (division by zero, null dereference,
// out-of-range array access) are reported by returning true so the host can
// skip the instruction's result. Broken invariants, such as popping an
// operand of the wrong width, panic.
package vm

import (
	"errors"
	"fmt"
)

var (
	ErrNoClassResolver = errors.New("vm: no class resolver configured")
)

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
