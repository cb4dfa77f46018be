// Package symbolic implements the typed expression graph tracked alongside a
// concrete execution, the smart constructors that keep it small, and the
// constraints built over it.
package symbolic

import (
	"fmt"
)

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
