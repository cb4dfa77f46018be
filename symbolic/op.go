package symbolic

import (
	"fmt"
)

// Operator represents an arithmetic, bitwise or unary operation.
type Operator int

// Expression operators.
const (
	arithmetic_op_begin = Operator(iota)
	ADD
	SUB
	MUL
	DIV
	REM
	arithmetic_op_end

	bitwise_op_begin
	AND
	OR
	XOR
	SHL
	SHR
	USHR
	bitwise_op_end

	unary_op_begin
	NEG
	NARROW // long to int, double to float
	unary_op_end
)

var operators = [...]string{
	ADD:    "add",
	SUB:    "sub",
	MUL:    "mul",
	DIV:    "div",
	REM:    "rem",
	AND:    "and",
	OR:     "or",
	XOR:    "xor",
	SHL:    "shl",
	SHR:    "shr",
	USHR:   "ushr",
	NEG:    "neg",
	NARROW: "narrow",
}

// String returns the string representation of the operator.
func (op Operator) String() string {
	if op >= 0 && op < Operator(len(operators)) && operators[op] != "" {
		return operators[op]
	}
	return fmt.Sprintf("Operator<%d>", op)
}

// IsArithmetic returns true if op is one of ADD, SUB, MUL, DIV or REM.
func (op Operator) IsArithmetic() bool {
	return op > arithmetic_op_begin && op < arithmetic_op_end
}

// IsBitwise returns true if op is a bitwise or shift operator.
func (op Operator) IsBitwise() bool {
	return op > bitwise_op_begin && op < bitwise_op_end
}

// IsUnary returns true if op takes a single operand.
func (op Operator) IsUnary() bool {
	return op > unary_op_begin && op < unary_op_end
}

// IsCommutative returns true if the operands of op can be swapped.
func (op Operator) IsCommutative() bool {
	switch op {
	case ADD, MUL, AND, OR, XOR:
		return true
	default:
		return false
	}
}
