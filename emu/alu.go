// Package emu provides architectural state and functional APEX emulation.
package emu

import (
	"errors"

	"github.com/sarchlab/apexsim/insts"
)

// ErrDivideByZero is the runtime program error produced by DIV with a zero
// divisor.
var ErrDivideByZero = errors.New("divide by zero")

// ALUOp computes a register-register arithmetic/logic operation. It is
// shared by the interpreter and the timing model's integer unit so both
// execute identical semantics; the timing model's multiply unit computes
// its product directly.
func ALUOp(op insts.Op, a, b int32) (int32, error) {
	switch op {
	case insts.OpADD:
		return a + b, nil
	case insts.OpSUB:
		return a - b, nil
	case insts.OpMUL:
		return a * b, nil
	case insts.OpDIV:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	case insts.OpAND:
		return a & b, nil
	case insts.OpOR:
		return a | b, nil
	case insts.OpXOR:
		return a ^ b, nil
	}
	return 0, nil
}
