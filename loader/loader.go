// Package loader reads APEX assembly program files into code memory.
package loader

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sarchlab/apexsim/insts"
)

// Program is a loaded APEX program.
type Program struct {
	// Instructions is the code memory in program order. The instruction at
	// index i lives at address insts.CodeBase + 4*i.
	Instructions []insts.Instruction
}

// PCOf returns the code address of instruction index i.
func (p *Program) PCOf(i int) int {
	return insts.CodeBase + 4*i
}

// Load reads and parses an APEX assembly file.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening program: %w", err)
	}
	defer f.Close()

	prog := &Program{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		inst, err := insts.Parse(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		if inst == nil {
			continue
		}
		prog.Instructions = append(prog.Instructions, *inst)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	if len(prog.Instructions) == 0 {
		return nil, fmt.Errorf("%s: no instructions", path)
	}

	return prog, nil
}

// Assemble parses an in-memory listing, one instruction per line. It is
// used by tests and benchmarks to build programs without files.
func Assemble(lines []string) (*Program, error) {
	prog := &Program{}
	for i, line := range lines {
		inst, err := insts.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if inst == nil {
			continue
		}
		prog.Instructions = append(prog.Instructions, *inst)
	}
	return prog, nil
}
