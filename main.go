// Package main provides the entry point for apexsim.
// apexsim is a cycle-accurate out-of-order APEX pipeline simulator.
//
// For the full CLI, use: go run ./cmd/apexsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("apexsim - out-of-order APEX pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: apexsim run <program.asm> [simulate <N>]")
	fmt.Println("")
	fmt.Println("Flags:")
	fmt.Println("  --debug     Print pipeline state every cycle")
	fmt.Println("  --emulate   Run the in-order reference interpreter")
	fmt.Println("  --config    Path to pipeline configuration JSON file")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/apexsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/apexsim' instead.")
	}
}
