// Package main provides the entry point for apexsim.
// apexsim is a cycle-accurate out-of-order APEX pipeline simulator.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/loader"
	"github.com/sarchlab/apexsim/timing/config"
	"github.com/sarchlab/apexsim/timing/core"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "apexsim",
		Short: "apexsim — cycle-accurate out-of-order APEX pipeline simulator",
	}

	var (
		debug      bool
		emulate    bool
		configPath string
	)

	runCmd := &cobra.Command{
		Use:   "run <program.asm> [simulate <N>]",
		Short: "Simulate an APEX assembly program",
		Long: `Simulate an APEX assembly program.

With no extra arguments the simulator single-steps: it pauses after every
cycle for input (ENTER steps, r runs to completion, q quits).
With "simulate <N>" it runs N cycles and reports.`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if configPath != "" {
				var err error
				cfg, err = config.LoadConfig(configPath)
				if err != nil {
					return err
				}
			}

			prog, err := loader.Load(args[0])
			if err != nil {
				return err
			}

			if emulate {
				return runEmulation(prog, cfg)
			}

			switch len(args) {
			case 1:
				return runSingleStep(prog, cfg, debug)
			case 3:
				if args[1] != "simulate" {
					return fmt.Errorf("unknown mode %q", args[1])
				}
				n, err := strconv.Atoi(args[2])
				if err != nil || n <= 0 {
					return fmt.Errorf("simulate: cycle count must be a positive integer, got %q", args[2])
				}
				return runSimulate(prog, cfg, uint64(n), debug)
			default:
				return fmt.Errorf("usage: apexsim run <program.asm> [simulate <N>]")
			}
		},
	}
	runCmd.Flags().BoolVar(&debug, "debug", false, "Print pipeline state every cycle")
	runCmd.Flags().BoolVar(&emulate, "emulate", false, "Run the in-order reference interpreter instead of the pipeline")
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to pipeline configuration JSON file")

	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runEmulation executes the program on the in-order reference interpreter.
func runEmulation(prog *loader.Program, cfg *config.Config) error {
	e := emu.NewEmulator(emu.WithMemory(emu.NewMemorySized(cfg.DataMemorySize)))
	e.LoadProgram(prog.Instructions)
	if err := e.Run(); err != nil {
		return err
	}
	fmt.Printf("Instructions executed: %d\n", e.InstructionCount())
	printArchState(e.RegFile())
	return nil
}

// runSimulate runs the pipeline for n cycles and reports.
func runSimulate(prog *loader.Program, cfg *config.Config, n uint64, debug bool) error {
	c := core.NewCore(cfg)
	c.LoadProgram(prog.Instructions)

	for i := uint64(0); i < n && !c.Halted(); i++ {
		c.Tick()
		if debug {
			c.Pipeline.Dump(os.Stdout)
		}
	}
	if err := c.Err(); err != nil {
		return err
	}

	report(c)
	return nil
}

// runSingleStep pauses after every cycle for user input.
func runSingleStep(prog *loader.Program, cfg *config.Config, debug bool) error {
	c := core.NewCore(cfg)
	c.LoadProgram(prog.Instructions)

	stdin := bufio.NewScanner(os.Stdin)
	for !c.Halted() {
		c.Tick()
		if debug {
			c.Pipeline.Dump(os.Stdout)
		}

		fmt.Print("apexsim> ")
		if !stdin.Scan() {
			break
		}
		switch strings.TrimSpace(stdin.Text()) {
		case "q", "quit":
			report(c)
			return c.Err()
		case "r", "run":
			if err := core.RunWithEngine(c); err != nil {
				return err
			}
		}
	}
	if err := c.Err(); err != nil {
		return err
	}

	report(c)
	return nil
}

func report(c *core.Core) {
	stats := c.Stats()
	fmt.Printf("\n")
	fmt.Printf("Total Cycles: %d\n", stats.Cycles)
	fmt.Printf("Instructions Retired: %d\n", stats.Retired)
	fmt.Printf("CPI: %.2f\n", stats.CPI())
	fmt.Printf("Branches: %d  Mispredictions: %d  Accuracy: %.1f%%\n",
		stats.Branches, stats.Mispredictions, stats.PredictionAccuracy())
	fmt.Printf("Decode Stalls: %d  Dispatch Stalls: %d\n",
		stats.DecodeStalls, stats.DispatchStalls)
	printArchState(c.RegFile())
}

func printArchState(r *emu.RegFile) {
	fmt.Printf("Registers:\n")
	for i, v := range r.R {
		fmt.Printf("  R%-2d = %d\n", i, v)
	}
	fmt.Printf("Flags: Z=%t P=%t N=%t\n", r.Flags.Z, r.Flags.P, r.Flags.N)
}
