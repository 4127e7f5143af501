// Package benchmarks provides APEX assembly kernels and the harness that
// validates the out-of-order pipeline against the in-order reference
// interpreter.
package benchmarks

// Benchmark is one APEX assembly kernel.
type Benchmark struct {
	Name        string
	Description string

	// Listing is the assembly source, one instruction per line.
	Listing []string

	// MaxCycles bounds the pipeline run as a hang guard.
	MaxCycles uint64
}

// GetMicrobenchmarks returns the standard kernel set. Each kernel targets a
// specific engine mechanism.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		storeLoadRoundTrip(),
		postIncrementWalk(),
		countedLoop(),
		branchMix(),
	}
}

// arithmeticSequential exercises independent ALU operations with no
// dependencies between them.
func arithmeticSequential() Benchmark {
	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "independent ALU operations across distinct registers",
		Listing: []string{
			"MOVC R1,#1",
			"MOVC R2,#2",
			"MOVC R3,#3",
			"MOVC R4,#4",
			"ADDL R5,R1,#10",
			"ADDL R6,R2,#10",
			"ADDL R7,R3,#10",
			"ADDL R8,R4,#10",
			"HALT",
		},
		MaxCycles: 200,
	}
}

// dependencyChain exercises back-to-back RAW dependencies resolved over the
// forwarding bus.
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "serial RAW chain through a single register",
		Listing: []string{
			"MOVC R1,#1",
			"ADDL R1,R1,#1",
			"ADDL R1,R1,#1",
			"ADDL R1,R1,#1",
			"ADDL R1,R1,#1",
			"ADDL R1,R1,#1",
			"ADDL R1,R1,#1",
			"HALT",
		},
		MaxCycles: 200,
	}
}

// storeLoadRoundTrip exercises the LSQ ordering gate and store-to-load
// forwarding.
func storeLoadRoundTrip() Benchmark {
	return Benchmark{
		Name:        "store_load_round_trip",
		Description: "stores followed by loads of the same addresses",
		Listing: []string{
			"MOVC R1,#11",
			"MOVC R2,#22",
			"MOVC R3,#10",
			"MOVC R4,#20",
			"STORE R1,R3,#0",
			"STORE R2,R4,#0",
			"LOAD R5,R3,#0",
			"LOAD R6,R4,#0",
			"ADD R7,R5,R6",
			"HALT",
		},
		MaxCycles: 300,
	}
}

// postIncrementWalk exercises LOADP/STOREP second destinations.
func postIncrementWalk() Benchmark {
	return Benchmark{
		Name:        "post_increment_walk",
		Description: "STOREP/LOADP walking a small buffer",
		Listing: []string{
			"MOVC R1,#7",
			"MOVC R2,#100",
			"MOVC R3,#100",
			"STOREP R1,R2,#0",
			"STOREP R1,R2,#0",
			"LOADP R4,R3,#0",
			"LOADP R5,R3,#0",
			"ADD R6,R4,R5",
			"HALT",
		},
		MaxCycles: 300,
	}
}

// countedLoop exercises BTB training: the backward branch is taken until
// the counter expires.
func countedLoop() Benchmark {
	return Benchmark{
		Name:        "counted_loop",
		Description: "counted loop with a backward conditional branch",
		Listing: []string{
			"MOVC R1,#0",
			"MOVC R2,#5",
			"ADDL R1,R1,#1",
			"CMP R1,R2",
			"BNZ #-8",
			"HALT",
		},
		MaxCycles: 500,
	}
}

// branchMix exercises both branch polarities plus an unconditional jump.
func branchMix() Benchmark {
	return Benchmark{
		Name:        "branch_mix",
		Description: "taken and not-taken conditional branches, JALR link",
		Listing: []string{
			"MOVC R1,#5",
			"CML R1,#5",
			"BNZ #8", // not taken: Z set
			"ADDL R2,R1,#0",
			"CMP R1,R2",
			"BZ #8", // taken: skips the next MOVC
			"MOVC R2,#99",
			"MOVC R3,#4036",
			"JALR R4,R3,#4", // jump to HALT, link in R4
			"MOVC R5,#123",  // skipped
			"HALT",
		},
		MaxCycles: 500,
	}
}
