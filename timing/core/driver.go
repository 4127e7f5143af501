// Package core provides the cycle-accurate APEX core model.
package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Driver registers a Core as a ticking component on an Akita event engine.
// The engine schedules one tick event per cycle; once the core halts the
// driver stops making progress and the engine drains.
type Driver struct {
	*sim.TickingComponent

	core *Core
}

// NewDriver creates a driver for the core on the given engine.
func NewDriver(engine sim.Engine, core *Core) *Driver {
	d := &Driver{core: core}
	d.TickingComponent = sim.NewTickingComponent("CoreDriver", engine, 1*sim.GHz, d)
	return d
}

// Tick advances the core by one cycle. It reports whether the component
// made progress; returning false lets the engine run out of events.
func (d *Driver) Tick() bool {
	if d.core.Halted() {
		return false
	}
	d.core.Tick()
	return true
}

// RunWithEngine executes the core to completion on a serial event engine.
// Returns the runtime program error, if any.
func RunWithEngine(core *Core) error {
	engine := sim.NewSerialEngine()
	driver := NewDriver(engine, core)
	driver.TickLater()
	if err := engine.Run(); err != nil {
		return err
	}
	return core.Err()
}
