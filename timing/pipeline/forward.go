package pipeline

import "github.com/sarchlab/apexsim/emu"

// ForwardBus is the per-tick broadcast from completing functional units to
// issue-queue wakeup and dispatch operand capture. Producers publish a
// destination tag with its value; the integer and multiply units additionally
// publish condition codes keyed by the condition-code destination slot. The bus is
// transient: it is cleared at the start of every tick.
type ForwardBus struct {
	values map[int]int32
	flags  map[int]emu.Flags
}

// NewForwardBus creates an empty forwarding bus.
func NewForwardBus() *ForwardBus {
	b := &ForwardBus{}
	b.Reset()
	return b
}

// Reset clears the bus. Called once per tick before any stage runs.
func (b *ForwardBus) Reset() {
	b.values = map[int]int32{}
	b.flags = map[int]emu.Flags{}
}

// Publish broadcasts a physical-register result.
func (b *ForwardBus) Publish(tag int, value int32) {
	b.values[tag] = value
}

// Lookup returns the value broadcast for tag this tick.
func (b *ForwardBus) Lookup(tag int) (int32, bool) {
	v, ok := b.values[tag]
	return v, ok
}

// PublishFlags broadcasts condition codes for a condition-code slot.
func (b *ForwardBus) PublishFlags(tag int, f emu.Flags) {
	b.flags[tag] = f
}

// LookupFlags returns the condition codes broadcast for tag this tick.
func (b *ForwardBus) LookupFlags(tag int) (emu.Flags, bool) {
	f, ok := b.flags[tag]
	return f, ok
}
