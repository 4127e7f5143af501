package pipeline

import "github.com/sarchlab/apexsim/emu"

// CCReg is one condition-code rename slot.
type CCReg struct {
	// Allocated is true while the slot backs a live mapping.
	Allocated bool
	// Valid is true once the producing unit has written Flags.
	Valid bool
	// Flags is the slot content.
	Flags emu.Flags
}

// CCFile renames the condition codes. Every flag-writing instruction
// allocates a slot at decode; conditional branches read the slot that was
// current at their decode. Slot 0 starts as the current mapping holding the
// reset flags, so a branch with no in-flight flag producer is ready
// immediately.
type CCFile struct {
	regs    []CCReg
	current int
	free    *intRing
}

// NewCCFile creates a condition-code file with n slots.
func NewCCFile(n int) *CCFile {
	f := &CCFile{
		regs:    make([]CCReg, n),
		current: 0,
		free:    newIntRing(n),
	}
	f.regs[0] = CCReg{Allocated: true, Valid: true}
	for i := 1; i < n; i++ {
		f.free.push(i)
	}
	return f
}

// FreeCount returns the number of free slots.
func (f *CCFile) FreeCount() int {
	return f.free.len()
}

// AllocatedCount returns the number of allocated slots.
func (f *CCFile) AllocatedCount() int {
	n := 0
	for i := range f.regs {
		if f.regs[i].Allocated {
			n++
		}
	}
	return n
}

// Current returns the slot holding the newest in-flight (or retired)
// condition codes.
func (f *CCFile) Current() int {
	return f.current
}

// Allocate assigns a fresh slot as the current mapping and returns it with
// the displaced prior slot. Returns ok=false when no slot is free.
func (f *CCFile) Allocate() (tag, prev int, ok bool) {
	tag, ok = f.free.pop()
	if !ok {
		return -1, -1, false
	}
	prev = f.current
	f.regs[tag] = CCReg{Allocated: true}
	f.current = tag
	return tag, prev, true
}

// Release frees a displaced slot at retire.
func (f *CCFile) Release(tag int) {
	if tag < 0 {
		return
	}
	f.regs[tag] = CCReg{}
	f.free.push(tag)
}

// Rewind undoes one Allocate during recovery, restoring the prior mapping.
func (f *CCFile) Rewind(tag, prev int) {
	if tag < 0 {
		return
	}
	f.regs[tag] = CCReg{}
	f.current = prev
	f.free.push(tag)
}

// Value returns a slot's flags and whether they are valid.
func (f *CCFile) Value(tag int) (emu.Flags, bool) {
	if tag < 0 || tag >= len(f.regs) {
		return emu.Flags{}, false
	}
	r := f.regs[tag]
	return r.Flags, r.Valid
}

// SetValue records produced flags and marks the slot valid.
func (f *CCFile) SetValue(tag int, flags emu.Flags) {
	if tag < 0 || tag >= len(f.regs) {
		return
	}
	f.regs[tag].Flags = flags
	f.regs[tag].Valid = true
}
