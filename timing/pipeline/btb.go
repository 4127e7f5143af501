package pipeline

import "github.com/sarchlab/apexsim/insts"

// PredictorState is the 2-bit saturating predictor of a BTB slot. The three
// states mirror the reference design's {0, 1, 11} encoding.
type PredictorState uint8

// Predictor states.
const (
	StronglyNotTaken PredictorState = iota
	WeaklyTaken
	StronglyTaken
)

// String returns a short name for the state.
func (s PredictorState) String() string {
	switch s {
	case StronglyNotTaken:
		return "SNT"
	case WeaklyTaken:
		return "WT"
	case StronglyTaken:
		return "ST"
	}
	return "?"
}

// InitialState returns the predictor reset state for a conditional branch:
// BNZ/BP start weakly taken, BZ/BNP start not taken.
func InitialState(op insts.Op) PredictorState {
	if insts.InitiallyTaken(op) {
		return WeaklyTaken
	}
	return StronglyNotTaken
}

// BTBSlot is one branch-target-buffer slot.
type BTBSlot struct {
	Valid bool
	// Tag is PC/4.
	Tag int
	// Target is the resolved branch target; HasTarget is set by the first
	// resolution. Fetch redirects only on slots with a known target.
	Target    int
	HasTarget bool
	// State is the 2-bit predictor.
	State PredictorState
}

// BTB is the fully-associative branch target buffer. Slots are kept in age
// order: slot 0 is the oldest. Insertion into a full buffer evicts slot 0,
// shifts the rest down, and places the new entry in the top slot.
type BTB struct {
	slots []BTBSlot
	count int
}

// NewBTB creates a branch target buffer with the given number of slots.
func NewBTB(slots int) *BTB {
	return &BTB{slots: make([]BTBSlot, slots)}
}

// Find returns the slot index whose tag matches pc.
func (b *BTB) Find(pc int) (int, bool) {
	tag := pc / 4
	for i := 0; i < b.count; i++ {
		if b.slots[i].Tag == tag {
			return i, true
		}
	}
	return -1, false
}

// Insert allocates a slot for an unseen branch with the opcode's initial
// predictor state. Existing entries are left untouched.
func (b *BTB) Insert(pc int, op insts.Op) {
	if _, ok := b.Find(pc); ok {
		return
	}
	slot := BTBSlot{Valid: true, Tag: pc / 4, State: InitialState(op)}
	if b.count == len(b.slots) {
		copy(b.slots, b.slots[1:])
		b.slots[len(b.slots)-1] = slot
		return
	}
	b.slots[b.count] = slot
	b.count++
}

// Predict evaluates the taken/not-taken prediction for a conditional branch
// occupying slot idx. Branches that start weakly taken (BNZ/BP) predict
// taken from weakly-taken upward; branches that start not taken (BZ/BNP)
// predict taken only when strongly taken. A slot with no resolved target
// cannot redirect fetch and predicts not taken.
func (b *BTB) Predict(op insts.Op, idx int) bool {
	s := &b.slots[idx]
	if !s.HasTarget {
		return false
	}
	if insts.InitiallyTaken(op) {
		return s.State >= WeaklyTaken
	}
	return s.State == StronglyTaken
}

// Target returns the slot's resolved target.
func (b *BTB) Target(idx int) int {
	return b.slots[idx].Target
}

// SetTarget records the resolved target for a slot.
func (b *BTB) SetTarget(idx, target int) {
	b.slots[idx].Target = target
	b.slots[idx].HasTarget = true
}

// Update moves the slot's 2-bit predictor toward the actual outcome.
func (b *BTB) Update(idx int, taken bool) {
	s := &b.slots[idx]
	if taken {
		if s.State < StronglyTaken {
			s.State++
		}
	} else {
		if s.State > StronglyNotTaken {
			s.State--
		}
	}
}

// State returns the slot's predictor state.
func (b *BTB) State(idx int) PredictorState {
	return b.slots[idx].State
}
