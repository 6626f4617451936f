package sdljoy

// Slots exposes the index allocator.
type Slots = slots

// NewSlots returns an empty allocator.
func NewSlots() *Slots { return newSlots() }

func (s *Slots) Acquire(id uint32) int { return s.acquire(id) }

func (s *Slots) Release(id uint32) (int, bool) { return s.release(id) }
