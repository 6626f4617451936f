package sdljoy

// slots hands out small stable joypad indices for SDL instance IDs, which
// grow with every reconnect.
type slots struct {
	byID map[uint32]int
	used map[int]bool
}

func newSlots() *slots {
	return &slots{byID: map[uint32]int{}, used: map[int]bool{}}
}

// acquire returns the index of id, assigning the lowest free one.
func (s *slots) acquire(id uint32) int {
	if idx, ok := s.byID[id]; ok {
		return idx
	}
	idx := 0
	for s.used[idx] {
		idx++
	}
	s.byID[id] = idx
	s.used[idx] = true
	return idx
}

// release frees the index of id and returns it.
func (s *slots) release(id uint32) (int, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return 0, false
	}
	delete(s.byID, id)
	delete(s.used, idx)
	return idx, true
}
