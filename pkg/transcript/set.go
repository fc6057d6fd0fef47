package transcript

// CapturedSet is an insertion-ordered collection of captured items keyed by
// node ID. It only grows: an ID is stored once and its first-seen values win.
type CapturedSet struct {
	index map[string]int
	items []CapturedItem
}

// NewCapturedSet creates an empty set.
func NewCapturedSet() *CapturedSet {
	return &CapturedSet{
		index: make(map[string]int),
		items: make([]CapturedItem, 0),
	}
}

// Add stores item under item.ID and assigns its insertion index. It returns
// false, leaving the set untouched, if the ID was already captured.
func (s *CapturedSet) Add(item CapturedItem) bool {
	if _, ok := s.index[item.ID]; ok {
		return false
	}
	item.InsertionIndex = len(s.items)
	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item)
	return true
}

// Has reports whether id was captured.
func (s *CapturedSet) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Get returns the item captured under id.
func (s *CapturedSet) Get(id string) (CapturedItem, bool) {
	i, ok := s.index[id]
	if !ok {
		return CapturedItem{}, false
	}
	return s.items[i], true
}

// Len returns the number of captured items.
func (s *CapturedSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the captured items in first-observed order.
func (s *CapturedSet) Items() []CapturedItem {
	out := make([]CapturedItem, len(s.items))
	copy(out, s.items)
	return out
}
