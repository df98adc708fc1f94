package game

// History is the ordered, duplicate-free list of guessed character ids.
// It is stored oldest-first; IDs reports newest-first, as players see it.
// A nil *History is empty.
type History struct {
	ids  []string
	seen map[string]struct{}
}

func NewHistory() *History {
	return &History{seen: make(map[string]struct{})}
}

func (h *History) Contains(id string) bool {
	if h == nil {
		return false
	}
	_, ok := h.seen[id]
	return ok
}

// Add appends id. It reports false, leaving h unchanged, if id is present.
func (h *History) Add(id string) bool {
	if h.seen == nil {
		h.seen = make(map[string]struct{})
	}
	if _, ok := h.seen[id]; ok {
		return false
	}
	h.seen[id] = struct{}{}
	h.ids = append(h.ids, id)
	return true
}

func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.ids)
}

// IDs returns the guessed ids, most recent first.
func (h *History) IDs() []string {
	if h == nil {
		return nil
	}
	out := make([]string, len(h.ids))
	for i, id := range h.ids {
		out[len(h.ids)-1-i] = id
	}
	return out
}
