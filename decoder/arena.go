package decoder

const pageSize = 1024

// Arena owns every hypothesis of one sentence. Hypotheses are addressed by index and
// never move, so pointers returned by At stay valid until Reset.
type Arena struct {
	pages [][]Hypothesis
	n     int
}

// Add stores h, assigns its ID and returns it.
func (a *Arena) Add(h Hypothesis) int {
	if a.n == len(a.pages)*pageSize {
		a.pages = append(a.pages, make([]Hypothesis, 0, pageSize))
	}
	h.ID = a.n
	page := &a.pages[len(a.pages)-1]
	*page = append(*page, h)
	a.n++
	return h.ID
}

// At returns the hypothesis with the given ID.
func (a *Arena) At(id int) *Hypothesis {
	return &a.pages[id/pageSize][id%pageSize]
}

// Len returns the number of stored hypotheses.
func (a *Arena) Len() int {
	return a.n
}

// Reset releases every hypothesis at once.
func (a *Arena) Reset() {
	a.pages = nil
	a.n = 0
}
