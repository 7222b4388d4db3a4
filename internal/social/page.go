package social

// Indicator is an opaque pagination cursor. Indicators form a singly linked
// chain back to the root through Previous.
type Indicator struct {
	ID       string
	Previous *Indicator
}

// NewIndicator returns the root cursor, which has no id.
func NewIndicator() *Indicator {
	return &Indicator{}
}

// NextIndicator wraps an upstream cursor with a back-link to current. An
// empty cursor means the upstream reported no further data and yields nil.
func NextIndicator(current *Indicator, next string) *Indicator {
	if next == "" {
		return nil
	}
	return &Indicator{ID: next, Previous: current}
}

// IsRoot reports whether the indicator points at the first page.
func (i *Indicator) IsRoot() bool {
	return i == nil || i.ID == ""
}

// Cursor returns the upstream cursor, or "" for the first page.
func (i *Indicator) Cursor() string {
	if i == nil {
		return ""
	}
	return i.ID
}

// Depth counts how many pages precede this indicator.
func (i *Indicator) Depth() int {
	n := 0
	for cur := i; cur != nil && cur.Previous != nil; cur = cur.Previous {
		n++
	}
	return n
}

// OrRoot returns i, or a fresh root indicator when i is nil.
func (i *Indicator) OrRoot() *Indicator {
	if i == nil {
		return NewIndicator()
	}
	return i
}

// Pageable is one page of an upstream listing.
type Pageable[T any] struct {
	Items         []T
	Indicator     *Indicator
	NextIndicator *Indicator
}

// NewPageable builds a page. Items keep upstream order; next must only be set
// when the upstream reported more data.
func NewPageable[T any](items []T, indicator, next *Indicator) *Pageable[T] {
	if items == nil {
		items = []T{}
	}
	return &Pageable[T]{
		Items:         items,
		Indicator:     indicator.OrRoot(),
		NextIndicator: next,
	}
}

// HasNext reports whether another page exists.
func (p *Pageable[T]) HasNext() bool {
	return p != nil && p.NextIndicator != nil
}
