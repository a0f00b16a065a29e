package storage

const (
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = 1_000_000
)

// Page selects a window of a listing ordered by primary id. Page is 1-based.
type Page struct {
	Limit int
	Page  int
}

// NewPage clamps limit and page into their valid ranges, applying defaults for zero values.
func NewPage(limit, page int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	return Page{Limit: limit, Page: page}
}

// Offset is the number of rows skipped before the page.
func (p Page) Offset() int {
	p = NewPage(p.Limit, p.Page)
	return (p.Page - 1) * p.Limit
}

// Size is the clamped row limit.
func (p Page) Size() int {
	return NewPage(p.Limit, p.Page).Limit
}
