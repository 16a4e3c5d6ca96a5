package domain

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Page is a normalised 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps the requested page and limit into the accepted range.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

// Offset returns the row offset of the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Pagination describes a page of a larger result set.
type Pagination struct {
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// Paginate builds the pagination block for total matching rows.
func (p Page) Paginate(total int64) Pagination {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{Page: p.Number, Limit: p.Limit, Total: total, TotalPages: pages}
}
