package shared

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Pagination carries normalized paging inputs for listing queries.
type Pagination struct {
	Page    int
	PerPage int
}

// NewPagination clamps raw page inputs: page starts at 1 and the per-page
// size is capped so a caller cannot pull the whole table in one request.
func NewPagination(page, perPage int) Pagination {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page <= 0 {
		page = 1
	}
	return Pagination{Page: page, PerPage: perPage}
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
