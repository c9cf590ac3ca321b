package shared

// Filter carries paging, ordering and free-text search for list queries.
// OrderBy is matched against a per-repository whitelist; anything else falls
// back to the repository default.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// Paged reports whether both Page and PageSize are set
func (f Filter) Paged() bool {
	return f.Page > 0 && f.PageSize > 0
}

// Offset returns the number of rows to skip
func (f Filter) Offset() int {
	if !f.Paged() {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
