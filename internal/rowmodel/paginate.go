package rowmodel

// Pagination selects one page of top-level rows.
type Pagination struct {
	PageIndex int
	PageSize  int
}

// DefaultPageSize applies when no page size is configured.
const DefaultPageSize = 10

// Paginate keeps the top-level rows of the requested page; their children
// come along. A page past the end yields an empty model.
func Paginate(in *Model, p Pagination) *Model {
	if p.PageSize <= 0 {
		return in
	}
	start := p.PageIndex * p.PageSize
	if start < 0 || start >= len(in.Rows) {
		return newModel(nil)
	}
	end := start + p.PageSize
	if end > len(in.Rows) {
		end = len(in.Rows)
	}
	return newModel(in.Rows[start:end])
}

// PageCount is the number of pages needed for total rows; at least one.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
