package shared

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	CompanyID *int64
	GroupID   *int64
	IsActive  *bool
}

// Offset converts page/limit into a SQL offset, clamped at zero.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}
