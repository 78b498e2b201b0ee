package tableview

// Meta describes the page a View returned, for footers and JSON output.
type Meta struct {
	Page        int  `json:"page"         yaml:"page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
}

// NewMeta builds page metadata. Page is reported 1-based.
func NewMeta(page PageSpec, total int) Meta {
	totalPages := TotalPages(total, page.Size)
	return Meta{
		Page:        page.Index + 1,
		PageSize:    page.Size,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasPrevious: page.Index > 0,
		HasNext:     page.Index+1 < totalPages,
	}
}
