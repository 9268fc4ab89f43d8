// Package pagination implements page-number offset pagination.
package pagination

const (
	DefaultPageSize = 20
	MaxPageSize     = 250
)

type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20" validate:"gte=1,lte=250"` // Min 1, Max 250
}

// Normalize clamps the page to >= 1 and the page size into range.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset is the number of items before the requested page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// BuildPageInfo computes page metadata for a filtered total.
func BuildPageInfo(page Pagination, totalCount int) PageInfo {
	page = page.Normalize()
	totalPages := totalCount / page.PageSize
	if totalCount%page.PageSize != 0 {
		totalPages++
	}
	return PageInfo{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// Slice returns the requested page of data. An out-of-range page yields an
// empty slice, not an error.
func Slice[T any](data []T, page Pagination) []T {
	page = page.Normalize()
	start := page.Offset()
	if start >= len(data) {
		return []T{}
	}
	end := start + page.PageSize
	if end > len(data) {
		end = len(data)
	}
	return data[start:end]
}
