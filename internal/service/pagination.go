package service

// Pagination describes one page of a listing.
type Pagination struct {
	Page    int `json:"current_page"`
	Pages   int `json:"total_pages"`
	Total   int `json:"total_bookmarks"`
	PerPage int `json:"per_page"`
	Start   int `json:"-"`
	End     int `json:"-"`
}

// NewPagination computes the page window for total items. page is clamped
// into [1, pages].
func NewPagination(page, total, perPage int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	pages := (total + perPage - 1) / perPage
	if page > pages && pages > 0 {
		page = pages
	} else if page < 1 || pages == 0 {
		page = 1
	}

	start := min(max((page-1)*perPage, 0), total)
	end := min(start+perPage, total)

	return Pagination{
		Page:    page,
		Pages:   pages,
		Total:   total,
		PerPage: perPage,
		Start:   start,
		End:     end,
	}
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.Pages }
func (p Pagination) Prev() int     { return max(p.Page-1, 1) }
func (p Pagination) Next() int     { return min(p.Page+1, max(p.Pages, 1)) }
