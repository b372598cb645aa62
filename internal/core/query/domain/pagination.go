package domain

// PaginationState is derived from a count and the requested page; never edit it by hand.
type PaginationState struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalCount  int64 `json:"totalCount"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPaginationState computes pagination metadata.
// A non-positive pageSize means a single page holding every row.
func NewPaginationState(currentPage, pageSize int, totalCount int64) PaginationState {
	if currentPage < 1 {
		currentPage = 1
	}
	if totalCount < 0 {
		totalCount = 0
	}

	var totalPages int
	switch {
	case pageSize > 0:
		totalPages = int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	case totalCount > 0:
		totalPages = 1
	}

	return PaginationState{
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNextPage: currentPage < totalPages,
		HasPrevPage: currentPage > 1,
	}
}

// Offset returns the number of rows preceding the current page.
func (p PaginationState) Offset() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.CurrentPage - 1) * p.PageSize
}
