package types

// Filter represents query parameters for filtering, sorting and pagination.
type Filter struct {
	Search         string            `json:"search,omitempty"`
	Sort           map[string]string `json:"sort,omitempty"`
	Filter         map[string]any    `json:"filter,omitempty"`
	Limit          int               `json:"limit"`
	Offset         int               `json:"offset"`
	Page           int               `json:"page"`
	WithPagination bool              `json:"with_pagination"`
}

// Pagination represents pagination metadata.
type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}
