package domain

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// MaxPage keeps Offset far from integer overflow; pages past it are empty anyway.
	MaxPage = 1_000_000
)

// PaginationParams carries page/limit values from the HTTP layer to the repositories.
// Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds PaginationParams from optional query values.
// Nil or non-positive values fall back to page=1, limit=DefaultPageLimit; limit is capped at MaxPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	return RawPagination(page, limit).Normalize(DefaultPageLimit, MaxPageLimit)
}

// RawPagination copies optional query values without applying any default,
// leaving zero for the ones that were not sent.
func RawPagination(page, limit *int) PaginationParams {
	var p PaginationParams
	if page != nil {
		p.Page = *page
	}
	if limit != nil {
		p.Limit = *limit
	}
	return p
}

// Normalize clamps Page to [1, MaxPage] and Limit to [1, maxLimit], using
// defaultLimit when Limit is not positive.
func (p PaginationParams) Normalize(defaultLimit, maxLimit int) PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	p.Page = min(p.Page, MaxPage)
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	p.Limit = min(p.Limit, maxLimit)
	return p
}

func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
