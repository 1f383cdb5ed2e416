package query

import "github.com/samber/lo"

// Page is one window of a filtered list.
type Page[T any] struct {
	Items []T
	// Total counts every record matching the filters, ignoring the window.
	Total int64
	Page  int
	Pages int
}

// NewPage assembles a page for the items fetched with q.
func NewPage[T any](items []T, total int64, q Query) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items: items,
		Total: total,
		Page:  PageNumber(q.Skip, q.Limit),
		Pages: PageCount(total, q.Limit),
	}
}

// PageNumber returns the 1-based page the skip offset falls on.
func PageNumber(skip, limit int) int {
	if limit <= 0 {
		return 1
	}
	return skip/limit + 1
}

// PageCount returns ceil(total/limit), and 1 for an empty result.
func PageCount(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}
	l := int64(limit)
	return int((total + l - 1) / l)
}

// MapPage converts the items of a page, keeping its metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	return Page[U]{
		Items: lo.Map(p.Items, func(item T, _ int) U { return fn(item) }),
		Total: p.Total,
		Page:  p.Page,
		Pages: p.Pages,
	}
}
