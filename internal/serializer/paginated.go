package serializer

import "github.com/smallbiznis/kpi/pkg/db/pagination"

// Page wraps one page of list results.
type Page[T any] struct {
	Root    string  `json:"root"`
	Results []T     `json:"results"`
	Next    *string `json:"next"`
	HasMore bool    `json:"has_more"`
}

func NewPage[T any](l Linker, results []T, info pagination.PageInfo) Page[T] {
	if results == nil {
		results = []T{}
	}
	return Page[T]{
		Root:    l.Root(),
		Results: results,
		Next:    l.Next(info.NextPageToken),
		HasMore: info.HasMore,
	}
}
