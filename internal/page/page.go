// Package page implements the count-first, conditionally-fetch discipline
// shared by every search family, and the pagination metadata that wraps
// each result.
package page

import (
	"context"
	"fmt"
	"math"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/queryir"
)

const (
	// DefaultPageSize is used when the caller gives no page size.
	DefaultPageSize = 20

	// DefaultPage is the first page; pages are zero-based.
	DefaultPage = 0
)

// Request selects one page of a result set.
type Request struct {
	Page     int
	PageSize int
}

// Default returns the first page at the default size.
func Default() Request {
	return Request{Page: DefaultPage, PageSize: DefaultPageSize}
}

// Validate rejects negative page numbers and sizes, and pages whose offset
// does not fit in an int.
func (r Request) Validate() error {
	if r.Page < 0 {
		return apperr.Validation("page", "page must be >= 0, got %d", r.Page)
	}
	if r.PageSize < 0 {
		return apperr.Validation("pageSize", "pageSize must be >= 0, got %d", r.PageSize)
	}
	if r.PageSize > 0 && r.Page > math.MaxInt/r.PageSize {
		return apperr.Validation("page", "page %d at pageSize %d is out of range", r.Page, r.PageSize)
	}
	return nil
}

// Offset returns the index of the first row of the page.
func (r Request) Offset() int {
	return r.Page * r.PageSize
}

// Window returns the query window for the page.
func (r Request) Window() *queryir.Window {
	return queryir.Page(r.Page, r.PageSize)
}

// Outcome is the three-way result taxonomy of a search.
type Outcome string

const (
	Success      Outcome = "success"
	NoResults    Outcome = "no-results"
	StoreFailure Outcome = "store-failure"
)

// Result is one page of entities plus pagination metadata.
type Result[T any] struct {
	Data        []T
	PageSize    int
	CurrentPage int
	TotalCount  int
	TotalPages  int
	Outcome     Outcome
}

// Empty returns the no-results page for req. It is what an unsatisfiable
// filter produces: no store was consulted.
func Empty[T any](req Request) Result[T] {
	return Result[T]{
		Data:        []T{},
		PageSize:    req.PageSize,
		CurrentPage: req.Page,
		Outcome:     NoResults,
	}
}

// CountFunc runs the count query of a search.
type CountFunc func(ctx context.Context) (int, error)

// FetchFunc runs the paged search query.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Assemble runs count and then, only when needed, fetch.
//
// Outcomes:
//   - count fails: StoreFailure, fetch not called
//   - count is 0, or the page starts past the last row: NoResults, fetch not called
//   - pageSize is 0: Success with no data, fetch not called
//   - fetch fails, returns no rows, or more rows than remain on the page: StoreFailure
//   - otherwise Success
//
// The returned error is non-nil exactly when the outcome is StoreFailure.
func Assemble[T any](ctx context.Context, req Request, count CountFunc, fetch FetchFunc[T]) (Result[T], error) {
	res := Empty[T](req)

	total, err := count(ctx)
	if err != nil {
		res.Outcome = StoreFailure
		return res, asStoreFailure("count", err)
	}
	if total < 0 {
		res.Outcome = StoreFailure
		return res, apperr.StoreFailure("count", fmt.Errorf("negative count %d", total))
	}

	res.TotalCount = total
	res.TotalPages = totalPages(total, req.PageSize)

	if total == 0 || (req.PageSize > 0 && req.Offset() >= total) {
		return res, nil
	}
	if req.PageSize == 0 {
		res.Outcome = Success
		return res, nil
	}

	rows, err := fetch(ctx)
	if err != nil {
		res.Outcome = StoreFailure
		return res, asStoreFailure("fetch", err)
	}
	if len(rows) == 0 {
		res.Outcome = StoreFailure
		return res, apperr.StoreFailure("fetch", fmt.Errorf("count reported %d rows but fetch returned none", total))
	}
	if limit := min(total-req.Offset(), req.PageSize); len(rows) > limit {
		res.Outcome = StoreFailure
		return res, apperr.StoreFailure("fetch", fmt.Errorf("fetch returned %d rows, count allows at most %d on this page", len(rows), limit))
	}

	res.Data = rows
	res.Outcome = Success
	return res, nil
}

func asStoreFailure(op string, err error) error {
	if apperr.CodeOf(err) != "" {
		return err
	}
	return apperr.StoreFailure(op, err)
}

func totalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
