// Package search builds and runs triplestore searches.
//
// Each entity family is a Family value: a pure search builder, the count
// builder derived from it, and a row materializer. Run drives any family
// through the count-first, conditionally-fetch discipline of package page.
// The lookups in lookup.go serve the cross-store resolver.
package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/queryir"
	"github.com/niio972/phis-ws/internal/querysparql"
	"github.com/niio972/phis-ws/internal/rdf"
	"github.com/niio972/phis-ws/internal/triplestore"
)

// Family is the capability set of one searchable entity family.
//
// BuildSearch and BuildCount are pure functions of the criteria; BuildCount
// must keep the graph pattern of BuildSearch so count and fetch agree.
type Family[T any] interface {
	// Name identifies the family in logs and metrics.
	Name() string

	// BuildSearch returns the paged search query.
	BuildSearch(c Criteria) queryir.GraphQuery

	// BuildCount returns the count query.
	BuildCount(c Criteria) queryir.GraphQuery

	// Materialize converts one result row to an entity.
	Materialize(row rdf.Binding, c Criteria) (T, error)

	// Key returns the identifier count distinguishes entities by.
	Key(entity T) string
}

// Run counts, then fetches and materializes one page of family members.
func Run[T any](ctx context.Context, s triplestore.Session, f Family[T], c Criteria) (page.Result[T], error) {
	count := func(ctx context.Context) (int, error) {
		return Count(ctx, s, f, c)
	}
	fetch := func(ctx context.Context) ([]T, error) {
		return Fetch(ctx, s, f, c)
	}
	return page.Assemble(ctx, c.Page(), count, fetch)
}

// Count runs the count query of f.
func Count[T any](ctx context.Context, s triplestore.Session, f Family[T], c Criteria) (int, error) {
	query, err := querysparql.Compile(f.BuildCount(c))
	if err != nil {
		return 0, fmt.Errorf("build %s count: %w", f.Name(), err)
	}
	rows, err := s.Select(ctx, query)
	if err != nil {
		return 0, storeFailure("count "+f.Name(), err)
	}
	return countFromRows(rows)
}

// Fetch runs the search query of f and materializes every row. Rows that
// repeat an entity already seen, one per extra OPTIONAL binding, are
// dropped; the first row wins.
func Fetch[T any](ctx context.Context, s triplestore.Session, f Family[T], c Criteria) ([]T, error) {
	query, err := querysparql.Compile(f.BuildSearch(c))
	if err != nil {
		return nil, fmt.Errorf("build %s search: %w", f.Name(), err)
	}
	rows, err := s.Select(ctx, query)
	if err != nil {
		return nil, storeFailure("search "+f.Name(), err)
	}

	out := make([]T, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		entity, err := f.Materialize(row, c)
		if err != nil {
			return nil, err
		}
		key := f.Key(entity)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entity)
	}
	return out, nil
}

// countFromRows reads ?count from the single row of a count query. An
// aggregate without a group always yields one row; no row at all is read
// as zero.
func countFromRows(rows []rdf.Binding) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	raw, ok := rows[0].String(string(queryir.CountVar))
	if !ok {
		return 0, apperr.StoreFailure("count", fmt.Errorf("count row has no ?%s", queryir.CountVar))
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.StoreFailure("count", fmt.Errorf("parse count %q: %w", raw, err))
	}
	return n, nil
}

func storeFailure(op string, err error) error {
	if apperr.CodeOf(err) != "" {
		return err
	}
	return apperr.StoreFailure(op, err)
}
