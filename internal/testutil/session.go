package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/niio972/phis-ws/internal/rdf"
)

// FakeSession is a scripted triplestore session.
//
// Each rule names the query fragments it answers; a query is answered by
// the first rule whose fragments all occur in the query text. A query no
// rule answers fails, so tests notice unexpected store access.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeSession struct {
	mu      sync.Mutex
	selects []selectRule
	asks    []askRule
	queries []string
}

type selectRule struct {
	fragments []string
	rows      []rdf.Binding
	err       error
}

type askRule struct {
	fragments []string
	result    bool
	err       error
}

// NewFakeSession creates a session with no rules.
func NewFakeSession() *FakeSession {
	return &FakeSession{}
}

// OnSelect answers SELECT queries containing every fragment with rows.
func (f *FakeSession) OnSelect(rows []rdf.Binding, fragments ...string) *FakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects = append(f.selects, selectRule{fragments: fragments, rows: rows})
	return f
}

// OnSelectError fails SELECT queries containing every fragment with err.
func (f *FakeSession) OnSelectError(err error, fragments ...string) *FakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects = append(f.selects, selectRule{fragments: fragments, err: err})
	return f
}

// OnCount answers count queries containing every fragment with n.
func (f *FakeSession) OnCount(n int, fragments ...string) *FakeSession {
	row := rdf.Binding{"count": rdf.NewTypedLiteral(fmt.Sprint(n), rdf.XSDInteger)}
	return f.OnSelect([]rdf.Binding{row}, append([]string{"COUNT(DISTINCT"}, fragments...)...)
}

// OnAsk answers ASK queries containing every fragment with result.
func (f *FakeSession) OnAsk(result bool, fragments ...string) *FakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asks = append(f.asks, askRule{fragments: fragments, result: result})
	return f
}

// OnAskError fails ASK queries containing every fragment with err.
func (f *FakeSession) OnAskError(err error, fragments ...string) *FakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asks = append(f.asks, askRule{fragments: fragments, err: err})
	return f
}

// Select implements triplestore.Session.
func (f *FakeSession) Select(ctx context.Context, query string) ([]rdf.Binding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, r := range f.selects {
		if containsAll(query, r.fragments) {
			return r.rows, r.err
		}
	}
	return nil, fmt.Errorf("fake session: no rule answers query:\n%s", query)
}

// Ask implements triplestore.Session.
func (f *FakeSession) Ask(ctx context.Context, query string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for _, r := range f.asks {
		if containsAll(query, r.fragments) {
			return r.result, r.err
		}
	}
	return false, fmt.Errorf("fake session: no rule answers query:\n%s", query)
}

// Queries returns every query received, in order.
func (f *FakeSession) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.queries))
	copy(out, f.queries)
	return out
}

// CountQueries returns how many received queries contain fragment.
func (f *FakeSession) CountQueries(fragment string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.queries {
		if strings.Contains(q, fragment) {
			n++
		}
	}
	return n
}

func containsAll(s string, fragments []string) bool {
	for _, frag := range fragments {
		if !strings.Contains(s, frag) {
			return false
		}
	}
	return true
}
