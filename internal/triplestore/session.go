// Package triplestore provides sessions for evaluating SPARQL queries
// against an RDF triplestore.
//
// Session is the narrow interface consumed by the query builders and the
// resolver. Client speaks the SPARQL 1.1 Protocol over HTTP; WithTimeout,
// Logged and Instrumented decorate any Session.
package triplestore

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/niio972/phis-ws/internal/metrics"
	"github.com/niio972/phis-ws/internal/rdf"
)

// Session evaluates SPARQL queries.
//
// Implementations must be safe for concurrent use: the resolver issues
// lookups from several goroutines of one request.
type Session interface {
	// Select evaluates a SELECT query and returns its rows.
	Select(ctx context.Context, query string) ([]rdf.Binding, error)

	// Ask evaluates an ASK query.
	Ask(ctx context.Context, query string) (bool, error)
}

// WithTimeout bounds every call on s by d. The underlying client may
// enforce its own limits; this one is explicit at the store-call boundary.
// A non-positive d returns s unchanged.
func WithTimeout(s Session, d time.Duration) Session {
	if d <= 0 {
		return s
	}
	return &timeoutSession{next: s, timeout: d}
}

type timeoutSession struct {
	next    Session
	timeout time.Duration
}

func (t *timeoutSession) Select(ctx context.Context, query string) ([]rdf.Binding, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Select(ctx, query)
}

func (t *timeoutSession) Ask(ctx context.Context, query string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Ask(ctx, query)
}

// Logged logs every query at debug level and every failure at error level.
func Logged(s Session, log zerolog.Logger) Session {
	return &loggedSession{next: s, log: log}
}

type loggedSession struct {
	next Session
	log  zerolog.Logger
}

func (l *loggedSession) Select(ctx context.Context, query string) ([]rdf.Binding, error) {
	start := time.Now()
	rows, err := l.next.Select(ctx, query)
	if err != nil {
		l.log.Error().Err(err).Str("query", query).Dur("duration", time.Since(start)).Msg("sparql select failed")
		return nil, err
	}
	l.log.Debug().Str("query", query).Int("rows", len(rows)).Dur("duration", time.Since(start)).Msg("sparql select")
	return rows, nil
}

func (l *loggedSession) Ask(ctx context.Context, query string) (bool, error) {
	start := time.Now()
	ok, err := l.next.Ask(ctx, query)
	if err != nil {
		l.log.Error().Err(err).Str("query", query).Dur("duration", time.Since(start)).Msg("sparql ask failed")
		return false, err
	}
	l.log.Debug().Str("query", query).Bool("result", ok).Dur("duration", time.Since(start)).Msg("sparql ask")
	return ok, nil
}

// Instrumented records the duration and status of every call in m.
func Instrumented(s Session, m *metrics.Metrics) Session {
	if m == nil {
		return s
	}
	return &instrumentedSession{next: s, metrics: m}
}

type instrumentedSession struct {
	next    Session
	metrics *metrics.Metrics
}

func (i *instrumentedSession) Select(ctx context.Context, query string) ([]rdf.Binding, error) {
	start := time.Now()
	rows, err := i.next.Select(ctx, query)
	i.metrics.RecordStoreCall("triplestore", "select", time.Since(start), err)
	return rows, err
}

func (i *instrumentedSession) Ask(ctx context.Context, query string) (bool, error) {
	start := time.Now()
	ok, err := i.next.Ask(ctx, query)
	i.metrics.RecordStoreCall("triplestore", "ask", time.Since(start), err)
	return ok, err
}
