package resolver

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/docstore"
	"github.com/niio972/phis-ws/internal/metrics"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/rdf"
	"github.com/niio972/phis-ws/internal/search"
	"github.com/niio972/phis-ws/internal/triplestore"
)

// DefaultProvenanceCap bounds the enumeration of an experiment's
// provenances when the request names none.
const DefaultProvenanceCap = 5000

// Reasons a resolution is unsatisfiable, also used as metric labels.
const (
	ReasonObjectLabel       = "object-label"
	ReasonProvenanceUnknown = "provenance-unknown"
	ReasonProvenanceForeign = "provenance-not-associated"
	ReasonProvenanceLabel   = "provenance-label"
	ReasonNoProvenances     = "experiment-without-provenance"
)

// Provenances is the provenance side of the document store.
// *docstore.Store implements it.
type Provenances interface {
	ProvenanceLabeler
	FindProvenanceByID(ctx context.Context, uri string) (docstore.Provenance, error)
	FindProvenancesByLabel(ctx context.Context, label string) (map[string]string, error)
	FindProvenances(ctx context.Context, f docstore.ProvenanceFilter, req page.Request) ([]docstore.Provenance, error)
}

// DataQuery is a measurement search within one experiment.
type DataQuery struct {
	Experiment      string
	Variable        string
	StartDate       string // YYYY-MM-DD or RFC 3339
	EndDate         string // YYYY-MM-DD or RFC 3339
	ObjectURI       string
	ObjectLabel     string
	ProvenanceURI   string
	ProvenanceLabel string
	DateSortAsc     bool
	Page            page.Request
}

// Validate checks identifiers and paging. Dates are checked when parsed.
func (q DataQuery) Validate() error {
	for _, f := range []struct {
		name     string
		iri      string
		required bool
	}{
		{"experimentUri", q.Experiment, true},
		{"variableUri", q.Variable, true},
		{"objectUri", q.ObjectURI, false},
		{"provenanceUri", q.ProvenanceURI, false},
	} {
		if f.iri == "" && !f.required {
			continue
		}
		if err := rdf.ValidateIRI(f.iri); err != nil {
			return apperr.Validation(f.name, "%v", err)
		}
	}
	return q.Page.Validate()
}

// Resolution is the outcome of resolving a DataQuery.
type Resolution struct {
	// Filter selects the primary-store records. Meaningless when
	// Unsatisfiable is set.
	Filter docstore.DataFilter

	// Unsatisfiable is set when a secondary filter matched nothing. The
	// search must then return no results without touching the data store.
	Unsatisfiable bool

	// Reason names the filter that could not be satisfied.
	Reason string

	// VariableLabel is the first label of the requested variable.
	VariableLabel string
}

// Resolver resolves measurement searches against the triplestore and the
// provenance store.
type Resolver struct {
	session     triplestore.Session
	provenances Provenances
	metrics     *metrics.Metrics
	log         zerolog.Logger
	provCap     int
}

// New creates a resolver. m may be nil.
func New(s triplestore.Session, p Provenances, m *metrics.Metrics, log zerolog.Logger) *Resolver {
	return &Resolver{session: s, provenances: p, metrics: m, log: log, provCap: DefaultProvenanceCap}
}

// SetProvenanceCap changes the provenance enumeration bound. Values below
// one are ignored.
func (r *Resolver) SetProvenanceCap(n int) {
	if n > 0 {
		r.provCap = n
	}
}

// NewLabelIndex returns a label index for one request over the resolver's
// stores.
func (r *Resolver) NewLabelIndex() *LabelIndex {
	return NewLabelIndex(r.session, r.provenances, r.metrics)
}

// Resolve validates q and resolves its secondary filters, recording every
// label it learns in ix.
//
// The variable is checked first: an unknown variable is a not-found error
// and nothing else is queried. Object and provenance filters are then
// resolved concurrently.
func (r *Resolver) Resolve(ctx context.Context, q DataQuery, ix *LabelIndex) (Resolution, error) {
	if err := q.Validate(); err != nil {
		return Resolution{}, err
	}
	start, err := docstore.ParseStart(q.StartDate)
	if err != nil {
		return Resolution{}, err
	}
	end, err := docstore.ParseEnd(q.EndDate)
	if err != nil {
		return Resolution{}, err
	}

	ok, err := search.ExistsAndIsVariable(ctx, r.session, q.Variable)
	if err != nil {
		return Resolution{}, err
	}
	if !ok {
		return Resolution{}, apperr.NotFound(q.Variable, "unknown variable URI")
	}
	variableLabel, err := ix.FirstLabel(ctx, q.Variable)
	if err != nil {
		return Resolution{}, err
	}

	var (
		objects, provenances  []string
		objReason, provReason string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		objects, objReason, err = r.resolveObjects(gctx, q, ix)
		return err
	})
	g.Go(func() error {
		var err error
		provenances, provReason, err = r.resolveProvenances(gctx, q, ix)
		return err
	})
	if err := g.Wait(); err != nil {
		return Resolution{}, err
	}

	res := Resolution{
		Filter: docstore.DataFilter{
			Variable:    q.Variable,
			Start:       start,
			End:         end,
			Objects:     objects,
			Provenances: provenances,
			DateSortAsc: q.DateSortAsc,
		},
		VariableLabel: variableLabel,
	}
	// Object reason wins so the reported reason does not depend on
	// goroutine scheduling.
	for _, reason := range []string{objReason, provReason} {
		if reason != "" {
			res.Unsatisfiable = true
			res.Reason = reason
			break
		}
	}
	if res.Unsatisfiable {
		r.metrics.RecordUnsatisfiable(res.Reason)
		r.log.Debug().
			Str("experiment", q.Experiment).
			Str("reason", res.Reason).
			Msg("data filter unsatisfiable")
	}
	return res, nil
}

// resolveObjects returns the object URIs to restrict to, nil for no
// restriction.
func (r *Resolver) resolveObjects(ctx context.Context, q DataQuery, ix *LabelIndex) ([]string, string, error) {
	switch {
	case q.ObjectURI != "":
		if _, err := ix.Labels(ctx, q.ObjectURI); err != nil {
			return nil, "", err
		}
		return []string{q.ObjectURI}, "", nil

	case q.ObjectLabel != "":
		found, err := search.URIsAndLabelsByLabelAndType(ctx, r.session, q.ObjectLabel, rdf.OESOScientificObject)
		if err != nil {
			return nil, "", err
		}
		if len(found) == 0 {
			return nil, ReasonObjectLabel, nil
		}
		uris := make([]string, 0, len(found))
		for uri, labels := range found {
			ix.PutLabels(uri, labels)
			uris = append(uris, uri)
		}
		sort.Strings(uris)
		return uris, "", nil
	}
	return nil, "", nil
}

// resolveProvenances returns the provenance URIs to restrict to. Every
// branch yields a non-empty list or a reason.
func (r *Resolver) resolveProvenances(ctx context.Context, q DataQuery, ix *LabelIndex) ([]string, string, error) {
	switch {
	case q.ProvenanceURI != "":
		p, err := r.provenances.FindProvenanceByID(ctx, q.ProvenanceURI)
		if apperr.IsNotFound(err) {
			return nil, ReasonProvenanceUnknown, nil
		}
		if err != nil {
			return nil, "", err
		}
		if !p.HasExperiment(q.Experiment) {
			return nil, ReasonProvenanceForeign, nil
		}
		ix.PutProvenanceLabel(p.URI, p.Label)
		return []string{p.URI}, "", nil

	case q.ProvenanceLabel != "":
		found, err := r.provenances.FindProvenancesByLabel(ctx, q.ProvenanceLabel)
		if err != nil {
			return nil, "", err
		}
		candidates := make([]string, 0, len(found))
		for uri := range found {
			candidates = append(candidates, uri)
		}
		sort.Strings(candidates)

		var uris []string
		for _, uri := range candidates {
			p, err := r.provenances.FindProvenanceByID(ctx, uri)
			if apperr.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, "", err
			}
			if p.HasExperiment(q.Experiment) {
				ix.PutProvenanceLabel(p.URI, p.Label)
				uris = append(uris, p.URI)
			}
		}
		if len(uris) == 0 {
			return nil, ReasonProvenanceLabel, nil
		}
		return uris, "", nil
	}

	provs, err := r.provenances.FindProvenances(ctx,
		docstore.ProvenanceFilter{Experiment: q.Experiment},
		page.Request{Page: 0, PageSize: r.provCap})
	if err != nil {
		return nil, "", err
	}
	if len(provs) == 0 {
		return nil, ReasonNoProvenances, nil
	}
	if len(provs) == r.provCap {
		r.log.Warn().
			Str("experiment", q.Experiment).
			Int("cap", r.provCap).
			Msg("provenance enumeration truncated")
	}
	uris := make([]string, len(provs))
	for i, p := range provs {
		ix.PutProvenanceLabel(p.URI, p.Label)
		uris[i] = p.URI
	}
	return uris, "", nil
}
