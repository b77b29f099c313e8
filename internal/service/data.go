package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/docstore"
	"github.com/niio972/phis-ws/internal/metrics"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/resolver"
)

// DataStore is the measurement side of the document store.
// *docstore.Store implements it.
type DataStore interface {
	CountData(ctx context.Context, f docstore.DataFilter) (int, error)
	FindData(ctx context.Context, f docstore.DataFilter, req page.Request) ([]docstore.Data, error)
}

// LabeledRef is an identifier with its label.
type LabeledRef struct {
	URI   string `json:"uri"`
	Label string `json:"label"`
}

// LabeledObject is a scientific object with all its labels.
type LabeledObject struct {
	URI    string   `json:"uri"`
	Labels []string `json:"labels"`
}

// DataRecord is a measurement enriched with the labels of what it refers to.
type DataRecord struct {
	URI        string         `json:"uri"`
	Provenance LabeledRef     `json:"provenance"`
	Object     *LabeledObject `json:"object,omitempty"`
	Variable   LabeledRef     `json:"variable"`
	Date       time.Time      `json:"date"`
	Value      any            `json:"value"`
}

// DataService searches the measurements of an experiment.
type DataService struct {
	resolver *resolver.Resolver
	data     DataStore
	obs      observer
}

// NewDataService creates the service. m may be nil.
func NewDataService(r *resolver.Resolver, d DataStore, m *metrics.Metrics, log zerolog.Logger) *DataService {
	return &DataService{
		resolver: r,
		data:     d,
		obs:      newObserver(FamilyData, m, log),
	}
}

// Search resolves the secondary filters of q, then counts and fetches one
// page of matching measurements and labels them.
//
// An unknown variable is a not-found error raised before the data store
// is touched. An unsatisfiable filter yields no results, also without
// touching the data store.
func (s *DataService) Search(ctx context.Context, q resolver.DataQuery) (res page.Result[DataRecord], err error) {
	start := time.Now()
	defer func() { s.obs.finish(start, res.Outcome, res.TotalCount, err) }()

	ix := s.resolver.NewLabelIndex()
	resolution, err := s.resolver.Resolve(ctx, q, ix)
	if err != nil {
		return page.Empty[DataRecord](q.Page), err
	}
	if resolution.Unsatisfiable {
		return page.Empty[DataRecord](q.Page), nil
	}

	count := func(ctx context.Context) (int, error) {
		return s.data.CountData(ctx, resolution.Filter)
	}
	fetch := func(ctx context.Context) ([]DataRecord, error) {
		data, err := s.data.FindData(ctx, resolution.Filter, q.Page)
		if err != nil {
			return nil, err
		}
		return enrich(ctx, ix, resolution, data)
	}
	return page.Assemble(ctx, q.Page, count, fetch)
}

// enrich labels each measurement through the request's label index, so
// each provenance and object is looked up once per search.
func enrich(ctx context.Context, ix *resolver.LabelIndex, r resolver.Resolution, data []docstore.Data) ([]DataRecord, error) {
	out := make([]DataRecord, 0, len(data))
	for _, d := range data {
		provLabel, err := ix.ProvenanceLabel(ctx, d.ProvenanceURI)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}

		rec := DataRecord{
			URI:        d.URI,
			Provenance: LabeledRef{URI: d.ProvenanceURI, Label: provLabel},
			Variable:   LabeledRef{URI: d.VariableURI, Label: r.VariableLabel},
			Date:       d.Date,
			Value:      d.Value,
		}
		if d.ObjectURI != "" {
			labels, err := ix.Labels(ctx, d.ObjectURI)
			if err != nil {
				return nil, err
			}
			rec.Object = &LabeledObject{URI: d.ObjectURI, Labels: labels}
		}
		out = append(out, rec)
	}
	return out, nil
}
