package docstore

import (
	"context"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/rdf"
)

// Provenance describes how a set of measurements was produced.
type Provenance struct {
	URI         string            `msgpack:"uri" json:"uri" yaml:"uri"`
	Label       string            `msgpack:"label" json:"label" yaml:"label"`
	Comment     string            `msgpack:"comment,omitempty" json:"comment,omitempty" yaml:"comment"`
	Experiments []string          `msgpack:"experiments" json:"experiments" yaml:"experiments"`
	Metadata    map[string]string `msgpack:"metadata,omitempty" json:"metadata,omitempty" yaml:"metadata"`
	CreatedAt   time.Time         `msgpack:"created_at" json:"createdAt" yaml:"createdAt"`
}

// HasExperiment reports whether the provenance is associated with exp.
func (p Provenance) HasExperiment(exp string) bool {
	for _, e := range p.Experiments {
		if e == exp {
			return true
		}
	}
	return false
}

// Validate checks identifiers and the required label.
func (p Provenance) Validate() error {
	if err := rdf.ValidateIRI(p.URI); err != nil {
		return apperr.Validation("uri", "%v", err)
	}
	if p.Label == "" {
		return apperr.Validation(p.URI, "label is required")
	}
	for _, e := range p.Experiments {
		if err := rdf.ValidateIRI(e); err != nil {
			return apperr.Validation("experiments", "%v", err)
		}
	}
	return nil
}

// ProvenanceFilter restricts a provenance enumeration. An empty Experiment
// matches every provenance.
type ProvenanceFilter struct {
	Experiment string
}

func (f ProvenanceFilter) matches(p Provenance) bool {
	return f.Experiment == "" || p.HasExperiment(f.Experiment)
}

// PutProvenances stores provenances in one transaction, replacing any
// stored under the same URI. A zero CreatedAt is set to now.
func (s *Store) PutProvenances(ctx context.Context, provs []Provenance) (err error) {
	defer func(start time.Time) { s.observe("put_provenances", start, err) }(time.Now())

	for _, p := range provs {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	now := s.now().UTC()
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, p := range provs {
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
			val, err := encode(p)
			if err != nil {
				return fmt.Errorf("encode provenance %s: %w", p.URI, err)
			}
			if err := txn.Set([]byte(provenancePrefix+p.URI), val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeErr("put provenances", err)
	}
	return nil
}

// PutProvenance stores one provenance.
func (s *Store) PutProvenance(ctx context.Context, p Provenance) error {
	return s.PutProvenances(ctx, []Provenance{p})
}

// FindProvenanceByID returns the provenance stored under uri.
func (s *Store) FindProvenanceByID(ctx context.Context, uri string) (p Provenance, err error) {
	defer func(start time.Time) { s.observe("find_provenance", start, err) }(time.Now())

	found, err := s.get(provenancePrefix+uri, &p)
	if err != nil {
		return Provenance{}, apperr.StoreFailure("get provenance", err)
	}
	if !found {
		return Provenance{}, apperr.NotFound(uri, "provenance not found")
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

// FindProvenanceLabel returns the label of the provenance stored under uri.
func (s *Store) FindProvenanceLabel(ctx context.Context, uri string) (string, error) {
	p, err := s.FindProvenanceByID(ctx, uri)
	if err != nil {
		return "", err
	}
	return p.Label, nil
}

// FindProvenancesByLabel returns the URI and label of every provenance
// whose label contains label, ignoring case.
func (s *Store) FindProvenancesByLabel(ctx context.Context, label string) (labels map[string]string, err error) {
	defer func(start time.Time) { s.observe("find_provenances_by_label", start, err) }(time.Now())

	labels = make(map[string]string)
	err = s.scan(ctx, provenancePrefix, func(val []byte) error {
		var p Provenance
		if err := decode(val, &p); err != nil {
			return fmt.Errorf("decode provenance: %w", err)
		}
		if rdf.ContainsFold(p.Label, label) {
			labels[p.URI] = p.Label
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("scan provenances", err)
	}
	return labels, nil
}

// FindProvenances returns the requested page of provenances matching f,
// ordered by URI.
func (s *Store) FindProvenances(ctx context.Context, f ProvenanceFilter, req page.Request) (provs []Provenance, err error) {
	defer func(start time.Time) { s.observe("find_provenances", start, err) }(time.Now())

	if err := req.Validate(); err != nil {
		return nil, err
	}

	var matched []Provenance
	err = s.scan(ctx, provenancePrefix, func(val []byte) error {
		var p Provenance
		if err := decode(val, &p); err != nil {
			return fmt.Errorf("decode provenance: %w", err)
		}
		p.CreatedAt = p.CreatedAt.UTC()
		if f.matches(p) {
			matched = append(matched, p)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("scan provenances", err)
	}

	// Keys are prefix+URI, so the scan yields URI order.
	return window(matched, req), nil
}

// window returns the page of items selected by req, never nil.
func window[T any](items []T, req page.Request) []T {
	off := req.Offset()
	if off < 0 || off >= len(items) || req.PageSize <= 0 {
		return []T{}
	}
	end := off + req.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[off:end]
}
