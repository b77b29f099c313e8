package resolver

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/niio972/phis-ws/internal/metrics"
	"github.com/niio972/phis-ws/internal/search"
	"github.com/niio972/phis-ws/internal/triplestore"
)

// ProvenanceLabeler looks up provenance labels. *docstore.Store implements it.
type ProvenanceLabeler interface {
	FindProvenanceLabel(ctx context.Context, uri string) (string, error)
}

// LabelIndex memoizes label lookups for one request. Each identifier is
// looked up at most once, even when asked for concurrently.
//
// Thread-safety: All methods are safe for concurrent use.
type LabelIndex struct {
	session     triplestore.Session
	provenances ProvenanceLabeler
	metrics     *metrics.Metrics

	mu          sync.Mutex
	entityCache map[string][]string
	provCache   map[string]string
	group       singleflight.Group
}

// NewLabelIndex creates an empty index over the triplestore session and
// the provenance store. m may be nil.
func NewLabelIndex(s triplestore.Session, p ProvenanceLabeler, m *metrics.Metrics) *LabelIndex {
	return &LabelIndex{
		session:     s,
		provenances: p,
		metrics:     m,
		entityCache: make(map[string][]string),
		provCache:   make(map[string]string),
	}
}

// Labels returns the sorted labels of a triplestore entity (a scientific
// object or a variable).
func (ix *LabelIndex) Labels(ctx context.Context, uri string) ([]string, error) {
	labels, ok := ix.cachedLabels(uri)
	ix.metrics.RecordLabelLookup("entity", ok)
	if ok {
		return labels, nil
	}

	v, err, _ := ix.group.Do("entity\x00"+uri, func() (any, error) {
		if labels, ok := ix.cachedLabels(uri); ok {
			return labels, nil
		}
		labels, err := search.LabelsForURI(ctx, ix.session, uri)
		if err != nil {
			return nil, err
		}
		ix.PutLabels(uri, labels)
		return labels, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// FirstLabel returns the first label of uri in sorted order, or "" when it
// has none.
func (ix *LabelIndex) FirstLabel(ctx context.Context, uri string) (string, error) {
	labels, err := ix.Labels(ctx, uri)
	if err != nil || len(labels) == 0 {
		return "", err
	}
	return labels[0], nil
}

// ProvenanceLabel returns the label of a provenance.
func (ix *LabelIndex) ProvenanceLabel(ctx context.Context, uri string) (string, error) {
	label, ok := ix.cachedProvenanceLabel(uri)
	ix.metrics.RecordLabelLookup("provenance", ok)
	if ok {
		return label, nil
	}

	v, err, _ := ix.group.Do("provenance\x00"+uri, func() (any, error) {
		if label, ok := ix.cachedProvenanceLabel(uri); ok {
			return label, nil
		}
		label, err := ix.provenances.FindProvenanceLabel(ctx, uri)
		if err != nil {
			return nil, err
		}
		ix.PutProvenanceLabel(uri, label)
		return label, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// PutLabels records labels already known for an entity.
func (ix *LabelIndex) PutLabels(uri string, labels []string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entityCache[uri] = labels
}

// PutProvenanceLabel records a provenance label already known.
func (ix *LabelIndex) PutProvenanceLabel(uri, label string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.provCache[uri] = label
}

func (ix *LabelIndex) cachedLabels(uri string) ([]string, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	labels, ok := ix.entityCache[uri]
	return labels, ok
}

func (ix *LabelIndex) cachedProvenanceLabel(uri string) (string, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	label, ok := ix.provCache[uri]
	return label, ok
}
