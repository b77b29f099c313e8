package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niio972/phis-ws/internal/metrics"
)

const (
	expA = "http://www.phenome-fppn.fr/m3p/DIA2017-1"
	expB = "http://www.phenome-fppn.fr/m3p/DIA2017-2"
	varA = "http://www.phenome-fppn.fr/m3p/id/variables/v001"
	varB = "http://www.phenome-fppn.fr/m3p/id/variables/v002"
	objA = "http://www.phenome-fppn.fr/m3p/arch/2017/c17000001"
	objB = "http://www.phenome-fppn.fr/m3p/arch/2017/c17000002"
)

func newTestStore(t *testing.T, opts ...func(*Options)) *Store {
	t.Helper()

	o := Options{InMemory: true}
	for _, opt := range opts {
		opt(&o)
	}
	s, err := Open(o)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func provURI(n string) string {
	return "http://www.phenome-fppn.fr/m3p/pv" + n
}

func day(d int) time.Time {
	return time.Date(2017, time.June, d, 10, 0, 0, 0, time.UTC)
}

func TestOpen_RequiresDir(t *testing.T) {
	_, err := Open(Options{})
	assert.Error(t, err)
}

func TestOpen_OnDiskPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s.PutProvenance(ctx, Provenance{URI: provURI("1"), Label: "phenoarch"}))
	require.NoError(t, s.Close())

	s, err = Open(Options{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	label, err := s.FindProvenanceLabel(ctx, provURI("1"))
	require.NoError(t, err)
	assert.Equal(t, "phenoarch", label)
}

func TestStore_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s := newTestStore(t, func(o *Options) { o.Metrics = m })

	_, err := s.FindProvenanceByID(context.Background(), provURI("missing"))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreCallsTotal.WithLabelValues("badger", "find_provenance", "error")))
}

func TestClose_NilDB(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())
}
