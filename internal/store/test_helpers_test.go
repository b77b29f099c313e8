package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/niio972/phis-ws/internal/page"
)

const testPrefix = "http://www.phenome-fppn.fr/m3p/"

// createTestStore opens a store in a temp dir, closed at test end.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testExperiment(n int) Experiment {
	return Experiment{
		URI:       fmt.Sprintf("%sDIA2017-%02d", testPrefix, n),
		StartDate: "2017-06-15",
		EndDate:   "2017-12-31",
		Campaign:  "2017",
		Field:     "field " + fmt.Sprint(n),
		Place:     "Montpellier",
	}
}

// seedExperiments stores n experiments built by testExperiment.
func seedExperiments(t *testing.T, s *Store, n int) {
	t.Helper()

	exps := make([]Experiment, n)
	for i := range exps {
		exps[i] = testExperiment(i + 1)
	}
	_, err := s.CreateExperiments(context.Background(), exps)
	require.NoError(t, err)
}

func firstPage(size int) page.Request {
	return page.Request{Page: 0, PageSize: size}
}
