package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/metrics"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/store"
	fake "github.com/niio972/phis-ws/internal/testutil"
)

const variable = "http://www.phenome-fppn.fr/m3p/id/variables/v001"

func newExperimentService(t *testing.T, session *fake.FakeSession) (*ExperimentService, *metrics.Metrics) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "phis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m := metrics.New(prometheus.NewRegistry())
	return NewExperimentService(st, session, m, zerolog.Nop()), m
}

func experiment(n int) store.Experiment {
	return store.Experiment{
		URI:       fmt.Sprintf("http://www.phenome-fppn.fr/m3p/DIA2017-%02d", n),
		StartDate: "2017-06-15",
		EndDate:   "2017-12-31",
		Campaign:  "2017",
	}
}

func TestExperimentService_SearchPages(t *testing.T) {
	svc, m := newExperimentService(t, fake.NewFakeSession())
	ctx := context.Background()

	exps := make([]store.Experiment, 45)
	for i := range exps {
		exps[i] = experiment(i + 1)
	}
	_, err := svc.Create(ctx, exps)
	require.NoError(t, err)

	tests := []struct {
		page    int
		outcome page.Outcome
		rows    int
	}{
		{0, page.Success, 20},
		{1, page.Success, 20},
		{2, page.Success, 5},
		{3, page.NoResults, 0},
	}
	for _, tt := range tests {
		res, err := svc.Search(ctx, store.ExperimentCriteria{Page: page.Request{Page: tt.page, PageSize: 20}})
		require.NoError(t, err)
		assert.Equal(t, tt.outcome, res.Outcome, "page %d", tt.page)
		assert.Len(t, res.Data, tt.rows, "page %d", tt.page)
		assert.Equal(t, 45, res.TotalCount)
		assert.Equal(t, 3, res.TotalPages)
		assert.Equal(t, tt.page, res.CurrentPage)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues(FamilyExperiments, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues(FamilyExperiments, "no-results")))
}

func TestExperimentService_SearchInvalid(t *testing.T) {
	svc, m := newExperimentService(t, fake.NewFakeSession())

	res, err := svc.Search(context.Background(), store.ExperimentCriteria{Campaign: "spring"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, res.Data)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues(FamilyExperiments, "validation")))
}

func TestExperimentService_GetCreateUpdate(t *testing.T) {
	svc, _ := newExperimentService(t, fake.NewFakeSession())
	ctx := context.Background()

	_, err := svc.Create(ctx, nil)
	assert.True(t, apperr.IsValidation(err))

	e := experiment(1)
	uris, err := svc.Create(ctx, []store.Experiment{e})
	require.NoError(t, err)
	assert.Equal(t, []string{e.URI}, uris)

	e.Objective = "drought tolerance"
	require.NoError(t, svc.Update(ctx, []store.Experiment{e}))

	got, err := svc.Get(ctx, e.URI)
	require.NoError(t, err)
	assert.Equal(t, "drought tolerance", got.Objective)

	_, err = svc.Get(ctx, "not an iri")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Get(ctx, experiment(2).URI)
	assert.True(t, apperr.IsNotFound(err))

	assert.True(t, apperr.IsValidation(svc.Update(ctx, nil)))
}

func TestExperimentService_LinkVariablesChecksTriplestore(t *testing.T) {
	unknown := "http://www.phenome-fppn.fr/m3p/id/variables/v999"
	session := fake.NewFakeSession().
		OnAsk(true, "<"+variable+">").
		OnAsk(false, "<"+unknown+">")
	svc, _ := newExperimentService(t, session)
	ctx := context.Background()

	e := experiment(1)
	_, err := svc.Create(ctx, []store.Experiment{e})
	require.NoError(t, err)

	require.NoError(t, svc.LinkVariables(ctx, e.URI, []string{variable}))
	got, err := svc.Get(ctx, e.URI)
	require.NoError(t, err)
	assert.Equal(t, []string{variable}, got.Variables)

	err = svc.LinkVariables(ctx, e.URI, []string{variable, unknown})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	// The rejected call left the links untouched
	got, err = svc.Get(ctx, e.URI)
	require.NoError(t, err)
	assert.Equal(t, []string{variable}, got.Variables)
}

func TestExperimentService_LinkSensors(t *testing.T) {
	svc, _ := newExperimentService(t, fake.NewFakeSession())
	ctx := context.Background()

	err := svc.LinkSensors(ctx, experiment(1).URI, []string{"http://www.phenome-fppn.fr/m3p/s18001"})
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.Create(ctx, []store.Experiment{experiment(1)})
	require.NoError(t, err)
	require.NoError(t, svc.LinkSensors(ctx, experiment(1).URI, []string{"http://www.phenome-fppn.fr/m3p/s18001"}))
}
