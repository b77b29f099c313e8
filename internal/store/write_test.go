package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niio972/phis-ws/internal/apperr"
)

func TestCreateExperiments_ReturnsURIsInOrder(t *testing.T) {
	s := createTestStore(t)

	uris, err := s.CreateExperiments(context.Background(), []Experiment{testExperiment(2), testExperiment(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{testExperiment(2).URI, testExperiment(1).URI}, uris)
}

func TestCreateExperiments_MintsURI(t *testing.T) {
	s := createTestStore(t, WithURIPrefix("http://example.org/exp/"))
	ctx := context.Background()

	e := testExperiment(1)
	e.URI = ""
	uris, err := s.CreateExperiments(ctx, []Experiment{e, e})
	require.NoError(t, err)
	require.Len(t, uris, 2)

	for _, uri := range uris {
		assert.True(t, strings.HasPrefix(uri, "http://example.org/exp/"), uri)
	}
	assert.NotEqual(t, uris[0], uris[1])

	n, err := s.CountExperiments(ctx, ExperimentCriteria{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCreateExperiments_DuplicateIsValidationAndAtomic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateExperiments(ctx, []Experiment{testExperiment(1)})
	require.NoError(t, err)

	// The second experiment collides; the first must not be written either
	_, err = s.CreateExperiments(ctx, []Experiment{testExperiment(2), testExperiment(1)})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	n, err := s.CountExperiments(ctx, ExperimentCriteria{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateExperiments_Invalid(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name   string
		mutate func(*Experiment)
	}{
		{"bad uri", func(e *Experiment) { e.URI = "http://example.org/has space" }},
		{"missing start", func(e *Experiment) { e.StartDate = "" }},
		{"bad end", func(e *Experiment) { e.EndDate = "31/12/2017" }},
		{"end before start", func(e *Experiment) { e.EndDate = "2017-01-01" }},
		{"campaign not a year", func(e *Experiment) { e.Campaign = "17" }},
		{"bad project", func(e *Experiment) { e.Projects = []string{"not an iri"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testExperiment(1)
			tt.mutate(&e)

			_, err := s.CreateExperiments(context.Background(), []Experiment{e})
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err), err.Error())
		})
	}
}

func TestUpdateExperiments(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	e := testExperiment(1)
	e.Projects = []string{"http://example.org/p1"}
	_, err := s.CreateExperiments(ctx, []Experiment{e})
	require.NoError(t, err)

	e.Place = "Mauguio"
	e.Objective = "water deficit"
	e.Projects = []string{"http://example.org/p2"}
	require.NoError(t, s.UpdateExperiments(ctx, []Experiment{e}))

	got, err := s.GetExperiment(ctx, e.URI)
	require.NoError(t, err)
	assert.Equal(t, "Mauguio", got.Place)
	assert.Equal(t, "water deficit", got.Objective)
	assert.Equal(t, []string{"http://example.org/p2"}, got.Projects)
}

func TestUpdateExperiments_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	e := testExperiment(1)
	e.URI = ""
	err := s.UpdateExperiments(ctx, []Experiment{e})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	err = s.UpdateExperiments(ctx, []Experiment{testExperiment(9)})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestLinkVariables_ReplacesAndDeduplicates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedExperiments(t, s, 1)
	uri := testExperiment(1).URI

	require.NoError(t, s.LinkVariables(ctx, uri, []string{"http://example.org/v2", "http://example.org/v1"}))
	require.NoError(t, s.LinkVariables(ctx, uri, []string{"http://example.org/v3", "http://example.org/v3"}))

	got, err := s.ExperimentVariables(ctx, uri)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://example.org/v3"}, got)
}

func TestLinkSensors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedExperiments(t, s, 1)
	uri := testExperiment(1).URI

	require.NoError(t, s.LinkSensors(ctx, uri, []string{"http://example.org/s2", "http://example.org/s1"}))

	got, err := s.ExperimentSensors(ctx, uri)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://example.org/s1", "http://example.org/s2"}, got)

	require.NoError(t, s.LinkSensors(ctx, uri, nil))
	got, err = s.ExperimentSensors(ctx, uri)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLink_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.LinkSensors(ctx, "http://example.org/missing", []string{"http://example.org/s1"})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	seedExperiments(t, s, 1)
	err = s.LinkVariables(ctx, testExperiment(1).URI, []string{"bad iri"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestExperimentCriteria_Validate(t *testing.T) {
	assert.NoError(t, ExperimentCriteria{Page: firstPage(20)}.Validate())

	for _, c := range []ExperimentCriteria{
		{URI: "no scheme"},
		{ProjectURI: "http://example.org/<p>"},
		{StartDate: "2017-13-01"},
		{Campaign: "spring"},
		{Page: firstPage(-1)},
	} {
		err := c.Validate()
		require.Error(t, err, "%+v", c)
		assert.True(t, apperr.IsValidation(err), err.Error())
	}
}
