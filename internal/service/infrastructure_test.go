package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/metrics"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/rdf"
	"github.com/niio972/phis-ws/internal/search"
	fake "github.com/niio972/phis-ws/internal/testutil"
)

func infraRow(uri string) rdf.Binding {
	return rdf.Binding{
		"uri":          rdf.IRI(uri),
		"rdfType":      rdf.IRI(rdf.NamespaceOESO + "Greenhouse"),
		"rdfTypeLabel": rdf.NewLangLiteral("Serre", "fr"),
		"label":        rdf.NewLiteral("PhenoArch"),
	}
}

func TestInfrastructureService_Search(t *testing.T) {
	session := fake.NewFakeSession().
		OnCount(1).
		OnSelect([]rdf.Binding{infraRow("http://www.phenome-fppn.fr/m3p/es2")}, "SELECT DISTINCT")
	m := metrics.New(prometheus.NewRegistry())
	svc := NewInfrastructureService(session, m, zerolog.Nop())

	c, err := search.NewCriteria(search.WithLanguage("fr"))
	require.NoError(t, err)

	res, err := svc.Search(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, page.Success, res.Outcome)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Serre", res.Data[0].RDFTypeLabel)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues(FamilyInfrastructures, "success")))
}

func TestInfrastructureService_StoreFailure(t *testing.T) {
	session := fake.NewFakeSession().OnSelectError(errors.New("connection refused"), "COUNT(")
	m := metrics.New(prometheus.NewRegistry())
	svc := NewInfrastructureService(session, m, zerolog.Nop())

	c, err := search.NewCriteria()
	require.NoError(t, err)

	res, err := svc.Search(context.Background(), c)
	require.Error(t, err)
	assert.True(t, apperr.IsStoreFailure(err))
	assert.Equal(t, page.StoreFailure, res.Outcome)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues(FamilyInfrastructures, "store-failure")))
}

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "success", outcomeLabel(page.Success, nil))
	assert.Equal(t, "no-results", outcomeLabel(page.NoResults, nil))
	assert.Equal(t, "store-failure", outcomeLabel(page.StoreFailure, errors.New("boom")))
	assert.Equal(t, "store-failure", outcomeLabel(page.StoreFailure, apperr.StoreFailure("count", errors.New("boom"))))
	assert.Equal(t, "not-found", outcomeLabel(page.NoResults, apperr.NotFound("x", "missing")))
	assert.Equal(t, "validation", outcomeLabel(page.NoResults, apperr.Validation("x", "bad")))
}

func TestInfrastructureService_MutationsUnsupported(t *testing.T) {
	session := fake.NewFakeSession()
	svc := NewInfrastructureService(session, nil, zerolog.Nop())
	ctx := context.Background()
	infs := []search.Infrastructure{{URI: "http://www.phenome-fppn.fr/m3p/es2"}}

	assert.True(t, apperr.IsUnsupported(svc.Create(ctx, infs)))
	assert.True(t, apperr.IsUnsupported(svc.Update(ctx, infs)))
	assert.True(t, apperr.IsUnsupported(svc.Delete(ctx, infs)))
	_, err := svc.Get(ctx, "http://www.phenome-fppn.fr/m3p/es2")
	assert.True(t, apperr.IsUnsupported(err))
	assert.Empty(t, session.Queries())
}
