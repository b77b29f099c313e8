package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niio972/phis-ws/internal/rdf"
)

func TestValidate_WellFormedSearch(t *testing.T) {
	require.NoError(t, Validate(sampleSearch()))
}

func TestValidate_Problems(t *testing.T) {
	testCases := []struct {
		name    string
		query   GraphQuery
		problem string
	}{
		{
			name:    "empty where",
			query:   GraphQuery{Projections: []Projection{Var("uri")}},
			problem: "empty WHERE clause",
		},
		{
			name: "no projections",
			query: GraphQuery{
				Where: []Pattern{Triple{S: Var("uri"), P: Ref(rdf.RDFType), O: Var("t")}},
			},
			problem: "SELECT without projections",
		},
		{
			name: "unbound projection",
			query: GraphQuery{
				Projections: []Projection{Var("label")},
				Where:       []Pattern{Triple{S: Var("uri"), P: Ref(rdf.RDFType), O: Var("t")}},
			},
			problem: "projected variable ?label",
		},
		{
			name: "unbound filter variable",
			query: GraphQuery{
				Projections: []Projection{Var("uri")},
				Where: []Pattern{
					Triple{S: Var("uri"), P: Ref(rdf.RDFType), O: Var("t")},
					Filter{Expr: LangMatches{Var: "typeLabel", Range: "en"}},
				},
			},
			problem: "filtered variable ?typeLabel",
		},
		{
			name: "negative window",
			query: GraphQuery{
				Projections: []Projection{Var("uri")},
				Where:       []Pattern{Triple{S: Var("uri"), P: Ref(rdf.RDFType), O: Var("t")}},
				Window:      &Window{Limit: -1},
			},
			problem: "negative window",
		},
		{
			name: "paged count",
			query: GraphQuery{
				Projections: []Projection{CountDistinct{Of: Var("uri"), As: CountVar}},
				Where:       []Pattern{Triple{S: Var("uri"), P: Ref(rdf.RDFType), O: Var("t")}},
				Window:      Page(0, 10),
			},
			problem: "count query must not be paged",
		},
		{
			name: "ask with projections",
			query: GraphQuery{
				Form:        FormAsk,
				Projections: []Projection{Var("t")},
				Where:       []Pattern{Triple{S: Ref("http://example.org/v"), P: Ref(rdf.RDFType), O: Var("t")}},
			},
			problem: "ASK with projections",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.query)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tc.problem)
		})
	}
}

func TestValidate_OptionalBindsVariables(t *testing.T) {
	// Variables bound only inside OPTIONAL may still be projected
	q := GraphQuery{
		Projections: []Projection{Var("uri"), Var("isPartOf")},
		Where: []Pattern{
			Triple{S: Var("uri"), P: Ref(rdf.RDFType), O: Var("t")},
			Optional{Patterns: []Pattern{
				Triple{S: Var("uri"), P: Ref(rdf.OESOIsPartOf), O: Var("isPartOf")},
			}},
		},
	}
	assert.NoError(t, Validate(q))
}

func TestValidateSelect(t *testing.T) {
	sel := Select{
		From:     "experiments",
		Key:      "uri",
		Bindings: map[string]string{"uri": "uri"},
		Filter: And{Predicates: []Predicate{
			Contains{Field: "alias", Value: "trial"},
			InSelect{Field: "uri", Sub: Select{From: "", Key: "experiment_uri"}},
		}},
	}
	err := ValidateSelect(sel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select without table")

	sel.Filter = Contains{Field: "alias", Value: "trial"}
	assert.NoError(t, ValidateSelect(sel))
	assert.NoError(t, ValidateSelect(sel.Count()))
}

func TestSelectCount(t *testing.T) {
	sel := Select{
		From:     "experiments",
		Key:      "uri",
		Bindings: map[string]string{"uri": "uri"},
		Filter:   Equals{Field: "campaign", Value: "2018"},
		Window:   Page(1, 10),
	}
	count := sel.Count()

	assert.True(t, count.IsCount())
	assert.False(t, sel.IsCount())
	assert.Nil(t, count.Window)
	assert.Empty(t, count.Bindings)
	assert.Equal(t, sel.Filter, count.Filter)
	assert.Equal(t, "uri", count.PrimaryKey())
	assert.Equal(t, "id", Select{From: "t"}.PrimaryKey())
}
