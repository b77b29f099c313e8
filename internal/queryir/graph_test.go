package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niio972/phis-ws/internal/rdf"
)

func sampleSearch() GraphQuery {
	return GraphQuery{
		Distinct:    true,
		Projections: []Projection{Var("uri"), Var("label")},
		Where: []Pattern{
			Triple{S: Var("uri"), P: Ref(rdf.RDFType), O: Ref(rdf.OESOInfrastructure)},
			Optional{Patterns: []Pattern{
				Triple{S: Var("uri"), P: Ref(rdf.RDFSLabel), O: Var("label")},
			}},
			Filter{Expr: Regex{Var: "label", Pattern: "field", Flags: "i"}},
		},
		GroupBy: []Var{"uri"},
		Window:  Page(2, 20),
	}
}

func TestCount_StripsProjectionAndPaging(t *testing.T) {
	search := sampleSearch()
	count := search.Count(Var("uri"))

	assert.False(t, count.Distinct)
	assert.Nil(t, count.Window)
	assert.Empty(t, count.GroupBy)
	require.Len(t, count.Projections, 1)
	assert.Equal(t, CountDistinct{Of: Var("uri"), As: CountVar}, count.Projections[0])

	// Same predicate: the WHERE clause is carried over unchanged
	assert.Equal(t, search.Where, count.Where)
	require.NoError(t, Validate(count))
}

func TestCount_DoesNotAliasSearch(t *testing.T) {
	search := sampleSearch()
	count := search.Count(Var("uri"))

	count.Where[0] = Filter{Expr: LangIsEmpty{Var: "label"}}
	_, stillTriple := search.Where[0].(Triple)
	assert.True(t, stillTriple, "mutating the count query must not touch the search query")
}

func TestCount_ConstantPrimary(t *testing.T) {
	search := sampleSearch()
	count := search.Count(Ref("http://example.org/infra/1"))

	require.Len(t, count.Projections, 1)
	assert.Equal(t, Ref("http://example.org/infra/1"), count.Projections[0].(CountDistinct).Of)
	require.NoError(t, Validate(count))
}

func TestPage(t *testing.T) {
	assert.Equal(t, &Window{Limit: 20, Offset: 0}, Page(0, 20))
	assert.Equal(t, &Window{Limit: 20, Offset: 40}, Page(2, 20))
	assert.Equal(t, &Window{Limit: 0, Offset: 0}, Page(3, 0))
}
