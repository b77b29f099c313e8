package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/rdf"
	"github.com/niio972/phis-ws/internal/testutil"
)

const plot = "http://www.phenome-fppn.fr/m3p/arch/2017/c17000242"

func TestLabelsForURI(t *testing.T) {
	session := testutil.NewFakeSession().OnSelect([]rdf.Binding{
		{"label": rdf.NewLiteral("Plot B")},
		{"label": rdf.NewLangLiteral("Parcelle A", "fr")},
	}, "<"+plot+"> rdfs:label ?label")

	labels, err := LabelsForURI(context.Background(), session, plot)
	require.NoError(t, err)
	assert.Equal(t, []string{"Parcelle A", "Plot B"}, labels)
}

func TestLabelsForURI_NoLabel(t *testing.T) {
	session := testutil.NewFakeSession().OnSelect(nil, "rdfs:label")

	labels, err := LabelsForURI(context.Background(), session, plot)
	require.NoError(t, err)
	assert.NotNil(t, labels)
	assert.Empty(t, labels)
}

func TestLabelsForURI_Invalid(t *testing.T) {
	_, err := LabelsForURI(context.Background(), testutil.NewFakeSession(), "not an iri")
	assert.True(t, apperr.IsValidation(err))
}

func TestURIsAndLabelsByLabelAndType(t *testing.T) {
	session := testutil.NewFakeSession().OnSelect([]rdf.Binding{
		{"uri": rdf.IRI(plot), "label": rdf.NewLiteral("Trial plot 2")},
		{"uri": rdf.IRI(plot), "label": rdf.NewLiteral("Field trial 1")},
		{"uri": rdf.IRI("http://www.phenome-fppn.fr/m3p/arch/2017/c17000243"), "label": rdf.NewLiteral("TRIAL 3")},
	}, "oeso:ScientificObject", `REGEX(?label, "Trial", "i")`)

	got, err := URIsAndLabelsByLabelAndType(context.Background(), session, "Trial", rdf.OESOScientificObject)
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		plot: {"Field trial 1", "Trial plot 2"},
		"http://www.phenome-fppn.fr/m3p/arch/2017/c17000243": {"TRIAL 3"},
	}, got)
}

func TestURIsAndLabelsByLabelAndType_QuotesRegex(t *testing.T) {
	session := testutil.NewFakeSession().OnSelect(nil, `REGEX(?label, "plot \\(1\\)", "i")`)

	got, err := URIsAndLabelsByLabelAndType(context.Background(), session, "plot (1)", rdf.OESOScientificObject)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExistsAndIsVariable(t *testing.T) {
	variable := "http://www.phenome-fppn.fr/m3p/id/variables/v001"
	session := testutil.NewFakeSession().
		OnAsk(true, "<"+variable+"> rdf:type ?rdfType", "oeso:Variable").
		OnAsk(false, "oeso:Variable")

	ok, err := ExistsAndIsVariable(context.Background(), session, variable)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ExistsAndIsVariable(context.Background(), session, "http://www.phenome-fppn.fr/m3p/id/variables/v999")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExistsAndIsVariable_StoreFailure(t *testing.T) {
	session := testutil.NewFakeSession().OnAskError(errors.New("timeout"), "ASK")

	_, err := ExistsAndIsVariable(context.Background(), session, "http://example.org/v")
	assert.True(t, apperr.IsStoreFailure(err))
}
