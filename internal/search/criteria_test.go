package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/rdf"
)

func TestNewCriteria_Defaults(t *testing.T) {
	c, err := NewCriteria()
	require.NoError(t, err)

	assert.Empty(t, c.URI())
	assert.Empty(t, c.Type())
	assert.Empty(t, c.Label())
	assert.Empty(t, c.Language())
	assert.Empty(t, c.Parent())
	assert.Equal(t, page.Default(), c.Page())
}

func TestNewCriteria_AllFields(t *testing.T) {
	c, err := NewCriteria(
		WithURI(es2),
		WithType(greenhouse),
		WithLabel("Serre"),
		WithLanguage("en-US"),
		WithParent("http://www.phenome-fppn.fr/m3p"),
		WithPage(3, 50),
	)
	require.NoError(t, err)

	assert.Equal(t, rdf.IRI(es2), c.URI())
	assert.Equal(t, rdf.IRI(greenhouse), c.Type())
	assert.Equal(t, "Serre", c.Label())
	assert.Equal(t, "en-US", c.Language())
	assert.Equal(t, rdf.IRI("http://www.phenome-fppn.fr/m3p"), c.Parent())
	assert.Equal(t, page.Request{Page: 3, PageSize: 50}, c.Page())
}

func TestNewCriteria_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"relative uri", WithURI("es2")},
		{"uri with space", WithURI("http://example.org/a b")},
		{"type injection", WithType("http://example.org/T> . ?s ?p ?o")},
		{"parent not absolute", WithParent("/m3p")},
		{"bad language", WithLanguage("not a tag!")},
		{"negative page", WithPage(-1, 20)},
		{"negative page size", WithPage(0, -20)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCriteria(tc.opt)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}
