package triplestore

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/metrics"
	"github.com/niio972/phis-ws/internal/rdf"
)

const selectResponse = `{
  "head": {"vars": ["uri", "label", "count", "node"]},
  "results": {"bindings": [
    {
      "uri":   {"type": "uri", "value": "http://www.phenome-fppn.fr/m3p/es2"},
      "label": {"type": "literal", "value": "Serre 2", "xml:lang": "fr"},
      "count": {"type": "literal", "value": "4", "datatype": "http://www.w3.org/2001/XMLSchema#integer"},
      "node":  {"type": "bnode", "value": "b0"}
    },
    {
      "uri": {"type": "uri", "value": "http://www.phenome-fppn.fr/m3p/es3"}
    }
  ]}
}`

func newEndpoint(t *testing.T, status int, body string, seen *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, resultsMediaType, r.Header.Get("Accept"))
		assert.NoError(t, r.ParseForm())
		if seen != nil {
			*seen = r.PostForm.Get("query")
		}
		w.Header().Set("Content-Type", resultsMediaType)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Select(t *testing.T) {
	var seen string
	srv := newEndpoint(t, http.StatusOK, selectResponse, &seen)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	query := "SELECT ?uri WHERE { ?uri ?p ?o . }"
	rows, err := c.Select(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, query, seen)

	require.Len(t, rows, 2)
	assert.Equal(t, rdf.IRI("http://www.phenome-fppn.fr/m3p/es2"), rows[0]["uri"])
	assert.Equal(t, rdf.NewLangLiteral("Serre 2", "fr"), rows[0]["label"])
	assert.Equal(t, rdf.NewTypedLiteral("4", rdf.XSDInteger), rows[0]["count"])
	assert.Equal(t, rdf.BlankNode("b0"), rows[0]["node"])

	// Unbound variables are absent from the row
	assert.False(t, rows[1].Has("label"))
}

func TestClient_Ask(t *testing.T) {
	srv := newEndpoint(t, http.StatusOK, `{"head": {}, "boolean": true}`, nil)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	ok, err := c.Ask(context.Background(), "ASK WHERE { ?s ?p ?o . }")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rejected query", http.StatusBadRequest, "MALFORMED QUERY: Encountered \"}\""},
		{"server error", http.StatusInternalServerError, "repository unavailable"},
		{"garbage body", http.StatusOK, "<html>"},
		{"ask document for select", http.StatusOK, `{"head": {}, "boolean": false}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newEndpoint(t, tc.status, tc.body, nil)
			c, err := NewClient(srv.URL)
			require.NoError(t, err)

			rows, err := c.Select(context.Background(), "SELECT ?s WHERE { ?s ?p ?o . }")
			require.Error(t, err)
			assert.Nil(t, rows)
			assert.True(t, apperr.IsStoreFailure(err), "failures must never look like zero rows")
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url)
	require.NoError(t, err)

	_, err = c.Ask(context.Background(), "ASK WHERE { ?s ?p ?o . }")
	assert.True(t, apperr.IsStoreFailure(err))
}

func TestNewClient_InvalidEndpoint(t *testing.T) {
	_, err := NewClient("ftp://example.org/sparql")
	assert.Error(t, err)

	_, err = NewClient("::")
	assert.Error(t, err)
}

func TestWithTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	s := WithTimeout(c, 50*time.Millisecond)
	start := time.Now()
	_, err = s.Select(context.Background(), "SELECT ?s WHERE { ?s ?p ?o . }")
	require.Error(t, err)
	assert.True(t, apperr.IsStoreFailure(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestWithTimeout_NonPositiveIsIdentity(t *testing.T) {
	c, err := NewClient("http://localhost:7200/repositories/phis")
	require.NoError(t, err)
	assert.Same(t, c, WithTimeout(c, 0))
}

func TestLogged(t *testing.T) {
	srv := newEndpoint(t, http.StatusOK, selectResponse, nil)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	var buf bytes.Buffer
	s := Logged(c, zerolog.New(&buf).Level(zerolog.DebugLevel))

	rows, err := s.Select(context.Background(), "SELECT ?uri WHERE { ?uri ?p ?o . }")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Contains(t, buf.String(), `"message":"sparql select"`)
	assert.Contains(t, buf.String(), `"rows":2`)
}

func TestInstrumented(t *testing.T) {
	srv := newEndpoint(t, http.StatusOK, `{"head": {}, "boolean": false}`, nil)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	s := Instrumented(c, m)

	_, err = s.Ask(context.Background(), "ASK WHERE { ?s ?p ?o . }")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreCallsTotal.WithLabelValues("triplestore", "ask", "ok")))
}
