package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/rdf"
)

// pageParams reads page and pageSize, defaulting to the first page of
// size rows.
func pageParams(q url.Values, size int) (page.Request, error) {
	req := page.Request{Page: page.DefaultPage, PageSize: size}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &req.Page},
		{"pageSize", &req.PageSize},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page.Request{}, apperr.Validation(p.name, "%s %q is not an integer", p.name, raw)
		}
		*p.dst = n
	}
	if err := req.Validate(); err != nil {
		return page.Request{}, err
	}
	return req, nil
}

// boolParam reads an optional boolean, false when absent.
func boolParam(q url.Values, name string) (bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Validation(name, "%s %q is not a boolean", name, raw)
	}
	return b, nil
}

// pathIRI returns the IRI carried by a path wildcard. The mux unescapes
// segments, so "http:%2F%2Fexample.org%2Fx" arrives as one IRI.
func pathIRI(r *http.Request, name string) (string, error) {
	iri := r.PathValue(name)
	if err := rdf.ValidateIRI(iri); err != nil {
		return "", apperr.Validation(name, "%v", err)
	}
	return iri, nil
}
