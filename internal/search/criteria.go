package search

import (
	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/rdf"
)

// Criteria is the immutable set of optional filters of a triplestore search.
// An empty field means "no constraint". Build one with NewCriteria.
type Criteria struct {
	uri      rdf.IRI
	rdfType  rdf.IRI
	label    string
	language string
	parent   rdf.IRI
	page     page.Request
}

// Option sets one field of a Criteria under construction.
type Option func(*Criteria)

// WithURI fixes the entity identifier. It short-circuits pattern search for
// the identity: the query binds the identifier instead of projecting it.
func WithURI(uri string) Option {
	return func(c *Criteria) { c.uri = rdf.IRI(uri) }
}

// WithType restricts results to entities of exactly this type.
func WithType(rdfType string) Option {
	return func(c *Criteria) { c.rdfType = rdf.IRI(rdfType) }
}

// WithLabel keeps entities whose label contains label, ignoring case.
func WithLabel(label string) Option {
	return func(c *Criteria) { c.label = label }
}

// WithLanguage selects the language of type labels.
func WithLanguage(lang string) Option {
	return func(c *Criteria) { c.language = lang }
}

// WithParent keeps entities that are part of parent.
func WithParent(parent string) Option {
	return func(c *Criteria) { c.parent = rdf.IRI(parent) }
}

// WithPage selects the page to return.
func WithPage(number, size int) Option {
	return func(c *Criteria) { c.page = page.Request{Page: number, PageSize: size} }
}

// NewCriteria builds and validates criteria. The page defaults to
// page.Default().
func NewCriteria(opts ...Option) (Criteria, error) {
	c := Criteria{page: page.Default()}
	for _, opt := range opts {
		opt(&c)
	}

	iris := []struct {
		name string
		iri  rdf.IRI
	}{{"uri", c.uri}, {"rdfType", c.rdfType}, {"parent", c.parent}}
	for _, f := range iris {
		if f.iri == "" {
			continue
		}
		if err := rdf.ValidateIRI(string(f.iri)); err != nil {
			return Criteria{}, apperr.Validation(f.name, "%v", err)
		}
	}

	lang, err := rdf.ParseLanguage(c.language)
	if err != nil {
		return Criteria{}, apperr.Validation("language", "%v", err)
	}
	c.language = lang

	if err := c.page.Validate(); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

// URI returns the fixed identifier, or "".
func (c Criteria) URI() rdf.IRI { return c.uri }

// Type returns the fixed type, or "".
func (c Criteria) Type() rdf.IRI { return c.rdfType }

// Label returns the label substring, or "".
func (c Criteria) Label() string { return c.label }

// Language returns the requested type-label language, or "".
func (c Criteria) Language() string { return c.language }

// Parent returns the fixed parent, or "".
func (c Criteria) Parent() rdf.IRI { return c.parent }

// Page returns the requested page.
func (c Criteria) Page() page.Request { return c.page }
