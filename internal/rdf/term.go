package rdf

import (
	"fmt"
	"net/url"
	"strings"
)

// Term is a sealed interface representing an RDF term bound in a result row.
// Only IRI, Literal and BlankNode implement this.
type Term interface {
	rdfTerm() // Sealed - only these types implement it

	// Lexical returns the lexical form of the term (IRI string, literal
	// value or blank node label).
	Lexical() string
}

// IRI is an absolute internationalized resource identifier.
type IRI string

func (IRI) rdfTerm() {}

// Lexical returns the IRI string.
func (i IRI) Lexical() string { return string(i) }

// Literal is an RDF literal with an optional language tag or datatype.
// A literal carries either Lang or Datatype, never both.
type Literal struct {
	Value    string
	Lang     string
	Datatype IRI
}

func (Literal) rdfTerm() {}

// Lexical returns the literal value without tag or datatype.
func (l Literal) Lexical() string { return l.Value }

// BlankNode is an anonymous node, identified by a label scoped to one result.
type BlankNode string

func (BlankNode) rdfTerm() {}

// Lexical returns the blank node label.
func (b BlankNode) Lexical() string { return string(b) }

// NewLiteral creates a plain (untagged) literal.
func NewLiteral(v string) Literal {
	return Literal{Value: v}
}

// NewLangLiteral creates a language-tagged literal.
func NewLangLiteral(v, lang string) Literal {
	return Literal{Value: v, Lang: lang}
}

// NewTypedLiteral creates a literal with an explicit datatype.
func NewTypedLiteral(v string, datatype IRI) Literal {
	return Literal{Value: v, Datatype: datatype}
}

// iriForbidden lists characters that may not appear inside <...> in SPARQL.
const iriForbidden = "<>\"{}|^`\\"

// ValidateIRI checks that s can be written as an absolute IRI reference.
func ValidateIRI(s string) error {
	if s == "" {
		return fmt.Errorf("empty IRI")
	}
	for _, r := range s {
		if r <= 0x20 || strings.ContainsRune(iriForbidden, r) {
			return fmt.Errorf("IRI %q contains forbidden character %q", s, r)
		}
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("parse IRI %q: %w", s, err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("IRI %q is not absolute", s)
	}
	return nil
}
