// Package rdf provides the RDF term and binding types shared by the query
// builders, the triplestore session and the entity materializers.
//
// This package contains value types and small matching helpers only. It
// imports nothing internal, so every other package can depend on it without
// cycles.
//
// Key design constraints:
//   - Term is sealed: only IRI, Literal and BlankNode implement it
//   - A Binding is one result row; absence of a name means the variable was
//     not bound (an OPTIONAL block that did not match), never a zero value
//   - Language matching follows SPARQL LANGMATCHES (RFC 4647 basic filtering)
//   - Label comparisons are NFC normalized and case folded
package rdf
