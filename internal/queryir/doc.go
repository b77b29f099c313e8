// Package queryir provides the abstract query intermediate representation
// (IR) used by every search in the service.
//
// QueryIR is the boundary between the entity families that decide WHAT to
// search for and the backends that render text for a concrete store:
//
//	[search criteria] → [Query IR] → [SPARQL backend] (querysparql)
//	                               → [SQL backend]    (querysql)
//
// The IR has two families:
//
// GRAPH PATTERNS (GraphQuery):
// Triple patterns, OPTIONAL blocks, FILTER expressions, DISTINCT, property
// path '*' and LIMIT/OFFSET. Compiled to SPARQL for the triplestore.
//
// RELATIONAL SELECTS (Select):
// Single-table access with a conjunctive predicate and explicit bindings.
// Compiled to parameterized SQL for the relational store.
//
// COUNT DERIVATION:
//
// Both families derive their count query from the search query, never the
// other way round. GraphQuery.Count and Select.Count keep the predicate and
// replace the projection with a distinct count over the primary key, so the
// total and the page are always computed from the same filter.
//
// SEALED INTERFACES:
//
// Pattern, Expr, Node, Projection and Predicate are sealed interfaces using
// the marker method pattern. Only types in this package implement them,
// which keeps the type switches in the backends exhaustive.
//
//	switch p := pattern.(type) {
//	case Triple:
//	case Optional:
//	case Filter:
//	}
//
// IR values are plain data. Builders construct a fresh value per request and
// never mutate it after handing it to a backend.
package queryir
