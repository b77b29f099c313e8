package queryir

import "github.com/niio972/phis-ws/internal/rdf"

// QueryForm selects the SPARQL query form.
type QueryForm int

const (
	// FormSelect produces rows of bindings.
	FormSelect QueryForm = iota
	// FormAsk produces a single boolean.
	FormAsk
)

// GraphQuery is a graph-pattern query.
//
// Semantics:
//
//	SELECT [DISTINCT] <projections> WHERE { <where> } [GROUP BY] [LIMIT/OFFSET]
//	ASK WHERE { <where> }
//
// Example (infrastructures under the root concept):
//
//	GraphQuery{
//	  Distinct:    true,
//	  Projections: []Projection{Var("uri"), Var("rdfType")},
//	  Where: []Pattern{
//	    Triple{S: Var("rdfType"), P: Ref(rdf.RDFSSubClassOf), O: Ref(rdf.OESOInfrastructure), Path: PathZeroOrMore},
//	    Triple{S: Var("uri"), P: Ref(rdf.RDFType), O: Var("rdfType")},
//	  },
//	  Window: Page(0, 20),
//	}
type GraphQuery struct {
	Form        QueryForm
	Distinct    bool
	Projections []Projection
	Where       []Pattern
	GroupBy     []Var
	Window      *Window // nil = unpaged
}

// Count derives the count query for q.
//
// The graph pattern is kept as is. Projections, group-by and paging are
// dropped and replaced by COUNT(DISTINCT primary) AS ?count. primary is
// normally the entity variable, or the constant IRI when the caller fixed
// the identifier.
func (q GraphQuery) Count(primary Node) GraphQuery {
	where := make([]Pattern, len(q.Where))
	copy(where, q.Where)
	return GraphQuery{
		Form:        FormSelect,
		Projections: []Projection{CountDistinct{Of: primary, As: CountVar}},
		Where:       where,
	}
}

// CountVar is the variable name carrying the result of a count query.
const CountVar Var = "count"

// Node is a sealed interface for the subject/predicate/object positions of a
// triple pattern: either a variable or a constant IRI.
type Node interface {
	graphNode() // Marker method - seals interface to this package
}

// Var is a query variable, named without the leading '?'.
type Var string

func (Var) graphNode()  {}
func (Var) projection() {}

// Ref is a constant IRI in a triple pattern.
type Ref rdf.IRI

func (Ref) graphNode() {}

// Projection is a sealed interface for SELECT clause items.
type Projection interface {
	projection() // Marker method - seals interface to this package
}

// CountDistinct projects COUNT(DISTINCT <Of>) AS ?<As>.
type CountDistinct struct {
	Of Node
	As Var
}

func (CountDistinct) projection() {}

// Pattern is a sealed interface for the members of a group graph pattern.
type Pattern interface {
	pattern() // Marker method - seals interface to this package
}

// PathMod is a property path modifier applied to a triple's predicate.
type PathMod int

const (
	// PathNone is a plain predicate.
	PathNone PathMod = iota
	// PathZeroOrMore is the transitive-reflexive closure ('*').
	PathZeroOrMore
)

// Triple is a triple pattern.
type Triple struct {
	S    Node
	P    Node
	O    Node
	Path PathMod
}

func (Triple) pattern() {}

// Optional is an OPTIONAL block. Variables first bound inside it may be
// absent from a result row.
type Optional struct {
	Patterns []Pattern
}

func (Optional) pattern() {}

// Filter constrains the enclosing group. In SPARQL a FILTER applies to the
// whole group it appears in, wherever it is written.
type Filter struct {
	Expr Expr
}

func (Filter) pattern() {}

// Expr is a sealed interface for FILTER expressions.
type Expr interface {
	expr() // Marker method - seals interface to this package
}

// AnyOf is a disjunction: (e1 || e2 || ...).
type AnyOf struct {
	Exprs []Expr
}

func (AnyOf) expr() {}

// AllOf is a conjunction: (e1 && e2 && ...).
type AllOf struct {
	Exprs []Expr
}

func (AllOf) expr() {}

// LangIsEmpty holds when the literal bound to Var has no language tag:
// LANG(?v) = "".
type LangIsEmpty struct {
	Var Var
}

func (LangIsEmpty) expr() {}

// LangMatches holds when the language tag of the literal bound to Var
// matches Range: LANGMATCHES(LANG(?v), "range").
type LangMatches struct {
	Var   Var
	Range string
}

func (LangMatches) expr() {}

// Regex holds when the value bound to Var matches Pattern:
// REGEX(?v, "pattern", "flags").
type Regex struct {
	Var     Var
	Pattern string
	Flags   string
}

func (Regex) expr() {}
