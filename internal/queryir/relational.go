package queryir

// Predicate represents a filter condition of a relational Select.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Equals: field = value
//   - Contains: field contains value, ignoring case
//   - Compare: field >= value / field <= value
//   - InSelect: field IN (subselect)
//   - And: all predicates must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select represents single-table access with filtering and paging.
//
// Semantics:
//
//	SELECT <bindings> FROM <from> WHERE <filter>
//	ORDER BY <key> LIMIT <window.limit> OFFSET <window.offset>
//
// Key names the primary key column. It is the deterministic ORDER BY
// tiebreaker and the column counted by Count.
//
// Example:
//
//	Select{
//	  From: "experiments",
//	  Key:  "uri",
//	  Filter: And{Predicates: []Predicate{
//	    Contains{Field: "campaign", Value: "2018"},
//	    Compare{Field: "start_date", Op: OpGte, Value: "2018-01-01"},
//	  }},
//	  Bindings: map[string]string{"uri": "uri", "alias": "alias"},
//	  Window:   Page(0, 20),
//	}
type Select struct {
	From     string            // Table name
	Key      string            // Primary key column (defaults to "id")
	Filter   Predicate         // WHERE conditions (nil = no filter)
	Bindings map[string]string // source_field → result name
	Window   *Window           // nil = unpaged
	count    bool
}

// Count derives the count query: same table and predicate, projection
// replaced by COUNT(DISTINCT key), no paging.
func (s Select) Count() Select {
	return Select{
		From:   s.From,
		Key:    s.Key,
		Filter: s.Filter,
		count:  true,
	}
}

// IsCount reports whether s was derived with Count.
func (s Select) IsCount() bool {
	return s.count
}

// PrimaryKey returns Key, defaulting to "id".
func (s Select) PrimaryKey() string {
	if s.Key == "" {
		return "id"
	}
	return s.Key
}

// Equals represents a field-equals-literal predicate.
//
// Value must be a string, int64, int, bool or time.Time.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// Contains represents a case-insensitive substring match.
//
//	<field> LIKE '%' || <value> || '%'
//
// Value is matched literally; '%' and '_' in it carry no wildcard meaning.
type Contains struct {
	Field string
	Value string
}

func (Contains) predicateNode() {}

// CompareOp is the operator of a Compare predicate.
type CompareOp string

const (
	OpGte CompareOp = ">="
	OpLte CompareOp = "<="
)

// Compare represents an ordered comparison against a literal.
type Compare struct {
	Field string
	Op    CompareOp
	Value any
}

func (Compare) predicateNode() {}

// InSelect represents membership in the rows of a sub-select.
//
//	<field> IN (SELECT <sub.Key> FROM <sub.From> WHERE <sub.Filter>)
type InSelect struct {
	Field string
	Sub   Select
}

func (InSelect) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// Empty Predicates means "always true".
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
