package rdf

// Binding is one result row of a graph-pattern query: variable name to term.
// Names are stored without the leading '?'.
type Binding map[string]Term

// Get returns the term bound to name.
func (b Binding) Get(name string) (Term, bool) {
	t, ok := b[name]
	return t, ok && t != nil
}

// Has reports whether name is bound in this row.
func (b Binding) Has(name string) bool {
	_, ok := b.Get(name)
	return ok
}

// String returns the lexical form of the term bound to name.
func (b Binding) String(name string) (string, bool) {
	t, ok := b.Get(name)
	if !ok {
		return "", false
	}
	return t.Lexical(), true
}
