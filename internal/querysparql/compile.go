// Package querysparql renders graph-pattern QueryIR as SPARQL 1.1 text.
//
// Rendering is deterministic: the same GraphQuery always produces the same
// bytes, so generated queries can be pinned by golden files and compared in
// logs. Constant IRIs under a known namespace are abbreviated and only the
// prefixes actually used are declared.
package querysparql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/niio972/phis-ws/internal/queryir"
	"github.com/niio972/phis-ws/internal/rdf"
)

// Compile renders q as SPARQL text terminated by a newline.
func Compile(q queryir.GraphQuery) (string, error) {
	if err := queryir.Validate(q); err != nil {
		return "", err
	}

	r := &renderer{prefixes: map[string]string{}}
	body, err := r.query(q)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	names := make([]string, 0, len(r.prefixes))
	for name := range r.prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "PREFIX %s: <%s>\n", name, r.prefixes[name])
	}
	sb.WriteString(body)
	return sb.String(), nil
}

// MustCompile is like Compile but panics on a malformed query. Builders use
// it for queries whose shape is fixed in code.
func MustCompile(q queryir.GraphQuery) string {
	s, err := Compile(q)
	if err != nil {
		panic(fmt.Sprintf("querysparql: %v", err))
	}
	return s
}

type renderer struct {
	prefixes map[string]string // prefix name → namespace
}

func (r *renderer) query(q queryir.GraphQuery) (string, error) {
	var sb strings.Builder

	switch q.Form {
	case queryir.FormAsk:
		sb.WriteString("ASK\n")
	default:
		sb.WriteString("SELECT ")
		if q.Distinct {
			sb.WriteString("DISTINCT ")
		}
		items := make([]string, 0, len(q.Projections))
		for _, p := range q.Projections {
			item, err := r.projection(p)
			if err != nil {
				return "", err
			}
			items = append(items, item)
		}
		sb.WriteString(strings.Join(items, " "))
		sb.WriteString("\n")
	}

	sb.WriteString("WHERE {\n")
	if err := r.group(&sb, q.Where, 1); err != nil {
		return "", err
	}
	sb.WriteString("}\n")

	if len(q.GroupBy) > 0 {
		vars := make([]string, len(q.GroupBy))
		for i, g := range q.GroupBy {
			vars[i] = "?" + string(g)
		}
		sb.WriteString("GROUP BY " + strings.Join(vars, " ") + "\n")
	}

	if q.Window != nil {
		fmt.Fprintf(&sb, "LIMIT %d\nOFFSET %d\n", q.Window.Limit, q.Window.Offset)
	}

	return sb.String(), nil
}

func (r *renderer) projection(p queryir.Projection) (string, error) {
	switch proj := p.(type) {
	case queryir.Var:
		return "?" + string(proj), nil
	case queryir.CountDistinct:
		of, err := r.node(proj.Of)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(COUNT(DISTINCT %s) AS ?%s)", of, proj.As), nil
	default:
		return "", fmt.Errorf("unsupported projection type: %T", p)
	}
}

func (r *renderer) group(sb *strings.Builder, patterns []queryir.Pattern, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, p := range patterns {
		switch pat := p.(type) {
		case queryir.Triple:
			line, err := r.triple(pat)
			if err != nil {
				return err
			}
			sb.WriteString(indent + line + "\n")
		case queryir.Optional:
			sb.WriteString(indent + "OPTIONAL {\n")
			if err := r.group(sb, pat.Patterns, depth+1); err != nil {
				return err
			}
			sb.WriteString(indent + "}\n")
		case queryir.Filter:
			expr, err := r.expr(pat.Expr)
			if err != nil {
				return err
			}
			if !isCompound(pat.Expr) {
				expr = "(" + expr + ")"
			}
			sb.WriteString(indent + "FILTER " + expr + "\n")
		default:
			return fmt.Errorf("unsupported pattern type: %T", p)
		}
	}
	return nil
}

func (r *renderer) triple(t queryir.Triple) (string, error) {
	s, err := r.node(t.S)
	if err != nil {
		return "", err
	}
	p, err := r.node(t.P)
	if err != nil {
		return "", err
	}
	o, err := r.node(t.O)
	if err != nil {
		return "", err
	}

	switch t.Path {
	case queryir.PathNone:
	case queryir.PathZeroOrMore:
		if _, isVar := t.P.(queryir.Var); isVar {
			return "", fmt.Errorf("property path on variable predicate %s", p)
		}
		p += "*"
	default:
		return "", fmt.Errorf("unsupported path modifier %d", t.Path)
	}

	return fmt.Sprintf("%s %s %s .", s, p, o), nil
}

func (r *renderer) node(n queryir.Node) (string, error) {
	switch node := n.(type) {
	case queryir.Var:
		return "?" + string(node), nil
	case queryir.Ref:
		return r.iri(rdf.IRI(node))
	default:
		return "", fmt.Errorf("unsupported node type: %T", n)
	}
}

// iri renders a constant IRI, abbreviated when it falls under a known
// namespace and the local part is a plain name.
func (r *renderer) iri(iri rdf.IRI) (string, error) {
	if err := rdf.ValidateIRI(string(iri)); err != nil {
		return "", err
	}
	if name, ns, local, ok := abbreviate(iri); ok {
		r.prefixes[name] = ns
		return name + ":" + local, nil
	}
	return "<" + string(iri) + ">", nil
}

func isCompound(e queryir.Expr) bool {
	switch e.(type) {
	case queryir.AnyOf, queryir.AllOf:
		return true
	}
	return false
}

func (r *renderer) expr(e queryir.Expr) (string, error) {
	switch ex := e.(type) {
	case queryir.AnyOf:
		return r.junction(ex.Exprs, " || ")
	case queryir.AllOf:
		return r.junction(ex.Exprs, " && ")
	case queryir.LangIsEmpty:
		return fmt.Sprintf(`LANG(?%s) = ""`, ex.Var), nil
	case queryir.LangMatches:
		return fmt.Sprintf("LANGMATCHES(LANG(?%s), %s)", ex.Var, quote(ex.Range)), nil
	case queryir.Regex:
		if ex.Flags == "" {
			return fmt.Sprintf("REGEX(?%s, %s)", ex.Var, quote(ex.Pattern)), nil
		}
		return fmt.Sprintf("REGEX(?%s, %s, %s)", ex.Var, quote(ex.Pattern), quote(ex.Flags)), nil
	default:
		return "", fmt.Errorf("unsupported expression type: %T", e)
	}
}

func (r *renderer) junction(exprs []queryir.Expr, op string) (string, error) {
	if len(exprs) == 0 {
		return "", fmt.Errorf("empty boolean junction")
	}
	parts := make([]string, len(exprs))
	for i, sub := range exprs {
		s, err := r.expr(sub)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "(" + strings.Join(parts, op) + ")", nil
}

// quote renders s as a double-quoted SPARQL string literal.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&sb, `\u%04X`, c)
				continue
			}
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
