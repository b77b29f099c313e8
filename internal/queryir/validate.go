package queryir

import (
	"fmt"
	"strings"
)

// ValidationError lists the structural problems found in a query.
//
// A malformed IR value is a programming error in the builder that produced
// it, never a consequence of user input: user input is validated before the
// IR is built.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "malformed query: " + strings.Join(e.Problems, "; ")
}

// Validate checks the structural rules of a graph query:
//  1. The WHERE clause is not empty
//  2. SELECT projects at least one item, ASK projects none
//  3. Every projected or filtered variable is bound by some triple pattern
//  4. Windows are non-negative
//  5. Count queries are neither paged nor grouped
//
// Validate is a pure function with no side effects.
func Validate(q GraphQuery) error {
	v := &validator{bound: map[Var]bool{}}
	v.collect(q.Where)
	v.validateGraph(q)
	return v.result()
}

// ValidateSelect checks the structural rules of a relational select.
func ValidateSelect(s Select) error {
	v := &validator{}
	v.validateSelect(s)
	return v.result()
}

// validator accumulates problems during traversal.
type validator struct {
	bound    map[Var]bool
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) result() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

// collect records every variable a triple pattern can bind, including those
// inside OPTIONAL blocks.
func (v *validator) collect(patterns []Pattern) {
	for _, p := range patterns {
		switch pat := p.(type) {
		case Triple:
			for _, n := range []Node{pat.S, pat.P, pat.O} {
				if name, ok := n.(Var); ok {
					v.bound[name] = true
				}
			}
		case Optional:
			v.collect(pat.Patterns)
		}
	}
}

func (v *validator) validateGraph(q GraphQuery) {
	if len(q.Where) == 0 {
		v.addProblem("empty WHERE clause")
	}

	isCount := false
	switch q.Form {
	case FormSelect:
		if len(q.Projections) == 0 {
			v.addProblem("SELECT without projections")
		}
	case FormAsk:
		if len(q.Projections) > 0 {
			v.addProblem("ASK with projections")
		}
	default:
		v.addProblem("unknown query form %d", q.Form)
	}

	for _, p := range q.Projections {
		switch proj := p.(type) {
		case Var:
			v.requireBound(proj, "projected")
		case CountDistinct:
			isCount = true
			if name, ok := proj.Of.(Var); ok {
				v.requireBound(name, "counted")
			}
		case nil:
			v.addProblem("nil projection")
		}
	}

	for _, g := range q.GroupBy {
		v.requireBound(g, "grouped")
	}

	v.validatePatterns(q.Where)

	if q.Window != nil && (q.Window.Limit < 0 || q.Window.Offset < 0) {
		v.addProblem("negative window %+v", *q.Window)
	}
	if isCount && (q.Window != nil || len(q.GroupBy) > 0) {
		v.addProblem("count query must not be paged or grouped")
	}
}

func (v *validator) validatePatterns(patterns []Pattern) {
	for _, p := range patterns {
		switch pat := p.(type) {
		case Triple:
			if pat.S == nil || pat.P == nil || pat.O == nil {
				v.addProblem("triple with nil position")
			}
		case Optional:
			if len(pat.Patterns) == 0 {
				v.addProblem("empty OPTIONAL block")
			}
			v.validatePatterns(pat.Patterns)
		case Filter:
			v.validateExpr(pat.Expr)
		default:
			v.addProblem("unknown pattern type %T", p)
		}
	}
}

func (v *validator) validateExpr(e Expr) {
	switch ex := e.(type) {
	case AnyOf:
		for _, sub := range ex.Exprs {
			v.validateExpr(sub)
		}
	case AllOf:
		for _, sub := range ex.Exprs {
			v.validateExpr(sub)
		}
	case LangIsEmpty:
		v.requireBound(ex.Var, "filtered")
	case LangMatches:
		v.requireBound(ex.Var, "filtered")
	case Regex:
		v.requireBound(ex.Var, "filtered")
	default:
		v.addProblem("unknown expression type %T", e)
	}
}

func (v *validator) requireBound(name Var, role string) {
	if !v.bound[name] {
		v.addProblem("%s variable ?%s is not bound by any pattern", role, name)
	}
}

func (v *validator) validateSelect(s Select) {
	if s.From == "" {
		v.addProblem("select without table")
	}
	if s.IsCount() && len(s.Bindings) > 0 {
		v.addProblem("count select with bindings")
	}
	if s.Window != nil && (s.Window.Limit < 0 || s.Window.Offset < 0) {
		v.addProblem("negative window %+v", *s.Window)
	}
	if in, ok := s.Filter.(InSelect); ok {
		v.validateSelect(in.Sub)
	}
	if and, ok := s.Filter.(And); ok {
		for _, p := range and.Predicates {
			if in, ok := p.(InSelect); ok {
				v.validateSelect(in.Sub)
			}
		}
	}
}
