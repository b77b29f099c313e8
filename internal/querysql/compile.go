// Package querysql compiles relational queryir.Select values to
// parameterized SQL for the SQLite experiment store.
package querysql

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/niio972/phis-ws/internal/queryir"
)

// SQLCompiler compiles relational QueryIR to parameterized SQL for SQLite.
//
// CRITICAL: every row query includes ORDER BY <key> for deterministic pages.
// CRITICAL: all values are parameterized (never interpolated), including
// LIMIT and OFFSET.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a Select to parameterized SQL.
// Returns (sql, params, error) tuple.
//
// Count selects (see queryir.Select.Count) compile to
// SELECT COUNT(DISTINCT key) and carry no ORDER BY or paging.
func (c *SQLCompiler) Compile(q queryir.Select) (string, []any, error) {
	if err := queryir.ValidateSelect(q); err != nil {
		return "", nil, err
	}

	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	if q.IsCount() {
		sql := fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s%s", q.PrimaryKey(), q.From, whereClause)
		return sql, params, nil
	}

	// MANDATORY: row queries are always ordered by the primary key
	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		c.compileBindings(q.Bindings),
		q.From,
		whereClause,
		c.stableOrderKey(q))

	if q.Window != nil {
		sql += " LIMIT ? OFFSET ?"
		params = append(params, q.Window.Limit, q.Window.Offset)
	}

	return sql, params, nil
}

// compileBindings converts bindings map to SELECT column list.
// Example: {"item_id": "itemId"} → "item_id AS itemId"
// Keys are sorted for deterministic output.
func (c *SQLCompiler) compileBindings(bindings map[string]string) string {
	if len(bindings) == 0 {
		return "*"
	}

	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, sourceField := range keys {
		boundVar := bindings[sourceField]
		if sourceField == boundVar {
			parts = append(parts, sourceField)
		} else {
			parts = append(parts, fmt.Sprintf("%s AS %s", sourceField, boundVar))
		}
	}

	return strings.Join(parts, ", ")
}

// stableOrderKey returns the ORDER BY clause for a query.
// COLLATE BINARY keeps text ordering identical across SQLite versions.
func (c *SQLCompiler) stableOrderKey(q queryir.Select) string {
	return q.PrimaryKey() + " ASC COLLATE BINARY"
}

// compilePredicate compiles a queryir.Predicate to a WHERE clause fragment.
// Values are NEVER interpolated - always ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileComparison(pred.Field, "=", pred.Value)
	case queryir.Compare:
		if pred.Op != queryir.OpGte && pred.Op != queryir.OpLte {
			return "", nil, fmt.Errorf("unsupported comparison operator %q", pred.Op)
		}
		return c.compileComparison(pred.Field, string(pred.Op), pred.Value)
	case queryir.Contains:
		return c.compileContains(pred)
	case queryir.InSelect:
		return c.compileInSelect(pred)
	case queryir.And:
		return c.compileAnd(pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileComparison compiles "field <op> ?".
func (c *SQLCompiler) compileComparison(field, op string, value any) (string, []any, error) {
	param, err := valueToParam(value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value for %s: %w", field, err)
	}
	return fmt.Sprintf("%s %s ?", field, op), []any{param}, nil
}

// compileContains compiles a case-insensitive substring match.
// LIKE wildcards in the value are escaped so the match is literal.
func (c *SQLCompiler) compileContains(ct queryir.Contains) (string, []any, error) {
	sql := fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, ct.Field)
	return sql, []any{"%" + escapeLike(strings.ToLower(ct.Value)) + "%"}, nil
}

// compileInSelect compiles "field IN (SELECT key FROM table WHERE ...)".
func (c *SQLCompiler) compileInSelect(in queryir.InSelect) (string, []any, error) {
	sub := in.Sub
	var whereClause string
	var params []any
	if sub.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(sub.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile subselect filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}
	sql := fmt.Sprintf("%s IN (SELECT %s FROM %s%s)", in.Field, sub.PrimaryKey(), sub.From, whereClause)
	return sql, params, nil
}

// compileAnd compiles an And predicate to conjunction with AND.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // vacuous truth
	}

	var sqlParts []string
	var allParams []any

	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// escapeLike escapes LIKE wildcards with the backslash escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// valueToParam converts a predicate value to a SQL parameter.
// Supports string, int, int64, bool and time.Time (stored as RFC 3339 text).
func valueToParam(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case bool:
		return val, nil
	case time.Time:
		return val.UTC().Format(time.RFC3339), nil
	case nil:
		return nil, fmt.Errorf("nil value: use an explicit predicate instead of comparing to NULL")
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
