// Package query builds queries in the SQL dialect of the ML database service.
//
// Queries are composed as values and rendered once, by String():
//
//	q := query.Select{
//		From:  query.Table("iris"),
//		Where: query.RowHashBelow(75),
//	}
//	q.String() // SELECT * FROM iris WHERE rowHash() % 100 < 75
//
// String values given to predicates are rendered as quoted literals.
// Identifiers (dataset names, columns and expressions) are rendered verbatim,
// so callers should not pass untrusted text as identifiers.
// Column names containing spaces or dots should be wrapped with Ident.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// RowHashBuckets is the default modulus applied to rowHash().
const RowHashBuckets = 100

// Source is something which can be put after FROM.
type Source interface {
	source() string
}

// Predicate is a condition in WHERE clause.
type Predicate interface {
	predicate() string
}

// Select is a SELECT statement.
type Select struct {
	// Columns to be selected. Empty means "*".
	Columns []string

	From Source

	// Where is optional.
	Where Predicate
}

func (s Select) String() string {
	sb := new(strings.Builder)
	sb.WriteString("SELECT ")
	if len(s.Columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(s.Columns, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(s.From.source())
	if s.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(s.Where.predicate())
	}
	return sb.String()
}

type table string

func (t table) source() string {
	return string(t)
}

// Table refers a dataset by its name.
func Table(name string) Source {
	return table(name)
}

type sample struct {
	of              Source
	rows            int
	withReplacement bool
}

func (s sample) source() string {
	return fmt.Sprintf(
		"sample(%s, {rows: %d, withReplacement: %s})",
		s.of.source(), s.rows, boolean(s.withReplacement),
	)
}

// Sample draws rows randomly from a source.
func Sample(of Source, rows int, withReplacement bool) Source {
	return sample{of: of, rows: rows, withReplacement: withReplacement}
}

type merge []Select

func (m merge) source() string {
	subs := make([]string, 0, len(m))
	for _, s := range m {
		subs = append(subs, "("+s.String()+")")
	}
	return "merge(" + strings.Join(subs, ", ") + ")"
}

// Merge unions rows of subqueries.
func Merge(selects ...Select) Source {
	return merge(selects)
}

type eq struct {
	column string
	value  any
}

func (e eq) predicate() string {
	return e.column + " = " + Literal(e.value)
}

// Eq is satisfied when the column equals to the value.
//
// value is rendered with Literal.
func Eq(column string, value any) Predicate {
	return eq{column: column, value: value}
}

// RowHash compares rowHash() % Buckets with Threshold.
type RowHash struct {
	Buckets   int
	Op        string
	Threshold int
}

func (r RowHash) predicate() string {
	buckets := r.Buckets
	if buckets <= 0 {
		buckets = RowHashBuckets
	}
	return fmt.Sprintf("rowHash() %% %d %s %d", buckets, r.Op, r.Threshold)
}

// RowHashBelow is satisfied by rows of which rowHash() % 100 < threshold.
func RowHashBelow(threshold int) RowHash {
	return RowHash{Buckets: RowHashBuckets, Op: "<", Threshold: threshold}
}

// RowHashAtLeast is satisfied by rows of which rowHash() % 100 >= threshold.
func RowHashAtLeast(threshold int) RowHash {
	return RowHash{Buckets: RowHashBuckets, Op: ">=", Threshold: threshold}
}

type junction struct {
	op    string
	terms []Predicate
}

func (j junction) predicate() string {
	if len(j.terms) == 1 {
		return j.terms[0].predicate()
	}
	terms := make([]string, 0, len(j.terms))
	for _, t := range j.terms {
		terms = append(terms, "("+t.predicate()+")")
	}
	return strings.Join(terms, " "+j.op+" ")
}

func And(terms ...Predicate) Predicate {
	return junction{op: "AND", terms: terms}
}

func Or(terms ...Predicate) Predicate {
	return junction{op: "OR", terms: terms}
}

// As renders "expr AS alias".
func As(expr, alias string) string {
	return expr + " AS " + alias
}

// Row renders a row expression, "{a, b}".
func Row(columns ...string) string {
	return "{" + strings.Join(columns, ", ") + "}"
}

// Ident renders name as a quoted column name, like "sepal.length".
//
// Double quotes in name are doubled.
func Ident(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Idents applies Ident to each of names.
func Idents(names ...string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = Ident(n)
	}
	return quoted
}

// Call renders a function call, "fn(a, b)".
func Call(fn string, args ...string) string {
	return fn + "(" + strings.Join(args, ", ") + ")"
}

// Quote renders s as a string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Literal renders v as a literal.
//
// Strings are quoted, numbers are rendered as they are and bools are TRUE or FALSE.
// Other values are rendered as quoted strings formatted by fmt.
func Literal(v any) string {
	switch x := v.(type) {
	case string:
		return Quote(x)
	case bool:
		return boolean(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return Quote(fmt.Sprint(v))
	}
}

func boolean(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
