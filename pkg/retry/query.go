// Package retry relaxes a query that returned nothing through a fixed
// sequence of fallbacks: drop date filters, drop grouping, fall back to the
// most recent row, then fuzzy text search. Each step derives a fresh
// statement from the parsed original; the original is never mutated.
package retry

import (
	"fmt"
	"strings"

	"github.com/semillaai/semilla/pkg/sqlgen"
)

// Predicate is one AND-separated condition of the WHERE clause. Column, Op
// and Value are only filled for the simple `col = 'v'` / `col LIKE '%v%'`
// shapes the fuzzy search can work with.
type Predicate struct {
	Raw    string
	Column string
	Op     string
	Value  string
	IsDate bool
}

// Query is a shallow structured view of one SELECT statement.
type Query struct {
	SelectList string
	From       string // raw FROM clause, joins and aliases included
	Table      string // first FROM target, quoting stripped
	Predicates []Predicate
	GroupBy    string // full clause text, "GROUP BY ..."
	OrderBy    string
	Limit      string
}

type clauseMark struct {
	name  string
	start int // byte offset of the clause keyword
	body  int // byte offset just past the keyword(s)
}

// Parse builds the structured view of a SELECT statement. Statements that do
// not start with SELECT or have no FROM clause are rejected.
func Parse(sql string) (*Query, error) {
	sql = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(sql), ";"))
	toks := sqlgen.Tokenize(sql)
	if len(toks) == 0 || !toks[0].Keyword("select") {
		return nil, fmt.Errorf("retry: no es una consulta SELECT")
	}

	var marks []clauseMark
	depth := 0
	for i := 1; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == sqlgen.KindSymbol {
			switch t.Text {
			case "(":
				depth++
			case ")":
				depth--
			}
			continue
		}
		if depth != 0 {
			continue
		}
		switch {
		case t.Keyword("from") && !hasMark(marks, "from"):
			marks = append(marks, clauseMark{"from", t.Start, t.End})
		case t.Keyword("where"):
			marks = append(marks, clauseMark{"where", t.Start, t.End})
		case t.Keyword("group") && i+1 < len(toks) && toks[i+1].Keyword("by"):
			marks = append(marks, clauseMark{"group", t.Start, toks[i+1].End})
		case t.Keyword("order") && i+1 < len(toks) && toks[i+1].Keyword("by"):
			marks = append(marks, clauseMark{"order", t.Start, toks[i+1].End})
		case t.Keyword("limit"):
			marks = append(marks, clauseMark{"limit", t.Start, t.End})
		}
	}
	if !hasMark(marks, "from") {
		return nil, fmt.Errorf("retry: la consulta no tiene cláusula FROM")
	}

	section := func(name string) string {
		for i, m := range marks {
			if m.name != name {
				continue
			}
			end := len(sql)
			if i+1 < len(marks) {
				end = marks[i+1].start
			}
			return strings.TrimSpace(sql[m.body:end])
		}
		return ""
	}
	full := func(name string) string {
		for i, m := range marks {
			if m.name != name {
				continue
			}
			end := len(sql)
			if i+1 < len(marks) {
				end = marks[i+1].start
			}
			return strings.TrimSpace(sql[m.start:end])
		}
		return ""
	}

	q := &Query{
		SelectList: strings.TrimSpace(sql[toks[0].End:marks[0].start]),
		From:       section("from"),
		GroupBy:    full("group"),
		OrderBy:    full("order"),
		Limit:      full("limit"),
	}

	fromToks := sqlgen.Tokenize(q.From)
	if len(fromToks) == 0 || fromToks[0].Kind != sqlgen.KindIdent {
		return nil, fmt.Errorf("retry: no se pudo determinar la tabla del FROM")
	}
	q.Table = fromToks[0].Text

	if where := section("where"); where != "" {
		q.Predicates = parsePredicates(where)
	}
	return q, nil
}

func hasMark(marks []clauseMark, name string) bool {
	for _, m := range marks {
		if m.name == name {
			return true
		}
	}
	return false
}

// parsePredicates splits a WHERE body on top-level ANDs and decodes the
// simple column-operator-literal shape where present.
func parsePredicates(where string) []Predicate {
	toks := sqlgen.Tokenize(where)
	var parts []string
	depth, last := 0, 0
	for _, t := range toks {
		if t.Kind == sqlgen.KindSymbol {
			switch t.Text {
			case "(":
				depth++
			case ")":
				depth--
			}
		}
		if depth == 0 && t.Keyword("and") {
			parts = append(parts, strings.TrimSpace(where[last:t.Start]))
			last = t.End
		}
	}
	parts = append(parts, strings.TrimSpace(where[last:]))

	preds := make([]Predicate, 0, len(parts))
	for _, raw := range parts {
		if raw == "" {
			continue
		}
		preds = append(preds, decodePredicate(raw))
	}
	return preds
}

func decodePredicate(raw string) Predicate {
	p := Predicate{Raw: raw}
	toks := sqlgen.Tokenize(raw)
	for _, t := range toks {
		if t.Kind == sqlgen.KindIdent && strings.Contains(strings.ToLower(t.Text), "fec") {
			p.IsDate = true
		}
	}

	// col = 'v'  |  col LIKE '%v%'  |  tbl.col = 'v'
	i := 0
	var col string
	for i < len(toks) && toks[i].Kind == sqlgen.KindIdent {
		col = toks[i].Text
		i++
		if i < len(toks) && toks[i].Kind == sqlgen.KindSymbol && toks[i].Text == "." {
			i++
			continue
		}
		break
	}
	if col == "" || i >= len(toks) {
		return p
	}
	var op string
	switch {
	case toks[i].Kind == sqlgen.KindSymbol && toks[i].Text == "=":
		op = "="
	case toks[i].Keyword("like"):
		op = "LIKE"
	default:
		return p
	}
	i++
	if i >= len(toks) || toks[i].Kind != sqlgen.KindString {
		return p
	}
	value := toks[i].Text
	if op == "LIKE" {
		value = strings.Trim(value, "%")
	}
	p.Column, p.Op, p.Value = col, op, value
	return p
}

// Render reassembles the statement.
func (q *Query) Render() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(q.SelectList)
	b.WriteString(" FROM ")
	b.WriteString(q.From)
	if len(q.Predicates) > 0 {
		raws := make([]string, len(q.Predicates))
		for i, p := range q.Predicates {
			raws[i] = p.Raw
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(raws, " AND "))
	}
	for _, clause := range []string{q.GroupBy, q.OrderBy, q.Limit} {
		if clause != "" {
			b.WriteString(" ")
			b.WriteString(clause)
		}
	}
	return b.String()
}

func (q *Query) clone() *Query {
	c := *q
	c.Predicates = make([]Predicate, len(q.Predicates))
	copy(c.Predicates, q.Predicates)
	return &c
}

// HasDatePredicate reports whether any WHERE condition touches a date column.
func (q *Query) HasDatePredicate() bool {
	for _, p := range q.Predicates {
		if p.IsDate {
			return true
		}
	}
	return false
}

// WithoutDatePredicates returns a copy with date conditions removed. The
// second return reports whether anything changed.
func (q *Query) WithoutDatePredicates() (*Query, bool) {
	c := q.clone()
	kept := c.Predicates[:0]
	for _, p := range c.Predicates {
		if !p.IsDate {
			kept = append(kept, p)
		}
	}
	changed := len(kept) != len(q.Predicates)
	c.Predicates = kept
	return c, changed
}

// WithoutGrouping returns a copy with GROUP BY and ORDER BY removed.
func (q *Query) WithoutGrouping() (*Query, bool) {
	c := q.clone()
	changed := c.GroupBy != "" || c.OrderBy != ""
	c.GroupBy, c.OrderBy = "", ""
	return c, changed
}

// SimplePredicate returns the first condition usable for fuzzy search.
func (q *Query) SimplePredicate() (Predicate, bool) {
	for _, p := range q.Predicates {
		if p.Column != "" && p.Value != "" {
			return p, true
		}
	}
	return Predicate{}, false
}
