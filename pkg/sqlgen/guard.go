package sqlgen

import (
	"strings"

	"github.com/semillaai/semilla/pkg/schema"
)

// Guard cross-checks table and column references against the catalog. Table
// checking covers every FROM/JOIN target; column checking only applies to the
// single-table SELECT shape, where the guidance is reliable.
type Guard struct {
	Registry *schema.Registry
}

func NewGuard(reg *schema.Registry) *Guard {
	return &Guard{Registry: reg}
}

// Check returns an UnknownTableError or UnknownColumnError when the statement
// references identifiers outside the catalog.
func (g *Guard) Check(sql string) error {
	toks := Tokenize(sql)

	targets := fromTargets(toks)
	for _, t := range targets {
		if _, ok := g.Registry.Resolve(t.Text); !ok {
			return &UnknownTableError{
				Table: strings.ToLower(t.Text),
				Known: g.Registry.Keys(),
			}
		}
	}

	if len(targets) != 1 || hasKeyword(toks, "join") {
		return nil
	}
	table, _ := g.Registry.Resolve(targets[0].Text)

	items := selectItems(toks)
	if items == nil {
		return nil
	}
	var bad []string
	for _, item := range items {
		col, ok := columnOf(item)
		if !ok {
			continue
		}
		if _, declared := table.Columns[col]; !declared {
			bad = append(bad, col)
		}
	}
	if len(bad) > 0 {
		return &UnknownColumnError{
			Table:   table.Key,
			Columns: bad,
			Known:   table.ColumnNames(),
		}
	}
	return nil
}

// columnOf reduces one select-list item to the column it reads. Functions and
// expressions are exempt; aliases and table qualifiers are stripped.
func columnOf(item []Token) (string, bool) {
	for i, t := range item {
		if t.Keyword("as") {
			item = item[:i]
			break
		}
	}
	if len(item) > 0 && item[0].Keyword("distinct") {
		item = item[1:]
	}
	var last string
	for _, t := range item {
		if t.Kind == KindSymbol && t.Text == "(" {
			return "", false
		}
		if t.Kind == KindSymbol && t.Text == "*" {
			return "", false
		}
		if t.Kind == KindIdent {
			last = t.Text
		}
	}
	if last == "" {
		return "", false
	}
	return last, true
}
