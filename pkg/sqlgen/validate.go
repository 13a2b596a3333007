package sqlgen

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/semillaai/semilla/pkg/schema"
)

var limitOffsetRE = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)\s+OFFSET\s+(\d+)`)

// Validator checks and rewrites an extracted statement before execution:
// read-only enforcement, MySQL LIMIT syntax, the default row cap, and the
// rewrite of logical table keys to their quoted real names.
type Validator struct {
	Registry *schema.Registry
}

func NewValidator(reg *schema.Registry) *Validator {
	return &Validator{Registry: reg}
}

// Validate returns the statement ready for execution. Validating an already
// validated statement is a no-op.
func (v *Validator) Validate(sql string) (string, error) {
	sql = strings.TrimSpace(sql)
	sql = strings.TrimRight(sql, "; \t\n")

	toks := Tokenize(sql)
	if len(toks) == 0 || !toks[0].Keyword("select") {
		return "", errNotSelect()
	}

	// MySQL wants LIMIT offset, count.
	if limitOffsetRE.MatchString(sql) {
		sql = limitOffsetRE.ReplaceAllString(sql, "LIMIT $2, $1")
		toks = Tokenize(sql)
		log.Debug().Str("sql", sql).Msg("Rewrote LIMIT/OFFSET to MySQL form")
	}

	if len(toks) >= 2 && toks[1].Kind == KindSymbol && toks[1].Text == "*" {
		table, cols := v.wildcardGuidance(toks)
		return "", errWildcard(table, cols)
	}

	if v.needsDefaultLimit(toks) {
		sql += " LIMIT 10"
		log.Debug().Msg("Appended default LIMIT 10")
	}

	return v.rewriteTables(sql), nil
}

// needsDefaultLimit applies the row-cap heuristic: aggregates, DISTINCT,
// GROUP BY and date-filtered joins are assumed intentionally bounded,
// everything else gets a cap.
func (v *Validator) needsDefaultLimit(toks []Token) bool {
	if hasKeyword(toks, "limit") {
		return false
	}
	if isCountQuery(toks) {
		return false
	}
	if hasKeyword(toks, "distinct") {
		return false
	}
	if hasKeyword(toks, "group") {
		return false
	}
	if hasKeyword(toks, "join") && hasDateFilter(toks) {
		return false
	}
	return true
}

func (v *Validator) wildcardGuidance(toks []Token) (string, []string) {
	targets := fromTargets(toks)
	if len(targets) == 0 {
		return "", nil
	}
	t, ok := v.Registry.Resolve(targets[0].Text)
	if !ok {
		return "", nil
	}
	return t.Key, t.ColumnNames()
}

// rewriteTables replaces whole-word occurrences of logical keys whose real
// name requires quoting with the backtick-quoted real name. The model reasons
// in friendly names; the driver sees real identifiers.
func (v *Validator) rewriteTables(sql string) string {
	toks := Tokenize(sql)
	type splice struct {
		start, end int
		text       string
	}
	var edits []splice
	for _, t := range toks {
		if t.Kind != KindIdent || t.Quoted {
			continue
		}
		tb, ok := v.Registry.Lookup(t.Text)
		if !ok || !tb.NeedsQuoting() {
			continue
		}
		edits = append(edits, splice{t.Start, t.End, "`" + tb.RealName + "`"})
	}
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		sql = sql[:e.start] + e.text + sql[e.end:]
	}
	return sql
}
