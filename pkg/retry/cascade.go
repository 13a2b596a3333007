package retry

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/semillaai/semilla/pkg/erpdb"
	"github.com/semillaai/semilla/pkg/schema"
)

// Fallback tags which relaxation produced the rows, so callers can annotate
// the reply when the search was broadened.
type Fallback string

const (
	FallbackNone         Fallback = ""
	FallbackDateRelaxed  Fallback = "date-relaxed"
	FallbackGroupRelaxed Fallback = "group-relaxed"
	FallbackMostRecent   Fallback = "most-recent"
	FallbackFuzzy        Fallback = "fuzzy-match"
)

// Runner executes one SQL statement. *erpdb.Executor satisfies it.
type Runner interface {
	Query(ctx context.Context, sql string) (*erpdb.ResultSet, error)
}

// Result is the cascade outcome. Set is never nil; Exhausted marks the
// terminal no-results state, which is not an error.
type Result struct {
	Set       *erpdb.ResultSet
	Table     string
	Fallback  Fallback
	Exhausted bool
}

// Cascade retries an empty query through the fixed relaxation sequence.
// Execution errors on a derived statement advance to the next state instead
// of aborting.
type Cascade struct {
	Runner   Runner
	Registry *schema.Registry
	Policy   VariantPolicy

	// FuzzyRowCap bounds every fuzzy probe.
	FuzzyRowCap int
}

func New(runner Runner, reg *schema.Registry) *Cascade {
	return &Cascade{
		Runner:      runner,
		Registry:    reg,
		Policy:      DefaultPolicy(),
		FuzzyRowCap: 5,
	}
}

// Run executes the validated statement and, while it yields nothing, walks
// the relaxation states in order. It only returns an error when the context
// is done.
func (c *Cascade) Run(ctx context.Context, sql string) (*Result, error) {
	q, parseErr := Parse(sql)

	table := ""
	if parseErr == nil {
		table = c.logicalTable(q.Table)
	}

	if rs, ok := c.try(ctx, sql); ok {
		return &Result{Set: rs, Table: c.inferTable(rs, table), Fallback: FallbackNone}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if parseErr != nil {
		log.Debug().Err(parseErr).Msg("Cannot relax unparsable query")
		return c.exhausted(table), nil
	}

	if q.HasDatePredicate() {
		if relaxed, changed := q.WithoutDatePredicates(); changed {
			log.Debug().Msg("Retrying without date filters")
			if rs, ok := c.try(ctx, relaxed.Render()); ok {
				return &Result{Set: rs, Table: table, Fallback: FallbackDateRelaxed}, nil
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if relaxed, changed := q.WithoutGrouping(); changed {
		log.Debug().Msg("Retrying without GROUP BY / ORDER BY")
		if rs, ok := c.try(ctx, relaxed.Render()); ok {
			return &Result{Set: rs, Table: table, Fallback: FallbackGroupRelaxed}, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if sql, ok := c.mostRecentSQL(q); ok {
		log.Debug().Msg("Retrying with most-recent-row fallback")
		if rs, ok := c.try(ctx, sql); ok {
			return &Result{Set: rs, Table: table, Fallback: FallbackMostRecent}, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if rs, ok := c.fuzzy(ctx, q); ok {
		return &Result{Set: rs, Table: table, Fallback: FallbackFuzzy}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return c.exhausted(table), nil
}

func (c *Cascade) exhausted(table string) *Result {
	return &Result{Set: &erpdb.ResultSet{}, Table: table, Exhausted: true}
}

// try runs one derived statement; failures count as empty.
func (c *Cascade) try(ctx context.Context, sql string) (*erpdb.ResultSet, bool) {
	rs, err := c.Runner.Query(ctx, sql)
	if err != nil {
		log.Debug().Err(err).Str("sql", sql).Msg("Cascade attempt failed, moving on")
		return nil, false
	}
	if rs.Empty() {
		return nil, false
	}
	return rs, true
}

// logicalTable maps a FROM target (key or real name) to the catalog key.
func (c *Cascade) logicalTable(name string) string {
	if t, ok := c.Registry.Resolve(name); ok {
		return t.Key
	}
	return name
}

// inferTable falls back to guessing the table from result columns when the
// FROM clause did not resolve.
func (c *Cascade) inferTable(rs *erpdb.ResultSet, table string) string {
	if table != "" {
		return table
	}
	if rs == nil {
		return ""
	}
	if key, ok := c.Registry.TableForColumns(rs.Columns); ok {
		return key
	}
	return ""
}

// mostRecentSQL builds the "latest row" fallback when the catalog declares a
// date column for the queried table.
func (c *Cascade) mostRecentSQL(q *Query) (string, bool) {
	t, ok := c.Registry.Resolve(q.Table)
	if !ok {
		return "", false
	}
	dateCol, ok := t.DateColumn()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("SELECT * FROM %s ORDER BY %s DESC LIMIT 1", tableRef(t), dateCol), true
}

// fuzzy probes text columns with generated variants of the searched value,
// returning the first non-empty set.
func (c *Cascade) fuzzy(ctx context.Context, q *Query) (*erpdb.ResultSet, bool) {
	pred, ok := q.SimplePredicate()
	if !ok {
		log.Debug().Msg("No simple predicate for fuzzy search")
		return nil, false
	}

	t, known := c.Registry.Resolve(q.Table)

	if known && len(t.SearchColumns) > 0 {
		terms := strings.Fields(pred.Value)
		if len(terms) > 1 {
			if rs, ok := c.fuzzyMultiTerm(ctx, t, terms); ok {
				return rs, true
			}
		}
	}

	columns := []string{pred.Column}
	if known {
		columns = t.TextColumns()
	}

	for _, col := range columns {
		for _, variant := range c.Policy.Variants(pred.Value) {
			if err := ctx.Err(); err != nil {
				return nil, false
			}
			probe := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIKE '%%%s%%' LIMIT %d",
				q.SelectList, q.From, col, escapeLiteral(variant), c.FuzzyRowCap)
			if rs, ok := c.try(ctx, probe); ok {
				log.Debug().Str("column", col).Str("variant", variant).Msg("Fuzzy search matched")
				return rs, true
			}
		}
	}
	return nil, false
}

// fuzzyMultiTerm handles multi-word values against tables declaring search
// columns: every term must match the primary column, then the secondary,
// then either.
func (c *Cascade) fuzzyMultiTerm(ctx context.Context, t schema.Table, terms []string) (*erpdb.ResultSet, bool) {
	conj := func(col string) string {
		conds := make([]string, len(terms))
		for i, term := range terms {
			conds[i] = fmt.Sprintf("%s LIKE '%%%s%%'", col, escapeLiteral(term))
		}
		return strings.Join(conds, " AND ")
	}

	primary := conj(t.SearchColumns[0])
	attempts := []string{
		fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT %d", tableRef(t), primary, c.FuzzyRowCap),
	}
	if len(t.SearchColumns) > 1 {
		secondary := conj(t.SearchColumns[1])
		attempts = append(attempts,
			fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT %d", tableRef(t), secondary, c.FuzzyRowCap),
			fmt.Sprintf("SELECT * FROM %s WHERE (%s) OR (%s) LIMIT %d", tableRef(t), primary, secondary, c.FuzzyRowCap),
		)
	}

	for _, sql := range attempts {
		if err := ctx.Err(); err != nil {
			return nil, false
		}
		if rs, ok := c.try(ctx, sql); ok {
			return rs, true
		}
	}
	return nil, false
}

func tableRef(t schema.Table) string {
	if t.NeedsQuoting() {
		return "`" + t.RealName + "`"
	}
	return t.RealName
}
