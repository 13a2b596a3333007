package retry

import (
	"testing"
)

func TestParse(t *testing.T) {
	q, err := Parse("SELECT CL_DENO, CL_TEL FROM clientes WHERE CL_PROV = 'MADRID' AND ACCO_FEC > '2024-01-01' GROUP BY CL_PROV ORDER BY CL_DENO LIMIT 5")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if q.SelectList != "CL_DENO, CL_TEL" {
		t.Errorf("SelectList = %q", q.SelectList)
	}
	if q.Table != "clientes" {
		t.Errorf("Table = %q", q.Table)
	}
	if len(q.Predicates) != 2 {
		t.Fatalf("Predicates = %+v, want 2", q.Predicates)
	}
	if q.Predicates[0].Column != "CL_PROV" || q.Predicates[0].Op != "=" || q.Predicates[0].Value != "MADRID" {
		t.Errorf("first predicate = %+v", q.Predicates[0])
	}
	if !q.Predicates[1].IsDate {
		t.Errorf("second predicate should be a date condition: %+v", q.Predicates[1])
	}
	if q.GroupBy != "GROUP BY CL_PROV" || q.OrderBy != "ORDER BY CL_DENO" || q.Limit != "LIMIT 5" {
		t.Errorf("clauses = %q / %q / %q", q.GroupBy, q.OrderBy, q.Limit)
	}
}

func TestParseRejects(t *testing.T) {
	for _, sql := range []string{"DELETE FROM clientes", "SELECT 1", ""} {
		if _, err := Parse(sql); err == nil {
			t.Errorf("Parse(%q) should fail", sql)
		}
	}
}

func TestParseLikePredicate(t *testing.T) {
	q, err := Parse("SELECT AR_DENO FROM articulos WHERE AR_DENO LIKE '%tomate%' LIMIT 5")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	p, ok := q.SimplePredicate()
	if !ok {
		t.Fatal("SimplePredicate not found")
	}
	if p.Column != "AR_DENO" || p.Op != "LIKE" || p.Value != "tomate" {
		t.Errorf("predicate = %+v", p)
	}
}

func TestParseQuotedTable(t *testing.T) {
	q, err := Parse("SELECT PSI_FEC FROM `p-siembras` LIMIT 1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if q.Table != "p-siembras" {
		t.Errorf("Table = %q, want p-siembras", q.Table)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	tests := []string{
		"SELECT CL_DENO FROM clientes WHERE CL_PROV = 'MADRID' LIMIT 10",
		"SELECT CL_PROV, COUNT(*) FROM clientes GROUP BY CL_PROV",
		"SELECT AR_DENO FROM articulos ORDER BY AR_DENO LIMIT 3",
	}
	for _, sql := range tests {
		q, err := Parse(sql)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", sql, err)
		}
		if got := q.Render(); got != sql {
			t.Errorf("Render() = %q, want %q", got, sql)
		}
	}
}

func TestWithoutDatePredicates(t *testing.T) {
	q, err := Parse("SELECT id FROM acciones_com WHERE ACCO_CDCL = '001' AND ACCO_FEC > '2024-01-01' LIMIT 10")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	relaxed, changed := q.WithoutDatePredicates()
	if !changed {
		t.Fatal("expected a change")
	}
	want := "SELECT id FROM acciones_com WHERE ACCO_CDCL = '001' LIMIT 10"
	if got := relaxed.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	// The original stays intact.
	if len(q.Predicates) != 2 {
		t.Errorf("original mutated: %+v", q.Predicates)
	}
}

func TestWithoutDatePredicatesDropsWhere(t *testing.T) {
	q, err := Parse("SELECT id FROM acciones_com WHERE ACCO_FEC > '2024-01-01' LIMIT 10")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	relaxed, changed := q.WithoutDatePredicates()
	if !changed {
		t.Fatal("expected a change")
	}
	want := "SELECT id FROM acciones_com LIMIT 10"
	if got := relaxed.Render(); got != want {
		t.Errorf("orphaned WHERE not removed: %q", got)
	}
}

func TestWithoutGrouping(t *testing.T) {
	q, err := Parse("SELECT CL_PROV FROM clientes GROUP BY CL_PROV ORDER BY CL_PROV LIMIT 5")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	relaxed, changed := q.WithoutGrouping()
	if !changed {
		t.Fatal("expected a change")
	}
	want := "SELECT CL_PROV FROM clientes LIMIT 5"
	if got := relaxed.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	if _, changed := relaxed.WithoutGrouping(); changed {
		t.Error("second relaxation should be a no-op")
	}
}
