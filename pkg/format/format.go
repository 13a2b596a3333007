// Package format turns query results into the Spanish text the assistant
// replies with: a count line, a Markdown table or a narrative record list,
// with column names resolved to their catalog descriptions.
package format

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/semillaai/semilla/pkg/erpdb"
	"github.com/semillaai/semilla/pkg/retry"
	"github.com/semillaai/semilla/pkg/schema"
)

// Kind classifies a result set's presentation. It is derived once from the
// set's shape and drives every formatting decision.
type Kind string

const (
	KindCount   Kind = "count"
	KindRecords Kind = "records"
	KindTable   Kind = "table"
)

// Classify maps a result-set shape to its presentation kind: one row with one
// column is a count, small sets read as records, anything bigger as a table.
func Classify(rs *erpdb.ResultSet, recordCap int) Kind {
	if rs.Len() == 1 && len(rs.Columns) == 1 {
		return KindCount
	}
	if rs.Len() <= recordCap {
		return KindRecords
	}
	return KindTable
}

var (
	detailRE = regexp.MustCompile(`(?i)\bcomplet[ao]s?\b|\bdetallad[ao]s?\b|todos los datos|toda la información`)
	randomRE = regexp.MustCompile(`(?i)aleatori|al azar|cualquier|\bejemplos?\b`)
)

const (
	defaultRowCap  = 5
	detailedRowCap = 10
)

// Formatter renders results. Shuffle is swappable so tests stay
// deterministic.
type Formatter struct {
	Registry *schema.Registry

	shuffle func(n int, swap func(i, j int))
}

func New(reg *schema.Registry) *Formatter {
	return &Formatter{Registry: reg, shuffle: rand.Shuffle}
}

// Exhausted is the reply when the cascade ran out of fallbacks.
const Exhausted = "No encontré información sobre eso en la base de datos. ¿Quieres que lo busque de otra forma?"

// Format renders a cascade result for the question that produced it.
func (f *Formatter) Format(question string, res *retry.Result) string {
	if res.Exhausted {
		return Exhausted
	}

	rowCap := defaultRowCap
	if detailRE.MatchString(question) {
		rowCap = detailedRowCap
	}

	rows := res.Set.Rows
	if randomRE.MatchString(question) && len(rows) > 1 {
		rows = append([]erpdb.Row(nil), rows...)
		f.shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	}

	var truncated int
	if len(rows) > rowCap {
		truncated = len(rows) - rowCap
		rows = rows[:rowCap]
	}

	var body string
	switch Classify(res.Set, rowCap) {
	case KindCount:
		body = f.count(res.Set)
	case KindRecords:
		body = f.records(res.Set.Columns, rows, res.Table)
	default:
		body = f.table(res.Set.Columns, rows)
	}

	var b strings.Builder
	if note := disclaimer(res.Fallback); note != "" {
		b.WriteString(note)
		b.WriteString("\n\n")
	}
	b.WriteString(body)
	if truncated > 0 {
		fmt.Fprintf(&b, "\n\nMostrando %d de %d resultados.", len(rows), len(rows)+truncated)
	}
	return b.String()
}

func disclaimer(fb retry.Fallback) string {
	switch fb {
	case retry.FallbackDateRelaxed:
		return "No había resultados con ese filtro de fechas, así que amplié la búsqueda a todas las fechas."
	case retry.FallbackGroupRelaxed:
		return "Amplié la búsqueda quitando la agrupación original."
	case retry.FallbackMostRecent:
		return "No encontré resultados con esos criterios exactos; te muestro el registro más reciente."
	case retry.FallbackFuzzy:
		return "No encontré coincidencias exactas, así que hice una búsqueda flexible y estos son los resultados similares."
	default:
		return ""
	}
}

func (f *Formatter) count(rs *erpdb.ResultSet) string {
	return fmt.Sprintf("Total: %s", renderValue(rs.Rows[0][rs.Columns[0]]))
}

// records renders each row as a labeled field list, resolving columns to
// their catalog descriptions.
func (f *Formatter) records(columns []string, rows []erpdb.Row, table string) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if len(rows) > 1 {
			fmt.Fprintf(&b, "**Registro %d:**\n", i+1)
		}
		for j, col := range columns {
			if j > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- %s: %s", f.Registry.ColumnDescription(table, col), renderValue(row[col]))
		}
	}
	return b.String()
}

// table renders a Markdown table: header, separator, one line per row.
func (f *Formatter) table(columns []string, rows []erpdb.Row) string {
	var b strings.Builder
	b.WriteString("| ")
	b.WriteString(strings.Join(columns, " | "))
	b.WriteString(" |\n|")
	for range columns {
		b.WriteString(" --- |")
	}
	for _, row := range rows {
		b.WriteString("\n| ")
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = strings.ReplaceAll(renderValue(row[c]), "|", "\\|")
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString(" |")
	}
	return b.String()
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// LongDate renders a Spanish long date: "2 de enero de 2006".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// renderValue converts one cell to display text. Date-like values become
// Spanish long dates; NULLs become a placeholder.
func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "(sin datos)"
	case time.Time:
		return LongDate(t)
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return LongDate(parsed)
			}
		}
		if t == "" {
			return "(sin datos)"
		}
		return t
	case []byte:
		return renderValue(string(t))
	default:
		return fmt.Sprintf("%v", t)
	}
}
