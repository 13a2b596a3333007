// Package schema holds the static catalog mapping the logical table names the
// model reasons with to the real ERP tables, their columns and relationships.
// The registry is loaded once at startup and is read-only afterwards.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Relationship links a table column to another table's column.
type Relationship struct {
	TargetTable   string
	LocalColumn   string
	ForeignColumn string
	Description   string
}

// Table describes one logical ERP table.
type Table struct {
	Key           string
	RealName      string
	Description   string
	Columns       map[string]string
	Relationships []Relationship

	// SearchColumns are the denomination/reference columns probed by the
	// multi-term fuzzy search, primary first.
	SearchColumns []string
}

// NeedsQuoting reports whether the real table name must be backtick-quoted in
// generated SQL.
func (t Table) NeedsQuoting() bool {
	return strings.ContainsAny(t.RealName, "- ")
}

// DateColumn returns the first column that looks like a date, if any.
func (t Table) DateColumn() (string, bool) {
	cols := make([]string, 0, len(t.Columns))
	for c := range t.Columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		if strings.Contains(strings.ToLower(c), "fec") {
			return c, true
		}
	}
	return "", false
}

var nonTextColumn = []string{
	"id", "num", "cant", "fecha", "fec", "total", "importe", "precio",
	"monto", "valor", "kg", "porc", "cdp", "bar",
}

// TextColumns returns the columns worth probing with LIKE predicates, falling
// back to every column when the heuristic filters all of them out.
func (t Table) TextColumns() []string {
	all := make([]string, 0, len(t.Columns))
	for c := range t.Columns {
		all = append(all, c)
	}
	sort.Strings(all)

	text := make([]string, 0, len(all))
	for _, c := range all {
		name := strings.ToLower(c)
		skip := false
		for _, marker := range nonTextColumn {
			if strings.Contains(name, marker) {
				skip = true
				break
			}
		}
		if strings.ContainsAny(name, "0123456789") {
			skip = true
		}
		if !skip {
			text = append(text, c)
		}
	}
	if len(text) == 0 {
		return all
	}
	return text
}

// ColumnNames returns the declared column names in sorted order.
func (t Table) ColumnNames() []string {
	cols := make([]string, 0, len(t.Columns))
	for c := range t.Columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Registry is the immutable table catalog.
type Registry struct {
	tables map[string]Table
	byReal map[string]string
	keys   []string
}

// New builds a registry from a set of tables. Keys are matched
// case-insensitively on lookup.
func New(tables []Table) *Registry {
	r := &Registry{
		tables: make(map[string]Table, len(tables)),
		byReal: make(map[string]string, len(tables)),
	}
	for _, t := range tables {
		if t.RealName == "" {
			t.RealName = t.Key
		}
		key := strings.ToLower(t.Key)
		r.tables[key] = t
		r.byReal[strings.ToLower(t.RealName)] = t.Key
		r.keys = append(r.keys, t.Key)
	}
	sort.Strings(r.keys)
	return r
}

// Keys returns every logical table key, sorted.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Lookup finds a table by logical key.
func (r *Registry) Lookup(key string) (Table, bool) {
	t, ok := r.tables[strings.ToLower(key)]
	return t, ok
}

// LookupReal finds a table by its real (underlying) name.
func (r *Registry) LookupReal(real string) (Table, bool) {
	key, ok := r.byReal[strings.ToLower(real)]
	if !ok {
		return Table{}, false
	}
	return r.Lookup(key)
}

// Resolve accepts either a logical key or a real name.
func (r *Registry) Resolve(name string) (Table, bool) {
	if t, ok := r.Lookup(name); ok {
		return t, true
	}
	return r.LookupReal(name)
}

// RealName maps a logical key to the underlying table name, returning the key
// unchanged when it is unknown.
func (r *Registry) RealName(key string) string {
	if t, ok := r.Lookup(key); ok {
		return t.RealName
	}
	return key
}

// ColumnDescription resolves a column to its human description, returning the
// column name itself when no description is declared.
func (r *Registry) ColumnDescription(key, column string) string {
	t, ok := r.Lookup(key)
	if !ok {
		return column
	}
	if desc, ok := t.Columns[column]; ok && desc != "" {
		return desc
	}
	return column
}

// TableForColumns infers the logical table whose declared columns cover every
// name in cols. Used to resolve descriptions for result sets.
func (r *Registry) TableForColumns(cols []string) (string, bool) {
	if len(cols) == 0 {
		return "", false
	}
	for _, key := range r.keys {
		t, _ := r.Lookup(key)
		covered := true
		for _, c := range cols {
			if _, ok := t.Columns[c]; !ok {
				covered = false
				break
			}
		}
		if covered {
			return key, true
		}
	}
	return "", false
}

// keyword aliases mapping common question words to their table.
var keywordTables = map[string]string{
	"cliente":    "clientes",
	"clientes":   "clientes",
	"proveedor":  "proveedores",
	"proveedores": "proveedores",
	"articulo":   "articulos",
	"articulos":  "articulos",
	"artículo":   "articulos",
	"artículos":  "articulos",
	"bandeja":    "bandejas",
	"bandejas":   "bandejas",
	"vendedor":   "vendedores",
	"vendedores": "vendedores",
	"tecnico":    "tecnicos",
	"técnico":    "tecnicos",
	"siembra":    "partes_siembra",
	"siembras":   "partes_siembra",
	"albaran":    "albaranes_venta",
	"albarán":    "albaranes_venta",
	"accion":     "acciones_com",
	"acción":     "acciones_com",
	"acciones":   "acciones_com",
}

// Excerpt builds the schema context block embedded in the system prompt: the
// table matching the question's keywords, or the available key list when no
// table matches.
func (r *Registry) Excerpt(question string) string {
	var key string
	for _, word := range strings.Fields(strings.ToLower(question)) {
		word = strings.Trim(word, ".,;:¿?¡!\"'")
		if k, ok := keywordTables[word]; ok {
			key = k
			break
		}
	}
	t, ok := r.Lookup(key)
	if key == "" || !ok {
		return "Tablas disponibles: " + strings.Join(r.Keys(), ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TABLA %s:\n", t.Key)
	fmt.Fprintf(&b, "Descripción: %s\n", t.Description)
	fmt.Fprintf(&b, "Columnas: %s", strings.Join(t.ColumnNames(), ", "))
	for _, rel := range t.Relationships {
		fmt.Fprintf(&b, "\nRelación: %s.%s -> %s.%s (%s)",
			t.Key, rel.LocalColumn, rel.TargetTable, rel.ForeignColumn, rel.Description)
	}
	return b.String()
}
