package sqlgen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySQL is returned when sql delimiters are present but contain only
// whitespace. Callers treat it as "no SQL", not as a user-facing failure.
var ErrEmptySQL = errors.New("sqlgen: bloque <sql> vacío")

// ValidationError reasons.
const (
	ReasonNotSelect = "not-select"
	ReasonWildcard  = "wildcard-select"
)

// ValidationError signals a statement the validator refuses to execute. The
// message is written so it can be fed back to the model verbatim.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func errNotSelect() *ValidationError {
	return &ValidationError{
		Reason:  ReasonNotSelect,
		Message: "la consulta debe comenzar con SELECT",
	}
}

func errWildcard(table string, columns []string) *ValidationError {
	msg := "no se permite usar SELECT *; especifica las columnas"
	if table != "" && len(columns) > 0 {
		msg = fmt.Sprintf("no se permite usar SELECT *; columnas declaradas de %s: %s",
			table, strings.Join(columns, ", "))
	}
	return &ValidationError{Reason: ReasonWildcard, Message: msg}
}

// UnknownTableError reports a FROM/JOIN target missing from the catalog.
type UnknownTableError struct {
	Table string
	Known []string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("la tabla %s no existe en el catálogo; tablas disponibles: %s",
		e.Table, strings.Join(e.Known, ", "))
}

// UnknownColumnError reports selected columns missing from a table.
type UnknownColumnError struct {
	Table   string
	Columns []string
	Known   []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("las columnas %s no existen en la tabla %s; columnas disponibles: %s",
		strings.Join(e.Columns, ", "), e.Table, strings.Join(e.Known, ", "))
}
