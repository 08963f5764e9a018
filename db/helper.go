package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

var ErrColumnsMismatch = errors.New("number of columns and values differ")

// Column is a column definition for CreateTable, e.g. {"id", "INTEGER PRIMARY KEY"}.
type Column struct {
	Name, Definition string
}

// Assignment is a single column = value pair of an UPDATE statement.
type Assignment struct {
	Column, Value string
}

// Helper translates structured operations into SQL text executed by the owned backend.
//
// Values are substituted literally, enclosed in single quotes. No escaping happens
// whatsoever, so values must be sanitized by the caller. The same applies to where
// clauses, which are taken as is.
type Helper struct {
	backend Backend
	log     zerolog.Logger
}

func NewHelper(backend Backend, log zerolog.Logger) *Helper {
	return &Helper{
		backend: backend,
		log:     log,
	}
}

// Backend returns the wrapped backend.
func (h *Helper) Backend() Backend {
	return h.backend
}

// CreateTable creates the table unless it already exists.
func (h *Helper) CreateTable(name string, columns []Column) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(name)
	b.WriteString(" (")

	for i, column := range columns {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(column.Name)
		b.WriteByte(' ')
		b.WriteString(column.Definition)
	}

	b.WriteString(");")

	return h.execute(b.String())
}

func (h *Helper) Insert(table string, columns, values []string) error {
	if len(columns) != len(values) {
		return fmt.Errorf("insert into %s: %w", table, ErrColumnsMismatch)
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s);",
		table, strings.Join(columns, ", "), quoteAll(values),
	)

	return h.execute(stmt)
}

// Update sets the columns of all rows matching the where clause. Empty where clause
// updates the whole table.
func (h *Helper) Update(table string, assignments []Assignment, where string) error {
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")

	for i, a := range assignments {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(a.Column)
		b.WriteString(" = ")
		b.WriteString(quote(a.Value))
	}

	appendWhere(&b, where)
	b.WriteByte(';')

	return h.execute(b.String())
}

// Delete removes all rows matching the where clause. Empty where clause empties
// the whole table.
func (h *Helper) Delete(table, where string) error {
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(table)
	appendWhere(&b, where)
	b.WriteByte(';')

	return h.execute(b.String())
}

// Select returns the columns of all rows. No columns selects all of them.
func (h *Helper) Select(table string, columns []string) QueryResult {
	return h.SelectWhere(table, columns, "")
}

// SelectWhere is the same as Select, but with a where clause.
func (h *Helper) SelectWhere(table string, columns []string, where string) QueryResult {
	var b strings.Builder
	b.WriteString("SELECT ")

	if len(columns) == 0 {
		b.WriteByte('*')
	} else {
		b.WriteString(strings.Join(columns, ", "))
	}

	b.WriteString(" FROM ")
	b.WriteString(table)
	appendWhere(&b, where)
	b.WriteByte(';')

	return h.query(b.String())
}

func (h *Helper) execute(stmt string) error {
	h.log.Trace().Str("sql", stmt).Msg("execute")

	if err := h.backend.Execute(stmt); err != nil {
		h.log.Debug().Err(err).Str("sql", stmt).Msg("statement failed")
		return err
	}

	return nil
}

func (h *Helper) query(stmt string) QueryResult {
	h.log.Trace().Str("sql", stmt).Msg("query")

	result := h.backend.Query(stmt)
	if !result.Success {
		h.log.Debug().Str("error", result.Error).Str("sql", stmt).Msg("query failed")
	}

	return result
}

func appendWhere(b *strings.Builder, where string) {
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
}

func quote(value string) string {
	return "'" + value + "'"
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = quote(value)
	}

	return strings.Join(quoted, ", ")
}
