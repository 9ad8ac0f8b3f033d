package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// likeEscape is the escape character used in LIKE patterns. '!' needs no
// escaping inside a string literal in any supported dialect, unlike '\'.
const likeEscape = "!"

// Predicate is one term of a WHERE clause. Terms are joined with AND.
type Predicate interface {
	render(b *builder) string
}

// Eq matches rows whose column equals Value.
type Eq struct {
	Column string
	Value  interface{}
}

func (p Eq) render(b *builder) string {
	return p.Column + " = " + b.bind(p.Value)
}

// In matches rows whose column is one of Values. An empty list matches nothing.
type In struct {
	Column string
	Values []interface{}
}

func (p In) render(b *builder) string {
	if len(p.Values) == 0 {
		return "1 = 0"
	}
	marks := make([]string, len(p.Values))
	for i, v := range p.Values {
		marks[i] = b.bind(v)
	}
	return p.Column + " IN (" + strings.Join(marks, ", ") + ")"
}

// NotFlagged excludes rows whose flag column holds Flagged. NULL is read as
// Default, so rows predating the column stay visible.
type NotFlagged struct {
	Column  string
	Flagged string
	Default string
}

func (p NotFlagged) render(b *builder) string {
	return fmt.Sprintf("COALESCE(%s, %s) <> %s", p.Column, b.bind(p.Default), b.bind(p.Flagged))
}

// Contains is a case-insensitive substring match of Term against any of Columns.
// On SQLite only ASCII letters are folded; other letters must match in case.
type Contains struct {
	Columns []string
	Term    string
}

func (p Contains) render(b *builder) string {
	if len(p.Columns) == 0 {
		return "1 = 1"
	}

	format := "LOWER(%s) LIKE %s ESCAPE '%s'"
	term := strings.ToLower(p.Term)
	if b.dialect == DialectSQLite {
		format = "%s LIKE %s ESCAPE '%s'"
		term = p.Term
	}

	pattern := "%" + EscapeLike(term) + "%"
	terms := make([]string, len(p.Columns))
	for i, col := range p.Columns {
		terms[i] = fmt.Sprintf(format, col, b.bind(pattern), likeEscape)
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

// EscapeLike escapes LIKE wildcards so the term is matched literally.
func EscapeLike(term string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(term)
}

// builder accumulates SQL text and bound arguments, numbering placeholders
// for dialects that need it.
type builder struct {
	dialect Dialect
	sb      strings.Builder
	args    []interface{}
}

func (b *builder) bind(v interface{}) string {
	b.args = append(b.args, v)
	return b.dialect.Placeholder(len(b.args))
}

func (b *builder) where(preds []Predicate) {
	if len(preds) == 0 {
		return
	}
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.render(b)
	}
	b.sb.WriteString(" WHERE ")
	b.sb.WriteString(strings.Join(parts, " AND "))
}

// BuildInsert renders an INSERT of columns/values into table. When returning is
// non-empty and the dialect supports it, a RETURNING clause is appended.
func (d Dialect) BuildInsert(table string, columns []string, values []interface{}, returning string) (string, []interface{}) {
	b := &builder{dialect: d}
	marks := make([]string, len(values))
	for i, v := range values {
		marks[i] = b.bind(v)
	}
	fmt.Fprintf(&b.sb, "INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), strings.Join(marks, ", "))
	if returning != "" && d.UsesReturning() {
		b.sb.WriteString(" RETURNING " + returning)
	}
	return b.sb.String(), b.args
}

// BuildSelect renders a SELECT * over table.
func (d Dialect) BuildSelect(table string, preds []Predicate, orderBy string, limit, offset int) (string, []interface{}) {
	b := &builder{dialect: d}
	b.sb.WriteString("SELECT * FROM " + table)
	b.where(preds)
	if orderBy != "" {
		b.sb.WriteString(" ORDER BY " + orderBy)
	}
	b.sb.WriteString(d.LimitOffset(limit, offset))
	return b.sb.String(), b.args
}

// BuildCount renders a SELECT COUNT(*) over table.
func (d Dialect) BuildCount(table string, preds []Predicate) (string, []interface{}) {
	b := &builder{dialect: d}
	b.sb.WriteString("SELECT COUNT(*) FROM " + table)
	b.where(preds)
	return b.sb.String(), b.args
}

// BuildUpdate renders an UPDATE setting columns to values.
func (d Dialect) BuildUpdate(table string, columns []string, values []interface{}, preds []Predicate) (string, []interface{}) {
	b := &builder{dialect: d}
	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = col + " = " + b.bind(values[i])
	}
	fmt.Fprintf(&b.sb, "UPDATE %s SET %s", table, strings.Join(sets, ", "))
	b.where(preds)
	return b.sb.String(), b.args
}

// BuildDelete renders a DELETE over table.
func (d Dialect) BuildDelete(table string, preds []Predicate) (string, []interface{}) {
	b := &builder{dialect: d}
	b.sb.WriteString("DELETE FROM " + table)
	b.where(preds)
	return b.sb.String(), b.args
}

// ScanRecords reads every row into a column-name keyed map.
// Byte slices are converted to strings; MySQL returns text columns as []byte.
func ScanRecords(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get column names: %w", err)
	}

	var result []map[string]interface{}
	for rows.Next() {
		rowValues := make([]interface{}, len(columns))
		rowPointers := make([]interface{}, len(columns))
		for i := range rowValues {
			rowPointers[i] = &rowValues[i]
		}

		if err := rows.Scan(rowPointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rowMap := make(map[string]interface{}, len(columns))
		for i, colName := range columns {
			if raw, ok := rowValues[i].([]byte); ok {
				rowMap[colName] = string(raw)
				continue
			}
			rowMap[colName] = rowValues[i]
		}
		result = append(result, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}
