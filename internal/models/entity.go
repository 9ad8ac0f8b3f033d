// Package models defines the records handled by panelstore and the
// descriptors that tell the generic repository how each entity is stored.
package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/featherpanel/panelstore/internal/constants"
)

// identifierPattern restricts table and column names. Identifiers are
// interpolated into SQL, so anything outside this set is refused.
var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Record is one row keyed by column name.
type Record map[string]interface{}

// String returns the value of key as a string, or "" when absent or not textual.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the value of key as an int64.
func (r Record) Int64(key string) (int64, bool) {
	return ToInt64(r[key])
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ToInt64 converts the integer-like values produced by drivers and callers.
// Strings must hold a base-10 integer; floats must be whole.
func ToInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > 1<<63-1 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	case []byte:
		i, err := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
		return i, err == nil
	}
	return 0, false
}

// FlagValue maps a caller value onto the stored 'true'/'false' strings.
// It reports false for anything that is not a bool or one of the two words.
func FlagValue(v interface{}) (string, bool) {
	switch f := v.(type) {
	case bool:
		if f {
			return constants.FlagTrue, true
		}
		return constants.FlagFalse, true
	case string:
		switch {
		case strings.EqualFold(strings.TrimSpace(f), constants.FlagTrue):
			return constants.FlagTrue, true
		case strings.EqualFold(strings.TrimSpace(f), constants.FlagFalse):
			return constants.FlagFalse, true
		}
	}
	return "", false
}

// KeyKind describes how primary keys are assigned.
type KeyKind int

const (
	// KeyAutoIncrement keys are assigned by the database.
	KeyAutoIncrement KeyKind = iota
	// KeyGenerated keys are produced by the repository before insert.
	KeyGenerated
)

// SoftDelete configures a flag column that hides rows instead of removing them.
type SoftDelete struct {
	Column       string
	DeletedValue string
	ActiveValue  string
}

// EntityDescriptor describes the storage of one entity.
type EntityDescriptor struct {
	Name       string
	Table      string
	PrimaryKey string
	KeyKind    KeyKind

	// Fields are the insertable and updatable columns, in insert order.
	// The primary key is never listed here.
	Fields   []string
	Required []string
	// Rules holds validator tags per field, checked on create and update.
	Rules map[string]string
	// Flags are boolean columns stored as 'true'/'false' strings. Booleans
	// and either word in any case are stored in canonical form.
	Flags []string
	// Defaults fill fields absent on create.
	Defaults map[string]interface{}

	SearchColumns []string
	OrderBy       string

	CreatedAtColumn string
	UpdatedAtColumn string

	SoftDelete *SoftDelete

	// AllowExplicitID lets callers supply a positive integer key on create.
	AllowExplicitID bool
	// GenerateID produces keys for KeyGenerated entities.
	GenerateID func() (string, error)
}

// PK returns the primary key column.
func (d *EntityDescriptor) PK() string {
	if d.PrimaryKey == "" {
		return constants.ColumnID
	}
	return d.PrimaryKey
}

// Ordering returns the ORDER BY clause body used for listings.
func (d *EntityDescriptor) Ordering() string {
	if d.OrderBy == "" {
		return d.PK() + " ASC"
	}
	return d.OrderBy
}

// HasField reports whether column is a declared field.
func (d *EntityDescriptor) HasField(column string) bool {
	for _, f := range d.Fields {
		if f == column {
			return true
		}
	}
	return false
}

// IsRequired reports whether field must be non-blank on create.
func (d *EntityDescriptor) IsRequired(field string) bool {
	for _, f := range d.Required {
		if f == field {
			return true
		}
	}
	return false
}

// Columns returns the primary key followed by every declared field.
func (d *EntityDescriptor) Columns() []string {
	return append([]string{d.PK()}, d.Fields...)
}

// Validate checks that the descriptor is internally consistent and that every
// identifier is safe to interpolate.
func (d *EntityDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("descriptor has no name")
	}
	if !identifierPattern.MatchString(d.Table) {
		return fmt.Errorf("%s: invalid table name %q", d.Name, d.Table)
	}
	if !identifierPattern.MatchString(d.PK()) {
		return fmt.Errorf("%s: invalid primary key %q", d.Name, d.PK())
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("%s: no fields declared", d.Name)
	}

	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if !identifierPattern.MatchString(f) {
			return fmt.Errorf("%s: invalid field name %q", d.Name, f)
		}
		if f == d.PK() {
			return fmt.Errorf("%s: primary key %q must not be listed as a field", d.Name, f)
		}
		if seen[f] {
			return fmt.Errorf("%s: field %q declared twice", d.Name, f)
		}
		seen[f] = true
	}

	checkSubset := func(kind string, cols []string) error {
		for _, c := range cols {
			if !seen[c] {
				return fmt.Errorf("%s: %s column %q is not a declared field", d.Name, kind, c)
			}
		}
		return nil
	}
	if err := checkSubset("required", d.Required); err != nil {
		return err
	}
	if err := checkSubset("search", d.SearchColumns); err != nil {
		return err
	}
	if err := checkSubset("flag", d.Flags); err != nil {
		return err
	}
	for field := range d.Rules {
		if err := checkSubset("rule", []string{field}); err != nil {
			return err
		}
	}
	for field := range d.Defaults {
		if err := checkSubset("default", []string{field}); err != nil {
			return err
		}
	}
	for _, ts := range []string{d.CreatedAtColumn, d.UpdatedAtColumn} {
		if ts != "" {
			if err := checkSubset("timestamp", []string{ts}); err != nil {
				return err
			}
		}
	}

	if d.SoftDelete != nil {
		if err := checkSubset("soft delete", []string{d.SoftDelete.Column}); err != nil {
			return err
		}
		if d.SoftDelete.DeletedValue == d.SoftDelete.ActiveValue {
			return fmt.Errorf("%s: soft delete values must differ", d.Name)
		}
	}

	if d.OrderBy != "" {
		if err := d.CheckOrdering(d.OrderBy); err != nil {
			return err
		}
	}

	switch d.KeyKind {
	case KeyAutoIncrement:
	case KeyGenerated:
		if d.GenerateID == nil {
			return fmt.Errorf("%s: generated keys need an identifier generator", d.Name)
		}
		if d.AllowExplicitID {
			return fmt.Errorf("%s: explicit ids are only supported for auto-increment keys", d.Name)
		}
	default:
		return fmt.Errorf("%s: unknown key kind %d", d.Name, d.KeyKind)
	}

	return nil
}

// CheckOrdering accepts "col [ASC|DESC], ..." over the primary key and declared fields.
func (d *EntityDescriptor) CheckOrdering(orderBy string) error {
	for _, term := range strings.Split(orderBy, ",") {
		parts := strings.Fields(term)
		if len(parts) == 0 || len(parts) > 2 {
			return fmt.Errorf("%s: invalid ordering term %q", d.Name, term)
		}
		if parts[0] != d.PK() && !d.HasField(parts[0]) {
			return fmt.Errorf("%s: ordering column %q is not declared", d.Name, parts[0])
		}
		if len(parts) == 2 {
			dir := strings.ToUpper(parts[1])
			if dir != "ASC" && dir != "DESC" {
				return fmt.Errorf("%s: invalid ordering direction %q", d.Name, parts[1])
			}
		}
	}
	return nil
}

// ListOptions narrows a listing.
type ListOptions struct {
	// Search is matched case-insensitively as a substring of any search column.
	Search string
	// Limit caps the number of rows; zero or negative means unlimited.
	Limit int
	// Offset skips rows, with or without a limit.
	Offset int
	// IncludeDeleted also returns soft-deleted rows.
	IncludeDeleted bool
}
