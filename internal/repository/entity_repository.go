// Package repository implements persistence for every panel entity on top of
// one descriptor-driven engine. Entity-specific repositories wrap the engine
// and add the lookups their callers need.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/utils"
)

// EntityRepository defines the operations shared by every entity
type EntityRepository interface {
	// Descriptor returns the entity description the repository was built from.
	Descriptor() *models.EntityDescriptor

	Create(ctx context.Context, fields models.Record) (interface{}, error)
	GetByID(ctx context.Context, id interface{}) (models.Record, error)
	GetByIDs(ctx context.Context, ids []interface{}) (map[interface{}]models.Record, error)
	GetAll(ctx context.Context, opts models.ListOptions) ([]models.Record, error)
	GetCount(ctx context.Context, opts models.ListOptions) (int64, error)
	Update(ctx context.Context, id interface{}, changes models.Record) (bool, error)
	SoftDelete(ctx context.Context, id interface{}) error
	Restore(ctx context.Context, id interface{}) error
	HardDelete(ctx context.Context, id interface{}) error
	Delete(ctx context.Context, id interface{}) error

	// Predicate-based helpers used by entity-specific repositories
	FindBy(ctx context.Context, preds []database.Predicate, orderBy string, limit int) ([]models.Record, error)
	CountBy(ctx context.Context, preds []database.Predicate) (int64, error)
	UpdateBy(ctx context.Context, preds []database.Predicate, changes models.Record) (int64, error)
	DeleteBy(ctx context.Context, preds []database.Predicate) (int64, error)

	// WithTx returns a repository that runs its statements in tx
	WithTx(tx *sql.Tx) EntityRepository
}

// SQLEntityRepository is the database/sql implementation of EntityRepository
type SQLEntityRepository struct {
	db      database.Executor
	dialect database.Dialect
	desc    *models.EntityDescriptor
	now     func() time.Time
}

// NewEntityRepository creates a repository for the described entity.
//
// Parameters:
//   - pool: The database connection pool; its dialect decides the SQL flavour
//   - desc: The entity descriptor, validated before use
//
// Returns:
//   - The repository
//   - An error if the descriptor is inconsistent or uses unsafe identifiers
func NewEntityRepository(pool *database.Pool, desc *models.EntityDescriptor) (EntityRepository, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid entity descriptor: %w", err)
	}
	return &SQLEntityRepository{
		db:      pool,
		dialect: pool.Dialect,
		desc:    desc,
		now:     time.Now,
	}, nil
}

// mustEntityRepository is used for the built-in descriptors, whose validity
// is covered by tests.
func mustEntityRepository(pool *database.Pool, desc *models.EntityDescriptor) EntityRepository {
	repo, err := NewEntityRepository(pool, desc)
	if err != nil {
		panic(err)
	}
	return repo
}

// Descriptor returns the entity descriptor
func (r *SQLEntityRepository) Descriptor() *models.EntityDescriptor {
	return r.desc
}

// WithTx returns a copy of the repository bound to a transaction
func (r *SQLEntityRepository) WithTx(tx *sql.Tx) EntityRepository {
	clone := *r
	clone.db = tx
	return &clone
}

// Create inserts a new record.
//
// Parameters:
//   - ctx: Context for the operation
//   - fields: Column values; undeclared keys are ignored
//
// Returns:
//   - The new primary key (int64 for auto-increment keys, string for generated keys)
//   - A validation error, a duplicate error for an explicit key already in use,
//     or a persistence error if the insert fails
func (r *SQLEntityRepository) Create(ctx context.Context, fields models.Record) (interface{}, error) {
	d := r.desc
	pk := d.PK()

	values := r.declared(fields)
	r.normalizeFlags(values)
	for field, value := range d.Defaults {
		if isAbsent(values, field) {
			values[field] = value
		}
	}
	now := r.now().UTC()
	for _, ts := range []string{d.CreatedAtColumn, d.UpdatedAtColumn} {
		if ts != "" && isAbsent(values, ts) {
			values[ts] = now
		}
	}

	if err := r.validateCreate(values); err != nil {
		return nil, err
	}

	columns, args := r.ordered(values)

	var id interface{}
	explicit := false
	switch {
	case d.KeyKind == models.KeyGenerated:
		generated, err := d.GenerateID()
		if err != nil {
			return nil, utils.NewPersistenceError("create "+d.Name, err)
		}
		id = generated
	case d.AllowExplicitID && !isAbsent(fields, pk):
		explicitID, ok := models.ToInt64(fields[pk])
		if !ok || explicitID <= 0 {
			return nil, utils.NewValidationError(pk, "Must be a positive integer")
		}
		exists, err := r.exists(ctx, explicitID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, utils.NewDuplicateError(d.Name, pk, explicitID)
		}
		id = explicitID
		explicit = true
	}

	returning := ""
	if id != nil {
		columns = append([]string{pk}, columns...)
		args = append([]interface{}{id}, args...)
	} else {
		returning = pk
	}

	query, queryArgs := r.dialect.BuildInsert(d.Table, columns, args, returning)

	switch {
	case id == nil && r.dialect.UsesReturning():
		var newID int64
		startTime := time.Now()
		err := r.db.QueryRowContext(ctx, query, queryArgs...).Scan(&newID)
		utils.LogDBQuery(query, queryArgs, time.Since(startTime), err)
		if err != nil {
			return nil, utils.NewPersistenceError("create "+d.Name, err)
		}
		id = newID
	default:
		result, err := r.exec(ctx, query, queryArgs)
		if err != nil {
			return nil, utils.NewPersistenceError("create "+d.Name, err)
		}
		if id == nil {
			newID, err := result.LastInsertId()
			if err != nil {
				return nil, utils.NewPersistenceError("read id of new "+d.Name, err)
			}
			id = newID
		}
	}

	if explicit {
		r.resyncSequence(ctx)
	}

	utils.LogEntityEvent(d.Name, "created", id)
	return id, nil
}

// GetByID retrieves a record by primary key.
//
// Returns:
//   - The record
//   - A not found error if no row has the key, or a persistence error if the query fails
func (r *SQLEntityRepository) GetByID(ctx context.Context, id interface{}) (models.Record, error) {
	key, err := r.normalizeID(id)
	if err != nil {
		return nil, err
	}

	query, args := r.dialect.BuildSelect(r.desc.Table, r.keyPredicate(key), "", 1, 0)
	records, err := r.query(ctx, query, args)
	if err != nil {
		return nil, utils.NewPersistenceError("get "+r.desc.Name, err)
	}
	if len(records) == 0 {
		return nil, utils.NewNotFoundError(r.desc.Name, key)
	}
	return records[0], nil
}

// GetByIDs retrieves several records at once, keyed by primary key.
// Keys without a row are absent from the result. An empty input runs no query.
func (r *SQLEntityRepository) GetByIDs(ctx context.Context, ids []interface{}) (map[interface{}]models.Record, error) {
	result := make(map[interface{}]models.Record, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	seen := make(map[interface{}]bool, len(ids))
	keys := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		key, err := r.normalizeID(id)
		if err != nil {
			return nil, err
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	query, args := r.dialect.BuildSelect(
		r.desc.Table,
		[]database.Predicate{database.In{Column: r.desc.PK(), Values: keys}},
		r.desc.Ordering(), 0, 0,
	)
	records, err := r.query(ctx, query, args)
	if err != nil {
		return nil, utils.NewPersistenceError("get "+r.desc.Name, err)
	}

	for _, record := range records {
		key, err := r.normalizeID(record[r.desc.PK()])
		if err != nil {
			continue
		}
		result[key] = record
	}
	return result, nil
}

// GetAll lists records in the entity's default order.
// Soft-deleted rows are skipped unless opts.IncludeDeleted is set.
func (r *SQLEntityRepository) GetAll(ctx context.Context, opts models.ListOptions) ([]models.Record, error) {
	query, args := r.dialect.BuildSelect(r.desc.Table, r.listPredicates(opts), r.desc.Ordering(), opts.Limit, opts.Offset)
	records, err := r.query(ctx, query, args)
	if err != nil {
		return nil, utils.NewPersistenceError("list "+r.desc.Name, err)
	}
	return records, nil
}

// GetCount counts the records GetAll would return without pagination
func (r *SQLEntityRepository) GetCount(ctx context.Context, opts models.ListOptions) (int64, error) {
	count, err := r.CountBy(ctx, r.listPredicates(opts))
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Update applies changes to the record with the given key.
//
// Parameters:
//   - ctx: Context for the operation
//   - id: The primary key; it is never changed
//   - changes: Column values; the primary key and undeclared keys are dropped
//
// Returns:
//   - true if the row was updated, false for an empty changeset
//   - A validation error, a not found error if no row has the key,
//     or a persistence error if the statement fails
func (r *SQLEntityRepository) Update(ctx context.Context, id interface{}, changes models.Record) (bool, error) {
	values := r.declared(changes)
	if len(values) == 0 {
		return false, nil
	}

	key, err := r.normalizeID(id)
	if err != nil {
		return false, err
	}

	affected, err := r.update(ctx, r.keyPredicate(key), values)
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, utils.NewNotFoundError(r.desc.Name, key)
	}

	utils.LogEntityEvent(r.desc.Name, "updated", key)
	return true, nil
}

// SoftDelete flags the record as deleted without removing it
func (r *SQLEntityRepository) SoftDelete(ctx context.Context, id interface{}) error {
	sd := r.desc.SoftDelete
	if sd == nil {
		return utils.NewUnsupportedError(r.desc.Name, "soft delete")
	}
	return r.setFlag(ctx, id, sd.Column, sd.DeletedValue, "soft deleted")
}

// Restore clears the soft-delete flag
func (r *SQLEntityRepository) Restore(ctx context.Context, id interface{}) error {
	sd := r.desc.SoftDelete
	if sd == nil {
		return utils.NewUnsupportedError(r.desc.Name, "restore")
	}
	return r.setFlag(ctx, id, sd.Column, sd.ActiveValue, "restored")
}

// HardDelete removes the record permanently
func (r *SQLEntityRepository) HardDelete(ctx context.Context, id interface{}) error {
	key, err := r.normalizeID(id)
	if err != nil {
		return err
	}

	query, args := r.dialect.BuildDelete(r.desc.Table, r.keyPredicate(key))
	affected, err := r.execAffected(ctx, query, args)
	if err != nil {
		return utils.NewPersistenceError("delete "+r.desc.Name, err)
	}
	if affected == 0 {
		return utils.NewNotFoundError(r.desc.Name, key)
	}

	utils.LogEntityEvent(r.desc.Name, "deleted", key)
	return nil
}

// Delete is an alias for HardDelete
func (r *SQLEntityRepository) Delete(ctx context.Context, id interface{}) error {
	return r.HardDelete(ctx, id)
}

// FindBy lists records matching every predicate.
// orderBy must name declared columns; an empty value uses the default order.
func (r *SQLEntityRepository) FindBy(ctx context.Context, preds []database.Predicate, orderBy string, limit int) ([]models.Record, error) {
	if orderBy == "" {
		orderBy = r.desc.Ordering()
	} else if err := r.desc.CheckOrdering(orderBy); err != nil {
		return nil, utils.NewBadRequestError(err.Error())
	}

	query, args := r.dialect.BuildSelect(r.desc.Table, preds, orderBy, limit, 0)
	records, err := r.query(ctx, query, args)
	if err != nil {
		return nil, utils.NewPersistenceError("list "+r.desc.Name, err)
	}
	return records, nil
}

// CountBy counts records matching every predicate
func (r *SQLEntityRepository) CountBy(ctx context.Context, preds []database.Predicate) (int64, error) {
	query, args := r.dialect.BuildCount(r.desc.Table, preds)

	var count int64
	startTime := time.Now()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	utils.LogDBQuery(query, args, time.Since(startTime), err)
	if err != nil {
		return 0, utils.NewPersistenceError("count "+r.desc.Name, err)
	}
	return count, nil
}

// UpdateBy applies changes to every matching record and returns how many were updated
func (r *SQLEntityRepository) UpdateBy(ctx context.Context, preds []database.Predicate, changes models.Record) (int64, error) {
	values := r.declared(changes)
	if len(values) == 0 {
		return 0, nil
	}
	return r.update(ctx, preds, values)
}

// DeleteBy removes every matching record and returns how many were removed
func (r *SQLEntityRepository) DeleteBy(ctx context.Context, preds []database.Predicate) (int64, error) {
	query, args := r.dialect.BuildDelete(r.desc.Table, preds)
	affected, err := r.execAffected(ctx, query, args)
	if err != nil {
		return 0, utils.NewPersistenceError("delete "+r.desc.Name, err)
	}
	return affected, nil
}

// update validates values, stamps the update time and runs the statement
func (r *SQLEntityRepository) update(ctx context.Context, preds []database.Predicate, values models.Record) (int64, error) {
	r.normalizeFlags(values)
	if err := r.validateUpdate(values); err != nil {
		return 0, err
	}
	if ts := r.desc.UpdatedAtColumn; ts != "" {
		if _, ok := values[ts]; !ok {
			values[ts] = r.now().UTC()
		}
	}

	columns, args := r.ordered(values)
	query, queryArgs := r.dialect.BuildUpdate(r.desc.Table, columns, args, preds)
	affected, err := r.execAffected(ctx, query, queryArgs)
	if err != nil {
		return 0, utils.NewPersistenceError("update "+r.desc.Name, err)
	}
	return affected, nil
}

func (r *SQLEntityRepository) setFlag(ctx context.Context, id interface{}, column, value, action string) error {
	key, err := r.normalizeID(id)
	if err != nil {
		return err
	}

	query, args := r.dialect.BuildUpdate(r.desc.Table, []string{column}, []interface{}{value}, r.keyPredicate(key))
	affected, err := r.execAffected(ctx, query, args)
	if err != nil {
		return utils.NewPersistenceError("update "+r.desc.Name, err)
	}
	if affected == 0 {
		return utils.NewNotFoundError(r.desc.Name, key)
	}

	utils.LogEntityEvent(r.desc.Name, action, key)
	return nil
}

func (r *SQLEntityRepository) exists(ctx context.Context, key interface{}) (bool, error) {
	count, err := r.CountBy(ctx, r.keyPredicate(key))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// resyncSequence moves the key sequence past an explicitly inserted id.
// The row is already stored, so a failure here is only logged.
func (r *SQLEntityRepository) resyncSequence(ctx context.Context) {
	stmt := r.dialect.ResyncSequence(r.desc.Table, r.desc.PK())
	if stmt == "" {
		return
	}
	if _, err := r.exec(ctx, stmt, nil); err != nil {
		log.Warn().Err(err).Str("entity", r.desc.Name).Msg("Failed to resynchronise key sequence")
	}
}

func (r *SQLEntityRepository) keyPredicate(key interface{}) []database.Predicate {
	return []database.Predicate{database.Eq{Column: r.desc.PK(), Value: key}}
}

func (r *SQLEntityRepository) listPredicates(opts models.ListOptions) []database.Predicate {
	var preds []database.Predicate
	if sd := r.desc.SoftDelete; sd != nil && !opts.IncludeDeleted {
		preds = append(preds, database.NotFlagged{Column: sd.Column, Flagged: sd.DeletedValue, Default: sd.ActiveValue})
	}
	if term := strings.TrimSpace(opts.Search); term != "" && len(r.desc.SearchColumns) > 0 {
		preds = append(preds, database.Contains{Columns: r.desc.SearchColumns, Term: term})
	}
	return preds
}

// normalizeID converts a caller-supplied key to the type stored in the table
func (r *SQLEntityRepository) normalizeID(id interface{}) (interface{}, error) {
	pk := r.desc.PK()
	if r.desc.KeyKind == models.KeyGenerated {
		var key string
		switch v := id.(type) {
		case string:
			key = strings.TrimSpace(v)
		case []byte:
			key = strings.TrimSpace(string(v))
		case nil:
		default:
			key = fmt.Sprint(v)
		}
		if key == "" {
			return nil, utils.NewValidationError(pk, "This field is required")
		}
		return key, nil
	}

	key, ok := models.ToInt64(id)
	if !ok {
		return nil, utils.NewValidationError(pk, "Must be an integer")
	}
	return key, nil
}

// declared copies the declared fields out of input
func (r *SQLEntityRepository) declared(input models.Record) models.Record {
	values := make(models.Record, len(input))
	var ignored []string
	for k, v := range input {
		if r.desc.HasField(k) {
			values[k] = v
		} else {
			ignored = append(ignored, k)
		}
	}
	if len(ignored) > 0 {
		log.Debug().Str("entity", r.desc.Name).Strs("ignored", ignored).Msg("Ignoring undeclared columns")
	}
	return values
}

// normalizeFlags rewrites recognised flag values in place. Anything else is
// left for the field's rules to reject.
func (r *SQLEntityRepository) normalizeFlags(values models.Record) {
	for _, f := range r.desc.Flags {
		if v, ok := values[f]; ok {
			if flag, ok := models.FlagValue(v); ok {
				values[f] = flag
			}
		}
	}
}

// ordered returns the present columns in declaration order with their values
func (r *SQLEntityRepository) ordered(values models.Record) ([]string, []interface{}) {
	columns := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values))
	for _, f := range r.desc.Fields {
		if v, ok := values[f]; ok {
			columns = append(columns, f)
			args = append(args, v)
		}
	}
	return columns, args
}

func (r *SQLEntityRepository) validateCreate(values models.Record) error {
	details := make(map[string]string)
	for _, f := range r.desc.Required {
		if isBlank(values[f]) {
			details[f] = "This field is required"
		}
	}
	r.checkRules(values, details)
	return validationResult(details)
}

func (r *SQLEntityRepository) validateUpdate(values models.Record) error {
	details := make(map[string]string)
	for f, v := range values {
		if r.desc.IsRequired(f) && isBlank(v) {
			details[f] = "This field cannot be empty"
		}
	}
	r.checkRules(values, details)
	return validationResult(details)
}

func (r *SQLEntityRepository) checkRules(values models.Record, details map[string]string) {
	for f, tag := range r.desc.Rules {
		v, ok := values[f]
		if !ok || v == nil {
			continue
		}
		if _, failed := details[f]; failed {
			continue
		}
		if err := utils.ValidateField(f, v, tag); err != nil {
			details[f] = utils.ParseError(err).Message
		}
	}
}

func validationResult(details map[string]string) error {
	switch len(details) {
	case 0:
		return nil
	case 1:
		for field, message := range details {
			return utils.NewValidationError(field, message)
		}
	}
	return utils.NewValidationErrorWithDetails("Multiple validation errors", details)
}

func (r *SQLEntityRepository) query(ctx context.Context, query string, args []interface{}) ([]models.Record, error) {
	startTime := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		utils.LogDBQuery(query, args, time.Since(startTime), err)
		return nil, err
	}
	defer rows.Close()

	scanned, err := database.ScanRecords(rows)
	utils.LogDBQuery(query, args, time.Since(startTime), err)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, len(scanned))
	for i, row := range scanned {
		records[i] = row
	}
	return records, nil
}

func (r *SQLEntityRepository) exec(ctx context.Context, query string, args []interface{}) (sql.Result, error) {
	startTime := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)
	utils.LogDBQuery(query, args, time.Since(startTime), err)
	return result, err
}

func (r *SQLEntityRepository) execAffected(ctx context.Context, query string, args []interface{}) (int64, error) {
	result, err := r.exec(ctx, query, args)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func isAbsent(values models.Record, field string) bool {
	v, ok := values[field]
	return !ok || v == nil
}

func isBlank(v interface{}) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(s) == ""
	case []byte:
		return strings.TrimSpace(string(s)) == ""
	}
	return false
}
