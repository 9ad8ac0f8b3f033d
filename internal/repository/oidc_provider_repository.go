package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/utils"
)

// OidcProviderRepository defines methods for interacting with OpenID Connect providers.
// Client secrets are sealed before they reach the database.
type OidcProviderRepository interface {
	EntityRepository

	GenerateUUID() (string, error)
	CreateProvider(ctx context.Context, fields models.Record) (string, error)
	GetProviderByUUID(ctx context.Context, uuid string) (models.Record, error)
	GetAllProviders(ctx context.Context) ([]models.Record, error)
	GetEnabledProviders(ctx context.Context) ([]models.Record, error)
	UpdateProvider(ctx context.Context, uuid string, changes models.Record) (bool, error)
	DeleteProvider(ctx context.Context, uuid string) error
	RevealClientSecret(record models.Record) (string, error)
}

// SQLOidcProviderRepository is the database/sql implementation of OidcProviderRepository
type SQLOidcProviderRepository struct {
	EntityRepository
	sealer *utils.Sealer
}

// NewOidcProviderRepository creates a new OidcProviderRepository.
// A nil or disabled sealer stores client secrets as given.
func NewOidcProviderRepository(db *database.Pool, sealer *utils.Sealer) OidcProviderRepository {
	return &SQLOidcProviderRepository{
		EntityRepository: mustEntityRepository(db, models.OidcProviderDescriptor()),
		sealer:           sealer,
	}
}

// GenerateUUID returns a fresh provider identifier
func (r *SQLOidcProviderRepository) GenerateUUID() (string, error) {
	return r.Descriptor().GenerateID()
}

// Create stores a provider after trimming its text, normalising its flags
// and sealing the client secret.
func (r *SQLOidcProviderRepository) Create(ctx context.Context, fields models.Record) (interface{}, error) {
	values, err := r.prepare(fields)
	if err != nil {
		return nil, err
	}
	return r.EntityRepository.Create(ctx, values)
}

// Update applies changes the way Create stores them. A supplied client
// secret is sealed again; it cannot be cleared.
func (r *SQLOidcProviderRepository) Update(ctx context.Context, id interface{}, changes models.Record) (bool, error) {
	if v, ok := changes[constants.ColumnClientSecret]; ok {
		if s, isString := v.(string); v == nil || (isString && strings.TrimSpace(s) == "") {
			return false, utils.NewValidationError(constants.ColumnClientSecret, "This field cannot be empty")
		}
	}

	values, err := r.prepare(changes)
	if err != nil {
		return false, err
	}
	return r.EntityRepository.Update(ctx, id, values)
}

// WithTx returns a provider repository bound to tx that keeps sealing secrets
func (r *SQLOidcProviderRepository) WithTx(tx *sql.Tx) EntityRepository {
	return &SQLOidcProviderRepository{
		EntityRepository: r.EntityRepository.WithTx(tx),
		sealer:           r.sealer,
	}
}

// CreateProvider stores a new provider.
//
// Parameters:
//   - ctx: Context for the operation
//   - fields: Provider columns; scopes, claims and flags fall back to defaults
//
// Returns:
//   - The generated provider UUID
//   - A validation error (missing fields, non-https issuer) or a persistence error
func (r *SQLOidcProviderRepository) CreateProvider(ctx context.Context, fields models.Record) (string, error) {
	id, err := r.Create(ctx, fields)
	if err != nil {
		return "", err
	}
	uuid, _ := id.(string)
	return uuid, nil
}

// GetProviderByUUID retrieves a provider by UUID
func (r *SQLOidcProviderRepository) GetProviderByUUID(ctx context.Context, uuid string) (models.Record, error) {
	key, err := providerKey(uuid)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, key)
}

// GetAllProviders lists every provider by name
func (r *SQLOidcProviderRepository) GetAllProviders(ctx context.Context) ([]models.Record, error) {
	return r.GetAll(ctx, models.ListOptions{})
}

// GetEnabledProviders lists the providers offered at login, by name
func (r *SQLOidcProviderRepository) GetEnabledProviders(ctx context.Context) ([]models.Record, error) {
	return r.FindBy(ctx, []database.Predicate{
		database.Eq{Column: constants.ColumnEnabled, Value: constants.FlagTrue},
	}, "", 0)
}

// UpdateProvider applies changes to a provider
func (r *SQLOidcProviderRepository) UpdateProvider(ctx context.Context, uuid string, changes models.Record) (bool, error) {
	key, err := providerKey(uuid)
	if err != nil {
		return false, err
	}
	return r.Update(ctx, key, changes)
}

// DeleteProvider permanently removes a provider
func (r *SQLOidcProviderRepository) DeleteProvider(ctx context.Context, uuid string) error {
	key, err := providerKey(uuid)
	if err != nil {
		return err
	}
	return r.HardDelete(ctx, key)
}

// providerKey accepts a version 4 UUID in any case and returns its stored form
func providerKey(uuid string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(uuid))
	if !utils.IsUUIDv4(key) {
		return "", utils.NewValidationError(constants.ColumnUUID, "Must be a valid UUID")
	}
	return key, nil
}

// RevealClientSecret returns the plaintext client secret of a stored provider
func (r *SQLOidcProviderRepository) RevealClientSecret(record models.Record) (string, error) {
	secret, err := r.sealer.Open(record.String(constants.ColumnClientSecret))
	if err != nil {
		return "", utils.NewInternalServerError(err)
	}
	return secret, nil
}

// prepare trims text, normalises the issuer and flags and seals the client secret
func (r *SQLOidcProviderRepository) prepare(fields models.Record) (models.Record, error) {
	values := fields.Clone()
	for k, v := range values {
		if s, ok := v.(string); ok {
			values[k] = strings.TrimSpace(s)
		}
	}

	if issuer, ok := values[constants.ColumnIssuerURL].(string); ok {
		values[constants.ColumnIssuerURL] = strings.TrimRight(issuer, "/")
	}

	// Unrecognised flag values switch the flag off
	for _, flag := range r.Descriptor().Flags {
		if v, ok := values[flag]; ok && v != nil {
			if _, known := models.FlagValue(v); !known {
				values[flag] = constants.FlagFalse
			}
		}
	}

	if secret, ok := values[constants.ColumnClientSecret].(string); ok {
		sealed, err := r.sealer.Seal(secret)
		if err != nil {
			return nil, utils.NewInternalServerError(err)
		}
		values[constants.ColumnClientSecret] = sealed
	}

	return values, nil
}

// StripClientSecret returns a copy of a provider record without its client secret
func StripClientSecret(record models.Record) models.Record {
	out := record.Clone()
	delete(out, constants.ColumnClientSecret)
	return out
}

// StripClientSecrets applies StripClientSecret to every record
func StripClientSecrets(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, record := range records {
		out[i] = StripClientSecret(record)
	}
	return out
}
