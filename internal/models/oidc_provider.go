package models

import (
	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/utils"
)

// OidcProviderDescriptor describes external OpenID Connect identity providers.
// Providers are keyed by a generated UUIDv4 and hold a sealed client secret.
func OidcProviderDescriptor() *EntityDescriptor {
	flag := "oneof=" + constants.FlagTrue + " " + constants.FlagFalse
	return &EntityDescriptor{
		Name:       "OidcProvider",
		Table:      constants.TableOidcProviders,
		PrimaryKey: constants.ColumnUUID,
		KeyKind:    KeyGenerated,
		Fields: []string{
			constants.ColumnName,
			constants.ColumnIssuerURL,
			constants.ColumnClientID,
			constants.ColumnClientSecret,
			constants.ColumnScopes,
			constants.ColumnEmailClaim,
			constants.ColumnSubjectClaim,
			constants.ColumnGroupClaim,
			constants.ColumnGroupValue,
			constants.ColumnAutoProvision,
			constants.ColumnRequireEmailVerified,
			constants.ColumnEnabled,
			constants.ColumnCreatedAt,
			constants.ColumnUpdatedAt,
		},
		Required: []string{
			constants.ColumnName,
			constants.ColumnIssuerURL,
			constants.ColumnClientID,
			constants.ColumnClientSecret,
		},
		Rules: map[string]string{
			constants.ColumnName:                 "max=255",
			constants.ColumnIssuerURL:            "https_url",
			constants.ColumnAutoProvision:        flag,
			constants.ColumnRequireEmailVerified: flag,
			constants.ColumnEnabled:              flag,
		},
		Flags: []string{
			constants.ColumnAutoProvision,
			constants.ColumnRequireEmailVerified,
			constants.ColumnEnabled,
		},
		Defaults: map[string]interface{}{
			constants.ColumnScopes:               constants.DefaultOidcScopes,
			constants.ColumnEmailClaim:           constants.DefaultOidcEmailClaim,
			constants.ColumnSubjectClaim:         constants.DefaultOidcSubjectClaim,
			constants.ColumnAutoProvision:        constants.FlagFalse,
			constants.ColumnRequireEmailVerified: constants.FlagFalse,
			constants.ColumnEnabled:              constants.FlagFalse,
		},
		SearchColumns:   []string{constants.ColumnName, constants.ColumnIssuerURL},
		OrderBy:         constants.ColumnName + " ASC, " + constants.ColumnUUID + " ASC",
		CreatedAtColumn: constants.ColumnCreatedAt,
		UpdatedAtColumn: constants.ColumnUpdatedAt,
		GenerateID:      utils.NewUUIDv4,
	}
}
