package utils_test

import (
	"strings"
	"testing"

	"github.com/featherpanel/panelstore/internal/utils"
)

type TestProvider struct {
	Name      string `db:"name" validate:"required,max=32"`
	IssuerURL string `db:"issuer_url" validate:"required,https_url"`
	Email     string `db:"email" validate:"omitempty,email"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name        string
		model       TestProvider
		wantErr     bool
		errContains string
		multiple    bool
	}{
		{
			name:  "Valid",
			model: TestProvider{Name: "Keycloak", IssuerURL: "https://sso.example.com/realms/main"},
		},
		{
			name:        "Missing name",
			model:       TestProvider{IssuerURL: "https://sso.example.com"},
			wantErr:     true,
			errContains: "name: This field is required",
		},
		{
			name:        "Plain http issuer",
			model:       TestProvider{Name: "Keycloak", IssuerURL: "http://sso.example.com"},
			wantErr:     true,
			errContains: "issuer_url: Must be a valid https URL",
		},
		{
			name:     "Several failures",
			model:    TestProvider{Email: "nope"},
			wantErr:  true,
			multiple: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := utils.ValidateStruct(tt.model)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr {
				return
			}

			if !utils.IsValidationError(err) {
				t.Errorf("Expected validation error, got %T", err)
			}

			if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Error message does not contain %q: %v", tt.errContains, err)
			}

			if tt.multiple {
				appErr := utils.ParseError(err)
				if len(appErr.Details) < 2 {
					t.Errorf("Expected details for several fields, got %v", appErr.Details)
				}
			}
		})
	}
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		value       interface{}
		tag         string
		wantErr     bool
		errContains string
	}{
		{name: "Empty tag", field: "name", value: "", tag: ""},
		{name: "Valid https URL", field: "issuer_url", value: "https://id.example.org", tag: "https_url"},
		{name: "Missing host", field: "issuer_url", value: "https://", tag: "https_url", wantErr: true},
		{name: "Wrong scheme", field: "issuer_url", value: "ftp://id.example.org", tag: "https_url", wantErr: true, errContains: "https"},
		{name: "Public IP host", field: "issuer_url", value: "https://8.8.8.8/auth", tag: "https_url"},
		{name: "Loopback host", field: "issuer_url", value: "https://127.0.0.1/auth", tag: "https_url", wantErr: true},
		{name: "Private host", field: "issuer_url", value: "https://192.168.1.10", tag: "https_url", wantErr: true},
		{name: "Private IPv6 host", field: "issuer_url", value: "https://[fd00::1]/", tag: "https_url", wantErr: true},
		{name: "Mapped loopback host", field: "issuer_url", value: "https://[::ffff:127.0.0.1]/", tag: "https_url", wantErr: true},
		{name: "Role in set", field: "role", value: "assistant", tag: "oneof=user assistant system"},
		{name: "Role outside set", field: "role", value: "robot", tag: "oneof=user assistant system", wantErr: true, errContains: "Must be one of: user, assistant, system"},
		{name: "Too long", field: "flag_code", value: "abcdefghijk", tag: "max=10", wantErr: true, errContains: "at most 10 characters"},
		{name: "Positive integer", field: "id", value: int64(4), tag: "gt=0"},
		{name: "Zero integer", field: "id", value: int64(0), tag: "gt=0", wantErr: true, errContains: "greater than 0"},
		{name: "Bool under oneof", field: "locked", value: true, tag: "oneof=true false", wantErr: true, errContains: "Must be one of: true, false"},
		{name: "Float under oneof", field: "status", value: 1.5, tag: "max=20,oneof=pending sent", wantErr: true, errContains: "Must be one of: pending, sent"},
		{name: "Bool under max", field: "subject", value: false, tag: "max=255", wantErr: true, errContains: "Unsupported value type bool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := utils.ValidateField(tt.field, tt.value, tt.tag)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateField() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil {
				return
			}

			if !strings.HasPrefix(err.Error(), tt.field+":") {
				t.Errorf("Expected error against %s, got %v", tt.field, err)
			}

			if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Error message does not contain %q: %v", tt.errContains, err)
			}
		})
	}
}
