package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featherpanel/panelstore/internal/models"
)

func validDescriptor() *models.EntityDescriptor {
	return &models.EntityDescriptor{
		Name:          "Widget",
		Table:         "widgets",
		Fields:        []string{"name", "deleted"},
		Required:      []string{"name"},
		SearchColumns: []string{"name"},
		OrderBy:       "name ASC, id DESC",
		SoftDelete:    &models.SoftDelete{Column: "deleted", DeletedValue: "true", ActiveValue: "false"},
	}
}

func TestEntityDescriptor_Defaults(t *testing.T) {
	d := &models.EntityDescriptor{Name: "Widget", Table: "widgets", Fields: []string{"name"}}

	assert.Equal(t, "id", d.PK())
	assert.Equal(t, "id ASC", d.Ordering())
	assert.Equal(t, []string{"id", "name"}, d.Columns())
	assert.True(t, d.HasField("name"))
	assert.False(t, d.HasField("id"), "the primary key is not a field")
	assert.NoError(t, d.Validate())
}

func TestEntityDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *models.EntityDescriptor)
		wantErr string
	}{
		{name: "Valid", mutate: func(d *models.EntityDescriptor) {}},
		{name: "Missing name", mutate: func(d *models.EntityDescriptor) { d.Name = "" }, wantErr: "no name"},
		{name: "Injected table name", mutate: func(d *models.EntityDescriptor) { d.Table = "widgets; DROP TABLE x" }, wantErr: "invalid table name"},
		{name: "Uppercase field", mutate: func(d *models.EntityDescriptor) { d.Fields = append(d.Fields, "Name") }, wantErr: "invalid field name"},
		{name: "Quoted field", mutate: func(d *models.EntityDescriptor) { d.Fields = append(d.Fields, "`name`") }, wantErr: "invalid field name"},
		{name: "Primary key as field", mutate: func(d *models.EntityDescriptor) { d.Fields = append(d.Fields, "id") }, wantErr: "must not be listed"},
		{name: "Duplicate field", mutate: func(d *models.EntityDescriptor) { d.Fields = append(d.Fields, "name") }, wantErr: "declared twice"},
		{name: "No fields", mutate: func(d *models.EntityDescriptor) { d.Fields = nil; d.Required = nil; d.SearchColumns = nil; d.SoftDelete = nil; d.OrderBy = "" }, wantErr: "no fields"},
		{name: "Unknown required", mutate: func(d *models.EntityDescriptor) { d.Required = []string{"title"} }, wantErr: "required column"},
		{name: "Unknown search column", mutate: func(d *models.EntityDescriptor) { d.SearchColumns = []string{"body"} }, wantErr: "search column"},
		{name: "Unknown rule field", mutate: func(d *models.EntityDescriptor) { d.Rules = map[string]string{"body": "max=1"} }, wantErr: "rule column"},
		{name: "Unknown flag column", mutate: func(d *models.EntityDescriptor) { d.Flags = []string{"archived"} }, wantErr: "flag column"},
		{name: "Unknown default field", mutate: func(d *models.EntityDescriptor) { d.Defaults = map[string]interface{}{"body": ""} }, wantErr: "default column"},
		{name: "Unknown timestamp", mutate: func(d *models.EntityDescriptor) { d.CreatedAtColumn = "created_at" }, wantErr: "timestamp column"},
		{name: "Unknown soft delete column", mutate: func(d *models.EntityDescriptor) { d.SoftDelete.Column = "removed" }, wantErr: "soft delete column"},
		{name: "Equal soft delete values", mutate: func(d *models.EntityDescriptor) { d.SoftDelete.ActiveValue = "true" }, wantErr: "must differ"},
		{name: "Unknown ordering column", mutate: func(d *models.EntityDescriptor) { d.OrderBy = "title ASC" }, wantErr: "ordering column"},
		{name: "Bad ordering direction", mutate: func(d *models.EntityDescriptor) { d.OrderBy = "name SIDEWAYS" }, wantErr: "ordering direction"},
		{name: "Ordering injection", mutate: func(d *models.EntityDescriptor) { d.OrderBy = "name ASC; DELETE" }, wantErr: "ordering"},
		{name: "Generated key without generator", mutate: func(d *models.EntityDescriptor) { d.KeyKind = models.KeyGenerated }, wantErr: "identifier generator"},
		{
			name: "Explicit id on generated key",
			mutate: func(d *models.EntityDescriptor) {
				d.KeyKind = models.KeyGenerated
				d.GenerateID = func() (string, error) { return "x", nil }
				d.AllowExplicitID = true
			},
			wantErr: "only supported for auto-increment",
		},
		{name: "Unknown key kind", mutate: func(d *models.EntityDescriptor) { d.KeyKind = models.KeyKind(9) }, wantErr: "unknown key kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDescriptor()
			tt.mutate(d)

			err := d.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDescriptors(t *testing.T) {
	descriptors := models.Descriptors()
	require.Len(t, descriptors, 5)

	tables := make(map[string]bool)
	for _, d := range descriptors {
		t.Run(d.Name, func(t *testing.T) {
			require.NoError(t, d.Validate())
			assert.False(t, tables[d.Table], "table %s used twice", d.Table)
			tables[d.Table] = true
		})
	}
}

func TestEntityDescriptors_Shape(t *testing.T) {
	chat := models.ChatMessageDescriptor()
	assert.Equal(t, "featherpanel_chatbot_messages", chat.Table)
	assert.Equal(t, "created_at ASC, id ASC", chat.Ordering())
	assert.Nil(t, chat.SoftDelete)

	location := models.LocationDescriptor()
	assert.True(t, location.AllowExplicitID)
	assert.Equal(t, []string{"name"}, location.Required)

	mail := models.MailQueueDescriptor()
	require.NotNil(t, mail.SoftDelete)
	assert.Equal(t, "deleted", mail.SoftDelete.Column)
	assert.Equal(t, "pending", mail.Defaults["status"])

	oidc := models.OidcProviderDescriptor()
	assert.Equal(t, "uuid", oidc.PK())
	assert.Equal(t, models.KeyGenerated, oidc.KeyKind)
	assert.ElementsMatch(t, []string{"name", "issuer_url", "client_id", "client_secret"}, oidc.Required)
	id, err := oidc.GenerateID()
	require.NoError(t, err)
	assert.Len(t, id, 36)

	realm := models.RealmDescriptor()
	assert.Equal(t, []string{"name", "description"}, realm.SearchColumns)
}

func TestLookupDescriptor(t *testing.T) {
	for _, name := range []string{"Realm", "realm", "REALMS", "featherpanel_realms"} {
		d, err := models.LookupDescriptor(name)
		if name == "REALMS" {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err, name)
		assert.Equal(t, "Realm", d.Name)
	}

	d, err := models.LookupDescriptor("mail-queue")
	require.NoError(t, err)
	assert.Equal(t, "MailQueue", d.Name)

	d, err = models.LookupDescriptor("oidc_provider")
	require.NoError(t, err)
	assert.Equal(t, "OidcProvider", d.Name)

	_, err = models.LookupDescriptor("servers")
	assert.ErrorContains(t, err, "unknown entity")
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		in     interface{}
		want   string
		wantOK bool
	}{
		{in: true, want: "true", wantOK: true},
		{in: false, want: "false", wantOK: true},
		{in: "TRUE", want: "true", wantOK: true},
		{in: " False ", want: "false", wantOK: true},
		{in: "yes"},
		{in: 1},
		{in: nil},
	}

	for _, tt := range tests {
		got, ok := models.FlagValue(tt.in)
		assert.Equal(t, tt.wantOK, ok, "%#v", tt.in)
		assert.Equal(t, tt.want, got, "%#v", tt.in)
	}
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		in     interface{}
		want   int64
		wantOK bool
	}{
		{in: 5, want: 5, wantOK: true},
		{in: int32(-2), want: -2, wantOK: true},
		{in: int64(9), want: 9, wantOK: true},
		{in: uint8(3), want: 3, wantOK: true},
		{in: uint64(1 << 63), wantOK: false},
		{in: float64(4), want: 4, wantOK: true},
		{in: 4.5, wantOK: false},
		{in: " 12 ", want: 12, wantOK: true},
		{in: []byte("77"), want: 77, wantOK: true},
		{in: "abc", wantOK: false},
		{in: nil, wantOK: false},
		{in: true, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := models.ToInt64(tt.in)
		assert.Equal(t, tt.wantOK, ok, "%#v", tt.in)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "%#v", tt.in)
		}
	}
}

func TestRecord(t *testing.T) {
	r := models.Record{"id": int64(3), "name": "EU-West", "raw": []byte("bytes"), "logo": nil, "n": 2.5}

	assert.Equal(t, "EU-West", r.String("name"))
	assert.Equal(t, "bytes", r.String("raw"))
	assert.Equal(t, "", r.String("logo"))
	assert.Equal(t, "", r.String("missing"))
	assert.Equal(t, "2.5", r.String("n"))

	id, ok := r.Int64("id")
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)

	clone := r.Clone()
	clone["name"] = "changed"
	assert.Equal(t, "EU-West", r["name"])
}
