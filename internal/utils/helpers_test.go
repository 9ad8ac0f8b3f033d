package utils_test

import (
	"reflect"
	"testing"

	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/utils"
)

func TestPlural(t *testing.T) {
	tests := []struct {
		count int64
		word  string
		want  string
	}{
		{count: 0, word: "message", want: "0 messages"},
		{count: 1, word: "message", want: "1 message"},
		{count: 12, word: "realm", want: "12 realms"},
	}

	for _, tt := range tests {
		if got := utils.Plural(tt.count, tt.word); got != tt.want {
			t.Errorf("Plural(%d, %q) = %v, want %v", tt.count, tt.word, got, tt.want)
		}
	}
}


func TestSanitizeKeys(t *testing.T) {
	input := map[string]interface{}{
		"uuid":          "3f1c2b9e-8a7d-4c6b-9e5f-1a2b3c4d5e6f",
		"client_secret": "enc:v1:abc",
		"nested": map[string]interface{}{
			"Password": "hunter2",
			"name":     "inner",
		},
		"rows": []map[string]interface{}{
			{"token": "t", "id": 1},
		},
	}

	want := map[string]interface{}{
		"uuid":          "3f1c2b9e-8a7d-4c6b-9e5f-1a2b3c4d5e6f",
		"client_secret": constants.LogRedactedValue,
		"nested": map[string]interface{}{
			"Password": constants.LogRedactedValue,
			"name":     "inner",
		},
		"rows": []map[string]interface{}{
			{"token": constants.LogRedactedValue, "id": 1},
		},
	}

	got := utils.SanitizeKeys(input)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeKeys() = %v, want %v", got, want)
	}

	// The input must be left untouched
	if input["client_secret"] != "enc:v1:abc" {
		t.Error("SanitizeKeys() modified its input")
	}
}
