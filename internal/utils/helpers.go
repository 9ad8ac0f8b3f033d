// Package utils provides the shared building blocks used throughout panelstore:
// the AppError taxonomy, zerolog setup and query logging, field validation,
// identifier generation, secret sealing and a few small helpers for
// sanitizing and presenting records.
//
// Functions in this package are designed to be simple, self-contained,
// and have minimal side effects.
package utils

import (
	"fmt"
	"strings"

	"github.com/featherpanel/panelstore/internal/constants"
)

// sensitiveKeys lists record keys whose values are never shown or logged.
var sensitiveKeys = map[string]bool{
	constants.ColumnClientSecret: true,
	"password":                   true,
	"token":                      true,
	"secret":                     true,
	"encryption_key":             true,
}

// Plural returns a string with the number and the plural form of the word if necessary.
// It handles the simple English pluralization case where adding 's' is sufficient.
//
// Parameters:
//   - count: the count to determine if singular or plural form is needed
//   - word: the base word in singular form
//
// Returns:
//   - a formatted string with the count and appropriate word form
func Plural(count int64, word string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, word)
	}
	return fmt.Sprintf("%d %ss", count, word)
}


// SanitizeKeys masks potentially sensitive fields in a map.
// It recursively traverses through maps and slices of maps to sanitize nested structures.
//
// Parameters:
//   - data: the map to sanitize
//
// Returns:
//   - a new map with sensitive values redacted
func SanitizeKeys(data map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(data))

	for k, v := range data {
		if sensitiveKeys[strings.ToLower(k)] {
			result[k] = constants.LogRedactedValue
			continue
		}

		// Handle nested maps
		if nestedMap, ok := v.(map[string]interface{}); ok {
			result[k] = SanitizeKeys(nestedMap)
			continue
		}

		// Handle nested map slices
		if nestedMapSlice, ok := v.([]map[string]interface{}); ok {
			sanitizedSlice := make([]map[string]interface{}, len(nestedMapSlice))
			for i, nestedMap := range nestedMapSlice {
				sanitizedSlice[i] = SanitizeKeys(nestedMap)
			}
			result[k] = sanitizedSlice
			continue
		}

		// Pass through all other values
		result[k] = v
	}

	return result
}
