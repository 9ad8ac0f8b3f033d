package utils

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var (
	// validate is a singleton validator instance
	validate     *validator.Validate
	validateOnce sync.Once
)

// InitValidator initializes the validator with custom validations
func InitValidator() {
	validateOnce.Do(func() {
		// Create a new validator instance
		validate = validator.New()

		// Register function to get db tag names instead of struct field names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("db"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Register custom validations
		registerCustomValidations(validate)

		log.Debug().Msg("Validator initialized")
	})
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	InitValidator()
	return validate
}

// ValidateStruct validates a struct using the validator
func ValidateStruct(v interface{}) error {
	err := GetValidator().Struct(v)
	if err == nil {
		return nil
	}

	// Handle validation errors
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		// If only one field has an error, return a specific field error
		if len(validationErrors) == 1 {
			e := validationErrors[0]
			return NewValidationError(e.Field(), getErrorMessage(e))
		}

		// Create a validation error with details for all fields
		details := make(map[string]string)
		for _, e := range validationErrors {
			details[e.Field()] = getErrorMessage(e)
		}

		return NewValidationErrorWithDetails("Multiple validation errors", details)
	}

	// Handle other validation errors
	return NewBadRequestError(err.Error())
}

// ValidateField checks a single column value against a validator tag list,
// reporting failures against the column name.
func ValidateField(field string, value interface{}, tag string) (err error) {
	if tag == "" {
		return nil
	}

	// The validator panics on kinds a tag cannot handle
	if allowed, ok := oneOfParam(tag); ok && !isOneOfKind(value) {
		return NewValidationError(field, "Must be one of: "+strings.ReplaceAll(allowed, " ", ", "))
	}
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Str("field", field).Interface("panic", r).Msg("Validator rejected value type")
			err = NewValidationError(field, fmt.Sprintf("Unsupported value type %T", value))
		}
	}()

	err = GetValidator().Var(value, tag)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return NewValidationError(field, getErrorMessage(validationErrors[0]))
	}

	// Tag misconfiguration or an unsupported value type
	return NewValidationError(field, err.Error())
}

// oneOfParam returns the values of a oneof rule in tag
func oneOfParam(tag string) (string, bool) {
	for _, rule := range strings.Split(tag, ",") {
		if strings.HasPrefix(rule, "oneof=") {
			return strings.TrimPrefix(rule, "oneof="), true
		}
	}
	return "", false
}

// isOneOfKind reports whether oneof can compare value
func isOneOfKind(value interface{}) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// getErrorMessage returns a user-friendly error message for a validation error
func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "url":
		return "Must be a valid URL"
	case "https_url":
		return "Must be a valid https URL"
	case "uuid4":
		return "Must be a valid UUID"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long", e.Param())
		}
		return fmt.Sprintf("Must be at least %s", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long", e.Param())
		}
		return fmt.Sprintf("Must be at most %s", e.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", e.Param())
	case "oneof":
		allowedValues := strings.ReplaceAll(e.Param(), " ", ", ")
		return fmt.Sprintf("Must be one of: %s", allowedValues)
	case "alphanum":
		return "Must contain only alphanumeric characters"
	case "alpha":
		return "Must contain only letters"
	default:
		return fmt.Sprintf("Failed validation on the '%s' tag", e.Tag())
	}
}

// registerCustomValidations adds custom validation functions to the validator
func registerCustomValidations(v *validator.Validate) {
	if err := v.RegisterValidation("https_url", validateHTTPSURL); err != nil {
		log.Error().Err(err).Msg("Failed to register https_url validation")
	}
}

// validateHTTPSURL accepts absolute https URLs whose host is a name or a
// public IP address. Loopback, private and link-local literals are rejected.
func validateHTTPSURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(strings.TrimSpace(fl.Field().String()))
	if err != nil || !strings.EqualFold(u.Scheme, "https") || u.Hostname() == "" {
		return false
	}

	addr, err := netip.ParseAddr(u.Hostname())
	if err != nil {
		// Not an IP literal
		return true
	}
	addr = addr.Unmap()
	return !(addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified())
}
