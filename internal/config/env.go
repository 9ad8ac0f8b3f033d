package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// EnvPrefix namespaces the environment variables. PANELSTORE_DB_HOST wins
// over DB_HOST so the store can share an environment with the panel.
const EnvPrefix = "PANELSTORE_"

var durationType = reflect.TypeOf(time.Duration(0))

// LoadEnv overrides config values with the environment variables named by
// the env struct tags of each section.
func LoadEnv(config *AppConfig) error {
	sections := []interface{}{
		&config.App,
		&config.Database,
		&config.Logging,
		&config.Secrets,
	}

	applied := 0
	for _, section := range sections {
		n, err := processStructEnv(section)
		if err != nil {
			return err
		}
		applied += n
	}

	log.Debug().Int("variables", applied).Msg("Environment overrides applied")
	return nil
}

// processStructEnv sets every tagged field of the struct s points to whose
// variable is present, and reports how many were set.
func processStructEnv(s interface{}) (int, error) {
	val := reflect.ValueOf(s).Elem()
	typ := val.Type()

	applied := 0
	for i := 0; i < typ.NumField(); i++ {
		name := typ.Field(i).Tag.Get("env")
		field := val.Field(i)
		if name == "" || !field.CanSet() {
			continue
		}

		raw, ok := lookupEnv(name)
		if !ok {
			continue
		}
		if err := setField(field, strings.TrimSpace(raw)); err != nil {
			return applied, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		applied++
	}
	return applied, nil
}

// lookupEnv prefers the prefixed variable
func lookupEnv(name string) (string, bool) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		return v, true
	}
	return os.LookupEnv(name)
}

func setField(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
