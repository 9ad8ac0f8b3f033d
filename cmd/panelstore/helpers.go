package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/repository"
	"github.com/featherpanel/panelstore/internal/utils"
)

// entityRepository resolves an entity name to its repository
func entityRepository(name string) (repository.EntityRepository, error) {
	return repos.ForEntity(name)
}

// present prepares records for output. Client secrets never leave the store.
func present(repo repository.EntityRepository, records ...models.Record) []models.Record {
	if repo.Descriptor().Table == constants.TableOidcProviders {
		return repository.StripClientSecrets(records)
	}
	return records
}

// pageSize clamps a requested page size to the supported range
func pageSize(limit int) int {
	switch {
	case limit <= 0:
		return constants.DefaultPageSize
	case limit > constants.MaxPageSize:
		return constants.MaxPageSize
	}
	return limit
}

// readRecord decodes the JSON object given by --data; "-" reads it from in
func readRecord(data string, in io.Reader) (models.Record, error) {
	raw := []byte(data)
	if data == "-" {
		var err error
		if raw, err = io.ReadAll(in); err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, utils.NewBadRequestError("a JSON object is required, pass it with --data")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return nil, utils.NewBadRequestError("invalid JSON object: " + err.Error())
	}
	if fields == nil {
		return nil, utils.NewBadRequestError("a JSON object is required, pass it with --data")
	}

	record := make(models.Record, len(fields))
	for k, v := range fields {
		record[k] = fromJSONNumber(v)
	}
	return record, nil
}

// fromJSONNumber turns json.Number into int64 when integral, float64 otherwise
func fromJSONNumber(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// entityArg documents the entity argument in command help
func entityArg() string {
	names := make([]string, 0, len(models.Descriptors()))
	for _, d := range models.Descriptors() {
		names = append(names, strings.ToLower(d.Name))
	}
	return strings.Join(names, ", ")
}

// out returns the writer for command output
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
