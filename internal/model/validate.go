package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

// schemaPath locates application.schema.json. Several candidate locations
// are tried so callers work from the repo root, a package dir, or the
// container image.
func schemaPath() (string, error) {
	candidates := []string{
		"templates/application.schema.json",
		"../../templates/application.schema.json",
		"/app/templates/application.schema.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("application.schema.json not found")
}

// ValidateMap validates a generic map against application.schema.json.
func ValidateMap(m map[string]interface{}) error {
	p, err := schemaPath()
	if err != nil {
		return err
	}
	// Use absolute canonical file:// path for the schema so loaders on all
	// platforms (including Windows) resolve file references correctly.
	abs, err := filepath.Abs(p)
	if err != nil {
		return err
	}
	schemaLoader := gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(abs))
	docLoader := gojsonschema.NewGoLoader(m)

	res, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := ""
	for _, e := range res.Errors() {
		msgs += fmt.Sprintf("%s; ", e.String())
	}
	return fmt.Errorf("schema validation failed: %s", msgs)
}

// ValidatePayload validates a typed payload by round-tripping it through
// JSON into a map, so the schema sees exactly what the wire will carry.
func ValidatePayload(p *ApplicationPayload) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	return ValidateMap(m)
}
