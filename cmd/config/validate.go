/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package config

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/bundle-config.schema.json
var embeddedSchema embed.FS

const schemaID = "bundle-config.schema.json"

// Validate checks c against the embedded BundleConfig JSON Schema before
// a build runs, catching malformed pipeline step names or a missing
// entry id early rather than surfacing a *pipeline.UsageError deep into
// a build.
func Validate(c *BundleConfig) error {
	data, err := embeddedSchema.ReadFile("schemas/bundle-config.schema.json")
	if err != nil {
		return fmt.Errorf("config: reading embedded schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaID, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("config: loading schema: %w", err)
	}
	schema, err := compiler.Compile(schemaID)
	if err != nil {
		return fmt.Errorf("config: compiling schema: %w", err)
	}

	// Round-trip through encoding/json so the schema sees the same
	// shape viper/yaml would have produced, not Go struct field names.
	encoded, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encoding config: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return fmt.Errorf("config: decoding config: %w", err)
	}

	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}
