/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	_ "embed"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// manifestSchema is the canonical worksheet.json schema. The copy under
// docs/ is published for external tooling; a test keeps both in sync.
//
//go:embed worksheet.schema.json
var manifestSchema []byte

// ValidateManifest checks raw manifest bytes against the worksheet schema.
// A nil return means the document conforms.
func ValidateManifest(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(manifestSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var sb strings.Builder
	for i, e := range result.Errors() {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.String())
	}
	return fmt.Errorf("manifest does not conform to schema: %s", sb.String())
}
