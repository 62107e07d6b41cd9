/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"errors"
	"fmt"
)

// Two error kinds cover everything this package can reject. A ValidationError
// means the call itself was malformed (non-finite numbers, a nil target) and
// is always raised before any geometry runs. A DefinitionError means the
// inputs were well-formed but describe no valid figure. Neither is ever
// recovered internally; there are no fallback geometries.

// ValidationError reports a malformed parameter.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Param == "" {
		return "invalid parameter: " + e.Reason
	}
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// DefinitionError reports inputs that define no valid triangle, arc, or
// label: inequality violations, out-of-range angles, degenerate point sets.
type DefinitionError struct {
	Reason string
}

func (e *DefinitionError) Error() string { return e.Reason }

func validationErrorf(param, format string, args ...any) error {
	return &ValidationError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

func definitionErrorf(format string, args ...any) error {
	return &DefinitionError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDefinition reports whether err is a DefinitionError.
func IsDefinition(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}
