// internal/common/validation/variables.go
package validation

import (
	"encoding/json"

	"campaign-workers/internal/common/errors"
)

// DecodeVariables validates job variables against schema and decodes them
// into out. Both failures are INVALID_INPUT.
func DecodeVariables(schema *Schema, variables string, out interface{}) error {
	if variables == "" {
		variables = "{}"
	}

	res, err := schema.ValidateJSON(variables)
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	if !res.Valid {
		return errors.NewInvalidInputError(res.Details())
	}

	if err := json.Unmarshal([]byte(variables), out); err != nil {
		return errors.NewInvalidInputError("parse variables: " + err.Error())
	}
	return nil
}
