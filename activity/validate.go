package activity

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// ValidationError lists every schema violation found in an activity.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid activity: " + strings.Join(e.Violations, "; ")
}

// Validate checks an activity against the activity JSON schema.
// It returns a *ValidationError when the activity does not conform.
func Validate(a Activity) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(a))
	if err != nil {
		return fmt.Errorf("validating activity: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		violations[i] = desc.String()
	}
	return &ValidationError{Violations: violations}
}
