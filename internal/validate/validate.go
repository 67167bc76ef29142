// Package validate performs structural sanity checks on generated output.
// All checks are pure functions over the code text: errors mark the result
// invalid, suggestions are informational, and neither ever blocks returning
// the generated code to the caller.
package validate

import (
	"fmt"

	"github.com/schemapilot/schemapilot/internal/model"
	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
)

// Validate routes the code to the grammar-specific checker.
func Validate(code string, outputType model.OutputType) (model.ValidationResult, error) {
	switch outputType {
	case model.OutputTypeSQL:
		return validateSQL(code), nil
	case model.OutputTypeN8N:
		return validateN8N(code), nil
	case model.OutputTypeFormIO:
		return validateFormIO(code), nil
	}
	return model.ValidationResult{}, fmt.Errorf("%w: %q", appErr.ErrUnsupportedOutputType, outputType)
}

type report struct {
	errors      []string
	suggestions []string
}

func (r *report) errorf(format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *report) suggestf(format string, args ...interface{}) {
	r.suggestions = append(r.suggestions, fmt.Sprintf(format, args...))
}

func (r *report) result() model.ValidationResult {
	return model.ValidationResult{
		IsValid:     len(r.errors) == 0,
		Errors:      r.errors,
		Suggestions: r.suggestions,
	}
}
