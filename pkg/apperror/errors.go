package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForbidden signals that the access guard denied the acting user. Handlers
// translate it to a 403 without saying which check failed.
var ErrForbidden = errors.New("forbidden")

// ValidationError carries the full list of field problems found before any
// mutation happened. The request is rejected as a whole.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation errors: " + strings.Join(e.Errors, "; ")
}

func NewValidationError(errs ...string) *ValidationError {
	return &ValidationError{Errors: errs}
}

// UnknownPagesError rejects a permission batch naming pages absent from the
// registry. All unresolved names are reported, and nothing is written.
type UnknownPagesError struct {
	Pages []string
}

func (e *UnknownPagesError) Error() string {
	return fmt.Sprintf("page configuration(s) do not exist: %s", strings.Join(e.Pages, ", "))
}
