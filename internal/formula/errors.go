package formula

import (
	"errors"
	"fmt"

	"github.com/groundworklabs/groundwork/internal/model"
)

// ValidationCode categorizes rule validation failures.
type ValidationCode string

const (
	// CodeMultipleClauses indicates the negated formula does not reduce to
	// a single DNF clause.
	CodeMultipleClauses ValidationCode = "MULTIPLE_CLAUSES"

	// CodeUnboundVariable indicates a variable is never bound by a
	// queriable literal.
	CodeUnboundVariable ValidationCode = "UNBOUND_VARIABLE"

	// CodeGroundFormula indicates the formula has no variables.
	CodeGroundFormula ValidationCode = "GROUND_FORMULA"

	// CodeNotQueriable indicates the clause cannot be mapped to a
	// conjunctive query.
	CodeNotQueriable ValidationCode = "NOT_QUERIABLE"
)

// ValidationError reports why a formula was rejected during rule
// construction. Construction errors are fatal to the rule being built; no
// partial clause is returned alongside one.
type ValidationError struct {
	// Code identifies the violated condition.
	Code ValidationCode

	// Message is a human-readable description.
	Message string

	// Variable is set for CodeUnboundVariable.
	Variable model.Variable
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s: %s (variable=%s)", e.Code, e.Message, e.Variable)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationCodeIs(err error, code ValidationCode) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}

// IsMultipleClauses reports whether err is a MultipleClauses validation
// error. Uses errors.As to handle wrapped errors.
func IsMultipleClauses(err error) bool { return validationCodeIs(err, CodeMultipleClauses) }

// IsUnboundVariable reports whether err is an UnboundVariable validation
// error.
func IsUnboundVariable(err error) bool { return validationCodeIs(err, CodeUnboundVariable) }

// IsGroundFormula reports whether err is a GroundFormula validation error.
func IsGroundFormula(err error) bool { return validationCodeIs(err, CodeGroundFormula) }

// IsNotQueriable reports whether err is a NotQueriable validation error.
func IsNotQueriable(err error) bool { return validationCodeIs(err, CodeNotQueriable) }
