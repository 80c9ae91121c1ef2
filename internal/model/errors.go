package model

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindTimeout              ErrorKind = "timeout"
	KindElementNotFound      ErrorKind = "element_not_found"
	KindPrecondition         ErrorKind = "precondition_violation"
	KindConfigurationInvalid ErrorKind = "configuration_invalid"
	KindAuthentication       ErrorKind = "authentication"
)

// StepError is the failure raised by a phase. Label names what was being
// awaited or looked for and ends up in the ledger's step column.
type StepError struct {
	Kind  ErrorKind
	Label string
	Err   error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Label)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Label, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func Timeout(label string, err error) error {
	return &StepError{Kind: KindTimeout, Label: label, Err: err}
}

func NotFound(label string) error {
	return &StepError{Kind: KindElementNotFound, Label: label}
}

func Precondition(label string) error {
	return &StepError{Kind: KindPrecondition, Label: label}
}

func Invalid(label string, err error) error {
	return &StepError{Kind: KindConfigurationInvalid, Label: label, Err: err}
}

func AuthFailed(label string) error {
	return &StepError{Kind: KindAuthentication, Label: label}
}

// KindOf returns "" when err carries no StepError.
func KindOf(err error) ErrorKind {
	var se *StepError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// LabelOf falls back to "error" for errors raised outside the phase code.
func LabelOf(err error) string {
	var se *StepError
	if errors.As(err, &se) && se.Label != "" {
		return se.Label
	}
	return "error"
}
