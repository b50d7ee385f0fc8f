package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/stackc/internal/ast"
)

// Error describes one parse failure: the offending token (empty at end of
// input), what was expected instead, and any underlying cause.
type Error struct {
	Loc      ast.Location
	Token    string
	Expected string
	Err      error
}

func (err *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(err.Loc.String())
	sb.WriteString(": ")
	switch {
	case err.Err == io.ErrUnexpectedEOF:
		sb.WriteString("unexpected end of input")
	case err.Err != nil && err.Token != "":
		fmt.Fprintf(&sb, "%q: %v", err.Token, err.Err)
	case err.Err != nil:
		sb.WriteString(err.Err.Error())
	default:
		fmt.Fprintf(&sb, "unexpected %q", err.Token)
	}
	if err.Expected != "" {
		sb.WriteString(", expected ")
		sb.WriteString(err.Expected)
	}
	return sb.String()
}

func (err *Error) Unwrap() error { return err.Err }

// ErrorList collects every error found while parsing.
type ErrorList []*Error

func (errs ErrorList) Error() string {
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d parse errors:", len(errs))
	for _, err := range errs {
		sb.WriteString("\n\t")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap allows errors.Is and errors.As to match any collected error.
func (errs ErrorList) Unwrap() []error {
	all := make([]error, len(errs))
	for i, err := range errs {
		all[i] = err
	}
	return all
}

// Err returns nil if the list is empty.
func (errs ErrorList) Err() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsIncomplete returns true if err only reports input that ended early, so
// that more input could complete it.
func IsIncomplete(err error) bool {
	var errs ErrorList
	if !errors.As(err, &errs) || len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		if err.Err != io.ErrUnexpectedEOF {
			return false
		}
	}
	return true
}

var errMalformedInteger = errors.New("malformed integer literal")
