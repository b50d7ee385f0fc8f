package irexec

import (
	"errors"
	"fmt"
	"strings"
)

// Runtime failures, matched with errors.Is against the *RuntimeError that
// Call returns.
var (
	ErrDivideByZero   = errors.New("integer division by zero")
	ErrDivideOverflow = errors.New("signed integer division overflow")
	ErrStepLimit      = errors.New("step limit exceeded")
	ErrUnsupported    = errors.New("unsupported instruction")
)

// NoFunctionError reports a call to a function that the module does not
// define.
type NoFunctionError struct {
	Name string
}

func (err *NoFunctionError) Error() string {
	return fmt.Sprintf("no function named @%v", err.Name)
}

// ArgumentError reports a call with the wrong number of arguments.
type ArgumentError struct {
	Func string
	Need int
	Have int
}

func (err *ArgumentError) Error() string {
	return fmt.Sprintf("@%v takes %d argument(s), given %d", err.Func, err.Need, err.Have)
}

// RuntimeError locates a failure by its call stack, innermost frame last.
type RuntimeError struct {
	Stack []string // frames like "main:if0.then"
	Inst  string
	Err   error
}

func (err *RuntimeError) Error() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(err.Stack, " > "))
	if err.Inst != "" {
		sb.WriteString(": ")
		sb.WriteString(err.Inst)
	}
	sb.WriteString(": ")
	sb.WriteString(err.Err.Error())
	return sb.String()
}

func (err *RuntimeError) Unwrap() error { return err.Err }
