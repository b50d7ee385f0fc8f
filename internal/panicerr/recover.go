// Package panicerr runs functions in isolation, turning any panic or
// runtime.Goexit into an error return.
//
// Code that unwinds deeply nested work on the first failure may call Halt
// instead of threading an error return through every frame; Recover hands
// the halting error back unchanged.
package panicerr

import "errors"

// Recover runs f in a new goroutine, recovering any panic or abnormal exit as
// a non-nil error return. A Halt error is returned as given, while any other
// panic is returned as an error that carries its stack (see PanicStack).
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverExit(name, errch)
		defer recoverPanic(name, errch)
		errch <- f()
	}()
	err := <-errch
	var he haltError
	if errors.As(err, &he) {
		return he.error
	}
	return err
}

// Halt aborts the function being run by Recover with the given error.
func Halt(err error) {
	if err == nil {
		err = errors.New("halted")
	}
	panic(haltError{err})
}

// IsHalt returns true if err is a Halt error that escaped Recover, as when
// Halt is called outside of any recovered function.
func IsHalt(err error) bool {
	var he haltError
	return errors.As(err, &he)
}

type haltError struct{ error }

func (he haltError) Unwrap() error { return he.error }
