// Package logio provides the command line logger and adapters between
// printf-style log functions and io.Writer.
package logio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Logger implements leveled logging onto an output stream, remembering
// whether any error was logged so that a command can exit non-zero.
type Logger struct {
	mu       sync.Mutex
	output   io.Writer
	buf      bytes.Buffer
	exitCode int
}

// SetOutput sets the logger's output stream.
func (log *Logger) SetOutput(out io.Writer) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.output = out
}

// ExitCode returns a code to pass to os.Exit: 0 if nothing went wrong, 1 if
// an error was logged, or 2 if writing log output failed.
func (log *Logger) ExitCode() int {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.exitCode
}

// Leveledf returns a printf-style function that logs messages with the given
// level, suitable for passing as a trace log function.
func (log *Logger) Leveledf(level string) func(mess string, args ...interface{}) {
	return func(mess string, args ...interface{}) { log.Printf(level, mess, args...) }
}

// ErrorIf logs any non-nil error through PrintError, and makes ExitCode
// non-zero.
func (log *Logger) ErrorIf(err error) {
	if err == nil {
		return
	}
	log.PrintError("ERROR", err)
	log.mu.Lock()
	defer log.mu.Unlock()
	if log.exitCode == 0 {
		log.exitCode = 1
	}
}

// PrintError logs err under level without affecting ExitCode. An error that
// joins several others, like a list of parse errors, is logged one line per
// error.
func (log *Logger) PrintError(level string, err error) {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := multi.Unwrap(); len(errs) > 0 {
			for _, err := range errs {
				log.PrintError(level, err)
			}
			return
		}
	}
	log.Printf(level, "%v", err)
}

// Errorf is like Printf("ERROR", ...) but additionally makes ExitCode
// non-zero.
func (log *Logger) Errorf(mess string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	if err := log.printf("ERROR", mess, args...); err != nil {
		log.reportError(err)
		return
	}
	if log.exitCode == 0 {
		log.exitCode = 1
	}
}

// Printf prints a line to the output stream like "level: message...\n".
// A failure to write is itself logged if possible, and makes ExitCode 2.
func (log *Logger) Printf(level, mess string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	if err := log.printf(level, mess, args...); err != nil {
		log.reportError(err)
	}
}

func (log *Logger) printf(level, mess string, args ...interface{}) error {
	log.buf.Reset()
	if level != "" {
		log.buf.WriteString(level)
		log.buf.WriteString(": ")
	}
	if len(args) > 0 {
		fmt.Fprintf(&log.buf, mess, args...)
	} else {
		log.buf.WriteString(mess)
	}
	if b := log.buf.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
		log.buf.WriteByte('\n')
	}
	if log.output == nil {
		return errors.New("logio: no output set")
	}
	_, err := log.buf.WriteTo(log.output)
	return err
}

func (log *Logger) reportError(err error) {
	log.exitCode = 2
	if log.output != nil {
		fmt.Fprintf(log.output, "ERROR: %+v\n", err)
	}
}
