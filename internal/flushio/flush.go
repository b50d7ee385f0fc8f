// Package flushio provides buffered writers that must be flushed once their
// producer is done, such as IR text and interpreter output.
package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is a flush-able io.Writer.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// NewWriteFlusher returns w if it already flushes, a no-op flushing wrapper
// if w is an in-memory buffer or io.Discard, or a new bufio.Writer otherwise.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	if w == io.Discard {
		return nopFlusher{w}
	}
	if wf, is := w.(WriteFlusher); is {
		return wf
	}

	// bytes.Buffer and strings.Builder
	type buffer interface {
		io.Writer
		Grow(n int)
		Len() int
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}

	return bufio.NewWriter(w)
}

// WriteTo calls write with a flushable form of w, then flushes it, returning
// the first error of either.
func WriteTo(w io.Writer, write func(w io.Writer) error) error {
	wf := NewWriteFlusher(w)
	err := write(wf)
	if ferr := wf.Flush(); err == nil {
		err = ferr
	}
	return err
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }
