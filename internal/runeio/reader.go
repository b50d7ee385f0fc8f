package runeio

import (
	"bufio"
	"io"
)

// NewReader returns r itself if it can already read runes, or a buffered
// rune reader around it.
func NewReader(r io.Reader) io.RuneReader {
	if rr, ok := r.(io.RuneReader); ok {
		return rr
	}
	return bufio.NewReader(r)
}
