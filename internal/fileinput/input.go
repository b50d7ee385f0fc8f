package fileinput

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/stackc/internal/runeio"
)

// Location names a position within an Input file; Col counts runes from 1.
type Location struct {
	Name string
	Line int
	Col  int
}

// Line combines a Location along with a bytes.Buffer for handling it.
type Line struct {
	Location
	bytes.Buffer
}

func (loc Location) String() string {
	if loc.Col == 0 {
		return fmt.Sprintf("%v:%v", loc.Name, loc.Line)
	}
	return fmt.Sprintf("%v:%v:%v", loc.Name, loc.Line, loc.Col)
}

func (il Line) String() string { return fmt.Sprintf("%v %q", il.Location, il.Buffer.String()) }

// Input implements sequential rune reading through a Queue of one or more
// input streams. Both the current and last scanned lines are tracked to
// facilitate user feedback.
type Input struct {
	src   io.Reader
	rr    io.RuneReader
	eol   bool
	Queue []io.Reader
	Last  Line
	Scan  Line
}

// Named wraps r so that Input reports locations in it under name.
func Named(name string, r io.Reader) io.Reader {
	return namedReader{r, name}
}

// String is a convenience for Named(name, strings.NewReader(s)).
func String(name, s string) io.Reader {
	return Named(name, strings.NewReader(s))
}

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

// Location returns the location of the most recently read rune.
func (in *Input) Location() Location {
	return in.Scan.Location
}

// ReadRune reads one rune from the current input stream, appending it into the
// current Scan line, and rolling Scan over to Last after line feed.
// The Scan column advances for every rune read, so after a successful read
// Location() points at the returned rune.
func (in *Input) ReadRune() (rune, int, error) {
	if in.rr == nil && !in.nextIn() {
		return 0, 0, io.EOF
	}

	for {
		r, n, err := in.rr.ReadRune()
		if n > 0 {
			if in.eol {
				in.nextLine()
			}
			in.Scan.Col++
			// roll over on the next read, so that the line feed itself
			// still has a location on this line
			if in.eol = r == '\n'; !in.eol {
				in.Scan.WriteRune(r)
			}
			return r, n, nil
		}
		if err == io.EOF {
			if in.nextIn() {
				continue
			}
			return 0, 0, io.EOF
		}
		if err != nil {
			return 0, 0, err
		}
	}
}

func (in *Input) nextLine() {
	in.Last.Reset()
	in.Last.Location = in.Scan.Location
	in.Last.Write(in.Scan.Bytes())
	in.Scan.Reset()
	in.Scan.Line++
	in.Scan.Col = 0
	in.eol = false
}

func (in *Input) nextIn() bool {
	if in.rr != nil {
		in.nextLine()
	}
	if in.src != nil {
		if cl, ok := in.src.(io.Closer); ok {
			cl.Close()
		}
		in.src, in.rr = nil, nil
	}
	if len(in.Queue) > 0 {
		r := in.Queue[0]
		in.Queue = in.Queue[1:]
		in.src, in.rr = r, runeio.NewReader(r)
		in.Scan.Name = nameOf(r)
		in.Scan.Line = 1
		in.Scan.Col = 0
		in.eol = false
	}
	return in.rr != nil
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
