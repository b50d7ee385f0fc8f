package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/jcorbin/stackc/internal/ast"
	"github.com/jcorbin/stackc/internal/fileinput"
	"github.com/jcorbin/stackc/internal/runeio"
)

// Token is a whitespace delimited word of source text.
type Token struct {
	Text string
	Loc  ast.Location
}

func (tok Token) String() string { return fmt.Sprintf("%q@%v", tok.Text, tok.Loc) }

// Tokenize splits all of the given inputs into tokens. Inputs implementing
// Name() string, like *os.File or fileinput.Named, are reported under that
// name. Invalid control runes are reported as errors and skipped.
func Tokenize(inputs ...io.Reader) ([]Token, ErrorList) {
	sc := scanner{in: fileinput.Input{Queue: inputs}}
	for sc.scan() {
	}
	return sc.toks, sc.errs
}

type scanner struct {
	in   fileinput.Input
	toks []Token
	errs ErrorList
}

// scan reads one token, returning false at the end of input.
func (sc *scanner) scan() bool {
	var sb strings.Builder
	var loc ast.Location
	for {
		r, _, err := sc.in.ReadRune()
		if err != nil {
			if err != io.EOF {
				sc.errs = append(sc.errs, &Error{Loc: sc.in.Location(), Err: err})
			}
			if sb.Len() > 0 {
				sc.toks = append(sc.toks, Token{sb.String(), loc})
			}
			return false
		}

		if unicode.IsSpace(r) {
			if sb.Len() > 0 {
				sc.toks = append(sc.toks, Token{sb.String(), loc})
				return true
			}
			continue
		}

		if runeio.IsControl(r) {
			sc.errs = append(sc.errs, &Error{
				Loc: sc.in.Location(),
				Err: controlRuneError(r),
			})
			continue
		}

		if sb.Len() == 0 {
			loc = sc.in.Location()
		}
		sb.WriteRune(r)
	}
}

type controlRuneError rune

func (r controlRuneError) Error() string {
	if caret := runeio.CaretForm(rune(r)); caret != "" {
		return fmt.Sprintf("invalid control character %v (%v)", runeio.ControlName(rune(r)), caret)
	}
	return fmt.Sprintf("invalid control character %v", runeio.ControlName(rune(r)))
}
