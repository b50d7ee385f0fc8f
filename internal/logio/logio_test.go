package logio

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type joined []error

func (errs joined) Error() string   { return fmt.Sprintf("%d errors", len(errs)) }
func (errs joined) Unwrap() []error { return errs }

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestLogger(t *testing.T) {
	var out bytes.Buffer
	var log Logger
	log.SetOutput(&out)

	log.Leveledf("TRACE")("step %d", 1)
	log.Printf("", "plain")
	assert.Equal(t, 0, log.ExitCode())

	log.ErrorIf(nil)
	assert.Equal(t, 0, log.ExitCode())

	log.PrintError("WARN", errors.New("just so you know"))
	assert.Equal(t, 0, log.ExitCode())

	log.ErrorIf(joined{errors.New("a:1: oops"), errors.New("a:2: again")})
	assert.Equal(t, 1, log.ExitCode())
	assert.Equal(t, ""+
		"TRACE: step 1\n"+
		"plain\n"+
		"WARN: just so you know\n"+
		"ERROR: a:1: oops\n"+
		"ERROR: a:2: again\n",
		out.String())
}

func TestLogger_writeFailure(t *testing.T) {
	var log Logger
	log.SetOutput(failWriter{})
	log.Printf("INFO", "lost")
	assert.Equal(t, 2, log.ExitCode())
	log.Errorf("also lost")
	assert.Equal(t, 2, log.ExitCode(), "write failures dominate")
}

func TestWriter(t *testing.T) {
	var lines []string
	lw := Writer{Logf: func(mess string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(mess, args...))
	}}
	fmt.Fprintf(&lw, "one\ntw")
	fmt.Fprintf(&lw, "o\nthree")
	assert.Equal(t, []string{"one", "two"}, lines)
	assert.NoError(t, lw.Close())
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}
