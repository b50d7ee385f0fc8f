package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionTest struct {
	*driverTest
	sess session
}

func newSessionTest(t *testing.T) *sessionTest {
	st := &sessionTest{driverTest: newDriverTest(t)}
	st.sess = session{drv: &st.drv, out: &st.stdout}
	return st
}

// handle evaluates src, returning only what it wrote to stdout.
func (st *sessionTest) handle(t *testing.T, src string) (string, error) {
	st.stdout.Reset()
	quit, err := st.sess.handle(context.Background(), src)
	assert.False(t, quit, "unexpected quit after %q", src)
	return st.stdout.String(), err
}

func (st *sessionTest) expect(t *testing.T, src, out string) {
	have, err := st.handle(t, src)
	if assert.NoError(t, err, "unexpected error from %q", src) {
		assert.Equal(t, out, have, "expected output from %q", src)
	}
}

func (st *sessionTest) defNames() (names []string) {
	for _, def := range st.sess.defs {
		names = append(names, def.DefName())
	}
	return names
}

func TestSession_eval(t *testing.T) {
	st := newSessionTest(t)
	st.expect(t, "proc double int -- int in dup + end", "")
	st.expect(t, "21 double", "42\n")
	st.expect(t, "1 2", "1 2\n")
	st.expect(t, "5 print", "5\n")
	st.expect(t, "proc main in 3 4 + end", "7\n")
	assert.Equal(t, []string{"double", "main"}, st.defNames(), "expressions leave no definitions")
}

func TestSession_redefine(t *testing.T) {
	st := newSessionTest(t)
	st.expect(t, "const X in 1 end", "")
	st.expect(t, "X", "1\n")
	st.expect(t, "const X in 2 end", "")
	st.expect(t, "X", "2\n")

	st.expect(t, "proc f -- int in 1 end", "")
	st.expect(t, "proc g -- int in f 10 * end", "")
	st.expect(t, "g", "10\n")
	st.expect(t, "proc f -- int in 2 end", "")
	st.expect(t, "g", "20\n")
	assert.Equal(t, []string{"X", "f", "g"}, st.defNames())
}

func TestSession_failures(t *testing.T) {
	st := newSessionTest(t)
	st.expect(t, "proc f -- int in 1 end", "")

	_, err := st.handle(t, "proc bad in nope end")
	assert.Error(t, err, "expected unresolved word")

	_, err = st.handle(t, "proc f -- int in 1 2 end")
	assert.Error(t, err, "expected malformed return")

	_, err = st.handle(t, "proc g in 1 in end")
	assert.Error(t, err, "expected parse error")

	_, err = st.handle(t, "f nope")
	assert.Error(t, err, "expected unresolved word")

	assert.Equal(t, []string{"f"}, st.defNames(), "failed inputs change nothing")
	st.expect(t, "f", "1\n")
}

func TestSession_incomplete(t *testing.T) {
	st := newSessionTest(t)
	for _, src := range []string{
		"proc a in 1",
		"proc a int",
		"const",
		"1 if 2",
		"proc a in 1\n  if 2 end",
	} {
		assert.True(t, st.sess.incomplete(src), "expected %q to be incomplete", src)
	}
	for _, src := range []string{
		"",
		"1 2 +",
		"1 if 2 end",
		"proc a in 1 end",
		"proc a in nope end",
		"proc a in 1 in end",
		":ir",
		":bogus",
	} {
		assert.False(t, st.sess.incomplete(src), "expected %q to be complete", src)
	}
}

func TestSession_commands(t *testing.T) {
	st := newSessionTest(t)

	_, err := st.handle(t, ":run")
	assert.EqualError(t, err, "no main defined")

	out, err := st.handle(t, ":help")
	require.NoError(t, err)
	assert.Contains(t, out, ":reset")

	st.expect(t, "proc main in 1 2 end", "1 2\n")
	st.expect(t, ":run", "1 2\n")

	out, err = st.handle(t, ":defs")
	require.NoError(t, err)
	assert.Contains(t, out, "# Program session\n")
	assert.Contains(t, out, "proc main in\n")

	out, err = st.handle(t, ":ir")
	require.NoError(t, err)
	assert.Contains(t, out, `source_filename = "session"`)
	assert.Contains(t, out, "define { i64, i64 } @main()")

	_, err = st.handle(t, ":bogus")
	assert.EqualError(t, err, `unknown command ":bogus", try :help`)

	st.expect(t, ":reset", "")
	assert.Empty(t, st.defNames())
	_, err = st.handle(t, ":run")
	assert.EqualError(t, err, "no main defined")

	out, err = st.handle(t, ":ir")
	require.NoError(t, err)
	assert.NotContains(t, out, "@main")

	quit, err := st.sess.handle(context.Background(), " :quit ")
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestSession_complete(t *testing.T) {
	st := newSessionTest(t)
	st.expect(t, "proc double int -- int in dup + end", "")

	assert.Equal(t, []string{"21 double"}, st.sess.complete("21 dou"))
	assert.Equal(t, []string{"proc a in divmod"}, st.sess.complete("proc a in divm"))
	assert.Equal(t, []string{":reset", ":run"}, st.sess.complete(":r"))
	assert.Contains(t, st.sess.complete("d"), "drop")
	assert.Contains(t, st.sess.complete("d"), "double")
	assert.Nil(t, st.sess.complete("21 "))
	assert.Nil(t, st.sess.complete("zzz"))
}

func TestSession_underscoreName(t *testing.T) {
	st := newSessionTest(t)
	st.expect(t, "proc _ -- int in 7 end", "")
	st.expect(t, "1 2 +", "3\n")
	st.expect(t, "_ 1 +", "8\n")
	assert.Equal(t, []string{"_"}, st.defNames())
}
