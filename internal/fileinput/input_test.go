package fileinput

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readRecord struct {
	r   rune
	loc string
}

func readAll(t *testing.T, in *Input) (recs []readRecord) {
	for {
		r, _, err := in.ReadRune()
		if err == io.EOF {
			return recs
		}
		require.NoError(t, err)
		recs = append(recs, readRecord{r, in.Location().String()})
	}
}

func TestInput_locations(t *testing.T) {
	in := Input{Queue: []io.Reader{
		String("a", "ab\nc"),
		String("b", "λ\n"),
	}}
	assert.Equal(t, []readRecord{
		{'a', "a:1:1"},
		{'b', "a:1:2"},
		{'\n', "a:1:3"},
		{'c', "a:2:1"},
		{'λ', "b:1:1"},
		{'\n', "b:1:2"},
	}, readAll(t, &in))
}

func TestInput_lines(t *testing.T) {
	in := Input{Queue: []io.Reader{String("src", "one\ntwo\nthree")}}
	for i := 0; i < len("one\ntw"); i++ {
		_, _, err := in.ReadRune()
		require.NoError(t, err)
	}
	assert.Equal(t, `src:1:4 "one"`, in.Last.String())
	assert.Equal(t, `src:2:2 "tw"`, in.Scan.String())
}

func TestInput_unnamed(t *testing.T) {
	in := Input{Queue: []io.Reader{strings.NewReader("x")}}
	_, _, err := in.ReadRune()
	require.NoError(t, err)
	assert.Equal(t, "<unnamed *strings.Reader>:1:1", in.Location().String())
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "f:3", Location{Name: "f", Line: 3}.String())
	assert.Equal(t, "f:3:7", Location{Name: "f", Line: 3, Col: 7}.String())
}
