package runeio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlName(t *testing.T) {
	for _, tc := range []struct {
		r       rune
		name    string
		control bool
		caret   string
	}{
		{0x00, "<NUL>", true, "^@"},
		{0x03, "<ETX>", true, "^C"},
		{0x1b, "<ESC>", true, "^["},
		{' ', "<SP>", false, ""},
		{'a', "", false, ""},
		{0x7f, "<DEL>", true, "^?"},
		{0x85, "<NEL>", true, "^[E"},
		{0x9f, "<APC>", true, "^[_"},
		{'λ', "", false, ""},
	} {
		assert.Equal(t, tc.name, ControlName(tc.r), "expected %U name", tc.r)
		assert.Equal(t, tc.control, IsControl(tc.r), "expected %U control", tc.r)
		assert.Equal(t, tc.caret, CaretForm(tc.r), "expected %U caret form", tc.r)
	}
}
