package panicerr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover(t *testing.T) {
	for _, tc := range []struct {
		name      string
		err       string
		wraps     string
		fun       func() error
		haveStack bool
	}{
		{
			name:      "",
			err:       "panicked: shrug",
			wraps:     "shrug",
			haveStack: true,
			fun:       func() error { panic(errors.New("shrug")) },
		},
		{
			name: "",
			err:  "runtime.Goexit called",
			fun:  func() error { runtime.Goexit(); return nil },
		},
		{
			name: "normal",
			fun:  func() error { return nil },
		},
		{
			name: "normal err",
			err:  "bang",
			fun:  func() error { return errors.New("bang") },
		},
		{
			name:      "panic err",
			err:       "panic err panicked: bang",
			wraps:     "bang",
			haveStack: true,
			fun:       func() error { panic(errors.New("bang")) },
		},
		{
			name:      "hello panic",
			err:       "hello panic panicked: hello",
			haveStack: true,
			fun:       func() error { panic("hello") },
		},
		{
			name: "exit",
			err:  "exit called runtime.Goexit",
			fun:  func() error { runtime.Goexit(); return nil },
		},
		{
			name: "halt",
			err:  "stop here",
			fun: func() error {
				func() { Halt(errors.New("stop here")) }()
				return errors.New("unreachable")
			},
		},
		{
			name: "halt nil",
			err:  "halted",
			fun:  func() error { Halt(nil); return nil },
		},
		{
			name:      "index panic",
			err:       "index panic panicked: runtime error: index out of range [1] with length 0",
			haveStack: true,
			fun:       func() error { _ = ([]int)(nil)[1]; return nil },
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := Recover(tc.name, tc.fun)
			if tc.err == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.err)
				assert.False(t, IsHalt(err), "halt errors must not escape")
				if tc.wraps != "" {
					assert.EqualError(t, errors.Unwrap(err), tc.wraps, "expected panic(error) value")
				}
			}
			assert.Equal(t, tc.haveStack, IsPanic(err))
			stack := PanicStack(err)
			if tc.haveStack {
				assert.NotEqual(t, "", stack, "expected a stack trace")
			} else {
				assert.Equal(t, "", stack, "expected no stack trace")
			}
			if t.Failed() && stack != "" {
				t.Logf("panic stack: %v", stack)
			}
		})
	}
}

func TestRecover_stacktrace(t *testing.T) {
	err := Recover("", func() error {
		panic("nope")
	})
	require.Error(t, err, "must have a recovered error")
	assert.False(t, IsExit(err))
	assert.True(t,
		strings.HasSuffix(fmt.Sprintf("%+v", err), PanicStack(err)),
		"expected verbose format to end with a stack trace")
}

func TestRecover_haltWrapped(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := Recover("wrapped", func() error {
		Halt(fmt.Errorf("context: %w", sentinel))
		return nil
	})
	assert.EqualError(t, err, "context: sentinel")
	assert.True(t, errors.Is(err, sentinel))
}
