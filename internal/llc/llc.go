// Package llc writes generated modules as textual IR, or compiles them to
// object code by streaming the IR into an external llc process.
package llc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/llir/llvm/ir"
	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/stackc/internal/flushio"
)

// DefaultPath is the llc command run when a Tool has no Path.
const DefaultPath = "llc"

// WriteIR writes the textual form of m to w.
func WriteIR(w io.Writer, m *ir.Module) error {
	return flushio.WriteTo(w, func(w io.Writer) error {
		_, err := io.WriteString(w, m.String())
		return err
	})
}

// Tool runs llc.
type Tool struct {
	Path string   // defaults to DefaultPath
	Args []string // extra arguments, like "-O2"
}

// Compile writes an object file for m to out. The module is written into the
// standard input of llc while it runs; if either side fails, the other is
// canceled through ctx.
func (tool Tool) Compile(ctx context.Context, m *ir.Module, out string) error {
	path := tool.Path
	if path == "" {
		path = DefaultPath
	}
	args := append([]string{"-filetype=obj", "-o", out}, tool.Args...)
	args = append(args, "-")

	eg, ctx := errgroup.WithContext(ctx)
	pr, pw := io.Pipe()

	eg.Go(func() error {
		err := WriteIR(pw, m)
		pw.CloseWithError(err)
		if errors.Is(err, io.ErrClosedPipe) {
			return nil // llc exited early, its error wins
		}
		return err
	})

	eg.Go(func() error {
		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, path, args...)
		cmd.Stdin = pr
		cmd.Stderr = &stderr
		err := cmd.Run()
		pr.CloseWithError(io.ErrClosedPipe)
		if err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("%v failed: %w: %v", path, err, msg)
			}
			return fmt.Errorf("%v failed: %w", path, err)
		}
		return nil
	})

	return eg.Wait()
}
