package irexec

import "io"

// Option customizes a Machine.
type Option interface{ apply(m *Machine) }

// WithOutput sets where print writes; output is discarded by default.
func WithOutput(w io.Writer) Option { return withOutput{w} }

// WithLogf enables tracing every executed instruction.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithStepLimit bounds the number of instructions one Call may execute; zero
// means no limit.
func WithStepLimit(limit int) Option { return stepLimit(limit) }

type withOutput struct{ io.Writer }
type withLogfn func(mess string, args ...interface{})
type stepLimit int

func (o withOutput) apply(m *Machine)    { m.output = o.Writer }
func (logfn withLogfn) apply(m *Machine) { m.logfn = logfn }
func (limit stepLimit) apply(m *Machine) { m.stepLimit = int(limit) }
