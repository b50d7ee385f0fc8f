package codegen

// Option customizes Compile.
type Option interface{ apply(c *compiler) }

// Options combines any number of options into one.
func Options(opts ...Option) Option {
	var all options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			all = append(all, impl...)
		default:
			all = append(all, impl)
		}
	}
	if len(all) == 1 {
		return all[0]
	}
	return all
}

type options []Option

func (opts options) apply(c *compiler) {
	for _, opt := range opts {
		opt.apply(c)
	}
}

// WithLogf enables trace logging of code generation.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithTargetTriple sets the target triple of the generated module.
func WithTargetTriple(triple string) Option { return targetTriple(triple) }

// WithStrictReturns makes procs without a declared "--" signature fail to
// compile when they leave more than one value, instead of returning an
// aggregate of the residual stack.
func WithStrictReturns(strict bool) Option { return strictReturns(strict) }

type withLogfn func(mess string, args ...interface{})
type targetTriple string
type strictReturns bool

func (logfn withLogfn) apply(c *compiler)      { c.logfn = logfn }
func (triple targetTriple) apply(c *compiler)  { c.module.TargetTriple = string(triple) }
func (strict strictReturns) apply(c *compiler) { c.strictReturns = bool(strict) }
