/*
Command stackc: a small concatenative language, compiled to LLVM IR

A stackc program is a sequence of definitions. Each definition names a body
of operations that act on an implicit stack of 64-bit integers. There are no
variables and no loops: values flow between operations only through the
stack, and a word is either a primitive, a named constant, or a call to a
proc.

	proc double int -- int in
	  dup +
	end

	const LIMIT in 10 end

	proc main in
	  LIMIT double print
	end

A proc header lists its input types, then optionally "--" and its output
types, and then "in" begins the body; "end" closes it. The only type is int.
A const has no header, and its "in" is optional; its body is evaluated as if
it were a proc of no inputs, and every use of its name inlines that body.

Primitives:

	drop dup swap  stack shuffling
	+ - *          wrapping arithmetic on the top two values
	divmod         unsigned quotient and remainder
	idivmod        signed quotient and remainder
	=              1 if the top two values are equal, else 0
	print          write the top value in decimal, and remove it
	if ... end     pop a value; run the body only if it was non-zero

Since stackc has no runtime stack, every proc is compiled by simulating its
stack at compile time: each slot holds an SSA value, calls pass their inputs
as parameters, and an if merges its two outcomes with phi nodes. This is only
possible when every path through an if leaves the stack the same depth, so an
unbalanced if body is a compile error, as is any stack underflow, any
recursive definition, and any word that names nothing.

A proc that does not declare its outputs returns whatever its body leaves:
nothing becomes void, a single value becomes i64, and more become a struct
of i64s. With -strict-returns, only a declared signature may return more than
one value.

# Output

By default the generated module is written as LLVM assembly to stdout, or to
the -o file. With -emit obj the module is piped through llc (or -llc) to
produce an object file; print is then an external function, declared as
i64 print(i64), that the program must be linked against.

With -run, main is evaluated in process by a small IR interpreter, so that
programs may be tried without any LLVM tooling installed. Anything printed is
written to stdout, followed by a line of whatever values main returned.

# Errors

Parse errors are reported all together, each prefixed by its file:line:col
location, and the parser recovers at the next definition. Code generation
stops at the first error. No output is written unless the whole program was
compiled.

# Interactive Use

When run without a FILE, stackc reads definitions and operations from the
terminal. A definition replaces any earlier one of the same name, and
defining main runs it. Bare operations are evaluated immediately, and their
results printed. Input continues across lines until it parses; the :help
command lists the others.
*/
package main
