// Package commandline has a fake flarc.Commandline for tests of mlkit tasks.
package commandline

import (
	"io"

	"github.com/youta-t/flarc"
)

// MockCommandline is a flarc.Commandline made of its fields.
//
// Set Stdout_ to a buffer to read what a task prints.
// Args_ maps argument names, like ARG_DATASET, to their values.
type MockCommandline[T any] struct {
	// command name used as the log prefix, like "mlkit split"
	Fullname_ string

	Stdin_  io.Reader
	Stdout_ io.Writer
	Stderr_ io.Writer

	Flags_ T
	Args_  map[string][]string
}

var _ flarc.Commandline[struct{}] = &MockCommandline[struct{}]{}

func (t MockCommandline[T]) Fullname() string {
	return t.Fullname_
}

func (t MockCommandline[T]) Stdin() io.Reader {
	return t.Stdin_
}

func (t MockCommandline[T]) Stdout() io.Writer {
	return t.Stdout_
}

func (t MockCommandline[T]) Stderr() io.Writer {
	return t.Stderr_
}

func (t MockCommandline[T]) Flags() T {
	return t.Flags_
}

func (t MockCommandline[T]) Args() map[string][]string {
	return t.Args_
}
