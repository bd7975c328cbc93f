// Package logger provides loggers of mlkit commands.
//
// Messages for users go to stderr, prefixed with the command name.
// Results of commands are written to stdout by each command, not by loggers.
package logger

import (
	"fmt"
	"io"
	"log"
)

// Null discards everything. Use it in tests.
func Null() *log.Logger {
	return log.New(io.Discard, "", log.LstdFlags)
}

// ForCommand returns a logger writing into w, prefixed with "[fullname] ".
func ForCommand(w io.Writer, fullname string) *log.Logger {
	return log.New(w, fmt.Sprintf("[%s] ", fullname), log.LstdFlags)
}
