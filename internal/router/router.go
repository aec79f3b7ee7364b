// Package router implements the interactive command loop used by every menu:
// a registry mapping command tokens to handlers, whitespace tokenization of
// input lines, and a run loop driven by the three-valued control signal.
package router

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"finterm/internal/errors"
)

// Signal is the control value a handler returns to influence the loop.
type Signal int

const (
	// Continue keeps the current menu loop running.
	Continue Signal = iota
	// ExitMenu unwinds one menu level.
	ExitMenu
	// ExitProgram terminates the whole interactive session.
	ExitProgram
)

func (s Signal) String() string {
	switch s {
	case Continue:
		return "CONTINUE"
	case ExitMenu:
		return "EXIT_MENU"
	case ExitProgram:
		return "EXIT_PROGRAM"
	default:
		return fmt.Sprintf("Signal(%d)", int(s))
	}
}

// Handler is a function bound to a command name. It receives the argument
// tokens that followed the command token, unmodified, and owns all parsing
// and error recovery for them.
type Handler func(args []string) Signal

// Router dispatches input lines to registered handlers. The registry is
// built at construction time and must not change during a session; the only
// mutable state is the pending-cleanup artifact path.
type Router struct {
	commands map[string]Handler
	names    []string
	out      io.Writer
	prompt   string
	logger   zerolog.Logger

	// Path of a transient artifact (e.g. a downloaded chart image) to be
	// removed before the next dispatch. Empty means nothing pending.
	pendingCleanup string
}

// New creates a router that prints the given prompt before each read and
// writes diagnostics to out.
func New(prompt string, out io.Writer, logger zerolog.Logger) *Router {
	return &Router{
		commands: make(map[string]Handler),
		out:      out,
		prompt:   prompt,
		logger:   logger,
	}
}

// Register binds a command name to a handler. Binding a name twice is a
// programmer error and fails with DuplicateCommandError.
func (r *Router) Register(name string, h Handler) error {
	if _, ok := r.commands[name]; ok {
		return errors.NewDuplicateCommandError(name)
	}
	r.commands[name] = h
	r.names = append(r.names, name)
	return nil
}

// Names returns the registered command names in registration order.
func (r *Router) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// ScheduleCleanup records an artifact to delete before the next dispatch.
func (r *Router) ScheduleCleanup(path string) {
	r.pendingCleanup = path
}

// runCleanup removes the pending artifact, if any. Removal is idempotent:
// a missing file clears the flag without error.
func (r *Router) runCleanup() {
	if r.pendingCleanup == "" {
		return
	}
	path := r.pendingCleanup
	r.pendingCleanup = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.logger.Warn().Str("path", path).Err(err).Msg("Failed to remove transient artifact")
	}
}

// Dispatch tokenizes one input line and invokes the matching handler. The
// first whitespace-separated token selects the handler by exact,
// case-sensitive match; the remaining tokens are passed through unmodified.
// An unknown command and a panicking handler both produce a diagnostic and
// Continue: no single command may take down the loop.
func (r *Router) Dispatch(line string) (sig Signal) {
	r.runCleanup()

	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Continue
	}

	handler, ok := r.commands[tokens[0]]
	if !ok {
		fmt.Fprintf(r.out, "%v: %q\n\n", errors.ErrUnknownCommand, tokens[0])
		return Continue
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Str("command", tokens[0]).Interface("panic", rec).Msg("Handler panicked")
			fmt.Fprintf(r.out, "%s: internal error, command aborted\n\n", tokens[0])
			sig = Continue
		}
	}()

	return handler(tokens[1:])
}

// Run reads lines from in and dispatches each until a handler returns
// ExitMenu or ExitProgram, returning that signal. EOF on the input is
// treated as leaving the menu.
func (r *Router) Run(in io.Reader) Signal {
	return r.RunScanner(bufio.NewScanner(in))
}

// RunScanner is Run over an existing scanner. Nested menus share the parent
// scanner so no buffered input is lost crossing menu levels.
func (r *Router) RunScanner(scanner *bufio.Scanner) Signal {
	for {
		fmt.Fprint(r.out, r.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return ExitMenu
		}
		if sig := r.Dispatch(scanner.Text()); sig != Continue {
			return sig
		}
	}
}
