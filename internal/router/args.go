package router

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"finterm/internal/errors"
)

// Parser is the per-command argument schema. It wraps a pflag.FlagSet with
// the validation discipline every menu command shares: declared flags with
// defaults, comma-separated list coercion, repeated-flag rejection, and
// per-flag validity predicates run after parsing.
//
// Parsing is a pure function of (schema, tokens); a Parser is built fresh
// inside each handler invocation.
type Parser struct {
	prog   string
	fs     *pflag.FlagSet
	checks []func() error
	// canonical flag name by every accepted spelling, for repeat detection
	spellings map[string]string
}

// NewParser creates an argument parser for one command.
func NewParser(prog string) *Parser {
	fs := pflag.NewFlagSet(prog, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return &Parser{
		prog:      prog,
		fs:        fs,
		spellings: make(map[string]string),
	}
}

func (p *Parser) record(name, shorthand string) {
	p.spellings["--"+name] = name
	if shorthand != "" {
		p.spellings["-"+shorthand] = name
	}
}

// Int declares an integer flag.
func (p *Parser) Int(name, shorthand string, def int, usage string) *int {
	p.record(name, shorthand)
	return p.fs.IntP(name, shorthand, def, usage)
}

// PositiveInt declares an integer flag that must be > 0.
func (p *Parser) PositiveInt(name, shorthand string, def int, usage string) *int {
	v := p.Int(name, shorthand, def, usage)
	p.checks = append(p.checks, func() error {
		if *v <= 0 {
			return errors.NewArgumentError(name, strconv.Itoa(*v), "must be a positive integer", nil)
		}
		return nil
	})
	return v
}

// NonNegativeInt declares an integer flag that must be >= 0.
func (p *Parser) NonNegativeInt(name, shorthand string, def int, usage string) *int {
	v := p.Int(name, shorthand, def, usage)
	p.checks = append(p.checks, func() error {
		if *v < 0 {
			return errors.NewArgumentError(name, strconv.Itoa(*v), "must be non-negative", nil)
		}
		return nil
	})
	return v
}

// IntList declares a comma-separated integer list flag ("20,50" -> [20 50]).
func (p *Parser) IntList(name, shorthand string, def []int, usage string) *[]int {
	p.record(name, shorthand)
	return p.fs.IntSliceP(name, shorthand, def, usage)
}

// PositiveIntList declares a comma-separated integer list whose elements
// must all be > 0.
func (p *Parser) PositiveIntList(name, shorthand string, def []int, usage string) *[]int {
	v := p.IntList(name, shorthand, def, usage)
	p.checks = append(p.checks, func() error {
		for _, n := range *v {
			if n <= 0 {
				return errors.NewArgumentError(name, strconv.Itoa(n), "every element must be a positive integer", nil)
			}
		}
		if len(*v) == 0 {
			return errors.NewArgumentError(name, "", "list must not be empty", nil)
		}
		return nil
	})
	return v
}

// Float declares a float flag.
func (p *Parser) Float(name, shorthand string, def float64, usage string) *float64 {
	p.record(name, shorthand)
	return p.fs.Float64P(name, shorthand, def, usage)
}

// PositiveFloat declares a float flag that must be > 0.
func (p *Parser) PositiveFloat(name, shorthand string, def float64, usage string) *float64 {
	v := p.Float(name, shorthand, def, usage)
	p.checks = append(p.checks, func() error {
		if *v <= 0 {
			return errors.NewArgumentError(name, fmt.Sprintf("%g", *v), "must be positive", nil)
		}
		return nil
	})
	return v
}

// String declares a string flag.
func (p *Parser) String(name, shorthand, def, usage string) *string {
	p.record(name, shorthand)
	return p.fs.StringP(name, shorthand, def, usage)
}

// Choice declares a string flag restricted to the given values.
func (p *Parser) Choice(name, shorthand, def, usage string, allowed ...string) *string {
	v := p.String(name, shorthand, def, usage)
	p.checks = append(p.checks, func() error {
		for _, a := range allowed {
			if *v == a {
				return nil
			}
		}
		return errors.NewArgumentError(name, *v, "must be one of "+strings.Join(allowed, ", "), nil)
	})
	return v
}

// Bool declares a boolean flag.
func (p *Parser) Bool(name, shorthand string, def bool, usage string) *bool {
	p.record(name, shorthand)
	return p.fs.BoolP(name, shorthand, def, usage)
}

// ExportFlag declares the export flag every command carries. The empty
// default means "do not export".
func (p *Parser) ExportFlag() *string {
	return p.Choice("export", "", "", "export format (csv, json, tsv)", "", "csv", "json", "tsv")
}

// Args returns the positional tokens left over after parsing.
func (p *Parser) Args() []string {
	return p.fs.Args()
}

// rejectRepeats fails when any declared flag appears more than once.
func (p *Parser) rejectRepeats(tokens []string) error {
	seen := make(map[string]bool)
	for _, tok := range tokens {
		spelling := tok
		if i := strings.IndexByte(tok, '='); i >= 0 {
			spelling = tok[:i]
		}
		name, ok := p.spellings[spelling]
		if !ok {
			continue
		}
		if seen[name] {
			return errors.NewArgumentError(name, tok, "flag repeated", nil)
		}
		seen[name] = true
	}
	return nil
}

// Parse parses tokens against the schema in strict mode, returning an
// *errors.ArgumentError naming the offending flag or token on any failure:
// unknown flag, coercion failure, or failed validity predicate.
func (p *Parser) Parse(tokens []string) error {
	if err := p.rejectRepeats(tokens); err != nil {
		return err
	}
	if err := p.fs.Parse(tokens); err != nil {
		if err == pflag.ErrHelp {
			return err
		}
		return errors.NewArgumentError("", strings.Join(tokens, " "), err.Error(), err)
	}
	for _, check := range p.checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// ParseKnown parses tokens in non-strict mode: on failure it prints the
// diagnostic (or the usage text when help was requested) to w and reports
// false, signaling the handler to abort the command while the loop stays
// alive.
func (p *Parser) ParseKnown(w io.Writer, tokens []string) bool {
	err := p.Parse(tokens)
	if err == nil {
		return true
	}
	if err == pflag.ErrHelp {
		fmt.Fprintf(w, "usage: %s\n%s\n", p.prog, p.fs.FlagUsages())
		return false
	}
	fmt.Fprintf(w, "%v\n\n", err)
	return false
}
