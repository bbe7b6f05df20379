package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spektr-org/orderlens/report"
	"github.com/spektr-org/orderlens/schema"
	"github.com/spektr-org/orderlens/session"
)

// ============================================================================
// INTERACTIVE MODE — One command per line, every change re-renders
// ============================================================================

const interactiveHelp = `Commands:
  range <start> <end>     set the purchase date range (YYYY-MM-DD)
  categories [name ...]   restrict to categories; no names clears the selection
  reset                   full date range, all categories
  show                    render the current dashboard again
  list                    list category labels
  bounds                  print the first and last purchase day
  format <name>           switch output format (json, pretty, yaml, csv, text)
  help                    this text
  quit                    leave`

type interactive struct {
	session *session.Session
	out     io.Writer
	errOut  io.Writer
	format  string
}

// run renders the dashboard for initial, then executes commands from in
// until EOF, quit, or ctx is cancelled. Lines are read on their own
// goroutine so cancellation is seen while waiting for input.
func (r *interactive) run(ctx context.Context, in io.Reader, initial session.Request) error {
	r.render(r.session.Apply(ctx, initial))

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(r.errOut, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.errOut)
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			if done := r.exec(ctx, strings.Fields(line)); done {
				return nil
			}
		}
	}
}

// exec runs one command. It returns true when the session should end.
func (r *interactive) exec(ctx context.Context, args []string) bool {
	if len(args) == 0 {
		return false
	}

	switch cmd, rest := strings.ToLower(args[0]), args[1:]; cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(r.errOut, interactiveHelp)
	case "range":
		if len(rest) != 2 {
			r.errorf("usage: range <start> <end>")
			return false
		}
		start, err := schema.ParseDate(rest[0])
		if err != nil {
			r.errorf("%v", err)
			return false
		}
		end, err := schema.ParseDate(rest[1])
		if err != nil {
			r.errorf("%v", err)
			return false
		}
		r.render(r.session.SetRange(ctx, start, end))
	case "categories", "category":
		if unknown := r.unknownCategories(rest); len(unknown) > 0 {
			r.errorf("unknown categories: %s", strings.Join(unknown, ", "))
		}
		r.render(r.session.SetCategories(ctx, rest...))
	case "reset":
		r.render(r.session.Reset(ctx))
	case "show":
		r.render(r.session.Refresh(ctx))
	case "list":
		fmt.Fprintln(r.out, strings.Join(r.session.Categories(), "\n"))
	case "bounds":
		first, last, ok := r.session.Bounds()
		if !ok {
			fmt.Fprintln(r.out, "no data")
			return false
		}
		fmt.Fprintf(r.out, "%s %s\n", first.Format("2006-01-02"), last.Format("2006-01-02"))
	case "format":
		if len(rest) != 1 || !slices.Contains(report.Formats, rest[0]) {
			r.errorf("usage: format <%s>", strings.Join(report.Formats, "|"))
			return false
		}
		r.format = rest[0]
		r.render(r.session.Refresh(ctx))
	default:
		r.errorf("unknown command %q (try help)", cmd)
	}
	return false
}

func (r *interactive) unknownCategories(names []string) []string {
	known := r.session.Categories()
	var unknown []string
	for _, n := range names {
		if !slices.Contains(known, n) {
			unknown = append(unknown, n)
		}
	}
	return unknown
}

func (r *interactive) render(d *report.Dashboard, err error) {
	if errors.Is(err, session.ErrSuperseded) {
		return
	}
	if err != nil {
		r.errorf("%v", err)
		return
	}
	for _, w := range d.Warnings {
		fmt.Fprintf(r.errOut, "warning: %s\n", w)
	}
	if err := report.Encode(r.out, d, r.format); err != nil {
		r.errorf("%v", err)
	}
}

func (r *interactive) errorf(format string, args ...interface{}) {
	fmt.Fprintf(r.errOut, "Error: "+format+"\n", args...)
}
