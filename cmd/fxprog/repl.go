package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fortio.org/log"

	"nickandperla.net/fxprog/internal/calc"
	"nickandperla.net/fxprog/internal/docs"
	"nickandperla.net/fxprog/internal/token"
	"nickandperla.net/fxprog/pkg/fxprog"
)

const helpText = `Each line runs once as a program: statements separated by ':' or 'disp'.
Commands:
  :help               this text
  :primer             language overview
  :vars               show registers A-D, X, Y, M and Ans
  :keys               list key spellings
  :list               list stored programs
  :save name program  store a program
  :delete name        remove a stored program
  :run name           run a stored program until Ctrl+C
  :quit               exit`

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "fxprog REPL (Ctrl+D to exit, :help for commands)")
	fmt.Fprintln(w)
}

func runREPL(ctx context.Context, rt *fxprog.Runtime, con *console) {
	if con.interactive {
		printBanner(con.out)
	}
	for {
		line, err := con.in.ReadLine("> ")
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Errf("reading input: %v", err)
			}
			if con.interactive {
				fmt.Fprintln(con.out)
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := handleCommand(ctx, rt, con.out, line); quit {
				return
			}
			continue
		}
		err = runInterruptible(ctx, func(ctx context.Context) error {
			return rt.RunOnce(ctx, line)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(con.out, "%v\n", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// handleCommand runs a ':' command and reports whether the REPL should exit.
func handleCommand(ctx context.Context, rt *fxprog.Runtime, out io.Writer, line string) bool {
	name, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)
	switch name {
	case "quit", "q", "exit":
		return true
	case "help", "h":
		fmt.Fprintln(out, helpText)
	case "vars":
		c := rt.Context()
		for v := calc.Var(0); v < calc.NumVars; v++ {
			fmt.Fprintf(out, "%-3s = %s\n", v, fxprog.FormatValue(c.Vars.Get(v), c.Setup.Digits))
		}
		fmt.Fprintf(out, "%v %v %v\n", c.Mode, c.Setup.Angle, c.Setup.Digits)
	case "primer":
		fmt.Fprint(out, docs.Primer)
	case "keys":
		printKeys(out)
	case "list":
		names, err := rt.Programs()
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			break
		}
		fmt.Fprintln(out, strings.Join(names, "\n"))
	case "save":
		prog, src, _ := strings.Cut(rest, " ")
		if prog == "" || strings.TrimSpace(src) == "" {
			fmt.Fprintln(out, "usage: :save name program")
			break
		}
		if err := rt.SaveProgram(prog, strings.TrimSpace(src)); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	case "delete":
		if err := rt.DeleteProgram(rest); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	case "run":
		err := runInterruptible(ctx, func(ctx context.Context) error {
			return rt.RunProgram(ctx, rest)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(out, "%v\n", err)
		}
	default:
		fmt.Fprintf(out, "unknown command :%s (try :help)\n", name)
	}
	return false
}

// printKeys lists every key spelling, with its display form when different.
func printKeys(out io.Writer) {
	var b strings.Builder
	col := 0
	for _, t := range token.All() {
		key := t.Source
		if t.Shown != "" && t.Shown != t.Source {
			key += " (" + t.Shown + ")"
		}
		if col > 0 && col+len(key) > 72 {
			b.WriteByte('\n')
			col = 0
		}
		if col > 0 {
			b.WriteString("  ")
			col += 2
		}
		b.WriteString(key)
		col += len(key)
	}
	fmt.Fprintln(out, b.String())
}
