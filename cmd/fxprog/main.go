// Command fxprog is the calculator program runner and REPL.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"fortio.org/log"
	"golang.org/x/term"

	"nickandperla.net/fxprog/internal/calc"
	"nickandperla.net/fxprog/pkg/fxprog"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// interruptible scopes Ctrl+C to a single program run so an interrupt stops
// the running program without ending the REPL.
var interruptible = func(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// runInterruptible runs fn under a context that Ctrl+C cancels.
func runInterruptible(ctx context.Context, fn func(context.Context) error) error {
	runCtx, stop := interruptible(ctx)
	defer stop()
	return fn(runCtx)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fxprog", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		evalStr = fs.String("e", "", "Evaluate an expression and print the result")
		file    = fs.String("f", "", "Run a program file")
		dbPath  = fs.String("db", "fxprog.db", "SQLite database path (empty for in-memory)")
		angle   = fs.String("angle", "", "Angle unit: Deg, Rad or Gra")
		save    = fs.String("save", "", "Store the -f program under this name")
		runName = fs.String("run", "", "Run a stored program")
		list    = fs.Bool("list", false, "List stored programs")
		once    = fs.Bool("once", false, "Run programs once instead of restarting")
		verbose = fs.Bool("v", false, "Verbose logging")
		debug   = fs.Bool("debug", false, "Debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	switch {
	case *debug:
		log.SetLogLevel(log.Debug)
	case *verbose:
		log.SetLogLevel(log.Verbose)
	}

	interactive := false
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		interactive = true
	}
	con := newConsole(stdin, stdout, interactive)
	defer con.Close()

	opts := []fxprog.Option{
		fxprog.WithPrompt(con.prompt),
		fxprog.WithDisplay(con.display),
	}
	if *dbPath == "" {
		opts = append(opts, fxprog.WithMemoryStore())
	} else {
		opts = append(opts, fxprog.WithSQLiteStore(*dbPath))
	}
	if *angle != "" {
		u, ok := calc.ParseAngleUnit(*angle)
		if !ok {
			fmt.Fprintf(stderr, "Unknown angle unit: %s (use Deg, Rad or Gra)\n", *angle)
			return 2
		}
		opts = append(opts, fxprog.WithAngleUnit(u))
	}
	if *once {
		opts = append(opts, fxprog.WithSinglePass())
	}

	rt, err := fxprog.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	con.rt = rt
	defer func() {
		if err := rt.Close(); err != nil {
			log.Errf("closing runtime: %v", err)
		}
	}()

	switch {
	case *list:
		names, err := rt.Programs()
		if err != nil {
			return fail(stderr, err)
		}
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}

	case *save != "":
		if *file == "" {
			fmt.Fprintln(stderr, "-save requires -f")
			return 2
		}
		src, err := os.ReadFile(*file)
		if err != nil {
			return fail(stderr, err)
		}
		if err := rt.SaveProgram(*save, string(src)); err != nil {
			return fail(stderr, err)
		}
		log.Infof("Saved %s from %s", *save, *file)

	case *evalStr != "":
		v, err := rt.Eval(*evalStr)
		if err != nil {
			return fail(stderr, err)
		}
		fmt.Fprintln(stdout, fxprog.FormatValue(v, rt.Context().Setup.Digits))

	case *file != "":
		src, err := os.ReadFile(*file)
		if err != nil {
			return fail(stderr, err)
		}
		return finish(stderr, runInterruptible(ctx, func(ctx context.Context) error {
			return rt.Run(ctx, string(src))
		}))

	case *runName != "":
		return finish(stderr, runInterruptible(ctx, func(ctx context.Context) error {
			return rt.RunProgram(ctx, *runName)
		}))

	default:
		runREPL(ctx, rt, con)
	}
	return 0
}

func fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}

// finish maps the result of a program run to an exit code. An interrupt is
// a normal way to leave a looping program.
func finish(w io.Writer, err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	return fail(w, err)
}

// newConsole picks liner for terminals and a buffered reader otherwise.
func newConsole(stdin io.Reader, stdout io.Writer, interactive bool) *console {
	c := &console{out: stdout, interactive: interactive}
	if interactive {
		c.in = newLinerReader()
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			c.width = w
		}
	} else {
		c.in = &plainReader{r: bufio.NewReader(stdin)}
	}
	return c
}
