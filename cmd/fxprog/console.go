package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"fortio.org/log"
	"github.com/peterh/liner"

	"nickandperla.net/fxprog/internal/calc"
	"nickandperla.net/fxprog/internal/token"
	"nickandperla.net/fxprog/pkg/fxprog"
)

// lineReader reads one line of user input.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type linerReader struct {
	st *liner.State
}

func newLinerReader() *linerReader {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	return &linerReader{st: st}
}

func (l *linerReader) ReadLine(prompt string) (string, error) {
	line, err := l.st.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		l.st.AppendHistory(line)
	}
	return line, nil
}

func (l *linerReader) Close() error { return l.st.Close() }

// plainReader reads piped input without echoing prompts.
type plainReader struct {
	r *bufio.Reader
}

func (p *plainReader) ReadLine(string) (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *plainReader) Close() error { return nil }

// console connects program prompts and displays to the user.
type console struct {
	rt          *fxprog.Runtime
	in          lineReader
	out         io.Writer
	interactive bool
	width       int
}

func (c *console) Close() error { return c.in.Close() }

// prompt reads an expression for a '?' and evaluates it. End of input
// stops the program.
func (c *console) prompt(_ *calc.Context, v calc.Var) (float64, error) {
	for {
		line, err := c.in.ReadLine(v.String() + "? ")
		if errors.Is(err, io.EOF) {
			return 0, fxprog.ErrStop
		}
		if err != nil {
			return 0, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		x, err := c.rt.Value(line)
		if err != nil {
			fmt.Fprintf(c.out, "%v\n", err)
			if !c.interactive {
				return 0, err
			}
			continue
		}
		return x, nil
	}
}

// display prints the echoed statement and the value right-aligned. On
// 'disp' an interactive console waits for Enter.
func (c *console) display(d fxprog.Display) error {
	if len(d.Tokens) > 0 {
		fmt.Fprintln(c.out, token.Shown(d.Tokens))
	}
	value := fxprog.FormatValue(d.Value, d.Context.Setup.Digits)
	if pad := c.width - len(value) - 1; pad > 0 {
		value = strings.Repeat(" ", pad) + value
	}
	fmt.Fprintln(c.out, value)
	if !d.IsDisp {
		return nil
	}
	log.LogVf("disp: paused")
	if !c.interactive {
		fmt.Fprintln(c.out, "- Disp -")
		return nil
	}
	if _, err := c.in.ReadLine("- Disp -"); err != nil {
		if errors.Is(err, io.EOF) {
			return fxprog.ErrStop
		}
		return err
	}
	return nil
}
