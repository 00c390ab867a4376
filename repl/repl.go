/*
Package repl implements the Read-Eval-Print Loop for kjit.

The loop reads one line at a time, drives it through the parser and
codegen/session pipeline statement by statement (a line may hold
several ';'-separated statements), and prints the float64 result of
each top-level expression evaluated. Definitions and externs produce
no output. Parse and codegen errors are reported in place and the
loop continues; a panic anywhere in the pipeline is recovered so one
bad line never brings the whole session down.
*/
package repl

import (
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/kaleidojit/kjit/ast"
	"github.com/kaleidojit/kjit/lexer"
	"github.com/kaleidojit/kjit/parser"
	"github.com/kaleidojit/kjit/session"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl holds the cosmetic configuration of an interactive session.
type Repl struct {
	Banner  string
	Version string
	Author  string
	Line    string
	License string
	Prompt  string
}

// NewRepl creates a Repl ready to Start.
func NewRepl(banner, version, author, line, license, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Author: author, Line: line, License: license, Prompt: prompt}
}

// PrintBannerInfo writes the startup banner and usage hints to writer.
func (r *Repl) PrintBannerInfo(writer io.Writer) {
	blueColor.Fprintf(writer, "%s\n", r.Line)
	greenColor.Fprintf(writer, "%s\n", r.Banner)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	yellowColor.Fprintln(writer, "Version: "+r.Version+" | Author: "+r.Author+" | License: "+r.License)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	cyanColor.Fprintf(writer, "%s\n", "Welcome to kjit!")
	cyanColor.Fprintf(writer, "%s\n", "Type a definition or expression, end statements with ';'")
	cyanColor.Fprintf(writer, "%s\n", "Type 'exit' or press Ctrl+D to quit")
	cyanColor.Fprintf(writer, "%s\n", "Use up/down arrows to navigate command history")
	blueColor.Fprintf(writer, "%s\n", r.Line)
}

// Start runs the interactive loop against a fresh Session until the
// user exits or input ends.
func (r *Repl) Start(reader io.Reader, writer io.Writer) {
	r.PrintBannerInfo(writer)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	sess := session.NewSession()
	defer sess.Dispose()

	for {
		line, err := rl.Readline()
		if err != nil {
			r.quit(writer, sess)
			break
		}

		line = strings.Trim(line, " \n\t\r")
		if line == "" {
			continue
		}

		rl.SaveHistory(line)
		if r.executeWithRecovery(writer, line, sess) {
			r.quit(writer, sess)
			break
		}
	}
}

// quit dumps the current module's IR and prints the farewell message,
// the shared tail of both exit paths: end of input (readline error)
// and the "exit" keyword.
func (r *Repl) quit(writer io.Writer, sess *session.Session) {
	writer.Write([]byte(sess.DumpModule()))
	writer.Write([]byte("Good Bye!\n"))
}

// executeWithRecovery parses and evaluates one line of input, with a
// panic boundary around the whole pipeline so a codegen bug never
// kills the REPL outright. It reports whether the line asked the REPL
// to exit (the "exit" keyword, which the lexer maps to an EOF token
// with Literal "exit" — a real end-of-line EOF has an empty Literal
// and does not request a session exit).
func (r *Repl) executeWithRecovery(writer io.Writer, line string, sess *session.Session) (exit bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			redColor.Fprintf(writer, "[RUNTIME ERROR] %v\n", recovered)
		}
	}()

	p := parser.NewParser(line)
	for {
		p.SkipSemicolon()
		if p.AtEOF() {
			return p.Curr.Literal == "exit"
		}

		switch p.Curr.Type {
		case lexer.DEF:
			fn, err := p.ParseDefinition()
			if err != nil {
				redColor.Fprintf(writer, "%s\n", err)
				return
			}
			if err := sess.DefineFunction(fn); err != nil {
				redColor.Fprintf(writer, "%s\n", err)
				return
			}
		case lexer.EXTERN:
			proto, err := p.ParseExtern()
			if err != nil {
				redColor.Fprintf(writer, "%s\n", err)
				return
			}
			if err := sess.DefineFunction(&ast.Function{Proto: proto, Body: nil}); err != nil {
				redColor.Fprintf(writer, "%s\n", err)
				return
			}
		default:
			fn, err := p.ParseTopLevelExpr()
			if err != nil {
				redColor.Fprintf(writer, "%s\n", err)
				return
			}
			result, err := sess.EvalTopLevelExpr(fn)
			if err != nil {
				redColor.Fprintf(writer, "%s\n", err)
				return
			}
			yellowColor.Fprintf(writer, "%s\n", formatResult(result))
		}
	}
}

// formatResult renders a float64 the way spec.md's REPL transcripts
// show results: always with a fractional part, even for integral
// values (e.g. "9" prints as "9.0").
func formatResult(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
