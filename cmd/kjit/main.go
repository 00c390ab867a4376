/*
Package main is the entry point for kjit, the Kaleidoscope JIT.
It provides two modes of operation:
 1. REPL Mode (default): interactive read-eval-print loop
 2. File Mode: run a Kaleidoscope source file given on the command line

Each mode drives the same lexer -> parser -> codegen -> session
pipeline; only the input source and the error-handling strategy
differ (the REPL recovers and keeps going, file mode reports and
exits).
*/
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/kaleidojit/kjit/ast"
	"github.com/kaleidojit/kjit/lexer"
	"github.com/kaleidojit/kjit/parser"
	"github.com/kaleidojit/kjit/repl"
	"github.com/kaleidojit/kjit/session"
)

var VERSION = "v0.1.0"
var AUTHOR = "kaleidojit"
var LICENCE = "MIT"
var PROMPT = "kjit >>> "

var BANNER = `
 _    _ _ _ _
| | _(_) |_| |_
| |/ / | __| __|
|   <| | |_| |_
|_|\_\_|\__|\__|
`

var LINE = "----------------------------------------------------------------"

var (
	redColor    = color.New(color.FgRed)
	yellowColor = color.New(color.FgYellow)
	cyanColor   = color.New(color.FgCyan)
)

// Usage:
//
//	kjit                    - start in REPL mode
//	kjit <file.ks>          - run a Kaleidoscope source file
//	kjit --dump-ast <file>  - print the file's AST instead of running it
//	kjit --help             - display help information
//	kjit --version          - display version information
func main() {
	if len(os.Args) > 1 {
		arg := os.Args[1]

		switch arg {
		case "--help", "-h":
			showHelp()
			os.Exit(0)
		case "--version", "-v":
			showVersion()
			os.Exit(0)
		case "--dump-ast":
			if len(os.Args) < 3 {
				redColor.Fprintf(os.Stderr, "[USAGE ERROR] Missing file for --dump-ast. Usage: kjit --dump-ast <file>\n")
				os.Exit(1)
			}
			dumpFile(os.Args[2])
			return
		}

		runFile(arg)
		return
	}

	repler := repl.NewRepl(BANNER, VERSION, AUTHOR, LINE, LICENCE, PROMPT)
	repler.Start(os.Stdin, os.Stdout)
}

func showHelp() {
	cyanColor.Println("kjit - a toy-language JIT compiler")
	cyanColor.Println("")
	cyanColor.Println("USAGE:")
	yellowColor.Println("  kjit                       Start interactive REPL mode")
	yellowColor.Println("  kjit <path-to-file>        Run a Kaleidoscope file (.ks)")
	yellowColor.Println("  kjit --dump-ast <file>     Print the file's AST instead of running it")
	yellowColor.Println("  kjit --help                Display this help message")
	yellowColor.Println("  kjit --version             Display version information")
}

func showVersion() {
	cyanColor.Println("kjit - a toy-language JIT compiler")
	cyanColor.Printf("Version: %s\n", VERSION)
	cyanColor.Printf("License: %s\n", LICENCE)
	cyanColor.Printf("Author : %s\n", AUTHOR)
}

// runFile reads and executes a Kaleidoscope source file statement by
// statement, stopping at the first error.
func runFile(fileName string) {
	source, err := os.ReadFile(fileName)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[FILE ERROR] Could not read file '%s': %v\n", fileName, err)
		os.Exit(1)
	}
	executeFileWithRecovery(string(source))
}

func executeFileWithRecovery(source string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			redColor.Fprintf(os.Stderr, "[RUNTIME ERROR] %v\n", recovered)
			os.Exit(1)
		}
	}()

	sess := session.NewSession()
	defer sess.Dispose()

	p := parser.NewParser(source)
	for {
		p.SkipSemicolon()
		if p.AtEOF() {
			fmt.Print(sess.DumpModule())
			return
		}

		switch p.Curr.Type {
		case lexer.DEF:
			fn, err := p.ParseDefinition()
			if err != nil {
				redColor.Fprintf(os.Stderr, "[PARSE ERROR] %s\n", err)
				os.Exit(1)
			}
			if err := sess.DefineFunction(fn); err != nil {
				redColor.Fprintf(os.Stderr, "[CODEGEN ERROR] %s\n", err)
				os.Exit(1)
			}
		case lexer.EXTERN:
			proto, err := p.ParseExtern()
			if err != nil {
				redColor.Fprintf(os.Stderr, "[PARSE ERROR] %s\n", err)
				os.Exit(1)
			}
			if err := sess.DefineFunction(&ast.Function{Proto: proto, Body: nil}); err != nil {
				redColor.Fprintf(os.Stderr, "[CODEGEN ERROR] %s\n", err)
				os.Exit(1)
			}
		default:
			fn, err := p.ParseTopLevelExpr()
			if err != nil {
				redColor.Fprintf(os.Stderr, "[PARSE ERROR] %s\n", err)
				os.Exit(1)
			}
			result, err := sess.EvalTopLevelExpr(fn)
			if err != nil {
				redColor.Fprintf(os.Stderr, "[CODEGEN ERROR] %s\n", err)
				os.Exit(1)
			}
			yellowColor.Fprintf(os.Stdout, "%v\n", result)
		}
	}
}

// dumpFile parses a file and prints its AST without running anything,
// the supplemented "--dump-ast" feature.
func dumpFile(fileName string) {
	source, err := os.ReadFile(fileName)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[FILE ERROR] Could not read file '%s': %v\n", fileName, err)
		os.Exit(1)
	}

	p := parser.NewParser(string(source))
	dump := &ast.DumpVisitor{}
	for {
		p.SkipSemicolon()
		if p.AtEOF() {
			break
		}

		switch p.Curr.Type {
		case lexer.DEF:
			fn, err := p.ParseDefinition()
			if err != nil {
				redColor.Fprintf(os.Stderr, "[PARSE ERROR] %s\n", err)
				os.Exit(1)
			}
			dump.VisitFunction(fn)
		case lexer.EXTERN:
			proto, err := p.ParseExtern()
			if err != nil {
				redColor.Fprintf(os.Stderr, "[PARSE ERROR] %s\n", err)
				os.Exit(1)
			}
			dump.VisitFunction(&ast.Function{Proto: proto, Body: nil})
		default:
			fn, err := p.ParseTopLevelExpr()
			if err != nil {
				redColor.Fprintf(os.Stderr, "[PARSE ERROR] %s\n", err)
				os.Exit(1)
			}
			dump.VisitFunction(fn)
		}
	}

	fmt.Print(dump.String())
}
