// Command tailsv searches and live-watches delimited tabular files.
package main

import (
	"fmt"
	"io"
	"os"

	"tailsv/internal/version"
)

const (
	exitCodeSuccess = 0
	// exitCodeNoMatch doubles as "watch ended abnormally" for the
	// watch subcommand (file removed).
	exitCodeNoMatch = 1
	exitCodeError   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		usage(errOut)
		return exitCodeError
	}

	switch args[0] {
	case "search":
		return runSearch(args[1:], out, errOut)
	case "watch":
		return runWatch(args[1:], out, errOut)
	case "version", "-version", "--version", "-v":
		fmt.Fprintln(out, "tailsv "+version.String())
		return exitCodeSuccess
	case "help", "-help", "--help", "-h":
		usage(out)
		return exitCodeSuccess
	default:
		fmt.Fprintf(errOut, "tailsv: unknown command %q\n\n", args[0])
		usage(errOut)
		return exitCodeError
	}
}

func usage(out io.Writer) {
	fmt.Fprint(out, `Usage: tailsv <command> [flags] <file>

Commands:
  search   Scan every record of a file for a substring
  watch    Follow a file and render newly appended records
  version  Print version and exit
  help     Show this help

Run "tailsv <command> -h" for command flags.
`)
}
