package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"tailsv/internal/cli"
	"tailsv/internal/config"
	"tailsv/internal/render"
	"tailsv/internal/search"
)

func runSearch(args []string, out io.Writer, errOut io.Writer) int {
	flags := flag.NewFlagSet("tailsv search", flag.ContinueOnError)
	flags.SetOutput(errOut)
	query := flags.String("q", "", "Substring to look for in any field")
	delimiter := flags.String("d", "", "Field delimiter (character or name like tab)")
	configPath := flags.String("config", "", "Config file path")
	noHeader := flags.Bool("no-header", false, "Treat the first line as data")
	helpVersion := cli.AddHelpVersionFlags(flags)

	if err := flags.Parse(args); err != nil {
		return exitCodeError
	}
	if helpVersion.Help {
		flags.Usage()
		return exitCodeSuccess
	}
	if helpVersion.Version {
		return run([]string{"version"}, out, errOut)
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(errOut, "tailsv search: exactly one file argument required")
		return exitCodeError
	}
	if *query == "" {
		fmt.Fprintln(errOut, "tailsv search: -q is required")
		return exitCodeError
	}

	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, *configPath)
	if err != nil {
		fmt.Fprintln(errOut, "tailsv search:", err)
		return exitCodeError
	}
	cfg = cfg.ApplyEnv(nil)
	if *delimiter != "" {
		cfg.Delimiter = *delimiter
	}
	delimiterRune, err := cfg.DelimiterRune()
	if err != nil {
		fmt.Fprintln(errOut, "tailsv search:", err)
		return exitCodeError
	}

	result, err := search.Search(flags.Arg(0), *query, search.Options{
		Delimiter: delimiterRune,
		FS:        fs,
		NoHeader:  *noHeader,
	})
	if err != nil {
		fmt.Fprintln(errOut, "tailsv search:", err)
		return exitCodeError
	}
	if len(result.Matches) == 0 {
		fmt.Fprintf(errOut, "no match in %d records\n", result.Scanned)
		return exitCodeNoMatch
	}

	fmt.Fprint(out, render.Table(result.Header, result.Matches, cfg.MaxColumnWidth))
	fmt.Fprintf(errOut, "%d of %d records matched\n", len(result.Matches), result.Scanned)
	return exitCodeSuccess
}
