package cli

import "flag"

const (
	defaultHelpDesc    = "Show help"
	defaultVersionDesc = "Print version and exit"
)

// HelpVersionFlags carries the values of the shared -help/-version
// flags each subcommand registers.
type HelpVersionFlags struct {
	Help    bool
	Version bool
}

func AddHelpVersionFlags(fs *flag.FlagSet) *HelpVersionFlags {
	if fs == nil {
		return &HelpVersionFlags{}
	}
	flags := &HelpVersionFlags{}
	fs.BoolVar(&flags.Help, "help", false, defaultHelpDesc)
	fs.BoolVar(&flags.Help, "h", false, defaultHelpDesc)
	fs.BoolVar(&flags.Version, "version", false, defaultVersionDesc)
	fs.BoolVar(&flags.Version, "v", false, defaultVersionDesc)
	return flags
}
