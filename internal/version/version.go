package version

// Version values are set at build time using -ldflags.
var (
	Version   = "dev"
	Built     = ""
	GitCommit = ""
)

// String renders the version for -version output.
func String() string {
	if Version == "" || Version == "dev" {
		return "dev"
	}
	if GitCommit != "" {
		return Version + " (" + GitCommit + ")"
	}
	return Version
}
