package version

// Version is the version of the backtester binary. It is stamped into every sweep
// report and set at build time with:
// -ldflags "-X github.com/rxtech-lab/intraday-backtester/internal/version.Version=1.2.3"
// "main" marks a development build.
var Version = "main"

// GetVersion returns the version of the running binary.
func GetVersion() string {
	return Version
}
