package version

import (
	"fmt"
)

// These are targets for compiling in build information.
var (
	// Hash Git commit hash. Output of `git log -n 1 --pretty="%H"`
	Hash string

	// CompileTime YYYY-mm-ddTHH:MM:SS+ZZZZ
	CompileTime string

	// ReleaseVersion is set using -ldflags during build.
	ReleaseVersion string
)

// UnknownVersion is used when the version is not known.
const UnknownVersion = "(unknown version)"

// Version the library version.
func Version() string {
	if ReleaseVersion == "" {
		return UnknownVersion
	}
	return ReleaseVersion
}

// LongVersion the long form of the library version.
func LongVersion() string {
	return fmt.Sprintf("%s compiled at %s from git hash %s", Version(), CompileTime, Hash)
}

// UserAgent identifies the library on outbound requests.
func UserAgent() string {
	return fmt.Sprintf("algokit-go/%s", Version())
}
