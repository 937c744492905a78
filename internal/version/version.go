// Package version reports the ecmacore build.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"

	"ecmacore/internal/cptr"
	"ecmacore/internal/jrt"
)

// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric component highlighted.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Features lists the build tags that change engine behavior.
func Features() []string {
	pointers := "compressed-pointers"
	if cptr.DirectPointers {
		pointers = "direct-pointers"
	}
	asserts := "assertions"
	if !jrt.AssertionsEnabled {
		asserts = "no-assertions"
	}
	return []string{pointers, asserts}
}

// Info is the multi-line version report.
func Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ecmacore %s\n", Colored())
	if GitCommit != "" {
		fmt.Fprintf(&b, "commit:   %s\n", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&b, "built:    %s\n", BuildDate)
	}
	fmt.Fprintf(&b, "go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&b, "features: %s\n", strings.Join(Features(), ", "))
	return b.String()
}
