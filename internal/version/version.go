// Package version holds build metadata for the strswitch CLI.
package version

import (
	"strings"

	"github.com/fatih/color"
)

// Overridable at build time via -ldflags "-X strswitch/internal/version.Version=...".
var (
	Version    = "0.3.0-dev"
	GitCommit  = ""
	GitMessage = ""
	BuildDate  = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
	dimColor   = color.New(color.Faint)
)

// Colored renders Version with each numeric component in its own color.
// The result is plain text when color output is disabled.
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

// Banner is the multi-line text printed by "strswitch version".
func Banner() string {
	var sb strings.Builder
	sb.WriteString("strswitch ")
	sb.WriteString(Colored())
	sb.WriteByte('\n')
	if GitCommit != "" {
		sb.WriteString(dimColor.Sprint("commit: "))
		sb.WriteString(GitCommit)
		if GitMessage != "" {
			sb.WriteString(" (" + GitMessage + ")")
		}
		sb.WriteByte('\n')
	}
	if BuildDate != "" {
		sb.WriteString(dimColor.Sprint("built:  "))
		sb.WriteString(BuildDate)
		sb.WriteByte('\n')
	}
	return sb.String()
}
