package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withPlainColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func restoreVars(t *testing.T) {
	t.Helper()
	v, c, m, d := Version, GitCommit, GitMessage, BuildDate
	t.Cleanup(func() { Version, GitCommit, GitMessage, BuildDate = v, c, m, d })
}

func TestColoredPlain(t *testing.T) {
	withPlainColor(t)
	restoreVars(t)

	for _, v := range []string{"0.3.0-dev", "1.2.3", "1.0.0-rc.1+build.7"} {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
	Version = "custom"
	if got := Colored(); got != "custom" {
		t.Errorf("non-semver version = %q", got)
	}
}

func TestBannerOptionalFields(t *testing.T) {
	withPlainColor(t)
	restoreVars(t)

	Version, GitCommit, GitMessage, BuildDate = "1.2.3", "", "", ""
	if got := Banner(); got != "strswitch 1.2.3\n" {
		t.Fatalf("Banner() = %q", got)
	}

	GitCommit, GitMessage, BuildDate = "abc123", "tune dense factor", "2024-01-15"
	got := Banner()
	for _, want := range []string{"commit: abc123 (tune dense factor)", "built:  2024-01-15"} {
		if !strings.Contains(got, want) {
			t.Errorf("banner missing %q:\n%s", want, got)
		}
	}
}
