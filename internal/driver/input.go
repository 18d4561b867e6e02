package driver

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"strswitch/internal/cases"
)

// ParseInput reads a command-line scrutinee. The bare word null is a null value
// and <object> is a value that is not a string. A "units:" prefix takes
// comma-separated hex code units, the only way to spell a lone surrogate.
// Go-quoted strings are unquoted; anything else is taken literally.
func ParseInput(s string) (cases.Value, error) {
	switch {
	case s == "null":
		return cases.Null(), nil
	case s == "<object>":
		return cases.Other(), nil
	case strings.HasPrefix(s, "units:"):
		rest := strings.TrimPrefix(s, "units:")
		if rest == "" {
			return cases.Units(nil), nil
		}
		fields := strings.Split(rest, ",")
		units := make([]uint16, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(f), "0x"), 16, 16)
			if err != nil {
				return cases.Value{}, fmt.Errorf("units[%d]: %w", i, err)
			}
			units[i] = safecast.MustConv[uint16](v)
		}
		return cases.Units(units), nil
	case strings.HasPrefix(s, `"`):
		u, err := strconv.Unquote(s)
		if err != nil {
			return cases.Value{}, fmt.Errorf("bad quoted input %s: %w", s, err)
		}
		return cases.Str(u), nil
	default:
		return cases.Str(s), nil
	}
}
