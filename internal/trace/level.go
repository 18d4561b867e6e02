package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelFile                // run and per-file spans
	LevelSwitch              // one span per planned switch
	LevelDebug               // everything, including length buckets
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelFile:
		return "file"
	case LevelSwitch:
		return "switch"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "file":
		return LevelFile, nil
	case "switch":
		return LevelSwitch, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|file|switch|debug)", s)
	}
}

// ShouldEmit reports whether events of the given scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelFile:
		return scope <= ScopeFile
	case LevelSwitch:
		return scope <= ScopeSwitch
	case LevelDebug:
		return true
	}
	return false
}
