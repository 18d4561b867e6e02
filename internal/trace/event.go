package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Smaller values are coarser.
type Scope uint8

const (
	ScopeRun    Scope = iota + 1 // one CLI invocation
	ScopeFile                    // one table file
	ScopeSwitch                  // one switch statement
	ScopeBucket                  // one length bucket inside a switch
)

func (s Scope) String() string {
	switch s {
	case ScopeRun:
		return "run"
	case ScopeFile:
		return "file"
	case ScopeSwitch:
		return "switch"
	case ScopeBucket:
		return "bucket"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	GID      uint64 // goroutine that opened the span
	Name     string // "run", "file:routes.switch.toml", "switch:methods"
	Detail   string
	Extra    map[string]string
	Elapsed  time.Duration // set on span ends
}
