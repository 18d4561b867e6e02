package cases

import (
	"fmt"
	"strings"
)

// Kind classifies the scrutinee's static type.
type Kind uint8

const (
	// KindOwnedString is a heap string.
	KindOwnedString Kind = iota
	// KindCharSpan is a borrowed fixed-length span of code units. It is never null.
	KindCharSpan
	// KindObject must be downcast to a string before any probing.
	KindObject
	// KindNullable wraps a string that may be null.
	KindNullable
)

func (k Kind) String() string {
	switch k {
	case KindOwnedString:
		return "string"
	case KindCharSpan:
		return "span"
	case KindObject:
		return "object"
	case KindNullable:
		return "nullable"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return KindOwnedString, nil
	case "span":
		return KindCharSpan, nil
	case "object":
		return KindObject, nil
	case "nullable":
		return KindNullable, nil
	default:
		return KindOwnedString, fmt.Errorf("invalid scrutinee kind: %q (expected: string|span|object|nullable)", s)
	}
}

// Scrutinee describes the value being switched on.
type Scrutinee struct {
	Kind Kind
	// Nullable marks a reference type that may hold null.
	Nullable bool
}

// NeedsNullCheck reports whether a plan for t must test for null first.
func (s Scrutinee) NeedsNullCheck(t *Table) bool {
	if s.Kind == KindCharSpan {
		return false
	}
	return s.Kind == KindNullable || s.Nullable || t.HasNull()
}

// Caps lists the primitive operations the host can emit for the scrutinee type.
type Caps struct {
	Length           bool `toml:"length"`
	IndexedChar      bool `toml:"index"`
	SequenceEquality bool `toml:"equality"`
	AsSpan           bool `toml:"as_span"`
}

// AllCaps returns a capability set with every primitive present.
func AllCaps() Caps {
	return Caps{Length: true, IndexedChar: true, SequenceEquality: true, AsSpan: true}
}

// Indexing reports whether code units of a k-typed scrutinee can be read by offset,
// and whether that requires converting an owned string to a span first.
func (c Caps) Indexing(k Kind) (ok, viaSpan bool) {
	if c.IndexedChar {
		return true, false
	}
	if c.AsSpan && k != KindCharSpan {
		return true, true
	}
	return false, false
}
