package strhash

import "fmt"

// Family selects the run-time hash routine an emitted switch calls.
type Family uint8

const (
	FamilyNone Family = iota
	// FamilyString hashes an owned string.
	FamilyString
	// FamilySpan hashes a borrowed span of code units.
	FamilySpan
)

func (f Family) String() string {
	switch f {
	case FamilyNone:
		return "none"
	case FamilyString:
		return "string"
	case FamilySpan:
		return "span"
	default:
		return fmt.Sprintf("Family(%d)", uint8(f))
	}
}

// Routine names the run-time helper the emitter must call for this family.
func (f Family) Routine() string {
	switch f {
	case FamilyString:
		return "ComputeStringHash"
	case FamilySpan:
		return "ComputeSpanHash"
	default:
		return ""
	}
}

// Func returns the compile-time equivalent of the family's run-time routine.
// Both families hash code units identically; only the input representation differs.
func (f Family) Func() Func {
	switch f {
	case FamilyString, FamilySpan:
		return Units
	default:
		return nil
	}
}
