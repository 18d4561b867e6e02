package cases

// ValueKind tags a run-time scrutinee value.
type ValueKind uint8

const (
	// ValueChars is a string or span holding code units.
	ValueChars ValueKind = iota
	// ValueNull is a null reference.
	ValueNull
	// ValueOther is a non-string object; only object scrutinees can hold one.
	ValueOther
)

// Value is a run-time scrutinee used by plan evaluation and the reference scan.
type Value struct {
	Kind  ValueKind
	Units Key
}

// Str builds a string value.
func Str(s string) Value { return Value{Kind: ValueChars, Units: KeyOf(s)} }

// Units builds a value from raw code units.
func Units(u []uint16) Value { return Value{Kind: ValueChars, Units: Key(u)} }

// Null builds a null value.
func Null() Value { return Value{Kind: ValueNull} }

// Other builds a value of some non-string type.
func Other() Value { return Value{Kind: ValueOther} }

func (v Value) String() string {
	switch v.Kind {
	case ValueNull:
		return "null"
	case ValueOther:
		return "<object>"
	default:
		return v.Units.Quote()
	}
}

// Lookup is the reference semantics: null goes to the null arm (or default), a
// failed downcast goes to default, otherwise the first case with an equal key wins.
func (t *Table) Lookup(v Value) Target {
	switch v.Kind {
	case ValueNull:
		return t.NullOrDefault()
	case ValueOther:
		return t.Default
	}
	for _, c := range t.Cases {
		if c.Key.Equal(v.Units) {
			return c.Target
		}
	}
	return t.Default
}
