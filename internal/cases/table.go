package cases

import (
	"errors"
	"fmt"
)

// Target is an opaque branch label owned by the host.
type Target string

// NoTarget marks an absent label.
const NoTarget Target = ""

// Case maps one key to its target.
type Case struct {
	Key    Key
	Target Target
}

// Table is the normalized input of one switch. Keys are pairwise distinct;
// the front end resolves duplicates and subsumed arms before lowering.
type Table struct {
	Cases   []Case
	Default Target
	// Null is the explicit null arm, or NoTarget.
	Null Target
}

// HasNull reports whether the switch declares an explicit null arm.
func (t *Table) HasNull() bool { return t.Null != NoTarget }

// NullOrDefault returns where a null scrutinee goes.
func (t *Table) NullOrDefault() Target {
	if t.HasNull() {
		return t.Null
	}
	return t.Default
}

// Add appends a case and returns the table for chaining.
func (t *Table) Add(key string, target Target) *Table {
	t.Cases = append(t.Cases, Case{Key: KeyOf(key), Target: target})
	return t
}

// Lengths returns the smallest and largest key length. ok is false for an empty table.
func (t *Table) Lengths() (lo, hi int, ok bool) {
	for i, c := range t.Cases {
		n := c.Key.Len()
		if i == 0 || n < lo {
			lo = n
		}
		if i == 0 || n > hi {
			hi = n
		}
	}
	return lo, hi, len(t.Cases) > 0
}

var (
	// ErrDuplicateKey reports two arms with the same key.
	ErrDuplicateKey = errors.New("duplicate case key")
	// ErrMissingTarget reports an arm or default without a label.
	ErrMissingTarget = errors.New("missing target label")
)

// Validate checks the preconditions the planners rely on. Planning does not call it;
// hosts run it when their front end cannot already guarantee them.
func Validate(t *Table) error {
	if t == nil {
		return fmt.Errorf("nil case table")
	}
	var errs []error
	if t.Default == NoTarget {
		errs = append(errs, fmt.Errorf("default: %w", ErrMissingTarget))
	}
	seen := make(map[string]int, len(t.Cases))
	for i, c := range t.Cases {
		if c.Target == NoTarget {
			errs = append(errs, fmt.Errorf("case %d %s: %w", i, c.Key.Quote(), ErrMissingTarget))
		}
		mk := c.Key.mapKey()
		if prev, ok := seen[mk]; ok {
			errs = append(errs, fmt.Errorf("case %d %s already handled by case %d: %w", i, c.Key.Quote(), prev, ErrDuplicateKey))
			continue
		}
		seen[mk] = i
	}
	return errors.Join(errs...)
}
