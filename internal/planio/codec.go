// Package planio serializes plans with msgpack and keeps them in an on-disk
// cache keyed by a digest of everything selection depends on.
package planio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"strswitch/internal/plan"
)

// SchemaVersion must be incremented whenever plan.Plan or plan.Node change shape.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch is returned when an encoded plan was written by another schema.
var ErrSchemaMismatch = errors.New("plan schema mismatch")

// Envelope wraps an exported plan.
type Envelope struct {
	Schema uint16
	// Name is the switch name from its table file.
	Name string
	Plan *plan.Plan
}

// Encode writes p to w.
func Encode(w io.Writer, name string, p *plan.Plan) error {
	if p == nil {
		return fmt.Errorf("encode %q: nil plan", name)
	}
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&Envelope{Schema: SchemaVersion, Name: name, Plan: p})
}

// Decode reads one envelope from r and checks its schema and structure.
func Decode(r io.Reader) (*Envelope, error) {
	var env Envelope
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	if env.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, env.Schema, SchemaVersion)
	}
	if env.Plan == nil {
		return nil, fmt.Errorf("envelope %q carries no plan", env.Name)
	}
	if err := plan.Validate(env.Plan); err != nil {
		return nil, fmt.Errorf("envelope %q: %w", env.Name, err)
	}
	return &env, nil
}

// Marshal is Encode into a fresh buffer.
func Marshal(name string, p *plan.Plan) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, name, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is Decode from a byte slice.
func Unmarshal(data []byte) (*Envelope, error) {
	return Decode(bytes.NewReader(data))
}
