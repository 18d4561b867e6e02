package planio

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"

	"strswitch/internal/cases"
	"strswitch/internal/selector"
)

// Digest is a SHA-256 over a selection request.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// keyMaterial lists every input that can change the selected plan.
type keyMaterial struct {
	Schema    uint16
	Cases     []cases.Case
	Default   cases.Target
	Null      cases.Target
	Scrutinee cases.Scrutinee
	Caps      cases.Caps

	MinCases           int
	DenseFactor        int
	MaxProbeOffset     int
	NodeBudgetFactor   int
	DisableLengthBased bool
}

// Key returns the cache key for req. Requests carrying a custom hash function
// cannot be keyed and report false.
func Key(req selector.Request) (Digest, bool) {
	if req.Table == nil || req.Options.Hash != nil {
		return Digest{}, false
	}
	o := req.Options
	km := keyMaterial{
		Schema:             SchemaVersion,
		Cases:              req.Table.Cases,
		Default:            req.Table.Default,
		Null:               req.Table.Null,
		Scrutinee:          req.Scrutinee,
		Caps:               req.Caps,
		MinCases:           o.MinCases,
		DenseFactor:        o.DenseFactor,
		MaxProbeOffset:     o.MaxProbeOffset,
		NodeBudgetFactor:   o.NodeBudgetFactor,
		DisableLengthBased: o.DisableLengthBased,
	}
	data, err := msgpack.Marshal(&km)
	if err != nil {
		return Digest{}, false
	}
	return Digest(sha256.Sum256(data)), true
}
