package strhash

import (
	"math/bits"
	"unicode/utf16"
)

const (
	seedBase   uint32 = 0x15051505
	combineMul uint32 = 1566083941
	rotate            = 5
)

// Func hashes a sequence of UTF-16 code units.
type Func func(units []uint16) uint32

// state folds code units two at a time into alternating accumulators.
type state struct {
	h1, h2  uint32
	pending uint32
	held    bool
	second  bool
}

func newState(n int) state {
	// truncation of very long lengths is harmless: the seed only needs to be
	// deterministic and odd.
	seed := seedBase ^ uint32(n)<<1 //nolint:gosec
	return state{h1: seed, h2: seed}
}

func mix(h, word uint32) uint32 {
	return (bits.RotateLeft32(h, rotate) + h) ^ word
}

func (s *state) fold(word uint32) {
	if s.second {
		s.h2 = mix(s.h2, word)
	} else {
		s.h1 = mix(s.h1, word)
	}
	s.second = !s.second
}

func (s *state) unit(u uint16) {
	if !s.held {
		s.pending = uint32(u)
		s.held = true
		return
	}
	s.fold(s.pending | uint32(u)<<16)
	s.held = false
}

func (s *state) sum() uint32 {
	if s.held {
		// odd trailing unit; the 0xFFFF high half keeps "x" distinct from "x\x00"
		// even if the two ever shared a seed.
		s.fold(s.pending | 0xFFFF<<16)
		s.held = false
	}
	return s.h1 + s.h2*combineMul
}

// Units hashes a span of UTF-16 code units.
func Units(units []uint16) uint32 {
	st := newState(len(units))
	for _, u := range units {
		st.unit(u)
	}
	return st.sum()
}

// String hashes the UTF-16 encoding of s without materializing it.
// Invalid UTF-8 bytes count as U+FFFD, matching utf16.Encode([]rune(s)).
func String(s string) uint32 {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	st := newState(n)
	for _, r := range s {
		if r < 0x10000 {
			st.unit(uint16(r)) //nolint:gosec
			continue
		}
		hi, lo := utf16.EncodeRune(r)
		st.unit(uint16(hi)) //nolint:gosec
		st.unit(uint16(lo)) //nolint:gosec
	}
	return st.sum()
}
