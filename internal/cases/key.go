// Package cases holds the normalized input of string-switch lowering: case keys as
// UTF-16 code units, the case table, the scrutinee classification and capabilities,
// and the reference first-match semantics every plan must agree with.
package cases

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Key is a case label as a sequence of UTF-16 code units.
type Key []uint16

// KeyOf encodes s as UTF-16. Invalid UTF-8 bytes become U+FFFD.
func KeyOf(s string) Key {
	return Key(utf16.Encode([]rune(s)))
}

// Len returns the number of code units.
func (k Key) Len() int { return len(k) }

// At returns the code unit at offset i.
func (k Key) At(i int) uint16 { return k[i] }

// Equal reports whether k and o hold the same code units.
func (k Key) Equal(o Key) bool { return slices.Equal(k, o) }

// Compare orders keys by code units, then by length.
func (k Key) Compare(o Key) int { return slices.Compare(k, o) }

// String decodes the key. Unpaired surrogates decode to U+FFFD.
func (k Key) String() string { return string(utf16.Decode(k)) }

// Quote renders the key as a Go-quoted string, spelling unpaired surrogates as \uXXXX.
func (k Key) Quote() string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(k); i++ {
		u := k[i]
		if utf16.IsSurrogate(rune(u)) {
			if i+1 < len(k) {
				if r := utf16.DecodeRune(rune(u), rune(k[i+1])); r != unicode.ReplacementChar {
					sb.WriteString(quoteRune(r))
					i++
					continue
				}
			}
			sb.WriteString(`\u`)
			sb.WriteString(hex4(u))
			continue
		}
		sb.WriteString(quoteRune(rune(u)))
	}
	sb.WriteByte('"')
	return sb.String()
}

// QuoteUnit renders a single code unit for plan dumps.
func QuoteUnit(u uint16) string {
	if utf16.IsSurrogate(rune(u)) {
		return `'\u` + hex4(u) + `'`
	}
	return strconv.QuoteRune(rune(u))
}

func quoteRune(r rune) string {
	q := strconv.Quote(string(r))
	return q[1 : len(q)-1]
}

func hex4(u uint16) string {
	s := strconv.FormatUint(uint64(u), 16)
	return strings.Repeat("0", 4-len(s)) + s
}

// mapKey packs the code units into a string usable as a map key.
func (k Key) mapKey() string {
	b := make([]byte, 0, 2*len(k))
	for _, u := range k {
		b = append(b, byte(u), byte(u>>8))
	}
	return string(b)
}
