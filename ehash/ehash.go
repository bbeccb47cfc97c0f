// Package ehash implements the domain-separated HMAC-SHA-256 wrapper H(key,
// data) used throughout EGDS 2.1, plus the fixed-width big-endian encodings
// that feed it.
//
// Grounded on the domain-tagged hash-wrapper shape of
// davinci-node/spec/hash/poseidon.go and stateroot.go (typed leaves hashed in
// a fixed order under small integer tags), adapted from Poseidon (a
// SNARK-friendly field hash with no role in this spec) to HMAC-SHA-256 per
// EGDS §4.B.
package ehash

import (
	"crypto/hmac"
	"crypto/sha256"
)

// Size is the width in bytes of an HValue.
const Size = 32

// HValue is a 32-byte domain-separated hash output. It is zeroized on
// Zeroize() when it carries secret-derived material (see guardian package).
type HValue [Size]byte

// Bytes returns the hash value as a byte slice (a copy is not made; callers
// must not mutate it in place if the HValue is meant to be reused).
func (h HValue) Bytes() []byte { return h[:] }

// Zeroize overwrites the hash value in place. No Go "zeroize" crate appears
// anywhere in the retrieved example pack (see DESIGN.md); this mirrors the
// minimal manual best-effort clearing idiom used by the pack's own
// scalar/secret-handling code (plain math/big, no wrapper).
func (h *HValue) Zeroize() {
	for i := range h {
		h[i] = 0
	}
}

// H computes HMAC-SHA-256(key, data), the core "H(key, data)" primitive of
// EGDS §4.B. key must be exactly Size bytes; this matches the EGDS
// requirement that every hash application uses a 32-byte key.
func H(key HValue, data ...[]byte) HValue {
	mac := hmac.New(sha256.New, key.Bytes())
	for _, d := range data {
		mac.Write(d)
	}
	var out HValue
	copy(out[:], mac.Sum(nil))
	return out
}

// Tagged builds the tagged hash input EGDS uses throughout: a single leading
// tag byte (occasionally two) followed by the concatenation of the
// fixed-width-encoded fields for the equation in question.
func Tagged(tag byte, fields ...[]byte) []byte {
	total := 1
	for _, f := range fields {
		total += len(f)
	}
	out := make([]byte, 0, total)
	out = append(out, tag)
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}

// TaggedWide builds a tagged hash input with a two-byte tag, for the rare
// EGDS equations that need more than 256 domain-separation tags.
func TaggedWide(tag uint16, fields ...[]byte) []byte {
	total := 2
	for _, f := range fields {
		total += len(f)
	}
	out := make([]byte, 0, total)
	out = append(out, byte(tag>>8), byte(tag))
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}
