// Package arith implements the field and group arithmetic of EGDS 2.1: a
// prime field Z_q and a multiplicative subgroup of Z_p* of order q, plus
// bounded-range sampling and element validation.
//
// Grounded on the modular-exponentiation idiom used throughout the pack for
// non-ECC arithmetic (see davinci-node/spec/hash/stateroot.go and
// vocdoni-z-sandbox/crypto/elgamal/dkg/dkg.go's rand.Int + polynomial
// evaluation), generalized from a single curve order to an explicit
// (p, q, g) triple since EGDS is not an elliptic-curve scheme.
package arith

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Scalar is an element of Z_q. It is never interchangeable with an Element
// without an explicit conversion, so a scalar can never be silently used
// where a group element is expected.
type Scalar struct{ v *big.Int }

// Element is a member of the order-q subgroup of Z_p*.
type Element struct{ v *big.Int }

// Int returns the underlying big.Int. Callers must not mutate it.
func (s Scalar) Int() *big.Int { return s.v }

// Int returns the underlying big.Int. Callers must not mutate it.
func (e Element) Int() *big.Int { return e.v }

// IsZero reports whether the scalar is the zero element of Z_q.
func (s Scalar) IsZero() bool { return s.v == nil || s.v.Sign() == 0 }

// Equal reports whether two scalars carry the same value.
func (s Scalar) Equal(o Scalar) bool { return s.v.Cmp(o.v) == 0 }

// Equal reports whether two elements carry the same value.
func (e Element) Equal(o Element) bool { return e.v.Cmp(o.v) == 0 }

// NewScalar reduces v into Z_q. v is not mutated.
func NewScalar(q, v *big.Int) Scalar {
	r := new(big.Int).Mod(v, q)
	return Scalar{v: r}
}

// ElementFromBig wraps v as a (not yet validated) group element. Use
// GroupP.IsValidElement before trusting it in a verification path.
func ElementFromBig(v *big.Int) Element { return Element{v: new(big.Int).Set(v)} }

// FieldQ is the scalar field Z_q.
type FieldQ struct {
	Q *big.Int
}

// GroupP is the multiplicative subgroup of Z_p* of order Q, generated by G.
type GroupP struct {
	P *big.Int
	Q *big.Int
	G *big.Int
}

// Field returns the scalar field underlying this group.
func (g GroupP) Field() FieldQ { return FieldQ{Q: g.Q} }

// RandomScalar samples a uniform value in [0, q) via rejection sampling over
// the given CSRNG, per EGDS §4.A.
func (f FieldQ) RandomScalar(rnd io.Reader) (Scalar, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	v, err := rand.Int(rnd, f.Q)
	if err != nil {
		return Scalar{}, fmt.Errorf("arith: sample scalar: %w", err)
	}
	return Scalar{v: v}, nil
}

// IsValidScalar reports whether v is a canonical element of [0, q).
func (f FieldQ) IsValidScalar(v Scalar) bool {
	return v.v != nil && v.v.Sign() >= 0 && v.v.Cmp(f.Q) < 0
}

// AddMod returns (a+b) mod q.
func (f FieldQ) AddMod(a, b Scalar) Scalar {
	r := new(big.Int).Add(a.v, b.v)
	r.Mod(r, f.Q)
	return Scalar{v: r}
}

// SubMod returns (a-b) mod q.
func (f FieldQ) SubMod(a, b Scalar) Scalar {
	r := new(big.Int).Sub(a.v, b.v)
	r.Mod(r, f.Q)
	return Scalar{v: r}
}

// MulMod returns (a*b) mod q.
func (f FieldQ) MulMod(a, b Scalar) Scalar {
	r := new(big.Int).Mul(a.v, b.v)
	r.Mod(r, f.Q)
	return Scalar{v: r}
}

// NegMod returns (-a) mod q.
func (f FieldQ) NegMod(a Scalar) Scalar {
	r := new(big.Int).Neg(a.v)
	r.Mod(r, f.Q)
	return Scalar{v: r}
}

// Inverse returns the modular multiplicative inverse of a mod q. a must be
// nonzero and q must be prime.
func (f FieldQ) Inverse(a Scalar) (Scalar, error) {
	if a.IsZero() {
		return Scalar{}, fmt.Errorf("arith: inverse of zero scalar")
	}
	r := new(big.Int).ModInverse(a.v, f.Q)
	if r == nil {
		return Scalar{}, fmt.Errorf("arith: no modular inverse (gcd != 1)")
	}
	return Scalar{v: r}, nil
}

// ScalarFromUint64 builds a reduced scalar from a uint64 value.
func (f FieldQ) ScalarFromUint64(v uint64) Scalar {
	return NewScalar(f.Q, new(big.Int).SetUint64(v))
}

// GeneratorPow computes g^exp mod p, i.e. exponentiation of the subgroup
// generator.
func (g GroupP) GeneratorPow(exp Scalar) Element {
	r := new(big.Int).Exp(g.G, exp.v, g.P)
	return Element{v: r}
}

// Pow computes base^exp mod p.
func (g GroupP) Pow(base Element, exp Scalar) Element {
	r := new(big.Int).Exp(base.v, exp.v, g.P)
	return Element{v: r}
}

// Mul computes (a*b) mod p.
func (g GroupP) Mul(a, b Element) Element {
	r := new(big.Int).Mul(a.v, b.v)
	r.Mod(r, g.P)
	return Element{v: r}
}

// Inverse computes the multiplicative inverse of e mod p.
func (g GroupP) Inverse(e Element) Element {
	r := new(big.Int).ModInverse(e.v, g.P)
	return Element{v: r}
}

// IsValidElement checks 0 <= x < p and x^q === 1 (mod p), per EGDS §4.A.
func (g GroupP) IsValidElement(e Element) bool {
	if e.v == nil || e.v.Sign() < 0 || e.v.Cmp(g.P) >= 0 {
		return false
	}
	r := new(big.Int).Exp(e.v, g.Q, g.P)
	return r.Cmp(big.NewInt(1)) == 0
}

// Identity returns the group identity element (1).
func (g GroupP) Identity() Element { return Element{v: big.NewInt(1)} }

// FixedLenBytes returns v as a big-endian byte slice, left-padded (or
// truncated-checked) to exactly n bytes. It panics if v would not fit,
// matching the fixed-width serialization contract of EGDS hash inputs.
func FixedLenBytes(v *big.Int, n int) []byte {
	b := v.Bytes()
	if len(b) > n {
		panic(fmt.Sprintf("arith: value does not fit in %d bytes", n))
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}
