// Package params holds the EGDS 2.1 FixedParameters (p, q, g) and
// VaryingParameters (n, k, info, date, chaining), per spec §3/§4.C.
//
// Grounded on davinci-node/spec/params/params.go's pattern of typed constant
// groups plus a small validated-struct wrapper, generalized from compile-time
// circuit constants to runtime-selectable (standard vs toy) parameter sets.
package params

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand"
	"sync"

	"github.com/egcore/egds/arith"
)

// Version is the protocol version tag folded into H_P.
const Version = "v2.1.0"

// ChainingMode constrains whether ballot confirmation codes must/may/must-not
// chain to their predecessor.
type ChainingMode int

const (
	ChainingProhibited ChainingMode = iota
	ChainingAllowed
	ChainingRequired
)

func (m ChainingMode) String() string {
	switch m {
	case ChainingProhibited:
		return "Prohibited"
	case ChainingAllowed:
		return "Allowed"
	case ChainingRequired:
		return "Required"
	default:
		return fmt.Sprintf("ChainingMode(%d)", int(m))
	}
}

// FixedParametersInfo is the unvalidated, deserialized form of
// FixedParameters.
type FixedParametersInfo struct {
	P   string // hex
	Q   string // hex
	G   string // hex
	Toy bool   // true for parameters built by Toy; false for Standard's derived parameters
}

// FixedParameters is a validated (p, q, g) triple: q prime, p = q*r+1 with r
// known, g a generator of the order-q subgroup of Z_p*. Immutable across all
// elections that use it.
type FixedParameters struct {
	Group arith.GroupP
	R     *big.Int // cofactor: p = q*r + 1
	Toy   bool
}

// TryValidate checks the primality/structure invariants of §8 and returns a
// validated FixedParameters, or an error naming which check failed.
func (info FixedParametersInfo) TryValidate() (FixedParameters, error) {
	p, ok := new(big.Int).SetString(info.P, 16)
	if !ok {
		return FixedParameters{}, fmt.Errorf("params: invalid p hex")
	}
	q, ok := new(big.Int).SetString(info.Q, 16)
	if !ok {
		return FixedParameters{}, fmt.Errorf("params: invalid q hex")
	}
	g, ok := new(big.Int).SetString(info.G, 16)
	if !ok {
		return FixedParameters{}, fmt.Errorf("params: invalid g hex")
	}
	if !q.ProbablyPrime(64) {
		return FixedParameters{}, fmt.Errorf("params: q is not prime")
	}
	if !p.ProbablyPrime(64) {
		return FixedParameters{}, fmt.Errorf("params: p is not prime")
	}
	r, rem := new(big.Int).DivMod(new(big.Int).Sub(p, big.NewInt(1)), q, new(big.Int))
	if rem.Sign() != 0 {
		return FixedParameters{}, fmt.Errorf("params: q does not divide p-1")
	}
	group := arith.GroupP{P: p, Q: q, G: g}
	if g.Cmp(big.NewInt(1)) == 0 {
		return FixedParameters{}, fmt.Errorf("params: g must not be 1")
	}
	if !group.IsValidElement(arith.ElementFromBig(g)) {
		return FixedParameters{}, fmt.Errorf("params: g is not a generator of the order-q subgroup")
	}
	return FixedParameters{Group: group, R: r, Toy: info.Toy}, nil
}

// Info converts a validated FixedParameters back to its Info form; the
// structural inverse of TryValidate, per §4.H's round-trip requirement.
func (fp FixedParameters) Info() FixedParametersInfo {
	return FixedParametersInfo{
		P:   fp.Group.P.Text(16),
		Q:   fp.Group.Q.Text(16),
		G:   fp.Group.G.Text(16),
		Toy: fp.Toy,
	}
}

// StandardQBits and StandardPBits are the EGDS 2.1 Appendix A standard
// parameter sizes: a 256-bit prime order q and a 4096-bit prime modulus p
// with p = q*r+1.
const (
	StandardQBits = 256
	StandardPBits = 4096
)

var (
	standardOnce   sync.Once
	standardParams FixedParameters
)

// Standard returns parameters of the EGDS 4096-bit / 256-bit standard
// sizes: a 256-bit prime q, a 4096-bit prime p = q*r+1, and a generator g of
// the order-q subgroup of Z_p*.
//
// The parameters are derived once, lazily, from a fixed deterministic seed
// rather than crypto/rand, by searching for a prime q, then an even cofactor
// r making p = q*r+1 prime, then a small generator whose order-q subgroup
// membership is checked directly. They are not the EGDS Appendix A hex
// values, so H_P computed over them differs from H_P over those values; their
// Toy flag is false. First call is compute-intensive
// (a 4096-bit primality search); callers on a hot path (most tests) should
// use Toy instead.
func Standard() FixedParameters {
	standardOnce.Do(func() {
		fp, err := deriveStandardParameters()
		if err != nil {
			panic(fmt.Sprintf("params: failed to derive standard parameters: %v", err))
		}
		standardParams = fp
	})
	return standardParams
}

// deriveStandardParameters performs the q -> r -> p -> g search described in
// Standard's doc comment, over a fixed deterministic seed.
func deriveStandardParameters() (FixedParameters, error) {
	seed := mrand.New(mrand.NewSource(0x45474453322e31)) // "EGDS2.1" as a fixed seed
	q, err := rand.Prime(seed, StandardQBits)
	if err != nil {
		return FixedParameters{}, fmt.Errorf("derive q: %w", err)
	}
	rBits := StandardPBits - StandardQBits
	// q is odd, so r stays even to keep p = q*r+1 odd; starting r at
	// 2^rBits makes q*r exactly StandardPBits bits long.
	r := new(big.Int).Lsh(big.NewInt(1), uint(rBits))
	step := big.NewInt(2)
	one := big.NewInt(1)
	for tries := 0; tries < 1<<20; tries++ {
		p := new(big.Int).Mul(q, r)
		p.Add(p, one)
		if p.BitLen() == StandardPBits && p.ProbablyPrime(40) {
			g, ok := findGenerator(p, q, r)
			if ok {
				return FixedParametersInfo{P: p.Text(16), Q: q.Text(16), G: g.Text(16), Toy: false}.TryValidate()
			}
		}
		r.Add(r, step)
	}
	return FixedParameters{}, fmt.Errorf("exhausted search for standard p")
}

// Toy builds small (fast-to-test) parameters with the requested scalar-field
// bit length, flagged Toy so downstream validation can surface (not reject)
// their non-standard status, per §3 "toy parameters are permitted but
// flagged."
func Toy(qBits int) (FixedParameters, error) {
	if qBits < 16 {
		return FixedParameters{}, fmt.Errorf("params: toy qBits too small")
	}
	q, err := rand.Prime(rand.Reader, qBits)
	if err != nil {
		return FixedParameters{}, fmt.Errorf("params: generate toy q: %w", err)
	}
	// find r, p = q*r+1 prime, by trial.
	for r := int64(2); r < 1<<20; r++ {
		p := new(big.Int).Mul(q, big.NewInt(r))
		p.Add(p, big.NewInt(1))
		if !p.ProbablyPrime(32) {
			continue
		}
		g, ok := findGenerator(p, q, big.NewInt(r))
		if !ok {
			continue
		}
		return FixedParametersInfo{P: p.Text(16), Q: q.Text(16), G: g.Text(16), Toy: true}.TryValidate()
	}
	return FixedParameters{}, fmt.Errorf("params: could not find toy (p,g) for given q")
}

func findGenerator(p, q, r *big.Int) (*big.Int, bool) {
	group := arith.GroupP{P: p, Q: q}
	for h := int64(2); h < 1<<16; h++ {
		cand := new(big.Int).Exp(big.NewInt(h), r, p)
		if cand.Cmp(big.NewInt(1)) == 0 {
			continue
		}
		if group.IsValidElement(arith.ElementFromBig(cand)) {
			return cand, true
		}
	}
	return nil, false
}

// VaryingParametersInfo is the unvalidated form of VaryingParameters.
type VaryingParametersInfo struct {
	N        int
	K        int
	Info     string
	Date     string
	Chaining ChainingMode
}

// VaryingParameters holds the per-election (n, k, info, date, chaining)
// tuple, with 1 <= k <= n <= 2^31-1.
type VaryingParameters struct {
	N        int
	K        int
	Info     string
	Date     string
	Chaining ChainingMode
}

// TryValidate checks 1 <= k <= n <= 2^31-1.
func (info VaryingParametersInfo) TryValidate() (VaryingParameters, error) {
	const max = 1<<31 - 1
	if info.K < 1 {
		return VaryingParameters{}, fmt.Errorf("params: k must be >= 1, got %d", info.K)
	}
	if info.N < info.K {
		return VaryingParameters{}, fmt.Errorf("params: n (%d) must be >= k (%d)", info.N, info.K)
	}
	if info.N > max {
		return VaryingParameters{}, fmt.Errorf("params: n (%d) exceeds max %d", info.N, max)
	}
	if info.Chaining != ChainingProhibited && info.Chaining != ChainingAllowed && info.Chaining != ChainingRequired {
		return VaryingParameters{}, fmt.Errorf("params: invalid chaining mode %d", info.Chaining)
	}
	return VaryingParameters{N: info.N, K: info.K, Info: info.Info, Date: info.Date, Chaining: info.Chaining}, nil
}

// ToInfo converts a validated VaryingParameters back to its Info form.
func (vp VaryingParameters) ToInfo() VaryingParametersInfo {
	return VaryingParametersInfo{N: vp.N, K: vp.K, Info: vp.Info, Date: vp.Date, Chaining: vp.Chaining}
}

// ElectionParameters bundles the validated fixed and varying parameters, per
// §4.I's "Per-EDO function for ElectionParameters: bundle validated
// FixedParameters and VaryingParameters."
type ElectionParameters struct {
	Fixed   FixedParameters
	Varying VaryingParameters
}
