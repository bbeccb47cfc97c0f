// Package guardian implements EGDS 2.1 guardian key generation, Schnorr
// coefficient proofs, threshold share encryption/decryption, and Lagrange
// combination (§4.D).
//
// Grounded on vocdoni-vocdoni-sequencer/dkg's Participant polynomial-share
// model (sample coefficients, evaluate, distribute) for the generate/share
// shape, and on dkg/secies/secies.go's ECIES encrypt/decrypt pair for the
// share-encryption shape, generalized from elliptic-curve scalar
// multiplication to Z_p* exponentiation and from a plain ECIES XOR cipher
// to the HMAC-derived (k_mac, k_enc) pair EGDS specifies.
package guardian

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/egerr"
	"github.com/egcore/egds/ehash"
	"github.com/egcore/egds/idx"
	"github.com/egcore/egds/params"
)

const (
	tagCoefficientProof byte = 0x10
	tagShareSecretKey   byte = 0x11
)

// CoefficientProof is a Schnorr/Fiat-Shamir proof of knowledge of the
// discrete log of one polynomial coefficient's public commitment.
type CoefficientProof struct {
	Challenge arith.Scalar // c_j
	Response  arith.Scalar // v_j
}

// GuardianSecretKeyInfo is the unvalidated, serialized form of a guardian's
// secret key material.
type GuardianSecretKeyInfo struct {
	GuardianIndex int
	Coefficients  []string // a_{i,j}, hex, j in [0,k)
}

// GuardianSecretKey is guardian i's k polynomial coefficients a_{i,0..k-1}.
// Zeroized on Zeroize(), since this is the one EDO whose bytes must never
// leak to the election record.
type GuardianSecretKey struct {
	Index        idx.Guardian
	Coefficients []arith.Scalar
}

// Zeroize overwrites every coefficient's backing bytes in place.
func (sk *GuardianSecretKey) Zeroize() {
	for i := range sk.Coefficients {
		b := sk.Coefficients[i].Int().Bits()
		for j := range b {
			b[j] = 0
		}
	}
}

// TryValidate parses a GuardianSecretKeyInfo's hex coefficients into
// scalars reduced mod q.
func (info GuardianSecretKeyInfo) TryValidate(fp params.FixedParameters) (GuardianSecretKey, error) {
	i, err := idx.New[idx.GuardianTag](info.GuardianIndex)
	if err != nil {
		return GuardianSecretKey{}, err
	}
	coeffs := make([]arith.Scalar, len(info.Coefficients))
	for j, hexStr := range info.Coefficients {
		v, ok := new(big.Int).SetString(hexStr, 16)
		if !ok {
			return GuardianSecretKey{}, fmt.Errorf("guardian: secret key coefficient %d is not valid hex", j)
		}
		coeffs[j] = arith.NewScalar(fp.Group.Q, v)
	}
	return GuardianSecretKey{Index: i, Coefficients: coeffs}, nil
}

// Info converts a validated GuardianSecretKey back to its Info form.
func (sk GuardianSecretKey) Info() GuardianSecretKeyInfo {
	coeffs := make([]string, len(sk.Coefficients))
	for j, a := range sk.Coefficients {
		coeffs[j] = a.Int().Text(16)
	}
	return GuardianSecretKeyInfo{GuardianIndex: sk.Index.Int(), Coefficients: coeffs}
}

// GuardianPublicKeyInfo is the unvalidated form of a guardian's public key.
type GuardianPublicKeyInfo struct {
	GuardianIndex int
	Commitments   []string // K_{i,j}, hex
	Proofs        []CoefficientProofInfo
}

// CoefficientProofInfo is the unvalidated form of a CoefficientProof.
type CoefficientProofInfo struct {
	Challenge string
	Response  string
}

// GuardianPublicKey is guardian i's k commitments K_{i,0..k-1} = g^{a_{i,j}}
// and their coefficient proofs.
type GuardianPublicKey struct {
	Index       idx.Guardian
	Commitments []arith.Element
	Proofs      []CoefficientProof
}

// Generate samples a fresh degree-(k-1) polynomial for guardian index i and
// builds its public commitments and coefficient proofs, per §4.D "Generate."
func Generate(fp params.FixedParameters, hp ehash.HValue, i idx.Guardian, k int) (GuardianSecretKey, GuardianPublicKey, error) {
	field := fp.Group.Field()
	coeffs := make([]arith.Scalar, k)
	commitments := make([]arith.Element, k)
	proofs := make([]CoefficientProof, k)

	for j := 0; j < k; j++ {
		a, err := field.RandomScalar(rand.Reader)
		if err != nil {
			return GuardianSecretKey{}, GuardianPublicKey{}, fmt.Errorf("guardian: sample coefficient %d: %w", j, err)
		}
		coeffs[j] = a
		commitments[j] = fp.Group.GeneratorPow(a)

		u, err := field.RandomScalar(rand.Reader)
		if err != nil {
			return GuardianSecretKey{}, GuardianPublicKey{}, fmt.Errorf("guardian: sample proof nonce %d: %w", j, err)
		}
		gu := fp.Group.GeneratorPow(u)
		c := coefficientChallenge(fp, hp, i, j, commitments[j], gu)
		// v_j = u_j - c_j*a_{i,j} mod q
		v := field.SubMod(u, field.MulMod(c, a))
		proofs[j] = CoefficientProof{Challenge: c, Response: v}
	}

	sk := GuardianSecretKey{Index: i, Coefficients: coeffs}
	pk := GuardianPublicKey{Index: i, Commitments: commitments, Proofs: proofs}
	return sk, pk, nil
}

// PublicFromSecret re-derives guardian i's public key from an
// already-generated secret key: the commitments are fixed by the secret
// coefficients, but each coefficient proof is recomputed against a fresh
// nonce. This is sound because a Schnorr proof of knowledge may be
// regenerated arbitrarily many times from the same witness; it lets the
// resource graph's PublicFromSecretKey producer (§4.I) serve a public key
// request from a held secret key without persisting the original proof.
func PublicFromSecret(fp params.FixedParameters, hp ehash.HValue, sk GuardianSecretKey) (GuardianPublicKey, error) {
	field := fp.Group.Field()
	k := len(sk.Coefficients)
	commitments := make([]arith.Element, k)
	proofs := make([]CoefficientProof, k)
	for j, a := range sk.Coefficients {
		commitments[j] = fp.Group.GeneratorPow(a)
		u, err := field.RandomScalar(rand.Reader)
		if err != nil {
			return GuardianPublicKey{}, fmt.Errorf("guardian: sample proof nonce %d: %w", j, err)
		}
		gu := fp.Group.GeneratorPow(u)
		c := coefficientChallenge(fp, hp, sk.Index, j, commitments[j], gu)
		v := field.SubMod(u, field.MulMod(c, a))
		proofs[j] = CoefficientProof{Challenge: c, Response: v}
	}
	return GuardianPublicKey{Index: sk.Index, Commitments: commitments, Proofs: proofs}, nil
}

func coefficientChallenge(fp params.FixedParameters, hp ehash.HValue, i idx.Guardian, j int, commitment, gu arith.Element) arith.Scalar {
	n := elementBytes(fp)
	h := ehash.H(hp, ehash.Tagged(tagCoefficientProof,
		indexBytes(i.Uint32()),
		indexBytes(uint32(j)),
		arith.FixedLenBytes(commitment.Int(), n),
		arith.FixedLenBytes(gu.Int(), n),
	))
	return arith.NewScalar(fp.Group.Q, new(big.Int).SetBytes(h.Bytes()))
}

// VerifyPublicKey checks §4.D's "Verify public key" invariants for every
// coefficient: the commitment lies in the order-q subgroup, the response is
// a canonical scalar, and the coefficient proof verifies.
func VerifyPublicKey(fp params.FixedParameters, hp ehash.HValue, pk GuardianPublicKey, k int) error {
	if len(pk.Commitments) != k {
		return &egerr.PublicKeyValidationError{Kind: "InadequateNumberOfCommitments", Detail: fmt.Sprintf("want %d, have %d", k, len(pk.Commitments))}
	}
	if len(pk.Proofs) != k {
		return &egerr.PublicKeyValidationError{Kind: "InadequateNumberOfCommitments", Detail: "proof count does not match commitment count"}
	}
	field := fp.Group.Field()
	for j, commitment := range pk.Commitments {
		if !fp.Group.IsValidElement(commitment) {
			return &egerr.PublicKeyValidationError{Kind: "InvalidProof", Detail: fmt.Sprintf("commitment %d not in subgroup", j)}
		}
		proof := pk.Proofs[j]
		if !field.IsValidScalar(proof.Response) {
			return &egerr.PublicKeyValidationError{Kind: "InvalidProof", Detail: fmt.Sprintf("response %d out of range", j)}
		}
		// recompute g^{v_j} * K_{i,j}^{c_j} and check it hashes back to c_j.
		gv := fp.Group.GeneratorPow(proof.Response)
		kc := fp.Group.Pow(commitment, proof.Challenge)
		recomputed := fp.Group.Mul(gv, kc)
		c := coefficientChallenge(fp, hp, pk.Index, j, commitment, recomputed)
		if !c.Equal(proof.Challenge) {
			return &egerr.PublicKeyValidationError{Kind: "InvalidProof", Detail: fmt.Sprintf("coefficient proof %d does not verify", j)}
		}
	}
	return nil
}

// TryValidate validates a GuardianPublicKeyInfo against the given
// FixedParameters, hash base, and expected threshold k.
func (info GuardianPublicKeyInfo) TryValidate(fp params.FixedParameters, hp ehash.HValue, k int) (GuardianPublicKey, error) {
	i, err := idx.New[idx.GuardianTag](info.GuardianIndex)
	if err != nil {
		return GuardianPublicKey{}, &egerr.PublicKeyValidationError{Kind: "IndexOutOfRange", Detail: err.Error()}
	}
	if len(info.Commitments) == 0 {
		return GuardianPublicKey{}, &egerr.PublicKeyValidationError{Kind: "NoCommitments"}
	}
	commitments := make([]arith.Element, len(info.Commitments))
	for j, hexStr := range info.Commitments {
		v, ok := new(big.Int).SetString(hexStr, 16)
		if !ok {
			return GuardianPublicKey{}, &egerr.PublicKeyValidationError{Kind: "InvalidProof", Detail: fmt.Sprintf("commitment %d is not valid hex", j)}
		}
		commitments[j] = arith.ElementFromBig(v)
	}
	proofs := make([]CoefficientProof, len(info.Proofs))
	for j, p := range info.Proofs {
		cv, ok := new(big.Int).SetString(p.Challenge, 16)
		if !ok {
			return GuardianPublicKey{}, &egerr.PublicKeyValidationError{Kind: "InvalidProof", Detail: "bad challenge hex"}
		}
		rv, ok := new(big.Int).SetString(p.Response, 16)
		if !ok {
			return GuardianPublicKey{}, &egerr.PublicKeyValidationError{Kind: "InvalidProof", Detail: "bad response hex"}
		}
		proofs[j] = CoefficientProof{
			Challenge: arith.NewScalar(fp.Group.Q, cv),
			Response:  arith.NewScalar(fp.Group.Q, rv),
		}
	}
	pk := GuardianPublicKey{Index: i, Commitments: commitments, Proofs: proofs}
	if err := VerifyPublicKey(fp, hp, pk, k); err != nil {
		return GuardianPublicKey{}, err
	}
	return pk, nil
}

// Info converts a validated GuardianPublicKey back to its Info form.
func (pk GuardianPublicKey) Info() GuardianPublicKeyInfo {
	commitments := make([]string, len(pk.Commitments))
	for j, c := range pk.Commitments {
		commitments[j] = c.Int().Text(16)
	}
	proofs := make([]CoefficientProofInfo, len(pk.Proofs))
	for j, p := range pk.Proofs {
		proofs[j] = CoefficientProofInfo{Challenge: p.Challenge.Int().Text(16), Response: p.Response.Int().Text(16)}
	}
	return GuardianPublicKeyInfo{GuardianIndex: pk.Index.Int(), Commitments: commitments, Proofs: proofs}
}

// PolynomialAt evaluates guardian i's secret polynomial P_i(x) = sum_j
// a_{i,j} x^j mod q at x.
func PolynomialAt(fp params.FixedParameters, sk GuardianSecretKey, x int64) arith.Scalar {
	field := fp.Group.Field()
	xs := field.ScalarFromUint64(uint64(x))
	acc := field.ScalarFromUint64(0)
	power := field.ScalarFromUint64(1)
	for _, a := range sk.Coefficients {
		acc = field.AddMod(acc, field.MulMod(a, power))
		power = field.MulMod(power, xs)
	}
	return acc
}

// CommitmentsEvalAt evaluates Π_j K_{i,j}^{x^j} mod p, the public-side
// counterpart of PolynomialAt used for verification without the secret
// polynomial.
func CommitmentsEvalAt(fp params.FixedParameters, pk GuardianPublicKey, x int64) arith.Element {
	field := fp.Group.Field()
	xs := field.ScalarFromUint64(uint64(x))
	acc := fp.Group.Identity()
	power := field.ScalarFromUint64(1)
	for _, k := range pk.Commitments {
		acc = fp.Group.Mul(acc, fp.Group.Pow(k, power))
		power = field.MulMod(power, xs)
	}
	return acc
}

// JointPublicKey combines per-guardian commitments K_{i,0} into the purpose
// joint key Π_i K_{i,0} mod p, per §4.D "Combine."
func JointPublicKey(fp params.FixedParameters, pks []GuardianPublicKey) arith.Element {
	acc := fp.Group.Identity()
	for _, pk := range pks {
		acc = fp.Group.Mul(acc, pk.Commitments[0])
	}
	return acc
}

func elementBytes(fp params.FixedParameters) int {
	return (fp.Group.P.BitLen() + 7) / 8
}

func indexBytes(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// hmacSum is a small helper matching EGDS's "HMAC of a fixed label" idiom
// used to derive (k_mac, k_enc) from a shared secret key.
func hmacSum(key []byte, label byte) [32]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte{label})
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}
