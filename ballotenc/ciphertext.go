// Package ballotenc implements EGDS 2.1 contest encryption and disjunctive
// Chaum-Pedersen range proofs over ElGamal-style ciphertexts (§4.F).
//
// Grounded on davinci-node/crypto/elgamal/proof.go's
// BuildDecryptionProof/VerifyDecryptionProof pair (sample randomness,
// derive a Fiat-Shamir challenge over the public transcript, compute a
// linear response), generalized from a single equality-of-discrete-log
// proof to the disjunctive-OR construction EGDS range proofs require, and
// from elliptic-curve points to Z_p* exponentiation.
package ballotenc

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/egerr"
	"github.com/egcore/egds/ehash"
	"github.com/egcore/egds/params"
)

const tagRangeProofChallenge byte = 0x21

// Ciphertext is an ElGamal-style encryption (alpha, beta) = (g^xi, K^xi *
// g^v) of a plaintext v under joint public key K, per §4.F step 3.
type Ciphertext struct {
	Alpha arith.Element
	Beta  arith.Element
}

// RangeProofBranch is one branch (g^{v_j}, K^{v_j}) of a disjunctive
// Chaum-Pedersen proof: a (challenge, response) pair for candidate value j.
type RangeProofBranch struct {
	Challenge arith.Scalar
	Response  arith.Scalar
}

// RangeProof is a disjunctive Chaum-Pedersen proof that a ciphertext
// encrypts some value in [0, L], with one branch per admissible value.
type RangeProof struct {
	Branches []RangeProofBranch // indexed 0..L
}

func elementBytes(fp params.FixedParameters) int {
	return (fp.Group.P.BitLen() + 7) / 8
}

// EncryptValue encrypts v under jointK with a freshly sampled nonce, per
// §4.F step 3. v must be in [0, 2^31).
func EncryptValue(fp params.FixedParameters, jointK arith.Element, v int) (Ciphertext, arith.Scalar, error) {
	if v < 0 {
		return Ciphertext{}, arith.Scalar{}, fmt.Errorf("ballotenc: plaintext %d is negative", v)
	}
	field := fp.Group.Field()
	xi, err := field.RandomScalar(rand.Reader)
	if err != nil {
		return Ciphertext{}, arith.Scalar{}, fmt.Errorf("ballotenc: sample encryption nonce: %w", err)
	}
	alpha := fp.Group.GeneratorPow(xi)
	kXi := fp.Group.Pow(jointK, xi)
	gv := fp.Group.GeneratorPow(field.ScalarFromUint64(uint64(v)))
	beta := fp.Group.Mul(kXi, gv)
	return Ciphertext{Alpha: alpha, Beta: beta}, xi, nil
}

// rangeProofChallenge computes the Fiat-Shamir challenge c = H(H_E, 0x21 ||
// K || alpha || beta || {a_j} || {b_j}) mod q over the full branch
// transcript, per §4.F step 4.
func rangeProofChallenge(fp params.FixedParameters, he ehash.HValue, jointK arith.Element, ct Ciphertext, as, bs []arith.Element) arith.Scalar {
	n := elementBytes(fp)
	fields := make([][]byte, 0, 3+len(as)+len(bs))
	fields = append(fields,
		arith.FixedLenBytes(jointK.Int(), n),
		arith.FixedLenBytes(ct.Alpha.Int(), n),
		arith.FixedLenBytes(ct.Beta.Int(), n),
	)
	for _, a := range as {
		fields = append(fields, arith.FixedLenBytes(a.Int(), n))
	}
	for _, b := range bs {
		fields = append(fields, arith.FixedLenBytes(b.Int(), n))
	}
	h := ehash.H(he, ehash.Tagged(tagRangeProofChallenge, fields...))
	return arith.NewScalar(fp.Group.Q, new(big.Int).SetBytes(h.Bytes()))
}

// simulatedBranchPoints computes (a_j, b_j) for a simulated (non-true)
// branch j given a chosen (c_j, v_j): a_j = g^{v_j} * alpha^{c_j}, b_j =
// K^{v_j} * (beta * g^{-j})^{c_j}.
func simulatedBranchPoints(fp params.FixedParameters, jointK arith.Element, ct Ciphertext, j int, c, v arith.Scalar) (a, b arith.Element) {
	field := fp.Group.Field()
	gv := fp.Group.GeneratorPow(v)
	alphaC := fp.Group.Pow(ct.Alpha, c)
	a = fp.Group.Mul(gv, alphaC)

	kv := fp.Group.Pow(jointK, v)
	gj := fp.Group.GeneratorPow(field.ScalarFromUint64(uint64(j)))
	gjInv := fp.Group.Inverse(gj)
	betaOverGj := fp.Group.Mul(ct.Beta, gjInv)
	rhsC := fp.Group.Pow(betaOverGj, c)
	b = fp.Group.Mul(kv, rhsC)
	return a, b
}

// BuildRangeProof proves ct = EncryptValue(jointK, value, xi) encrypts a
// value in [0, limit], per §4.F step 4.
func BuildRangeProof(fp params.FixedParameters, he ehash.HValue, jointK arith.Element, ct Ciphertext, xi arith.Scalar, value, limit int) (RangeProof, error) {
	if value < 0 || value > limit {
		return RangeProof{}, fmt.Errorf("ballotenc: value %d out of admissible range [0,%d]", value, limit)
	}
	field := fp.Group.Field()

	as := make([]arith.Element, limit+1)
	bs := make([]arith.Element, limit+1)
	cs := make([]arith.Scalar, limit+1)
	vs := make([]arith.Scalar, limit+1)

	uTrue, err := field.RandomScalar(rand.Reader)
	if err != nil {
		return RangeProof{}, fmt.Errorf("ballotenc: sample true-branch nonce: %w", err)
	}
	as[value] = fp.Group.GeneratorPow(uTrue)
	bs[value] = fp.Group.Pow(jointK, uTrue)

	for j := 0; j <= limit; j++ {
		if j == value {
			continue
		}
		cj, err := field.RandomScalar(rand.Reader)
		if err != nil {
			return RangeProof{}, fmt.Errorf("ballotenc: sample simulated challenge %d: %w", j, err)
		}
		vj, err := field.RandomScalar(rand.Reader)
		if err != nil {
			return RangeProof{}, fmt.Errorf("ballotenc: sample simulated response %d: %w", j, err)
		}
		cs[j] = cj
		vs[j] = vj
		as[j], bs[j] = simulatedBranchPoints(fp, jointK, ct, j, cj, vj)
	}

	c := rangeProofChallenge(fp, he, jointK, ct, as, bs)
	sumOthers := field.ScalarFromUint64(0)
	for j := 0; j <= limit; j++ {
		if j == value {
			continue
		}
		sumOthers = field.AddMod(sumOthers, cs[j])
	}
	cTrue := field.SubMod(c, sumOthers)
	vTrue := field.SubMod(uTrue, field.MulMod(cTrue, xi))
	cs[value] = cTrue
	vs[value] = vTrue

	branches := make([]RangeProofBranch, limit+1)
	for j := 0; j <= limit; j++ {
		branches[j] = RangeProofBranch{Challenge: cs[j], Response: vs[j]}
	}
	return RangeProof{Branches: branches}, nil
}

// VerifyRangeProof recomputes each branch's (a_j, b_j) from (ct, c_j, v_j),
// rederives the overall challenge, and checks it equals the sum of branch
// challenges mod q, per §4.F step 6.
func VerifyRangeProof(fp params.FixedParameters, he ehash.HValue, jointK arith.Element, ct Ciphertext, proof RangeProof, limit int) error {
	if len(proof.Branches) != limit+1 {
		return &egerr.ProofError{Kind: "RangeNotSatisfied", SmallL: len(proof.Branches), BigL: limit, Detail: "branch count does not match admissible range"}
	}
	field := fp.Group.Field()
	if !fp.Group.IsValidElement(ct.Alpha) || !fp.Group.IsValidElement(ct.Beta) {
		return &egerr.ProofError{Kind: "InvalidCiphertext", Detail: "alpha or beta not in subgroup"}
	}

	as := make([]arith.Element, limit+1)
	bs := make([]arith.Element, limit+1)
	sum := field.ScalarFromUint64(0)
	for j, br := range proof.Branches {
		if !field.IsValidScalar(br.Response) || !field.IsValidScalar(br.Challenge) {
			return &egerr.ProofError{Kind: "RangeNotSatisfied", SmallL: j, BigL: limit, Detail: "response or challenge out of range"}
		}
		as[j], bs[j] = simulatedBranchPoints(fp, jointK, ct, j, br.Challenge, br.Response)
		sum = field.AddMod(sum, br.Challenge)
	}
	c := rangeProofChallenge(fp, he, jointK, ct, as, bs)
	if !c.Equal(sum) {
		return &egerr.ProofError{Kind: "RangeNotSatisfied", SmallL: len(proof.Branches), BigL: limit, Detail: "challenge does not match sum of branch challenges"}
	}
	return nil
}

// SumCiphertexts homomorphically adds a set of ciphertexts and their
// nonces, yielding the ciphertext/nonce pair for their plaintext sum, per
// §4.F step 5 "homomorphically sum (alpha, beta, xi)."
func SumCiphertexts(fp params.FixedParameters, cts []Ciphertext, nonces []arith.Scalar) (Ciphertext, arith.Scalar) {
	field := fp.Group.Field()
	alpha := fp.Group.Identity()
	beta := fp.Group.Identity()
	xi := field.ScalarFromUint64(0)
	for i, ct := range cts {
		alpha = fp.Group.Mul(alpha, ct.Alpha)
		beta = fp.Group.Mul(beta, ct.Beta)
		xi = field.AddMod(xi, nonces[i])
	}
	return Ciphertext{Alpha: alpha, Beta: beta}, xi
}
