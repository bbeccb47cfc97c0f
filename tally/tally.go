// Package tally implements homomorphic accumulation of cast ballots'
// contest ciphertexts and threshold decryption of the resulting totals
// (the spec's supplemental tallying component, built in the same
// ElGamal-additive style as §4.F's encryption).
//
// Grounded on the teacher's single-ciphertext Chaum-Pedersen decryption
// proof shape (davinci-node/crypto/elgamal/proof.go), generalized from
// proving one decryption to accumulating many ciphertexts and recovering a
// small discrete log by exhaustive search bounded by the number of cast
// ballots, since an EGDS tally total is always small relative to q.
package tally

import (
	"fmt"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/ballotenc"
	"github.com/egcore/egds/params"
)

// Accumulator homomorphically sums a contest option's ciphertext across
// every cast ballot.
type Accumulator struct {
	fp    params.FixedParameters
	alpha arith.Element
	beta  arith.Element
	count int
}

// NewAccumulator starts an accumulator at the group identity (an encryption
// of 0 with nonce 0).
func NewAccumulator(fp params.FixedParameters) *Accumulator {
	return &Accumulator{fp: fp, alpha: fp.Group.Identity(), beta: fp.Group.Identity()}
}

// Add folds one more ballot's ciphertext for this option into the running
// total.
func (a *Accumulator) Add(ct ballotenc.Ciphertext) {
	a.alpha = a.fp.Group.Mul(a.alpha, ct.Alpha)
	a.beta = a.fp.Group.Mul(a.beta, ct.Beta)
	a.count++
}

// Ciphertext returns the accumulated (alpha, beta) ciphertext encrypting
// the sum of every added ballot's plaintext for this option.
func (a *Accumulator) Ciphertext() ballotenc.Ciphertext {
	return ballotenc.Ciphertext{Alpha: a.alpha, Beta: a.beta}
}

// Count returns the number of ciphertexts folded in so far, the tally's
// natural upper bound for Decrypt's search.
func (a *Accumulator) Count() int { return a.count }

// Decrypt recovers the plaintext sum encrypted by ct under the guardians'
// combined secret key s (Sigma s_i, recovered via guardian.DecryptShares),
// given the tally cannot exceed maxTotal (typically the number of cast
// ballots): it computes M = beta * (alpha^s)^-1 = g^total and recovers
// total by brute-force discrete log search over [0, maxTotal], which is
// efficient because EGDS tallies are always small compared to q.
func Decrypt(fp params.FixedParameters, ct ballotenc.Ciphertext, s arith.Scalar, maxTotal int) (int, error) {
	shared := fp.Group.Pow(ct.Alpha, s)
	sharedInv := fp.Group.Inverse(shared)
	m := fp.Group.Mul(ct.Beta, sharedInv)

	field := fp.Group.Field()
	acc := fp.Group.Identity()
	if acc.Equal(m) {
		return 0, nil
	}
	g1 := fp.Group.GeneratorPow(field.ScalarFromUint64(1))
	for total := 1; total <= maxTotal; total++ {
		acc = fp.Group.Mul(acc, g1)
		if acc.Equal(m) {
			return total, nil
		}
	}
	return 0, fmt.Errorf("tally: decrypted total exceeds bound %d", maxTotal)
}
