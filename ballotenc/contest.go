package ballotenc

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/egerr"
	"github.com/egcore/egds/ehash"
	"github.com/egcore/egds/idx"
	"github.com/egcore/egds/manifest"
	"github.com/egcore/egds/params"
)

// ContestCiphertexts is the encrypted form of one contest: one ciphertext
// and range proof per option data field, plus the contest-level selection
// sum ciphertext and its range proof, per §4.F.
type ContestCiphertexts struct {
	ContestIx     idx.Contest
	FieldCiphers  []Ciphertext
	FieldProofs   []RangeProof
	SumCiphertext Ciphertext
	SumProof      RangeProof
}

// EncryptContest encrypts a single contest's plaintext votes under jointK,
// builds each field's range proof, and the contest-level selection-sum
// proof, per §4.F steps 1-5.
func EncryptContest(fp params.FixedParameters, he ehash.HValue, jointK arith.Element, contestIx idx.Contest, contest manifest.Contest, votes []int) (ContestCiphertexts, error) {
	if len(votes) != contest.NumOptionDataFields() {
		return ContestCiphertexts{}, &egerr.ValidationError{
			Kind:   "IncorrectQtyOfContestOptionFieldsPlaintexts",
			Detail: fmt.Sprintf("contest %d wants %d fields, got %d", contestIx.Int(), contest.NumOptionDataFields(), len(votes)),
		}
	}

	n := len(votes)
	cts := make([]Ciphertext, n)
	proofs := make([]RangeProof, n)
	nonces := make([]arith.Scalar, n)

	for i, v := range votes {
		limit := contest.EffectiveOptionSelectionLimit(i)
		if v < 0 || v > limit {
			return ContestCiphertexts{}, &egerr.ProofError{Kind: "RangeNotSatisfied", ContestIx: contestIx.Int(), FieldIx: i + 1, SmallL: v, BigL: limit}
		}
		ct, xi, err := EncryptValue(fp, jointK, v)
		if err != nil {
			return ContestCiphertexts{}, err
		}
		proof, err := BuildRangeProof(fp, he, jointK, ct, xi, v, limit)
		if err != nil {
			return ContestCiphertexts{}, err
		}
		cts[i] = ct
		proofs[i] = proof
		nonces[i] = xi
	}

	sumCt, sumXi := SumCiphertexts(fp, cts, nonces)
	sumVal := 0
	for _, v := range votes {
		sumVal += v
	}
	contestLimit := contest.EffectiveContestSelectionLimit()
	if sumVal > contestLimit {
		return ContestCiphertexts{}, &egerr.ProofError{Kind: "RangeNotSatisfied", ContestIx: contestIx.Int(), FieldIx: 0, SmallL: sumVal, BigL: contestLimit}
	}
	sumProof, err := BuildRangeProof(fp, he, jointK, sumCt, sumXi, sumVal, contestLimit)
	if err != nil {
		return ContestCiphertexts{}, err
	}

	return ContestCiphertexts{
		ContestIx:     contestIx,
		FieldCiphers:  cts,
		FieldProofs:   proofs,
		SumCiphertext: sumCt,
		SumProof:      sumProof,
	}, nil
}

// VoteInput pairs a contest index with the voter's plaintext votes for that
// contest, the unit EncryptContests fans out over.
type VoteInput struct {
	ContestIx idx.Contest
	Votes     []int
}

// EncryptContests encrypts every included contest concurrently via an
// errgroup fan-out, per §4.F's "for each contest included by a
// BallotStyle," returning results ordered to match inputs regardless of
// completion order.
func EncryptContests(ctx context.Context, fp params.FixedParameters, he ehash.HValue, jointK arith.Element, m manifest.ElectionManifest, inputs []VoteInput) ([]ContestCiphertexts, error) {
	results := make([]ContestCiphertexts, len(inputs))
	g, _ := errgroup.WithContext(ctx)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			contest := m.Contests[in.ContestIx.Int()-1]
			out, err := EncryptContest(fp, he, jointK, in.ContestIx, contest, in.Votes)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// VerifyContest re-verifies every field proof and the contest sum proof for
// one encrypted contest, per §4.F step 6. It returns the first ProofError
// encountered, naming the failing contest and field index.
func VerifyContest(fp params.FixedParameters, he ehash.HValue, jointK arith.Element, contest manifest.Contest, cc ContestCiphertexts) error {
	if len(cc.FieldCiphers) != len(cc.FieldProofs) || len(cc.FieldCiphers) != contest.NumOptionDataFields() {
		return &egerr.ValidationError{Kind: "IncorrectQtyOfContestOptionFieldsPlaintexts", Detail: "ciphertext/proof count mismatch"}
	}
	for i, ct := range cc.FieldCiphers {
		limit := contest.EffectiveOptionSelectionLimit(i)
		if err := VerifyRangeProof(fp, he, jointK, ct, cc.FieldProofs[i], limit); err != nil {
			if pe, ok := err.(*egerr.ProofError); ok {
				pe.ContestIx = cc.ContestIx.Int()
				pe.FieldIx = i + 1
				return pe
			}
			return err
		}
	}
	// The sum ciphertext is homomorphic in (alpha, beta) alone; the nonces
	// used to build it are secret to the encryptor and are not needed to
	// recompute the public sum ciphertext for verification.
	recomputedSum := sumCiphertextsPublic(fp, cc.FieldCiphers)
	contestLimit := contest.EffectiveContestSelectionLimit()
	if err := VerifyRangeProof(fp, he, jointK, recomputedSum, cc.SumProof, contestLimit); err != nil {
		if pe, ok := err.(*egerr.ProofError); ok {
			pe.ContestIx = cc.ContestIx.Int()
			pe.FieldIx = 0
			return pe
		}
		return err
	}
	return nil
}

func sumCiphertextsPublic(fp params.FixedParameters, cts []Ciphertext) Ciphertext {
	alpha := fp.Group.Identity()
	beta := fp.Group.Identity()
	for _, ct := range cts {
		alpha = fp.Group.Mul(alpha, ct.Alpha)
		beta = fp.Group.Mul(beta, ct.Beta)
	}
	return Ciphertext{Alpha: alpha, Beta: beta}
}
