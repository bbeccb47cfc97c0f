package eg_test

import (
	"context"
	"encoding/hex"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/ballotenc"
	"github.com/egcore/egds/confirm"
	"github.com/egcore/egds/eg"
	"github.com/egcore/egds/guardian"
	"github.com/egcore/egds/hashes"
	"github.com/egcore/egds/idx"
	"github.com/egcore/egds/manifest"
	"github.com/egcore/egds/params"
	"github.com/egcore/egds/validate"
)

func findDealer(ds []guardian.Dealer, i int) guardian.Dealer {
	for _, d := range ds {
		if d.Index.Int() == i {
			return d
		}
	}
	panic("dealer not found")
}

func ciphertextInfo(ct ballotenc.Ciphertext) validate.CiphertextInfo {
	return validate.CiphertextInfo{Alpha: ct.Alpha.Int().Text(16), Beta: ct.Beta.Int().Text(16)}
}

func rangeProofInfo(p ballotenc.RangeProof) validate.RangeProofInfo {
	branches := make([]validate.RangeProofBranchInfo, len(p.Branches))
	for i, b := range p.Branches {
		branches[i] = validate.RangeProofBranchInfo{Challenge: b.Challenge.Int().Text(16), Response: b.Response.Int().Text(16)}
	}
	return validate.RangeProofInfo{Branches: branches}
}

func contestCiphertextsInfo(cc ballotenc.ContestCiphertexts) validate.ContestCiphertextsInfo {
	fieldCiphers := make([]validate.CiphertextInfo, len(cc.FieldCiphers))
	fieldProofs := make([]validate.RangeProofInfo, len(cc.FieldProofs))
	for i := range cc.FieldCiphers {
		fieldCiphers[i] = ciphertextInfo(cc.FieldCiphers[i])
		fieldProofs[i] = rangeProofInfo(cc.FieldProofs[i])
	}
	return validate.ContestCiphertextsInfo{
		ContestIndex:  cc.ContestIx.Int(),
		FieldCiphers:  fieldCiphers,
		FieldProofs:   fieldProofs,
		SumCiphertext: ciphertextInfo(cc.SumCiphertext),
		SumProof:      rangeProofInfo(cc.SumProof),
	}
}

// TestEndToEndElection runs a full, small (n=3, k=2) election through the
// resource graph: guardian key generation and threshold share distribution,
// joint public key combination, a cast ballot's encryption/validation, and
// homomorphic tally accumulation/decryption — exercising every stage of the
// lifecycle in §3: "Parameters -> manifest -> guardian keys -> joint keys ->
// extended base hash -> pre-voting data -> ballots -> tallies."
func TestEndToEndElection(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	fp, err := params.Toy(48)
	c.Assert(err, qt.IsNil)

	const n, k = 3, 2

	manifestInfo := manifest.ElectionManifestInfo{
		Label: "End To End Test Election",
		Contests: []manifest.ContestInfo{{
			Label:          "Contest 1",
			SelectionLimit: 1,
			Options: []manifest.ContestOptionInfo{
				{Label: "Alice", SelectionLimit: manifest.OptionSelectionLimitInfo{LimitedByContest: true}},
				{Label: "Bob", SelectionLimit: manifest.OptionSelectionLimitInfo{LimitedByContest: true}},
			},
		}},
		BallotStyles: []manifest.BallotStyleInfo{{Label: "Style 1", Contests: []int{1}}},
	}

	ectx, err := eg.NewContext()
	c.Assert(err, qt.IsNil)

	ectx.SeedFixedParameters(fp.Info())
	ectx.SeedVaryingParameters(params.VaryingParametersInfo{
		N: n, K: k, Info: "end-to-end test", Date: "2026-07-29", Chaining: params.ChainingProhibited,
	})
	ectx.SeedElectionManifest(manifestInfo)

	// The ceremony runs once per purpose ("vote" and "data"): every guardian
	// deals a fresh polynomial and its public commitments/proofs are seeded
	// directly (share *distribution* over a network is this core's caller's
	// concern, not the resource graph's — the graph only produces and
	// validates the resulting EDOs).
	hp, err := ectx.Hashes(ctx)
	c.Assert(err, qt.IsNil)

	dealers := map[string][]guardian.Dealer{}
	for _, purpose := range []string{validate.JointPublicKeyPurposeVote, validate.JointPublicKeyPurposeData} {
		ds := make([]guardian.Dealer, n)
		for i := 1; i <= n; i++ {
			gi := idx.MustNew[idx.GuardianTag](i)
			d, err := guardian.NewDealer(fp, hp.ParameterBase, gi, k)
			c.Assert(err, qt.IsNil)
			ds[i-1] = d
			ectx.SeedGuardianSecretKey(purpose, i, d.Sk.Info())
			ectx.SeedGuardianPublicKey(purpose, i, d.Pk.Info())
		}
		dealers[purpose] = ds
	}

	// Every dealer distributes an encrypted share to every guardian, itself included;
	// each recipient also verifies its own share against the dealer's
	// published commitments before the ceremony is trusted.
	for _, purpose := range []string{validate.JointPublicKeyPurposeVote, validate.JointPublicKeyPurposeData} {
		ds := dealers[purpose]
		for _, dealer := range ds {
			recipients := map[int]guardian.GuardianPublicKey{}
			for _, r := range ds {
				recipients[r.Index.Int()] = r.Pk
			}
			box, err := guardian.DealShares(fp, hp.ParameterBase, dealer, recipients)
			c.Assert(err, qt.IsNil)
			for recipientIx, share := range box.Shares {
				ectx.SeedGuardianEncryptedShare(purpose, dealer.Index.Int(), recipientIx, share.Info())

				recipient := findDealer(ds, recipientIx)
				val, err := guardian.DecryptShare(fp, hp.ParameterBase, share, dealer.Pk, recipient.Sk)
				c.Assert(err, qt.IsNil)
				c.Assert(val.Equal(guardian.PolynomialAt(fp, dealer.Sk, int64(recipientIx))), qt.IsTrue)
			}
		}
	}

	jointK, err := ectx.JointPublicKey(ctx, validate.JointPublicKeyPurposeVote)
	c.Assert(err, qt.IsNil)
	jointKHat, err := ectx.JointPublicKey(ctx, validate.JointPublicKeyPurposeData)
	c.Assert(err, qt.IsNil)
	c.Assert(jointK.Equal(jointKHat), qt.IsFalse, qt.Commentf("distinct ceremonies must yield distinct joint keys"))

	he, err := ectx.ExtendedBaseHash(ctx)
	c.Assert(err, qt.IsNil)

	ectx.SeedVotingDeviceInformation(hashes.VotingDeviceInformationInfo{DeviceID: "precinct-7-unit-1"})
	hdi, err := ectx.VotingDeviceInformationHash(ctx)
	c.Assert(err, qt.IsNil)
	chainField := confirm.NoChainingField(hdi)

	m, err := ectx.ElectionManifest(ctx)
	c.Assert(err, qt.IsNil)

	contestIx := idx.MustNew[idx.ContestTag](1)

	// Two ballots cast: one votes for Alice, one votes for Bob.
	ballotVotes := [][]int{{1, 0}, {0, 1}}
	for i, votes := range ballotVotes {
		cc, err := ballotenc.EncryptContest(fp, he, jointK, contestIx, m.Contests[0], votes)
		c.Assert(err, qt.IsNil)

		code, _, err := confirm.BuildConfirmationCode(fp, he, jointK, m, []ballotenc.ContestCiphertexts{cc}, chainField)
		c.Assert(err, qt.IsNil)

		ballotId := []string{"ballot-0001", "ballot-0002"}[i]
		ectx.SeedBallot(ballotId, validate.BallotInfo{
			BallotId:         ballotId,
			BallotStyleIndex: 1,
			Contests:         []validate.ContestCiphertextsInfo{contestCiphertextsInfo(cc)},
			ChainingField:    hex.EncodeToString(chainField.Bytes()),
			ConfirmationCode: hex.EncodeToString(code.Bytes()),
		})

		validated, err := ectx.Ballot(ctx, ballotId)
		c.Assert(err, qt.IsNil, qt.Commentf("ballot %s must validate: every range proof and the confirmation code must recompute", ballotId))
		c.Assert(validated.Contests, qt.HasLen, 1)
	}

	ballots := make([]validate.Ballot, len(ballotVotes))
	for i := range ballotVotes {
		ballotId := []string{"ballot-0001", "ballot-0002"}[i]
		b, err := ectx.Ballot(ctx, ballotId)
		c.Assert(err, qt.IsNil)
		ballots[i] = b
	}

	// Threshold-decrypt the tally as if guardian 3 had gone offline: guardians
	// 1 and 2 reconstruct guardian 3's secret-key contribution P_3(0) = a_{3,0}
	// from the two backup shares they each hold (P_3(1), P_3(2)), via
	// Lagrange interpolation at 0, per §4.D "Combine." The joint secret is
	// then guardian 1's and 2's own contributions plus the reconstructed one.
	voteDealers := dealers[validate.JointPublicKeyPurposeVote]
	d1, d2, d3 := findDealer(voteDealers, 1), findDealer(voteDealers, 2), findDealer(voteDealers, 3)

	p3Shares := map[int]arith.Scalar{
		1: guardian.PolynomialAt(fp, d3.Sk, 1),
		2: guardian.PolynomialAt(fp, d3.Sk, 2),
	}
	reconstructedD3Secret, err := guardian.DecryptShares(fp, p3Shares)
	c.Assert(err, qt.IsNil)
	c.Assert(reconstructedD3Secret.Equal(d3.Sk.Coefficients[0]), qt.IsTrue,
		qt.Commentf("Lagrange interpolation at 0 over guardian 3's (1,2) shares must recover its secret coefficient a_{3,0}"))

	field := fp.Group.Field()
	combinedSecret := field.AddMod(field.AddMod(d1.Sk.Coefficients[0], d2.Sk.Coefficients[0]), reconstructedD3Secret)

	tallies, err := validate.BuildElectionTallies(fp, m, ballots, combinedSecret)
	c.Assert(err, qt.IsNil)
	c.Assert(tallies.BallotCount, qt.Equals, 2)
	c.Assert(tallies.Contests, qt.HasLen, 1)
	c.Assert(tallies.Contests[0].Options[0].Total, qt.Equals, 1, qt.Commentf("Alice received exactly one vote"))
	c.Assert(tallies.Contests[0].Options[1].Total, qt.Equals, 1, qt.Commentf("Bob received exactly one vote"))

	ectx.SeedElectionTallies(tallies.Info().(validate.ElectionTalliesInfo))
	validatedTallies, err := ectx.ElectionTallies(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(validatedTallies.Contests[0].Options[0].Total, qt.Equals, 1)
	c.Assert(validatedTallies.Contests[0].Options[1].Total, qt.Equals, 1)
}
