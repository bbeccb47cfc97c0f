package ballotenc

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/egcore/egds/egerr"
	"github.com/egcore/egds/ehash"
	"github.com/egcore/egds/hashes"
	"github.com/egcore/egds/idx"
	"github.com/egcore/egds/manifest"
	"github.com/egcore/egds/params"
)

func setup2Options(c *qt.C) (params.FixedParameters, ehash.HValue, manifest.ElectionManifest) {
	fp, err := params.Toy(48)
	c.Assert(err, qt.IsNil)
	hp := hashes.ParameterBaseHash(params.Version, fp)

	info := manifest.ElectionManifestInfo{
		Label: "Test Election",
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
	m, err := info.TryValidate()
	c.Assert(err, qt.IsNil)
	return fp, hp, m
}

// hp2he derives a placeholder H_E for tests: a contest-proof's Fiat-Shamir
// transcript only needs a domain-separation value, not a real election's
// full hash chain.
func hp2he(c *qt.C, fp params.FixedParameters, hp ehash.HValue) ehash.HValue {
	vp, err := params.VaryingParametersInfo{N: 1, K: 1, Info: "t", Date: "2024-01-01", Chaining: params.ChainingProhibited}.TryValidate()
	c.Assert(err, qt.IsNil)
	hb := hashes.ElectionBaseHash(hp, vp, hp)
	field := fp.Group.Field()
	k := fp.Group.GeneratorPow(field.ScalarFromUint64(3))
	kHat := fp.Group.GeneratorPow(field.ScalarFromUint64(5))
	return hashes.ExtendedBaseHash(hb, fp, k, kHat)
}

func TestContestEncryptVerifyRoundTrip_Votes00(t *testing.T) {
	c := qt.New(t)
	fp, hp, m := setup2Options(c)
	he := hp2he(c, fp, hp)

	contestIx := idx.MustNew[idx.ContestTag](1)
	jointK := fp.Group.GeneratorPow(fp.Group.Field().ScalarFromUint64(7))

	cc, err := EncryptContest(fp, he, jointK, contestIx, m.Contests[0], []int{0, 0})
	c.Assert(err, qt.IsNil)
	err = VerifyContest(fp, he, jointK, m.Contests[0], cc)
	c.Assert(err, qt.IsNil)
}

func TestContestEncryptRejectsOverLimitSelection(t *testing.T) {
	c := qt.New(t)
	fp, hp, m := setup2Options(c)
	he := hp2he(c, fp, hp)

	contestIx := idx.MustNew[idx.ContestTag](1)
	jointK := fp.Group.GeneratorPow(fp.Group.Field().ScalarFromUint64(7))

	_, err := EncryptContest(fp, he, jointK, contestIx, m.Contests[0], []int{1, 1})
	c.Assert(err, qt.Not(qt.IsNil))
	pe, ok := err.(*egerr.ProofError)
	c.Assert(ok, qt.IsTrue)
	c.Assert(pe.Kind, qt.Equals, "RangeNotSatisfied")
	c.Assert(pe.SmallL, qt.Equals, 2)
	c.Assert(pe.BigL, qt.Equals, 1)
}

func TestVerifyContestRejectsTamperedProof(t *testing.T) {
	c := qt.New(t)
	fp, hp, m := setup2Options(c)
	he := hp2he(c, fp, hp)

	contestIx := idx.MustNew[idx.ContestTag](1)
	jointK := fp.Group.GeneratorPow(fp.Group.Field().ScalarFromUint64(7))

	cc, err := EncryptContest(fp, he, jointK, contestIx, m.Contests[0], []int{1, 0})
	c.Assert(err, qt.IsNil)

	field := fp.Group.Field()
	cc.FieldProofs[0].Branches[0].Response = field.AddMod(cc.FieldProofs[0].Branches[0].Response, field.ScalarFromUint64(1))

	err = VerifyContest(fp, he, jointK, m.Contests[0], cc)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestEncryptContestsFanOut(t *testing.T) {
	c := qt.New(t)
	fp, hp, m := setup2Options(c)
	he := hp2he(c, fp, hp)
	jointK := fp.Group.GeneratorPow(fp.Group.Field().ScalarFromUint64(7))

	inputs := []VoteInput{{ContestIx: idx.MustNew[idx.ContestTag](1), Votes: []int{1, 0}}}
	results, err := EncryptContests(context.Background(), fp, he, jointK, m, inputs)
	c.Assert(err, qt.IsNil)
	c.Assert(results, qt.HasLen, 1)
	err = VerifyContest(fp, he, jointK, m.Contests[0], results[0])
	c.Assert(err, qt.IsNil)
}
