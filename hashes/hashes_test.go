package hashes

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/egcore/egds/manifest"
	"github.com/egcore/egds/params"
)

func testManifest(c *qt.C) manifest.ElectionManifest {
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
	return m
}

func TestHashChainDeterministic(t *testing.T) {
	c := qt.New(t)
	fp, err := params.Toy(48)
	c.Assert(err, qt.IsNil)

	hp1 := ParameterBaseHash(params.Version, fp)
	hp2 := ParameterBaseHash(params.Version, fp)
	c.Assert(hp1, qt.DeepEquals, hp2, qt.Commentf("H_P must be a pure function of (version, p, q, g)"))

	m := testManifest(c)
	hm1, err := ManifestHash(hp1, m)
	c.Assert(err, qt.IsNil)
	hm2, err := ManifestHash(hp1, m)
	c.Assert(err, qt.IsNil)
	c.Assert(hm1, qt.DeepEquals, hm2)

	vp, err := params.VaryingParametersInfo{N: 5, K: 3, Info: "test", Date: "2024-01-01", Chaining: params.ChainingProhibited}.TryValidate()
	c.Assert(err, qt.IsNil)
	hb1 := ElectionBaseHash(hp1, vp, hm1)
	hb2 := ElectionBaseHash(hp1, vp, hm1)
	c.Assert(hb1, qt.DeepEquals, hb2)

	field := fp.Group.Field()
	k, err := field.RandomScalar(nil)
	c.Assert(err, qt.IsNil)
	kHat, err := field.RandomScalar(nil)
	c.Assert(err, qt.IsNil)
	joint := fp.Group.GeneratorPow(k)
	jointHat := fp.Group.GeneratorPow(kHat)
	he1 := ExtendedBaseHash(hb1, fp, joint, jointHat)
	he2 := ExtendedBaseHash(hb1, fp, joint, jointHat)
	c.Assert(he1, qt.DeepEquals, he2)

	// changing K must change H_E.
	otherK := fp.Group.GeneratorPow(field.ScalarFromUint64(99))
	c.Assert(ExtendedBaseHash(hb1, fp, otherK, jointHat), qt.Not(qt.DeepEquals), he1)
}

func TestManifestHashChangesWithManifest(t *testing.T) {
	c := qt.New(t)
	fp, err := params.Toy(48)
	c.Assert(err, qt.IsNil)
	hp := ParameterBaseHash(params.Version, fp)

	m1 := testManifest(c)
	hm1, err := ManifestHash(hp, m1)
	c.Assert(err, qt.IsNil)

	info2 := m1.Info()
	info2.Label = "A Different Election"
	m2, err := info2.TryValidate()
	c.Assert(err, qt.IsNil)
	hm2, err := ManifestHash(hp, m2)
	c.Assert(err, qt.IsNil)

	c.Assert(hm1, qt.Not(qt.DeepEquals), hm2)
}

func TestVotingDeviceInformationHashDeterministic(t *testing.T) {
	c := qt.New(t)
	fp, err := params.Toy(48)
	c.Assert(err, qt.IsNil)
	hp := ParameterBaseHash(params.Version, fp)

	vdi, err := VotingDeviceInformationInfo{DeviceID: "dev-1"}.TryValidate()
	c.Assert(err, qt.IsNil)
	h1, err := vdi.Hash(hp)
	c.Assert(err, qt.IsNil)
	h2, err := vdi.Hash(hp)
	c.Assert(err, qt.IsNil)
	c.Assert(h1, qt.DeepEquals, h2)

	var zero [32]byte
	c.Assert(h1.Bytes(), qt.Not(qt.DeepEquals), zero[:])
}
