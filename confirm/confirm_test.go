package confirm

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/egcore/egds/ballotenc"
	"github.com/egcore/egds/ehash"
	"github.com/egcore/egds/hashes"
	"github.com/egcore/egds/idx"
	"github.com/egcore/egds/manifest"
	"github.com/egcore/egds/params"
)

func TestNoChainingFieldLayout(t *testing.T) {
	c := qt.New(t)
	vdi, err := hashes.VotingDeviceInformationInfo{DeviceID: "booth-1"}.TryValidate()
	c.Assert(err, qt.IsNil)

	fp, err := params.Toy(48)
	c.Assert(err, qt.IsNil)
	hp := hashes.ParameterBaseHash(params.Version, fp)
	hdi, err := vdi.Hash(hp)
	c.Assert(err, qt.IsNil)

	field := NoChainingField(hdi)
	c.Assert(field.Bytes(), qt.HasLen, ChainingFieldSize)
	c.Assert(field.Bytes()[:4], qt.DeepEquals, []byte{0x00, 0x00, 0x00, 0x00})
	c.Assert(field.Bytes()[4:], qt.DeepEquals, hdi.Bytes())
}

func TestConfirmationCodeDeterministic(t *testing.T) {
	c := qt.New(t)
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

	vp, err := params.VaryingParametersInfo{N: 1, K: 1, Info: "t", Date: "2024-01-01", Chaining: params.ChainingProhibited}.TryValidate()
	c.Assert(err, qt.IsNil)
	hm, err := hashes.ManifestHash(hp, m)
	c.Assert(err, qt.IsNil)
	hb := hashes.ElectionBaseHash(hp, vp, hm)
	field := fp.Group.Field()
	jointK := fp.Group.GeneratorPow(field.ScalarFromUint64(3))
	jointKHat := fp.Group.GeneratorPow(field.ScalarFromUint64(5))
	he := hashes.ExtendedBaseHash(hb, fp, jointK, jointKHat)

	contestIx := idx.MustNew[idx.ContestTag](1)
	cc, err := ballotenc.EncryptContest(fp, he, jointK, contestIx, m.Contests[0], []int{1, 0})
	c.Assert(err, qt.IsNil)

	vdi, err := hashes.VotingDeviceInformationInfo{DeviceID: "booth-1"}.TryValidate()
	c.Assert(err, qt.IsNil)
	hdi, err := vdi.Hash(hp)
	c.Assert(err, qt.IsNil)
	chainingField := NoChainingField(hdi)

	code1, _, err := BuildConfirmationCode(fp, he, jointK, m, []ballotenc.ContestCiphertexts{cc}, chainingField)
	c.Assert(err, qt.IsNil)
	code2, _, err := BuildConfirmationCode(fp, he, jointK, m, []ballotenc.ContestCiphertexts{cc}, chainingField)
	c.Assert(err, qt.IsNil)
	c.Assert(code1, qt.DeepEquals, code2)

	var zero ehash.HValue
	c.Assert(code1, qt.Not(qt.DeepEquals), zero)
}
