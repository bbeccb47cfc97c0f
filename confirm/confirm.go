// Package confirm implements EGDS 2.1 confirmation codes and ballot
// chaining (§4.G): the per-contest hash chi_l, the ballot confirmation
// code H(B), and the 36-byte ChainingField B_C.
//
// Grounded on the same tagged-hash idiom as the hashes package
// (davinci-node/spec/hash/stateroot.go), applied to the ballot-level
// aggregation EGDS specifies rather than to election parameters.
package confirm

import (
	"fmt"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/ballotenc"
	"github.com/egcore/egds/ehash"
	"github.com/egcore/egds/manifest"
	"github.com/egcore/egds/params"
)

const (
	tagContestHash      byte = 0x23
	tagConfirmationCode byte = 0x24
)

// ChainingFieldSize is the fixed 36-byte width of B_C: a 4-byte mode
// identifier followed by a 32-byte hash.
const ChainingFieldSize = 4 + ehash.Size

// ChainingField is the 36-byte field a ballot consumes and a confirmation
// code is computed over, per §4.G.
type ChainingField [ChainingFieldSize]byte

// Bytes returns the field's bytes, mode first.
func (b ChainingField) Bytes() []byte { return b[:] }

// NoChainingField builds B_C under the "no chaining" mode: mode 0x00000000
// followed by H_DI, per §4.G.
func NoChainingField(hdi ehash.HValue) ChainingField {
	var out ChainingField
	copy(out[4:], hdi.Bytes())
	return out
}

func elementBytes(fp params.FixedParameters) int {
	return (fp.Group.P.BitLen() + 7) / 8
}

// ContestHash computes chi_l = H(H_E, 0x23 || contest_label || K ||
// {alpha_i, beta_i}), field order = option order, per §4.G.
func ContestHash(fp params.FixedParameters, he ehash.HValue, contest manifest.Contest, jointK arith.Element, cc ballotenc.ContestCiphertexts) ehash.HValue {
	n := elementBytes(fp)
	fields := make([][]byte, 0, 2+2*len(cc.FieldCiphers))
	fields = append(fields, []byte(contest.Label), arith.FixedLenBytes(jointK.Int(), n))
	for _, ct := range cc.FieldCiphers {
		fields = append(fields, arith.FixedLenBytes(ct.Alpha.Int(), n), arith.FixedLenBytes(ct.Beta.Int(), n))
	}
	return ehash.H(he, ehash.Tagged(tagContestHash, fields...))
}

// ConfirmationCode computes H(B) = H(H_E, 0x24 || chi_1 || ... || chi_m ||
// B_aux), with B_aux = B_C, per §4.G.
func ConfirmationCode(he ehash.HValue, contestHashes []ehash.HValue, chainingField ChainingField) ehash.HValue {
	fields := make([][]byte, 0, len(contestHashes)+1)
	for _, h := range contestHashes {
		fields = append(fields, h.Bytes())
	}
	fields = append(fields, chainingField.Bytes())
	return ehash.H(he, ehash.Tagged(tagConfirmationCode, fields...))
}

// BuildConfirmationCode computes every contest hash for an encrypted
// ballot's included contests (in manifest contest order) and folds them
// into the confirmation code under the given chaining field.
func BuildConfirmationCode(fp params.FixedParameters, he ehash.HValue, jointK arith.Element, m manifest.ElectionManifest, ccs []ballotenc.ContestCiphertexts, chainingField ChainingField) (ehash.HValue, []ehash.HValue, error) {
	hashes := make([]ehash.HValue, len(ccs))
	for i, cc := range ccs {
		ci := cc.ContestIx.Int()
		if ci < 1 || ci > len(m.Contests) {
			return ehash.HValue{}, nil, fmt.Errorf("confirm: contest index %d out of manifest range", ci)
		}
		if i > 0 && ci <= ccs[i-1].ContestIx.Int() {
			return ehash.HValue{}, nil, fmt.Errorf("confirm: contest index %d not in manifest contest order", ci)
		}
		hashes[i] = ContestHash(fp, he, m.Contests[ci-1], jointK, cc)
	}
	return ConfirmationCode(he, hashes, chainingField), hashes, nil
}
