// Package hashes computes the EGDS 2.1 domain-separated hash chain: the
// parameter base hash H_P, manifest hash H_M, election base hash H_B, the
// extended base hash H_E, and the voting-device hash H_DI (§4.C).
//
// Grounded on davinci-node/spec/hash/stateroot.go's pattern of a small
// ordered set of tagged-field hash functions built directly on a single
// underlying primitive, generalized from Poseidon (the teacher's SNARK
// field hash) to HMAC-SHA-256 (ehash.H), since EGDS is not a circuit-field
// scheme and specifies its hash chain over plain byte strings.
package hashes

import (
	"math/big"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/canonical"
	"github.com/egcore/egds/ehash"
	"github.com/egcore/egds/manifest"
	"github.com/egcore/egds/params"
)

// Tag bytes are the first byte (or, for wide tags, the first two bytes) of
// each hash's tagged input, fixed by EGDS.
const (
	TagParameterBase byte = 0x00
	TagManifest      byte = 0x01
	TagElectionBase  byte = 0x02
	TagExtendedBase  byte = 0x14
)

// elementBytes is the byte width every group element and p-sized quantity is
// padded to when it feeds a hash: ceil(bits(p)/8).
func elementBytes(fp params.FixedParameters) int {
	return (fp.Group.P.BitLen() + 7) / 8
}

// ParameterBaseHash computes H_P = H(v, 0x00 || p || q || g), each of p, q, g
// left-padded to the group's element width.
func ParameterBaseHash(version string, fp params.FixedParameters) ehash.HValue {
	n := elementBytes(fp)
	var versionKey ehash.HValue
	copy(versionKey[:], []byte(version))
	return ehash.H(versionKey, ehash.Tagged(TagParameterBase,
		arith.FixedLenBytes(fp.Group.P, n),
		arith.FixedLenBytes(fp.Group.Q, n),
		arith.FixedLenBytes(fp.Group.G, n),
	))
}

// ManifestHash computes H_M = H(H_P, 0x01 || canonical(manifest)).
func ManifestHash(hp ehash.HValue, m manifest.ElectionManifest) (ehash.HValue, error) {
	b, err := canonical.Marshal(m.Info())
	if err != nil {
		return ehash.HValue{}, err
	}
	return ehash.H(hp, ehash.Tagged(TagManifest, b)), nil
}

// ElectionBaseHash computes H_B = H(H_P, 0x02 || n || k || date || info || H_M).
func ElectionBaseHash(hp ehash.HValue, vp params.VaryingParameters, hm ehash.HValue) ehash.HValue {
	return ehash.H(hp, ehash.Tagged(TagElectionBase,
		arith.FixedLenBytes(big.NewInt(int64(vp.N)), 4),
		arith.FixedLenBytes(big.NewInt(int64(vp.K)), 4),
		[]byte(vp.Date),
		[]byte(vp.Info),
		hm.Bytes(),
	))
}

// ExtendedBaseHash computes H_E = H(H_B, 0x14 || K || K̂), with K and K̂
// (the vote and data joint public keys) left-padded to the group's element
// width.
func ExtendedBaseHash(hb ehash.HValue, fp params.FixedParameters, jointK, jointKHat arith.Element) ehash.HValue {
	n := elementBytes(fp)
	return ehash.H(hb, ehash.Tagged(TagExtendedBase,
		arith.FixedLenBytes(jointK.Int(), n),
		arith.FixedLenBytes(jointKHat.Int(), n),
	))
}

// VotingDeviceInformationHash computes H_DI over the opaque encoded bytes of
// a VotingDeviceInformation EDO. The core does not interpret those bytes; it
// only binds them into the hash chain. H_DI carries no fixed tag byte of its
// own in the hash-tag table, unlike H_P/H_M/H_B/H_E.
func VotingDeviceInformationHash(hp ehash.HValue, encoded []byte) ehash.HValue {
	return ehash.H(hp, encoded)
}
