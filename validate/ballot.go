package validate

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/ballotenc"
	"github.com/egcore/egds/canonical"
	"github.com/egcore/egds/confirm"
	"github.com/egcore/egds/egerr"
	"github.com/egcore/egds/ehash"
	"github.com/egcore/egds/idx"
	"github.com/egcore/egds/resource"
)

func elementFromHex(s string) (arith.Element, error) {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return arith.Element{}, fmt.Errorf("validate: invalid hex element %q", s)
	}
	return arith.ElementFromBig(v), nil
}

func hValueFromHex(s string) (ehash.HValue, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ehash.HValue{}, fmt.Errorf("validate: invalid hex hash %q: %w", s, err)
	}
	if len(b) != ehash.Size {
		return ehash.HValue{}, fmt.Errorf("validate: hash %q is %d bytes, want %d", s, len(b), ehash.Size)
	}
	var out ehash.HValue
	copy(out[:], b)
	return out, nil
}

// CiphertextInfo is the wire (hex) form of a ballotenc.Ciphertext.
type CiphertextInfo struct {
	Alpha string
	Beta  string
}

func ciphertextToInfo(ct ballotenc.Ciphertext) CiphertextInfo {
	return CiphertextInfo{Alpha: ct.Alpha.Int().Text(16), Beta: ct.Beta.Int().Text(16)}
}

func ciphertextFromInfo(info CiphertextInfo) (ballotenc.Ciphertext, error) {
	alpha, err := elementFromHex(info.Alpha)
	if err != nil {
		return ballotenc.Ciphertext{}, err
	}
	beta, err := elementFromHex(info.Beta)
	if err != nil {
		return ballotenc.Ciphertext{}, err
	}
	return ballotenc.Ciphertext{Alpha: alpha, Beta: beta}, nil
}

// RangeProofBranchInfo is the wire (hex) form of a ballotenc.RangeProofBranch.
type RangeProofBranchInfo struct {
	Challenge string
	Response  string
}

// RangeProofInfo is the wire form of a ballotenc.RangeProof.
type RangeProofInfo struct {
	Branches []RangeProofBranchInfo
}

func rangeProofToInfo(p ballotenc.RangeProof) RangeProofInfo {
	branches := make([]RangeProofBranchInfo, len(p.Branches))
	for i, b := range p.Branches {
		branches[i] = RangeProofBranchInfo{Challenge: b.Challenge.Int().Text(16), Response: b.Response.Int().Text(16)}
	}
	return RangeProofInfo{Branches: branches}
}

func rangeProofFromInfo(q *big.Int, info RangeProofInfo) (ballotenc.RangeProof, error) {
	branches := make([]ballotenc.RangeProofBranch, len(info.Branches))
	for i, b := range info.Branches {
		cv, ok := new(big.Int).SetString(b.Challenge, 16)
		if !ok {
			return ballotenc.RangeProof{}, fmt.Errorf("validate: range proof branch %d: invalid challenge hex", i)
		}
		rv, ok := new(big.Int).SetString(b.Response, 16)
		if !ok {
			return ballotenc.RangeProof{}, fmt.Errorf("validate: range proof branch %d: invalid response hex", i)
		}
		branches[i] = ballotenc.RangeProofBranch{Challenge: arith.NewScalar(q, cv), Response: arith.NewScalar(q, rv)}
	}
	return ballotenc.RangeProof{Branches: branches}, nil
}

// ContestCiphertextsInfo is the wire form of one contest's encrypted fields
// and proofs within a Ballot, per §4.F.
type ContestCiphertextsInfo struct {
	ContestIndex  int
	FieldCiphers  []CiphertextInfo
	FieldProofs   []RangeProofInfo
	SumCiphertext CiphertextInfo
	SumProof      RangeProofInfo
}

func contestCiphertextsToInfo(cc ballotenc.ContestCiphertexts) ContestCiphertextsInfo {
	fieldCiphers := make([]CiphertextInfo, len(cc.FieldCiphers))
	for i, ct := range cc.FieldCiphers {
		fieldCiphers[i] = ciphertextToInfo(ct)
	}
	fieldProofs := make([]RangeProofInfo, len(cc.FieldProofs))
	for i, p := range cc.FieldProofs {
		fieldProofs[i] = rangeProofToInfo(p)
	}
	return ContestCiphertextsInfo{
		ContestIndex:  cc.ContestIx.Int(),
		FieldCiphers:  fieldCiphers,
		FieldProofs:   fieldProofs,
		SumCiphertext: ciphertextToInfo(cc.SumCiphertext),
		SumProof:      rangeProofToInfo(cc.SumProof),
	}
}

func contestCiphertextsFromInfo(q *big.Int, info ContestCiphertextsInfo) (ballotenc.ContestCiphertexts, error) {
	contestIx, err := idx.New[idx.ContestTag](info.ContestIndex)
	if err != nil {
		return ballotenc.ContestCiphertexts{}, err
	}
	if len(info.FieldCiphers) != len(info.FieldProofs) {
		return ballotenc.ContestCiphertexts{}, &egerr.ValidationError{
			Kind: "IncorrectQtyOfContestOptionFieldsPlaintexts", Detail: "field ciphertext/proof count mismatch",
		}
	}
	fieldCiphers := make([]ballotenc.Ciphertext, len(info.FieldCiphers))
	for i, ci := range info.FieldCiphers {
		ct, err := ciphertextFromInfo(ci)
		if err != nil {
			return ballotenc.ContestCiphertexts{}, err
		}
		fieldCiphers[i] = ct
	}
	fieldProofs := make([]ballotenc.RangeProof, len(info.FieldProofs))
	for i, pi := range info.FieldProofs {
		p, err := rangeProofFromInfo(q, pi)
		if err != nil {
			return ballotenc.ContestCiphertexts{}, err
		}
		fieldProofs[i] = p
	}
	sumCt, err := ciphertextFromInfo(info.SumCiphertext)
	if err != nil {
		return ballotenc.ContestCiphertexts{}, err
	}
	sumProof, err := rangeProofFromInfo(q, info.SumProof)
	if err != nil {
		return ballotenc.ContestCiphertexts{}, err
	}
	return ballotenc.ContestCiphertexts{
		ContestIx:     contestIx,
		FieldCiphers:  fieldCiphers,
		FieldProofs:   fieldProofs,
		SumCiphertext: sumCt,
		SumProof:      sumProof,
	}, nil
}

// BallotInfo is the unvalidated, serialized form of a cast ballot: the
// ballot style offered, every included contest's encrypted fields and range
// proofs, the 36-byte chaining field it consumed, and the confirmation code
// it produced, per §4.F/§4.G.
type BallotInfo struct {
	BallotId         string
	BallotStyleIndex int
	Contests         []ContestCiphertextsInfo
	ChainingField    string // hex, 36 bytes
	ConfirmationCode string // hex
}

func (w BallotInfo) ResourceTypeName() string { return resource.EdoBallot }

// TryValidateFrom re-verifies every contest's range proofs against the
// election's joint vote-encryption key and recomputes the confirmation code
// from the decoded contest ciphertexts, rejecting a Ballot whose stored
// confirmation code does not match what its own contents produce, per §4.G.
func (w BallotInfo) TryValidateFrom(ctx context.Context, pr resource.ProduceResource) (resource.Validated, error) {
	fp, err := FetchFixedParameters(ctx, pr)
	if err != nil {
		return nil, err
	}
	he, err := FetchExtendedBaseHash(ctx, pr)
	if err != nil {
		return nil, err
	}
	jointK, err := FetchJointPublicKey(ctx, pr, JointPublicKeyPurposeVote)
	if err != nil {
		return nil, err
	}
	m, err := FetchElectionManifest(ctx, pr)
	if err != nil {
		return nil, err
	}

	styleIx, err := idx.New[idx.BallotStyleTag](w.BallotStyleIndex)
	if err != nil {
		return nil, err
	}
	if styleIx.Int() > len(m.BallotStyles) {
		return nil, &egerr.ValidationError{Kind: "BallotStyleOutOfRange", Detail: fmt.Sprintf("ballot style %d not in manifest", styleIx.Int())}
	}
	style := m.BallotStyles[styleIx.Int()-1]

	if len(w.Contests) != len(style.Contests) {
		return nil, &egerr.ValidationError{
			Kind:   "IncorrectQtyOfContests",
			Detail: fmt.Sprintf("ballot style %d offers %d contests, ballot has %d", styleIx.Int(), len(style.Contests), len(w.Contests)),
		}
	}

	ccs := make([]ballotenc.ContestCiphertexts, len(w.Contests))
	for i, ci := range w.Contests {
		cc, err := contestCiphertextsFromInfo(fp.Group.Q, ci)
		if err != nil {
			return nil, err
		}
		if !style.Eligible(cc.ContestIx) {
			return nil, &egerr.ValidationError{
				Kind:   "ContestNotInBallotStyle",
				Detail: fmt.Sprintf("contest %d not offered by ballot style %d", cc.ContestIx.Int(), styleIx.Int()),
			}
		}
		contest := m.Contests[cc.ContestIx.Int()-1]
		if err := ballotenc.VerifyContest(fp, he, jointK, contest, cc); err != nil {
			return nil, err
		}
		ccs[i] = cc
	}

	chainField, err := hex.DecodeString(w.ChainingField)
	if err != nil {
		return nil, fmt.Errorf("validate: ballot chaining field: %w", err)
	}
	if len(chainField) != confirm.ChainingFieldSize {
		return nil, &egerr.ValidationError{Kind: "InvalidChainingFieldLength", Detail: fmt.Sprintf("got %d bytes, want %d", len(chainField), confirm.ChainingFieldSize)}
	}
	var cf confirm.ChainingField
	copy(cf[:], chainField)

	wantCode, err := hValueFromHex(w.ConfirmationCode)
	if err != nil {
		return nil, err
	}
	code, _, err := confirm.BuildConfirmationCode(fp, he, jointK, m, ccs, cf)
	if err != nil {
		return nil, err
	}
	if code != wantCode {
		return nil, &egerr.ValidationError{Kind: "ConfirmationCodeMismatch", Detail: "stored confirmation code does not match recomputed value"}
	}

	return Ballot{
		BallotId:      w.BallotId,
		BallotStyle:   styleIx,
		Contests:      ccs,
		ChainingField: cf,
		Confirmation:  code,
	}, nil
}

// Ballot is a validated cast ballot, per §4.F/§4.G.
type Ballot struct {
	BallotId      string
	BallotStyle   idx.BallotStyle
	Contests      []ballotenc.ContestCiphertexts
	ChainingField confirm.ChainingField
	Confirmation  ehash.HValue
}

func (w Ballot) ResourceTypeName() string { return resource.EdoBallot }

func (w Ballot) Info() resource.Validatable {
	contests := make([]ContestCiphertextsInfo, len(w.Contests))
	for i, cc := range w.Contests {
		contests[i] = contestCiphertextsToInfo(cc)
	}
	return BallotInfo{
		BallotId:         w.BallotId,
		BallotStyleIndex: w.BallotStyle.Int(),
		Contests:         contests,
		ChainingField:    hex.EncodeToString(w.ChainingField.Bytes()),
		ConfirmationCode: hex.EncodeToString(w.Confirmation.Bytes()),
	}
}

func (w Ballot) CanonicalBytes() ([]byte, error) {
	info, ok := w.Info().(BallotInfo)
	if !ok {
		return nil, fmt.Errorf("validate: ballot: unexpected Info() type")
	}
	return canonical.Marshal(info)
}

func ballotRidFmt(ballotId string, fmt_ resource.ResourceFormat) resource.ResourceIdFormat {
	return resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoBallot, ballotId), Fmt: fmt_}
}

// FetchBallot requests the validated Ballot named ballotId through pr.
func FetchBallot(ctx context.Context, pr resource.ProduceResource, ballotId string) (Ballot, error) {
	res, _, err := pr.Produce(ctx, ballotRidFmt(ballotId, resource.FormatValidElectionDataObject), resource.UnlimitedBudget())
	if err != nil {
		return Ballot{}, err
	}
	return resource.As[Ballot](res)
}
