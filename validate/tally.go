package validate

import (
	"context"
	"fmt"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/ballotenc"
	"github.com/egcore/egds/canonical"
	"github.com/egcore/egds/egerr"
	"github.com/egcore/egds/idx"
	"github.com/egcore/egds/manifest"
	"github.com/egcore/egds/params"
	"github.com/egcore/egds/resource"
	"github.com/egcore/egds/tally"
)

// ContestOptionTallyInfo is the wire form of one option's accumulated
// ciphertext and its decrypted total within an ElectionTallies EDO.
type ContestOptionTallyInfo struct {
	OptionIndex int
	Accumulated CiphertextInfo
	Total       int
}

// ContestTallyInfo is the wire form of one contest's tallied option data
// fields.
type ContestTallyInfo struct {
	ContestIndex int
	Options      []ContestOptionTallyInfo
}

// ElectionTalliesInfo is the unvalidated, serialized form of the homomorphic
// tally totals for every contest option, the spec's supplemental
// post-casting component built on §4.F's ciphertext algebra.
type ElectionTalliesInfo struct {
	BallotCount int
	Contests    []ContestTallyInfo
}

func (w ElectionTalliesInfo) ResourceTypeName() string { return resource.EdoElectionTallies }

// TryValidateFrom checks contest and option index ranges, the option count
// of each contest, that each total lies in [0, BallotCount * the option's
// effective selection limit], and that each accumulated ciphertext is in
// the order-q subgroup. It does not re-encrypt totals and does not check
// that an accumulated ciphertext decrypts to its stated total.
//
// Tally validation outside a fully-keyed context accepts the stored total
// as-given; re-deriving it requires the combined secret key s, which no
// EDO in isolation carries. This Info form therefore re-validates
// structure (index ranges, ciphertext well-formedness) and leaves the
// cryptographic decryption check to an auditor that separately holds s via
// tally.Decrypt.
func (w ElectionTalliesInfo) TryValidateFrom(ctx context.Context, pr resource.ProduceResource) (resource.Validated, error) {
	m, err := FetchElectionManifest(ctx, pr)
	if err != nil {
		return nil, err
	}
	fp, err := FetchFixedParameters(ctx, pr)
	if err != nil {
		return nil, err
	}
	if w.BallotCount < 0 {
		return nil, &egerr.ValidationError{Kind: "NegativeBallotCount", Detail: fmt.Sprintf("%d", w.BallotCount)}
	}

	contests := make([]ElectionTallyContest, len(w.Contests))
	for i, ci := range w.Contests {
		contestIx, err := idx.New[idx.ContestTag](ci.ContestIndex)
		if err != nil {
			return nil, err
		}
		if contestIx.Int() > len(m.Contests) {
			return nil, &egerr.ValidationError{Kind: "ContestOutOfRange", Detail: fmt.Sprintf("contest %d not in manifest", contestIx.Int())}
		}
		contest := m.Contests[contestIx.Int()-1]
		if len(ci.Options) != contest.NumOptionDataFields() {
			return nil, &egerr.ValidationError{
				Kind:   "IncorrectQtyOfContestOptionFieldsPlaintexts",
				Detail: fmt.Sprintf("contest %d has %d option fields, tally has %d", contestIx.Int(), contest.NumOptionDataFields(), len(ci.Options)),
			}
		}
		options := make([]ElectionTallyOption, len(ci.Options))
		for j, oi := range ci.Options {
			optionIx, err := idx.New[idx.ContestOptionTag](oi.OptionIndex)
			if err != nil {
				return nil, err
			}
			if optionIx.Int() > len(contest.Options) {
				return nil, &egerr.ValidationError{Kind: "OptionOutOfRange", Detail: fmt.Sprintf("contest %d option %d out of range", contestIx.Int(), optionIx.Int())}
			}
			limit := contest.EffectiveOptionSelectionLimit(optionIx.Int() - 1)
			if oi.Total < 0 || oi.Total > w.BallotCount*limit {
				return nil, &egerr.ValidationError{
					Kind:   "TallyOutOfRange",
					Detail: fmt.Sprintf("contest %d option %d: total %d exceeds %d ballots * limit %d", contestIx.Int(), optionIx.Int(), oi.Total, w.BallotCount, limit),
				}
			}
			ct, err := ciphertextFromInfo(oi.Accumulated)
			if err != nil {
				return nil, err
			}
			if !fp.Group.IsValidElement(ct.Alpha) || !fp.Group.IsValidElement(ct.Beta) {
				return nil, &egerr.ValidationError{Kind: "InvalidCiphertext", Detail: "accumulated ciphertext not in subgroup"}
			}
			options[j] = ElectionTallyOption{OptionIx: optionIx, Accumulated: ct, Total: oi.Total}
		}
		contests[i] = ElectionTallyContest{ContestIx: contestIx, Options: options}
	}

	return ElectionTallies{BallotCount: w.BallotCount, Contests: contests}, nil
}

// ElectionTallyOption is a validated per-option tally entry.
type ElectionTallyOption struct {
	OptionIx    idx.ContestOption
	Accumulated ballotenc.Ciphertext
	Total       int
}

// ElectionTallyContest is a validated per-contest tally entry.
type ElectionTallyContest struct {
	ContestIx idx.Contest
	Options   []ElectionTallyOption
}

// ElectionTallies is the validated form of ElectionTalliesInfo.
type ElectionTallies struct {
	BallotCount int
	Contests    []ElectionTallyContest
}

func (w ElectionTallies) ResourceTypeName() string { return resource.EdoElectionTallies }

func (w ElectionTallies) Info() resource.Validatable {
	contests := make([]ContestTallyInfo, len(w.Contests))
	for i, c := range w.Contests {
		options := make([]ContestOptionTallyInfo, len(c.Options))
		for j, o := range c.Options {
			options[j] = ContestOptionTallyInfo{
				OptionIndex: o.OptionIx.Int(),
				Accumulated: ciphertextToInfo(o.Accumulated),
				Total:       o.Total,
			}
		}
		contests[i] = ContestTallyInfo{ContestIndex: c.ContestIx.Int(), Options: options}
	}
	return ElectionTalliesInfo{BallotCount: w.BallotCount, Contests: contests}
}

func (w ElectionTallies) CanonicalBytes() ([]byte, error) {
	info, ok := w.Info().(ElectionTalliesInfo)
	if !ok {
		return nil, fmt.Errorf("validate: election tallies: unexpected Info() type")
	}
	return canonical.Marshal(info)
}

// BuildElectionTallies accumulates every cast ballot's per-option
// ciphertexts (via tally.Accumulator) and decrypts each option's total with
// the guardians' combined secret key s, per §4.D/the tally package's
// brute-force bounded discrete-log recovery.
func BuildElectionTallies(fp params.FixedParameters, m manifest.ElectionManifest, ballots []Ballot, s arith.Scalar) (ElectionTallies, error) {
	contests := make([]ElectionTallyContest, len(m.Contests))
	for ci, contest := range m.Contests {
		contestIx := idx.MustNew[idx.ContestTag](ci + 1)
		accs := make([]*tally.Accumulator, len(contest.Options))
		for oi := range contest.Options {
			accs[oi] = tally.NewAccumulator(fp)
		}
		for _, b := range ballots {
			for _, cc := range b.Contests {
				if cc.ContestIx != contestIx {
					continue
				}
				for oi, ct := range cc.FieldCiphers {
					accs[oi].Add(ct)
				}
			}
		}
		options := make([]ElectionTallyOption, len(contest.Options))
		for oi, acc := range accs {
			ct := acc.Ciphertext()
			limit := contest.EffectiveOptionSelectionLimit(oi)
			maxTotal := acc.Count() * limit
			total, err := tally.Decrypt(fp, ct, s, maxTotal)
			if err != nil {
				return ElectionTallies{}, err
			}
			optionIx := idx.MustNew[idx.ContestOptionTag](oi + 1)
			options[oi] = ElectionTallyOption{OptionIx: optionIx, Accumulated: ct, Total: total}
		}
		contests[ci] = ElectionTallyContest{ContestIx: contestIx, Options: options}
	}
	return ElectionTallies{BallotCount: len(ballots), Contests: contests}, nil
}

func electionTalliesRidFmt(fmt_ resource.ResourceFormat) resource.ResourceIdFormat {
	return resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoElectionTallies, ""), Fmt: fmt_}
}

// FetchElectionTallies requests the validated ElectionTallies through pr.
func FetchElectionTallies(ctx context.Context, pr resource.ProduceResource) (ElectionTallies, error) {
	res, _, err := pr.Produce(ctx, electionTalliesRidFmt(resource.FormatValidElectionDataObject), resource.UnlimitedBudget())
	if err != nil {
		return ElectionTallies{}, err
	}
	return resource.As[ElectionTallies](res)
}
