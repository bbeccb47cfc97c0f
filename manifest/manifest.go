// Package manifest implements EGDS 2.1's ElectionManifest: contests,
// options, per-option/per-contest selection limits, and ballot styles
// (§3, §4.E).
//
// Grounded on davinci-node/spec/ballotmode.go's struct-plus-Validate()
// shape, generalized from a single packed ballot-mode record to the
// manifest's nested contest/option/ballot-style structure, and on the
// Info/Validated split used throughout the pack's spec package.
package manifest

import (
	"fmt"

	"github.com/egcore/egds/canonical"
	"github.com/egcore/egds/idx"
)

// MaxSelectionLimit is 2^31-1, the largest value a ContestSelectionLimit or
// numeric OptionSelectionLimit may hold.
const MaxSelectionLimit = 1<<31 - 1

// OptionSelectionLimitInfo is either a concrete numeric limit or the sentinel
// "limited only by the contest limit."
type OptionSelectionLimitInfo struct {
	LimitedByContest bool
	Limit            int // meaningful only if !LimitedByContest
}

// ContestOptionInfo is the unvalidated form of a contest option.
type ContestOptionInfo struct {
	Label          string
	SelectionLimit OptionSelectionLimitInfo
}

// ContestOption is a validated contest option.
type ContestOption struct {
	Label          string
	SelectionLimit OptionSelectionLimitInfo
}

// ContestInfo is the unvalidated form of a contest.
type ContestInfo struct {
	Label          string
	SelectionLimit int // ContestSelectionLimit
	Options        []ContestOptionInfo
}

// Contest is a validated contest: a label, a selection limit, and an ordered
// list of validated options.
type Contest struct {
	Label          string
	SelectionLimit int
	Options        []ContestOption
}

// EffectiveOptionSelectionLimit returns min(option_limit, contest_limit) for
// the option at 0-based position i, per §4.E.
func (c Contest) EffectiveOptionSelectionLimit(i int) int {
	o := c.Options[i]
	if o.SelectionLimit.LimitedByContest {
		return c.SelectionLimit
	}
	if o.SelectionLimit.Limit < c.SelectionLimit {
		return o.SelectionLimit.Limit
	}
	return c.SelectionLimit
}

// EffectiveContestSelectionLimit returns min(contest_limit, sum of effective
// option limits), per §4.E.
func (c Contest) EffectiveContestSelectionLimit() int {
	sum := 0
	for i := range c.Options {
		sum += c.EffectiveOptionSelectionLimit(i)
	}
	if sum < c.SelectionLimit {
		return sum
	}
	return c.SelectionLimit
}

// NumOptionDataFields returns the number of option data fields this contest
// presents to the encryption layer. Per §4.F, this core does not add
// system-assigned fields: it is exactly len(Options).
func (c Contest) NumOptionDataFields() int { return len(c.Options) }

// TryValidate validates a ContestInfo: label passes the Unicode filter,
// every option label is unique (after NFC normalization) and passes the
// filter, and every selection limit is in range.
func (info ContestInfo) TryValidate(contestIx idx.Contest) (Contest, error) {
	item := fmt.Sprintf("contest[%d].label", contestIx.Int())
	if err := ValidateLabel(item, info.Label); err != nil {
		return Contest{}, err
	}
	if info.SelectionLimit < 1 || info.SelectionLimit > MaxSelectionLimit {
		return Contest{}, fmt.Errorf("manifest: contest[%d]: selection limit %d out of range", contestIx.Int(), info.SelectionLimit)
	}
	if len(info.Options) == 0 {
		return Contest{}, fmt.Errorf("manifest: contest[%d]: must have at least one option", contestIx.Int())
	}
	opts := make([]ContestOption, len(info.Options))
	seen := map[string]bool{}
	for i, oi := range info.Options {
		oItem := fmt.Sprintf("contest[%d].option[%d].label", contestIx.Int(), i+1)
		if err := ValidateLabel(oItem, oi.Label); err != nil {
			return Contest{}, err
		}
		for existing := range seen {
			if EqualLabels(existing, oi.Label) {
				return Contest{}, fmt.Errorf("manifest: contest[%d]: duplicate option label %q", contestIx.Int(), oi.Label)
			}
		}
		seen[oi.Label] = true
		if !oi.SelectionLimit.LimitedByContest {
			if oi.SelectionLimit.Limit < 0 || oi.SelectionLimit.Limit > MaxSelectionLimit {
				return Contest{}, fmt.Errorf("manifest: contest[%d] option[%d]: selection limit out of range", contestIx.Int(), i+1)
			}
		}
		opts[i] = ContestOption{Label: oi.Label, SelectionLimit: oi.SelectionLimit}
	}
	return Contest{Label: info.Label, SelectionLimit: info.SelectionLimit, Options: opts}, nil
}

// BallotStyleInfo is the unvalidated form of a ballot style: the set of
// contest indices offered on ballots of this style.
type BallotStyleInfo struct {
	Label    string
	Contests []int // 1-based contest indices
}

// BallotStyle is a validated ballot style.
type BallotStyle struct {
	Label    string
	Contests []idx.Contest
}

// Eligible reports whether this ballot style offers the given contest.
func (bs BallotStyle) Eligible(c idx.Contest) bool {
	for _, ci := range bs.Contests {
		if ci == c {
			return true
		}
	}
	return false
}

// ElectionManifestInfo is the unvalidated form of ElectionManifest.
type ElectionManifestInfo struct {
	Label        string
	Contests     []ContestInfo
	BallotStyles []BallotStyleInfo
}

// ElectionManifest is a validated election manifest: an ordered list of
// contests and ballot styles referencing them.
type ElectionManifest struct {
	Label        string
	Contests     []Contest
	BallotStyles []BallotStyle
}

// TryValidate validates an ElectionManifestInfo per §8's manifest
// invariants: every BallotStyle references only existing contest indices;
// every (contest, option label) pair is unique; every label passes the
// Unicode filter.
func (info ElectionManifestInfo) TryValidate() (ElectionManifest, error) {
	if err := ValidateLabel("manifest.label", info.Label); err != nil {
		return ElectionManifest{}, err
	}
	if len(info.Contests) == 0 {
		return ElectionManifest{}, fmt.Errorf("manifest: must have at least one contest")
	}
	if len(info.Contests) > idx.Max {
		return ElectionManifest{}, fmt.Errorf("manifest: too many contests")
	}
	contests := make([]Contest, len(info.Contests))
	for i, ci := range info.Contests {
		contestIx, err := idx.New[idx.ContestTag](i + 1)
		if err != nil {
			return ElectionManifest{}, err
		}
		c, err := ci.TryValidate(contestIx)
		if err != nil {
			return ElectionManifest{}, err
		}
		contests[i] = c
	}
	styles := make([]BallotStyle, len(info.BallotStyles))
	for i, si := range info.BallotStyles {
		if err := ValidateLabel(fmt.Sprintf("ballotStyle[%d].label", i+1), si.Label); err != nil {
			return ElectionManifest{}, err
		}
		cs := make([]idx.Contest, len(si.Contests))
		for j, raw := range si.Contests {
			cix, err := idx.New[idx.ContestTag](raw)
			if err != nil {
				return ElectionManifest{}, fmt.Errorf("manifest: ballotStyle[%d]: %w", i+1, err)
			}
			if cix.Int() > len(contests) {
				return ElectionManifest{}, fmt.Errorf("manifest: ballotStyle[%d] references non-existent contest %d", i+1, cix.Int())
			}
			cs[j] = cix
		}
		styles[i] = BallotStyle{Label: si.Label, Contests: cs}
	}
	return ElectionManifest{Label: info.Label, Contests: contests, BallotStyles: styles}, nil
}

// Info converts a validated ElectionManifest back to its Info form; the
// structural inverse of TryValidate.
func (m ElectionManifest) Info() ElectionManifestInfo {
	contests := make([]ContestInfo, len(m.Contests))
	for i, c := range m.Contests {
		opts := make([]ContestOptionInfo, len(c.Options))
		for j, o := range c.Options {
			opts[j] = ContestOptionInfo{Label: o.Label, SelectionLimit: o.SelectionLimit}
		}
		contests[i] = ContestInfo{Label: c.Label, SelectionLimit: c.SelectionLimit, Options: opts}
	}
	styles := make([]BallotStyleInfo, len(m.BallotStyles))
	for i, s := range m.BallotStyles {
		raw := make([]int, len(s.Contests))
		for j, c := range s.Contests {
			raw[j] = c.Int()
		}
		styles[i] = BallotStyleInfo{Label: s.Label, Contests: raw}
	}
	return ElectionManifestInfo{Label: m.Label, Contests: contests, BallotStyles: styles}
}

// CanonicalBytes returns the deterministic JSON encoding of the manifest
// that feeds H_M, per §4.C.
func (m ElectionManifest) CanonicalBytes() ([]byte, error) {
	return canonical.Marshal(m.Info())
}
