package manifest

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/egcore/egds/idx"
)

func mustContestIx(v int) idx.Contest { return idx.MustNew[idx.ContestTag](v) }

func twoOptionContest(label string, contestLimit int) ContestInfo {
	return ContestInfo{
		Label:          label,
		SelectionLimit: contestLimit,
		Options: []ContestOptionInfo{
			{Label: "Alice", SelectionLimit: OptionSelectionLimitInfo{LimitedByContest: true}},
			{Label: "Bob", SelectionLimit: OptionSelectionLimitInfo{LimitedByContest: true}},
		},
	}
}

func TestManifestRoundTrip(t *testing.T) {
	c := qt.New(t)
	info := ElectionManifestInfo{
		Label: "Test Election",
		Contests: []ContestInfo{
			twoOptionContest("Contest 1", 1),
		},
		BallotStyles: []BallotStyleInfo{
			{Label: "Style 1", Contests: []int{1}},
		},
	}
	m, err := info.TryValidate()
	c.Assert(err, qt.IsNil)
	c.Assert(m.Contests, qt.HasLen, 1)
	c.Assert(m.BallotStyles[0].Eligible(m.BallotStyles[0].Contests[0]), qt.IsTrue)

	back := m.Info()
	c.Assert(back.Contests[0].Label, qt.Equals, "Contest 1")
	c.Assert(back.BallotStyles[0].Contests, qt.DeepEquals, []int{1})
}

func TestContestEffectiveLimits(t *testing.T) {
	c := qt.New(t)
	// Contest 5: contest_limit=1 over two options each limited only by the
	// contest.
	info := twoOptionContest("Contest 5", 1)
	contest, err := info.TryValidate(mustContestIx(5))
	c.Assert(err, qt.IsNil)
	c.Assert(contest.EffectiveOptionSelectionLimit(0), qt.Equals, 1)
	c.Assert(contest.EffectiveOptionSelectionLimit(1), qt.Equals, 1)
	c.Assert(contest.EffectiveContestSelectionLimit(), qt.Equals, 1)
}

func TestBallotStyleRejectsUnknownContest(t *testing.T) {
	c := qt.New(t)
	info := ElectionManifestInfo{
		Label:    "Test Election",
		Contests: []ContestInfo{twoOptionContest("Contest 1", 1)},
		BallotStyles: []BallotStyleInfo{
			{Label: "Style 1", Contests: []int{2}},
		},
	}
	_, err := info.TryValidate()
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestManifestRejectsDuplicateOptionLabels(t *testing.T) {
	c := qt.New(t)
	info := ElectionManifestInfo{
		Label: "Test Election",
		Contests: []ContestInfo{{
			Label:          "Contest 1",
			SelectionLimit: 1,
			Options: []ContestOptionInfo{
				{Label: "Alice", SelectionLimit: OptionSelectionLimitInfo{LimitedByContest: true}},
				{Label: "Alice", SelectionLimit: OptionSelectionLimitInfo{LimitedByContest: true}},
			},
		}},
		BallotStyles: []BallotStyleInfo{{Label: "Style 1", Contests: []int{1}}},
	}
	_, err := info.TryValidate()
	c.Assert(err, qt.Not(qt.IsNil))
}
