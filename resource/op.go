package resource

import "github.com/google/uuid"

// Op is one node in the chain of nested produce_resource calls, per §4.I
// step 3/5: "walk the outer_op chain", "each nested call creates a child
// RpOp whose budget is the minimum of its argument and its parent's."
//
// Grounded on the `opID`-per-call idiom noted in SPEC_FULL.md: google/uuid
// gives each Op a unique ID. A RecursionDetected error's chain is built from
// the Ops' ridfmt strings, not from these IDs.
type Op struct {
	ID     string
	RidFmt ResourceIdFormat
	Budget Budget
	Parent *Op
}

// rootOp starts a new top-level resolution chain.
func rootOp(ridfmt ResourceIdFormat, budget Budget) *Op {
	return &Op{ID: uuid.NewString(), RidFmt: ridfmt, Budget: budget}
}

// child starts a nested resolution chain whose budget is capped by both the
// requested budget and the parent's remaining budget.
func (o *Op) child(ridfmt ResourceIdFormat, budget Budget) *Op {
	return &Op{ID: uuid.NewString(), RidFmt: ridfmt, Budget: o.Budget.Min(budget), Parent: o}
}

// ancestorRequested reports whether any ancestor of o (not including o
// itself) already requested ridfmt, per §4.I step 3.
func (o *Op) ancestorRequested(ridfmt ResourceIdFormat) bool {
	for p := o.Parent; p != nil; p = p.Parent {
		if p.RidFmt == ridfmt {
			return true
		}
	}
	return false
}

// Chain returns the full request chain from root to o, inclusive, for
// RecursionDetected{chain} error reporting.
func (o *Op) Chain() []ResourceIdFormat {
	var rev []ResourceIdFormat
	for p := o; p != nil; p = p.Parent {
		rev = append(rev, p.RidFmt)
	}
	chain := make([]ResourceIdFormat, len(rev))
	for i, rf := range rev {
		chain[len(rev)-1-i] = rf
	}
	return chain
}

func chainStrings(chain []ResourceIdFormat) []string {
	out := make([]string, len(chain))
	for i, rf := range chain {
		out[i] = rf.String()
	}
	return out
}
