package resource_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/egcore/egds/egerr"
	"github.com/egcore/egds/resource"
)

type testResource struct{ val int }

func (testResource) ResourceTypeName() string { return "TestResource" }

// TestProduceIsMemoizedWithinACtx exercises §4.I step 1: a second Produce
// call for the same ResourceIdFormat returns the cached entry without
// invoking any producer again.
func TestProduceIsMemoizedWithinACtx(t *testing.T) {
	c := qt.New(t)
	calls := 0
	reg := resource.NewRegistry()
	reg.Register(resource.NewProducerFunc("counted", func(ctx context.Context, _ *resource.Ctx, op *resource.Op) (resource.Resource, resource.Source, bool, error) {
		if op.RidFmt.Rid.Edo.Type != "Counted" {
			return nil, resource.Source{}, false, nil
		}
		calls++
		return testResource{val: calls}, resource.Constructed(op.RidFmt.Fmt), true, nil
	}))

	ctx, err := resource.NewCtx(reg, nil, 0)
	c.Assert(err, qt.IsNil)

	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId("Counted", ""), Fmt: resource.FormatConcreteType}
	res1, _, err := ctx.Produce(context.Background(), ridfmt, resource.UnlimitedBudget())
	c.Assert(err, qt.IsNil)
	res2, _, err := ctx.Produce(context.Background(), ridfmt, resource.UnlimitedBudget())
	c.Assert(err, qt.IsNil)

	c.Assert(calls, qt.Equals, 1, qt.Commentf("second Produce must hit the cache, not re-invoke the producer"))
	c.Assert(res1, qt.Equals, res2)
}

// TestRecursionDetectedNamesTheResourceTwice exercises §4.I step 3: a
// producer that (directly or transitively) requests its own
// ResourceIdFormat again fails with RecursionDetected, whose chain contains
// that ResourceIdFormat twice, and the failure does not poison the Ctx for
// unrelated resources.
func TestRecursionDetectedNamesTheResourceTwice(t *testing.T) {
	c := qt.New(t)
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId("SelfRef", ""), Fmt: resource.FormatConcreteType}

	reg := resource.NewRegistry()
	reg.Register(resource.NewProducerFunc("selfref", func(ctx context.Context, rc *resource.Ctx, op *resource.Op) (resource.Resource, resource.Source, bool, error) {
		if op.RidFmt.Rid.Edo.Type != "SelfRef" {
			return nil, resource.Source{}, false, nil
		}
		pr := rc.ProduceResourceFor(op)
		_, _, err := pr.Produce(ctx, op.RidFmt, resource.UnlimitedBudget())
		if err != nil {
			return nil, resource.Source{}, false, err
		}
		return testResource{}, resource.Constructed(op.RidFmt.Fmt), true, nil
	}))

	ctx, err := resource.NewCtx(reg, nil, 0)
	c.Assert(err, qt.IsNil)

	_, _, err = ctx.Produce(context.Background(), ridfmt, resource.UnlimitedBudget())
	c.Assert(err, qt.Not(qt.IsNil))
	rpe, ok := err.(*egerr.ResourceProductionError)
	c.Assert(ok, qt.IsTrue)
	c.Assert(rpe.Kind, qt.Equals, "RecursionDetected")

	want := ridfmt.String()
	count := 0
	for _, s := range rpe.Chain {
		if s == want {
			count++
		}
	}
	c.Assert(count, qt.Equals, 2, qt.Commentf("chain must name the recursive resource twice: %v", rpe.Chain))

	// The RecursionDetected failure is fatal to this operation only; an
	// unrelated resource on the same Ctx still produces normally (here,
	// "normally" means a clean NoProducerFound, since reg has no producer
	// for it).
	other := resource.ResourceIdFormat{Rid: resource.EdoResourceId("Unrelated", ""), Fmt: resource.FormatConcreteType}
	res, _, err := ctx.Produce(context.Background(), other, resource.UnlimitedBudget())
	c.Assert(res, qt.IsNil)
	c.Assert(err, qt.Not(qt.IsNil))
	rpe2, ok := err.(*egerr.ResourceProductionError)
	c.Assert(ok, qt.IsTrue)
	c.Assert(rpe2.Kind, qt.Equals, "NoProducerFound", qt.Commentf("recursion on one rid must not poison unrelated requests"))
}
