package resource_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/egcore/egds/resource"
)

// TestCategoryForGuardianSecretKeyIsNeverPublished exercises the category
// classification §3 relies on: a GuardianSecretKey's category must be
// CategorySecretForGuardian regardless of its disambiguating key, and
// everything else in the EDO type list defaults to CategoryPublished.
func TestCategoryForGuardianSecretKeyIsNeverPublished(t *testing.T) {
	c := qt.New(t)

	secret := resource.EdoResourceId(resource.EdoGuardianSecretKey, "3")
	c.Assert(resource.CategoryFor(secret), qt.Equals, resource.CategorySecretForGuardian)

	public := resource.EdoResourceId(resource.EdoGuardianPublicKey, "3")
	c.Assert(resource.CategoryFor(public), qt.Equals, resource.CategoryPublished)

	manifest := resource.EdoResourceId(resource.EdoElectionManifest, "")
	c.Assert(resource.CategoryFor(manifest), qt.Equals, resource.CategoryPublished)

	c.Assert(resource.CategoryFor(resource.DesignSpecVersionId()), qt.Equals, resource.CategoryPublished)
}

// TestSlicebytesFromValidatedRefusesSecretResources exercises the
// enforcement point: the SliceBytes producer for a CategorySecretForGuardian
// resource must decline (ok=false), not error, so resolution falls through
// to NoProducerFound rather than ever emitting a guardian's secret key as
// serialized bytes.
func TestSlicebytesFromValidatedRefusesSecretResources(t *testing.T) {
	c := qt.New(t)

	reg := resource.NewRegistry()
	reg.Register(resource.SlicebytesFromValidatedProducer())
	ctx, err := resource.NewCtx(reg, nil, 0)
	c.Assert(err, qt.IsNil)

	ridfmt := resource.ResourceIdFormat{
		Rid: resource.EdoResourceId(resource.EdoGuardianSecretKey, "1"),
		Fmt: resource.FormatSliceBytes,
	}
	_, _, err = ctx.Produce(context.Background(), ridfmt, resource.UnlimitedBudget())
	c.Assert(err, qt.Not(qt.IsNil))
}
