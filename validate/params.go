// Package validate implements EGDS 2.1's validation framework (§4.H): for
// every serialized election data object, a pair of types — an unvalidated
// Info form and a Validated form — bridged by a uniform,
// resource-graph-composable try_validate_from contract
// (resource.Validatable / resource.Validated).
//
// Grounded on the pack's Info/TryValidate(deps) shape already used by
// params, manifest, and guardian (itself patterned on
// davinci-node/spec/ballotmode.go's Validate() method and the
// spec/ballotmode_validate_test.go Info->validate->error flow), generalized
// here into the uniform interface the resource production graph (package
// resource) dispatches through, so that "validation depends on other
// validated objects" is expressed as a dependency request through
// resource.ProduceResource rather than as an ad hoc parameter list.
package validate

import (
	"context"
	"fmt"

	"github.com/egcore/egds/params"
	"github.com/egcore/egds/resource"
)

// fixedParametersRidFmt is the always-singleton key for the election's
// FixedParameters resource.
func fixedParametersRidFmt(fmt_ resource.ResourceFormat) resource.ResourceIdFormat {
	return resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoFixedParameters, ""), Fmt: fmt_}
}

func varyingParametersRidFmt(fmt_ resource.ResourceFormat) resource.ResourceIdFormat {
	return resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoVaryingParameters, ""), Fmt: fmt_}
}

// FetchFixedParameters requests the validated FixedParameters through pr,
// the dependency-resolution idiom every other EDO's TryValidateFrom uses
// to reach the election's parameters.
func FetchFixedParameters(ctx context.Context, pr resource.ProduceResource) (params.FixedParameters, error) {
	res, _, err := pr.Produce(ctx, fixedParametersRidFmt(resource.FormatValidElectionDataObject), resource.UnlimitedBudget())
	if err != nil {
		return params.FixedParameters{}, err
	}
	fp, err := resource.As[FixedParameters](res)
	if err != nil {
		return params.FixedParameters{}, err
	}
	return fp.FixedParameters, nil
}

// FetchVaryingParameters requests the validated VaryingParameters through pr.
func FetchVaryingParameters(ctx context.Context, pr resource.ProduceResource) (params.VaryingParameters, error) {
	res, _, err := pr.Produce(ctx, varyingParametersRidFmt(resource.FormatValidElectionDataObject), resource.UnlimitedBudget())
	if err != nil {
		return params.VaryingParameters{}, err
	}
	vp, err := resource.As[VaryingParameters](res)
	if err != nil {
		return params.VaryingParameters{}, err
	}
	return vp.VaryingParameters, nil
}

// FixedParametersInfo adapts params.FixedParametersInfo to resource.Validatable.
type FixedParametersInfo struct{ params.FixedParametersInfo }

func (w FixedParametersInfo) ResourceTypeName() string { return resource.EdoFixedParameters }

// TryValidateFrom runs params.FixedParametersInfo.TryValidate. Fixed
// parameters have no EDO dependencies (§4.C: they are the root of the hash
// chain), so pr is unused here but kept for interface uniformity.
func (w FixedParametersInfo) TryValidateFrom(ctx context.Context, pr resource.ProduceResource) (resource.Validated, error) {
	fp, err := w.FixedParametersInfo.TryValidate()
	if err != nil {
		return nil, err
	}
	return FixedParameters{fp}, nil
}

// FixedParameters adapts params.FixedParameters to resource.Validated.
type FixedParameters struct{ params.FixedParameters }

func (w FixedParameters) ResourceTypeName() string { return resource.EdoFixedParameters }
func (w FixedParameters) Info() resource.Validatable {
	return FixedParametersInfo{w.FixedParameters.Info()}
}

// VaryingParametersInfo adapts params.VaryingParametersInfo to resource.Validatable.
type VaryingParametersInfo struct{ params.VaryingParametersInfo }

func (w VaryingParametersInfo) ResourceTypeName() string { return resource.EdoVaryingParameters }

func (w VaryingParametersInfo) TryValidateFrom(ctx context.Context, pr resource.ProduceResource) (resource.Validated, error) {
	vp, err := w.VaryingParametersInfo.TryValidate()
	if err != nil {
		return nil, err
	}
	return VaryingParameters{vp}, nil
}

// VaryingParameters adapts params.VaryingParameters to resource.Validated.
type VaryingParameters struct{ params.VaryingParameters }

func (w VaryingParameters) ResourceTypeName() string { return resource.EdoVaryingParameters }
func (w VaryingParameters) Info() resource.Validatable {
	return VaryingParametersInfo{w.VaryingParameters.ToInfo()}
}

// ElectionParameters adapts params.ElectionParameters (the §4.I "Specific"
// bundle of validated FixedParameters + VaryingParameters) to
// resource.Resource. It has no Info form of its own: it is always derived,
// never deserialized, per §4.I's "Per-EDO function for ElectionParameters:
// bundle validated FixedParameters and VaryingParameters."
type ElectionParameters struct{ params.ElectionParameters }

func (w ElectionParameters) ResourceTypeName() string { return resource.EdoElectionParameters }

// ElectionParametersSpecificFunc implements the §4.I "Per-EDO function for
// ElectionParameters" as a resource.SpecificFunc, for registration into the
// Specific producer by the eg package.
func ElectionParametersSpecificFunc(ctx context.Context, c *resource.Ctx, op *resource.Op) (resource.Resource, resource.Source, bool, error) {
	if op.RidFmt.Fmt != resource.FormatValidElectionDataObject {
		return nil, resource.Source{}, false, nil
	}
	pr := c.ProduceResourceFor(op)
	fp, err := FetchFixedParameters(ctx, pr)
	if err != nil {
		return nil, resource.Source{}, false, fmt.Errorf("validate: election parameters: %w", err)
	}
	vp, err := FetchVaryingParameters(ctx, pr)
	if err != nil {
		return nil, resource.Source{}, false, fmt.Errorf("validate: election parameters: %w", err)
	}
	ep := ElectionParameters{params.ElectionParameters{Fixed: fp, Varying: vp}}
	return ep, resource.Constructed(resource.FormatValidElectionDataObject), true, nil
}
