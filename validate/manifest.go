package validate

import (
	"context"

	"github.com/egcore/egds/manifest"
	"github.com/egcore/egds/resource"
)

// ElectionManifestInfo adapts manifest.ElectionManifestInfo to resource.Validatable.
type ElectionManifestInfo struct{ manifest.ElectionManifestInfo }

func (w ElectionManifestInfo) ResourceTypeName() string { return resource.EdoElectionManifest }

// TryValidateFrom runs manifest.ElectionManifestInfo.TryValidate. The
// manifest has no EDO dependencies of its own (§4.E's invariants are
// entirely internal to the manifest's structure).
func (w ElectionManifestInfo) TryValidateFrom(ctx context.Context, pr resource.ProduceResource) (resource.Validated, error) {
	m, err := w.ElectionManifestInfo.TryValidate()
	if err != nil {
		return nil, err
	}
	return ElectionManifest{m}, nil
}

// ElectionManifest adapts manifest.ElectionManifest to resource.Validated
// and resource.CanonicalEncodable (its canonical bytes feed H_M, per §4.C).
type ElectionManifest struct{ manifest.ElectionManifest }

func (w ElectionManifest) ResourceTypeName() string { return resource.EdoElectionManifest }
func (w ElectionManifest) Info() resource.Validatable {
	return ElectionManifestInfo{w.ElectionManifest.Info()}
}
func (w ElectionManifest) CanonicalBytes() ([]byte, error) { return w.ElectionManifest.CanonicalBytes() }

// manifestRidFmt is the always-singleton key for the election's manifest
// resource.
func manifestRidFmt(fmt_ resource.ResourceFormat) resource.ResourceIdFormat {
	return resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoElectionManifest, ""), Fmt: fmt_}
}

// FetchElectionManifest requests the validated ElectionManifest through pr.
func FetchElectionManifest(ctx context.Context, pr resource.ProduceResource) (manifest.ElectionManifest, error) {
	res, _, err := pr.Produce(ctx, manifestRidFmt(resource.FormatValidElectionDataObject), resource.UnlimitedBudget())
	if err != nil {
		return manifest.ElectionManifest{}, err
	}
	m, err := resource.As[ElectionManifest](res)
	if err != nil {
		return manifest.ElectionManifest{}, err
	}
	return m.ElectionManifest, nil
}
