package validate

import (
	"context"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/ehash"
	"github.com/egcore/egds/hashes"
	"github.com/egcore/egds/params"
	"github.com/egcore/egds/resource"
)

// Hashes bundles the parameter/manifest/election base hashes (H_P, H_M,
// H_B) computed by §4.C as the single EdoHashes resource, mirroring
// ElectionParameters' role of bundling FixedParameters+VaryingParameters:
// always derived by a Specific producer, never deserialized from its own
// Info form.
type Hashes struct {
	ParameterBase ehash.HValue // H_P
	Manifest      ehash.HValue // H_M
	ElectionBase  ehash.HValue // H_B
}

func (w Hashes) ResourceTypeName() string { return resource.EdoHashes }

func hashesRidFmt(fmt_ resource.ResourceFormat) resource.ResourceIdFormat {
	return resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoHashes, ""), Fmt: fmt_}
}

// FetchHashes requests the validated Hashes bundle through pr, the
// dependency every downstream EDO (guardian keys, contest encryption,
// confirmation codes) uses to reach H_P/H_M/H_B.
func FetchHashes(ctx context.Context, pr resource.ProduceResource) (Hashes, error) {
	res, _, err := pr.Produce(ctx, hashesRidFmt(resource.FormatValidElectionDataObject), resource.UnlimitedBudget())
	if err != nil {
		return Hashes{}, err
	}
	return resource.As[Hashes](res)
}

// HashesSpecificFunc implements §4.I's "Per-EDO function" for EdoHashes:
// compute H_P from the validated FixedParameters, H_M from the validated
// ElectionManifest, and H_B from the validated VaryingParameters, in the
// fixed dependency order §4.C's chain requires.
func HashesSpecificFunc(ctx context.Context, c *resource.Ctx, op *resource.Op) (resource.Resource, resource.Source, bool, error) {
	if op.RidFmt.Fmt != resource.FormatValidElectionDataObject {
		return nil, resource.Source{}, false, nil
	}
	pr := c.ProduceResourceFor(op)
	fp, err := FetchFixedParameters(ctx, pr)
	if err != nil {
		return nil, resource.Source{}, false, err
	}
	m, err := FetchElectionManifest(ctx, pr)
	if err != nil {
		return nil, resource.Source{}, false, err
	}
	vp, err := FetchVaryingParameters(ctx, pr)
	if err != nil {
		return nil, resource.Source{}, false, err
	}
	hp := hashes.ParameterBaseHash(params.Version, fp)
	hm, err := hashes.ManifestHash(hp, m)
	if err != nil {
		return nil, resource.Source{}, false, err
	}
	hb := hashes.ElectionBaseHash(hp, vp, hm)
	h := Hashes{ParameterBase: hp, Manifest: hm, ElectionBase: hb}
	return h, resource.Constructed(resource.FormatValidElectionDataObject), true, nil
}

// ExtendedBaseHash wraps H_E as a resource.Resource, always derived (per
// §4.I's "Per-EDO function for ExtendedBaseHash: compute H_E from other
// resources"), never deserialized.
type ExtendedBaseHash struct {
	Value ehash.HValue
}

func (w ExtendedBaseHash) ResourceTypeName() string { return resource.EdoExtendedBaseHash }

func extendedBaseHashRidFmt(fmt_ resource.ResourceFormat) resource.ResourceIdFormat {
	return resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoExtendedBaseHash, ""), Fmt: fmt_}
}

// FetchExtendedBaseHash requests the validated H_E through pr.
func FetchExtendedBaseHash(ctx context.Context, pr resource.ProduceResource) (ehash.HValue, error) {
	res, _, err := pr.Produce(ctx, extendedBaseHashRidFmt(resource.FormatValidElectionDataObject), resource.UnlimitedBudget())
	if err != nil {
		return ehash.HValue{}, err
	}
	v, err := resource.As[ExtendedBaseHash](res)
	if err != nil {
		return ehash.HValue{}, err
	}
	return v.Value, nil
}

// FetchJointPublicKey requests the combined joint public key for purpose
// ("vote" or "data") through pr.
func FetchJointPublicKey(ctx context.Context, pr resource.ProduceResource, purpose string) (arith.Element, error) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoJointPublicKey, purpose), Fmt: resource.FormatValidElectionDataObject}
	res, _, err := pr.Produce(ctx, ridfmt, resource.UnlimitedBudget())
	if err != nil {
		return arith.Element{}, err
	}
	jk, err := resource.As[JointPublicKey](res)
	if err != nil {
		return arith.Element{}, err
	}
	return jk.Element, nil
}

// ExtendedBaseHashSpecificFunc implements §4.I's "Per-EDO function for
// ExtendedBaseHash": H_E = H(H_B, 0x14 || K || K̂), with K and K̂ the
// "vote" and "data" purpose joint public keys (§3 JointPublicKey).
func ExtendedBaseHashSpecificFunc(ctx context.Context, c *resource.Ctx, op *resource.Op) (resource.Resource, resource.Source, bool, error) {
	if op.RidFmt.Fmt != resource.FormatValidElectionDataObject {
		return nil, resource.Source{}, false, nil
	}
	pr := c.ProduceResourceFor(op)
	fp, err := FetchFixedParameters(ctx, pr)
	if err != nil {
		return nil, resource.Source{}, false, err
	}
	h, err := FetchHashes(ctx, pr)
	if err != nil {
		return nil, resource.Source{}, false, err
	}
	k, err := FetchJointPublicKey(ctx, pr, JointPublicKeyPurposeVote)
	if err != nil {
		return nil, resource.Source{}, false, err
	}
	kHat, err := FetchJointPublicKey(ctx, pr, JointPublicKeyPurposeData)
	if err != nil {
		return nil, resource.Source{}, false, err
	}
	he := hashes.ExtendedBaseHash(h.ElectionBase, fp, k, kHat)
	return ExtendedBaseHash{Value: he}, resource.Constructed(resource.FormatValidElectionDataObject), true, nil
}

// VotingDeviceInformationInfo adapts hashes.VotingDeviceInformationInfo to
// resource.Validatable.
type VotingDeviceInformationInfo struct{ hashes.VotingDeviceInformationInfo }

func (w VotingDeviceInformationInfo) ResourceTypeName() string {
	return resource.EdoVotingDeviceInformation
}

// TryValidateFrom accepts any VotingDeviceInformationInfo as-is (§4.C: its
// contents are opaque to the core); no EDO dependencies are needed.
func (w VotingDeviceInformationInfo) TryValidateFrom(ctx context.Context, pr resource.ProduceResource) (resource.Validated, error) {
	v, err := w.VotingDeviceInformationInfo.TryValidate()
	if err != nil {
		return nil, err
	}
	return VotingDeviceInformation{v}, nil
}

// VotingDeviceInformation adapts hashes.VotingDeviceInformation to
// resource.Validated.
type VotingDeviceInformation struct{ hashes.VotingDeviceInformation }

func (w VotingDeviceInformation) ResourceTypeName() string {
	return resource.EdoVotingDeviceInformation
}
func (w VotingDeviceInformation) Info() resource.Validatable {
	return VotingDeviceInformationInfo{w.VotingDeviceInformation.Info()}
}

func votingDeviceInformationRidFmt(fmt_ resource.ResourceFormat) resource.ResourceIdFormat {
	return resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoVotingDeviceInformation, ""), Fmt: fmt_}
}

// FetchVotingDeviceInformation requests the validated VotingDeviceInformation
// through pr.
func FetchVotingDeviceInformation(ctx context.Context, pr resource.ProduceResource) (hashes.VotingDeviceInformation, error) {
	res, _, err := pr.Produce(ctx, votingDeviceInformationRidFmt(resource.FormatValidElectionDataObject), resource.UnlimitedBudget())
	if err != nil {
		return hashes.VotingDeviceInformation{}, err
	}
	v, err := resource.As[VotingDeviceInformation](res)
	if err != nil {
		return hashes.VotingDeviceInformation{}, err
	}
	return v.VotingDeviceInformation, nil
}

// FetchVotingDeviceInformationHash resolves the validated
// VotingDeviceInformation and Hashes bundle through pr and computes H_DI,
// per §4.C. H_DI has no EdoId of its own in §6's schema list (it is always
// recomputed from VotingDeviceInformation, never independently
// deserialized), so this is a plain helper rather than a Specific producer.
func FetchVotingDeviceInformationHash(ctx context.Context, pr resource.ProduceResource) (ehash.HValue, error) {
	h, err := FetchHashes(ctx, pr)
	if err != nil {
		return ehash.HValue{}, err
	}
	vdi, err := FetchVotingDeviceInformation(ctx, pr)
	if err != nil {
		return ehash.HValue{}, err
	}
	return vdi.Hash(h.ParameterBase)
}

// JointPublicKey purpose constants, per §3 "one of two purposes: 'vote
// encryption' (K) or 'ballot data encryption' (K̂)."
const (
	JointPublicKeyPurposeVote = "vote"
	JointPublicKeyPurposeData = "data"
)
