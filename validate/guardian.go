package validate

import (
	"context"
	"fmt"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/egerr"
	"github.com/egcore/egds/guardian"
	"github.com/egcore/egds/resource"
)

// GuardianKeyID builds the EdoId.Key disambiguator for a guardian's secret
// or public key: purpose ("vote" or "data", per §3's JointPublicKey
// purposes) and 1-based guardian index, since each guardian runs one
// independent polynomial per purpose.
func GuardianKeyID(purpose string, guardianIx int) string {
	return fmt.Sprintf("%s/%d", purpose, guardianIx)
}

func guardianPublicKeyRidFmt(purpose string, i int, fmt_ resource.ResourceFormat) resource.ResourceIdFormat {
	return resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoGuardianPublicKey, GuardianKeyID(purpose, i)), Fmt: fmt_}
}

// GuardianSecretKeyInfo adapts guardian.GuardianSecretKeyInfo to resource.Validatable.
type GuardianSecretKeyInfo struct{ guardian.GuardianSecretKeyInfo }

func (w GuardianSecretKeyInfo) ResourceTypeName() string { return resource.EdoGuardianSecretKey }

func (w GuardianSecretKeyInfo) TryValidateFrom(ctx context.Context, pr resource.ProduceResource) (resource.Validated, error) {
	fp, err := FetchFixedParameters(ctx, pr)
	if err != nil {
		return nil, err
	}
	sk, err := w.GuardianSecretKeyInfo.TryValidate(fp)
	if err != nil {
		return nil, err
	}
	return GuardianSecretKey{sk}, nil
}

// GuardianSecretKey adapts guardian.GuardianSecretKey to resource.Validated.
// Per §3, this EDO must never be serialized to public outputs; the resource
// graph still produces/validates it for a guardian's own process.
type GuardianSecretKey struct{ guardian.GuardianSecretKey }

func (w GuardianSecretKey) ResourceTypeName() string { return resource.EdoGuardianSecretKey }
func (w GuardianSecretKey) Info() resource.Validatable {
	return GuardianSecretKeyInfo{w.GuardianSecretKey.Info()}
}

// GuardianPublicKeyInfo adapts guardian.GuardianPublicKeyInfo to resource.Validatable.
type GuardianPublicKeyInfo struct{ guardian.GuardianPublicKeyInfo }

func (w GuardianPublicKeyInfo) ResourceTypeName() string { return resource.EdoGuardianPublicKey }

func (w GuardianPublicKeyInfo) TryValidateFrom(ctx context.Context, pr resource.ProduceResource) (resource.Validated, error) {
	fp, err := FetchFixedParameters(ctx, pr)
	if err != nil {
		return nil, err
	}
	hp, err := FetchHashes(ctx, pr)
	if err != nil {
		return nil, err
	}
	vp, err := FetchVaryingParameters(ctx, pr)
	if err != nil {
		return nil, err
	}
	pk, err := w.GuardianPublicKeyInfo.TryValidate(fp, hp.ParameterBase, vp.K)
	if err != nil {
		return nil, err
	}
	return GuardianPublicKey{pk}, nil
}

// GuardianPublicKey adapts guardian.GuardianPublicKey to resource.Validated.
type GuardianPublicKey struct{ guardian.GuardianPublicKey }

func (w GuardianPublicKey) ResourceTypeName() string { return resource.EdoGuardianPublicKey }
func (w GuardianPublicKey) Info() resource.Validatable {
	return GuardianPublicKeyInfo{w.GuardianPublicKey.Info()}
}

// GuardianEncryptedShareInfo adapts guardian.GuardianEncryptedShareInfo to resource.Validatable.
type GuardianEncryptedShareInfo struct{ guardian.GuardianEncryptedShareInfo }

func (w GuardianEncryptedShareInfo) ResourceTypeName() string { return resource.EdoGuardianEncryptedShare }

func (w GuardianEncryptedShareInfo) TryValidateFrom(ctx context.Context, pr resource.ProduceResource) (resource.Validated, error) {
	fp, err := FetchFixedParameters(ctx, pr)
	if err != nil {
		return nil, err
	}
	share, err := w.GuardianEncryptedShareInfo.TryValidate(fp)
	if err != nil {
		return nil, err
	}
	return GuardianEncryptedShare{share}, nil
}

// GuardianEncryptedShare adapts guardian.GuardianEncryptedShare to resource.Validated.
type GuardianEncryptedShare struct{ guardian.GuardianEncryptedShare }

func (w GuardianEncryptedShare) ResourceTypeName() string { return resource.EdoGuardianEncryptedShare }
func (w GuardianEncryptedShare) Info() resource.Validatable {
	return GuardianEncryptedShareInfo{w.GuardianEncryptedShare.Info()}
}

// guardianDeriver implements resource.SecretToPublicDeriver for guardian
// keys (§4.I "PublicFromSecretKey"): given a guardian's secret key,
// re-derive fresh commitments and coefficient proofs, which remain valid
// proofs of knowledge of the same coefficients.
type guardianDeriver struct{}

// PublicFromSecretDeriver builds the resource.SecretToPublicDeriver that
// bridges GuardianPublicKey <- GuardianSecretKey for registration into
// resource.PublicFromSecretKeyProducer.
func PublicFromSecretDeriver() resource.SecretToPublicDeriver { return guardianDeriver{} }

func (guardianDeriver) PublicEdoType() string                { return resource.EdoGuardianPublicKey }
func (guardianDeriver) SecretEdoType() string                { return resource.EdoGuardianSecretKey }
func (guardianDeriver) SecretKeyFor(publicKey string) string { return publicKey }

func (guardianDeriver) DeriveFromSecret(ctx context.Context, c *resource.Ctx, secret resource.Resource) (resource.Resource, error) {
	sk, err := resource.As[GuardianSecretKey](secret)
	if err != nil {
		return nil, err
	}
	fp, err := FetchFixedParameters(ctx, c)
	if err != nil {
		return nil, err
	}
	hp, err := FetchHashes(ctx, c)
	if err != nil {
		return nil, err
	}
	pk, err := guardian.PublicFromSecret(fp, hp.ParameterBase, sk.GuardianSecretKey)
	if err != nil {
		return nil, err
	}
	return GuardianPublicKey{pk}, nil
}

// JointPublicKeySpecificFunc implements §4.D "Combine" / §4.I's Specific
// dispatch for EdoJointPublicKey: product over every guardian's
// commitments[0] for the purpose named by the resource key.
func JointPublicKeySpecificFunc(ctx context.Context, c *resource.Ctx, op *resource.Op) (resource.Resource, resource.Source, bool, error) {
	if op.RidFmt.Fmt != resource.FormatValidElectionDataObject {
		return nil, resource.Source{}, false, nil
	}
	purpose := op.RidFmt.Rid.Edo.Key
	if purpose == "" {
		return nil, resource.Source{}, false, nil
	}
	pr := c.ProduceResourceFor(op)
	fp, err := FetchFixedParameters(ctx, pr)
	if err != nil {
		return nil, resource.Source{}, false, err
	}
	vp, err := FetchVaryingParameters(ctx, pr)
	if err != nil {
		return nil, resource.Source{}, false, err
	}
	pks := make([]guardian.GuardianPublicKey, vp.N)
	for g := 1; g <= vp.N; g++ {
		res, _, err := pr.Produce(ctx, guardianPublicKeyRidFmt(purpose, g, resource.FormatValidElectionDataObject), resource.UnlimitedBudget())
		if err != nil {
			return nil, resource.Source{}, false, &egerr.ResourceProductionError{Kind: "DependencyProductionError", RidFmt: op.RidFmt.String(), Cause: err}
		}
		pk, err := resource.As[GuardianPublicKey](res)
		if err != nil {
			return nil, resource.Source{}, false, err
		}
		pks[g-1] = pk.GuardianPublicKey
	}
	joint := guardian.JointPublicKey(fp, pks)
	return JointPublicKey{Purpose: purpose, Element: joint}, resource.Constructed(resource.FormatValidElectionDataObject), true, nil
}

// JointPublicKey wraps the combined per-purpose joint public key (K or K̂,
// per §3) as a resource.Resource.
type JointPublicKey struct {
	Purpose string
	Element arith.Element
}

func (w JointPublicKey) ResourceTypeName() string { return resource.EdoJointPublicKey }
