// Package eg is the root entry point of the EGDS 2.1 core: it wires the
// domain's validation and derivation functions (package validate) into a
// frozen resource.Registry and exposes a small Context API over it, per §6
// "External interfaces" and §9's "global mutable state exists only as the
// ResourceProducerRegistry built by collecting statically-submitted
// registration functions at startup."
//
// Grounded on vocdoni-davinci-node/sequencer's top-level wiring of its
// circuit/storage registries into a single long-lived service struct,
// generalized here from a blockchain sequencer's service object to the
// resource production graph's single entry point.
package eg

import (
	"context"
	"fmt"
	"io"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/ehash"
	"github.com/egcore/egds/guardian"
	"github.com/egcore/egds/hashes"
	"github.com/egcore/egds/manifest"
	"github.com/egcore/egds/params"
	"github.com/egcore/egds/resource"
	"github.com/egcore/egds/validate"
)

// designSpecVersion is the DesignSpecVersion resource, answered directly
// from params.Version with no dependencies (§4.I's "ElectionGuardDesignSpecificationVersion"
// rid kind is a constant, not an EDO).
type designSpecVersion string

func (designSpecVersion) ResourceTypeName() string { return resource.KindDesignSpecVersion.String() }

func designSpecVersionProducer() resource.Producer {
	return resource.NewProducerFunc("DesignSpecVersion", func(ctx context.Context, c *resource.Ctx, op *resource.Op) (resource.Resource, resource.Source, bool, error) {
		if op.RidFmt.Rid.Kind != resource.KindDesignSpecVersion {
			return nil, resource.Source{}, false, nil
		}
		return designSpecVersion(params.Version), resource.Inherent(), true, nil
	})
}

// specificFuncs is the static table of per-EDO-type production functions
// §4.I's "Specific" producer kind dispatches through, gathered here (not in
// package resource, which must not know about domain EDO types) the way
// §9 describes registries being "collected... at startup."
func specificFuncs() map[string]resource.SpecificFunc {
	return map[string]resource.SpecificFunc{
		resource.EdoElectionParameters: validate.ElectionParametersSpecificFunc,
		resource.EdoHashes:             validate.HashesSpecificFunc,
		resource.EdoExtendedBaseHash:   validate.ExtendedBaseHashSpecificFunc,
		resource.EdoJointPublicKey:     validate.JointPublicKeySpecificFunc,
	}
}

// buildRegistry assembles the frozen Registry every Context shares its
// shape with, in the fixed dispatch order §4.I step 4 requires: derive
// public keys from secrets first (cheapest, most specific), then validate
// Info forms, then serialize, then fall back to the Specific per-EDO table,
// then the design-spec-version constant.
func buildRegistry() *resource.Registry {
	reg := resource.NewRegistry()
	reg.Register(resource.PublicFromSecretKeyProducer(validate.PublicFromSecretDeriver()))
	reg.Register(resource.ValidateToEdoProducer())
	reg.Register(resource.SlicebytesFromValidatedProducer())
	reg.Register(resource.SpecificProducer(specificFuncs()))
	reg.Register(designSpecVersionProducer())
	return reg
}

// Context is the EGDS 2.1 core's entry point: a resource.Ctx wired with
// every domain producer, plus typed convenience accessors over the
// untyped resource graph. The core never reads configuration itself (see
// eg/config): a Context is always constructed from already-resolved
// values by an external caller.
type Context struct {
	*resource.Ctx
}

// Option configures a Context at construction time.
type Option func(*options)

type options struct {
	csrng     io.Reader
	cacheSize int
}

// WithCSRNG overrides the context's CSRNG (crypto/rand.Reader when nil or
// unset); test harnesses can supply DeterministicCSRNG. The reader is
// returned by the context's CSRNG method; guardian key generation and
// ballot encryption do not read it, so it does not make their output
// reproducible.
func WithCSRNG(r io.Reader) Option { return func(o *options) { o.csrng = r } }

// WithCacheSize overrides the production graph's memoizing cache capacity.
func WithCacheSize(n int) Option { return func(o *options) { o.cacheSize = n } }

// NewContext builds a Context over a freshly assembled, frozen registry.
func NewContext(opts ...Option) (*Context, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	ctx, err := resource.NewCtx(buildRegistry(), o.csrng, o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("eg: new context: %w", err)
	}
	return &Context{Ctx: ctx}, nil
}

// --- Seed helpers: pre-populate the cache's roots ---
//
// There is no in-scope filesystem-loading producer (§1/§6 put file layout
// out of scope), so a caller holding an already-deserialized or
// literal-in-Go Info-form EDO injects it directly via these Seed wrappers,
// tagged resource.ExampleData per §4.I step 6's source-tracking vocabulary.
// Downstream Produce calls for the validated (or canonical-bytes) form of
// the same rid then run it through the same ValidateToEdo/SlicebytesFromValidated
// producers as anything else in the graph.

func (c *Context) SeedFixedParameters(info params.FixedParametersInfo) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoFixedParameters, ""), Fmt: resource.FormatConcreteType}
	c.Seed(ridfmt, validate.FixedParametersInfo{FixedParametersInfo: info}, resource.ExampleData(resource.FormatConcreteType))
}

func (c *Context) SeedVaryingParameters(info params.VaryingParametersInfo) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoVaryingParameters, ""), Fmt: resource.FormatConcreteType}
	c.Seed(ridfmt, validate.VaryingParametersInfo{VaryingParametersInfo: info}, resource.ExampleData(resource.FormatConcreteType))
}

func (c *Context) SeedElectionManifest(info manifest.ElectionManifestInfo) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoElectionManifest, ""), Fmt: resource.FormatConcreteType}
	c.Seed(ridfmt, validate.ElectionManifestInfo{ElectionManifestInfo: info}, resource.ExampleData(resource.FormatConcreteType))
}

func (c *Context) SeedVotingDeviceInformation(info hashes.VotingDeviceInformationInfo) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoVotingDeviceInformation, ""), Fmt: resource.FormatConcreteType}
	c.Seed(ridfmt, validate.VotingDeviceInformationInfo{VotingDeviceInformationInfo: info}, resource.ExampleData(resource.FormatConcreteType))
}

// GuardianKey builds the Key disambiguator used for a guardian's secret or
// public key: purpose ("vote" or "data") plus 1-based guardian index, per
// validate.GuardianKeyID.
func GuardianKey(purpose string, guardianIx int) string { return validate.GuardianKeyID(purpose, guardianIx) }

// ShareKey builds the Key disambiguator for an encrypted share: purpose,
// dealer index, recipient index.
func ShareKey(purpose string, dealerIx, recipientIx int) string {
	return fmt.Sprintf("%s/%d/%d", purpose, dealerIx, recipientIx)
}

func (c *Context) SeedGuardianSecretKey(purpose string, guardianIx int, info guardian.GuardianSecretKeyInfo) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoGuardianSecretKey, GuardianKey(purpose, guardianIx)), Fmt: resource.FormatConcreteType}
	c.Seed(ridfmt, validate.GuardianSecretKeyInfo{GuardianSecretKeyInfo: info}, resource.ExampleData(resource.FormatConcreteType))
}

func (c *Context) SeedGuardianPublicKey(purpose string, guardianIx int, info guardian.GuardianPublicKeyInfo) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoGuardianPublicKey, GuardianKey(purpose, guardianIx)), Fmt: resource.FormatConcreteType}
	c.Seed(ridfmt, validate.GuardianPublicKeyInfo{GuardianPublicKeyInfo: info}, resource.ExampleData(resource.FormatConcreteType))
}

func (c *Context) SeedGuardianEncryptedShare(purpose string, dealerIx, recipientIx int, info guardian.GuardianEncryptedShareInfo) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoGuardianEncryptedShare, ShareKey(purpose, dealerIx, recipientIx)), Fmt: resource.FormatConcreteType}
	c.Seed(ridfmt, validate.GuardianEncryptedShareInfo{GuardianEncryptedShareInfo: info}, resource.ExampleData(resource.FormatConcreteType))
}

func (c *Context) SeedBallot(ballotId string, info validate.BallotInfo) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoBallot, ballotId), Fmt: resource.FormatConcreteType}
	c.Seed(ridfmt, info, resource.ExampleData(resource.FormatConcreteType))
}

func (c *Context) SeedElectionTallies(info validate.ElectionTalliesInfo) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoElectionTallies, ""), Fmt: resource.FormatConcreteType}
	c.Seed(ridfmt, info, resource.ExampleData(resource.FormatConcreteType))
}

// --- Typed accessors over the resource graph ---

func (c *Context) FixedParameters(ctx context.Context) (params.FixedParameters, error) {
	return validate.FetchFixedParameters(ctx, c.Ctx)
}

func (c *Context) VaryingParameters(ctx context.Context) (params.VaryingParameters, error) {
	return validate.FetchVaryingParameters(ctx, c.Ctx)
}

func (c *Context) ElectionManifest(ctx context.Context) (manifest.ElectionManifest, error) {
	return validate.FetchElectionManifest(ctx, c.Ctx)
}

func (c *Context) Hashes(ctx context.Context) (validate.Hashes, error) {
	return validate.FetchHashes(ctx, c.Ctx)
}

func (c *Context) ExtendedBaseHash(ctx context.Context) (ehash.HValue, error) {
	return validate.FetchExtendedBaseHash(ctx, c.Ctx)
}

func (c *Context) VotingDeviceInformationHash(ctx context.Context) (ehash.HValue, error) {
	return validate.FetchVotingDeviceInformationHash(ctx, c.Ctx)
}

func (c *Context) JointPublicKey(ctx context.Context, purpose string) (arith.Element, error) {
	return validate.FetchJointPublicKey(ctx, c.Ctx, purpose)
}

func (c *Context) GuardianPublicKey(ctx context.Context, purpose string, guardianIx int) (guardian.GuardianPublicKey, error) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoGuardianPublicKey, GuardianKey(purpose, guardianIx)), Fmt: resource.FormatValidElectionDataObject}
	res, _, err := c.Produce(ctx, ridfmt, resource.UnlimitedBudget())
	if err != nil {
		return guardian.GuardianPublicKey{}, err
	}
	pk, err := resource.As[validate.GuardianPublicKey](res)
	if err != nil {
		return guardian.GuardianPublicKey{}, err
	}
	return pk.GuardianPublicKey, nil
}

func (c *Context) GuardianSecretKey(ctx context.Context, purpose string, guardianIx int) (guardian.GuardianSecretKey, error) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoGuardianSecretKey, GuardianKey(purpose, guardianIx)), Fmt: resource.FormatValidElectionDataObject}
	res, _, err := c.Produce(ctx, ridfmt, resource.UnlimitedBudget())
	if err != nil {
		return guardian.GuardianSecretKey{}, err
	}
	sk, err := resource.As[validate.GuardianSecretKey](res)
	if err != nil {
		return guardian.GuardianSecretKey{}, err
	}
	return sk.GuardianSecretKey, nil
}

func (c *Context) GuardianEncryptedShare(ctx context.Context, purpose string, dealerIx, recipientIx int) (guardian.GuardianEncryptedShare, error) {
	ridfmt := resource.ResourceIdFormat{Rid: resource.EdoResourceId(resource.EdoGuardianEncryptedShare, ShareKey(purpose, dealerIx, recipientIx)), Fmt: resource.FormatValidElectionDataObject}
	res, _, err := c.Produce(ctx, ridfmt, resource.UnlimitedBudget())
	if err != nil {
		return guardian.GuardianEncryptedShare{}, err
	}
	s, err := resource.As[validate.GuardianEncryptedShare](res)
	if err != nil {
		return guardian.GuardianEncryptedShare{}, err
	}
	return s.GuardianEncryptedShare, nil
}

func (c *Context) Ballot(ctx context.Context, ballotId string) (validate.Ballot, error) {
	return validate.FetchBallot(ctx, c.Ctx, ballotId)
}

func (c *Context) ElectionTallies(ctx context.Context) (validate.ElectionTallies, error) {
	return validate.FetchElectionTallies(ctx, c.Ctx)
}

// DesignSpecVersion returns the EGDS version tag this core implements.
func (c *Context) DesignSpecVersion(ctx context.Context) (string, error) {
	res, _, err := c.Produce(ctx, resource.ResourceIdFormat{Rid: resource.DesignSpecVersionId(), Fmt: resource.FormatConcreteType}, resource.UnlimitedBudget())
	if err != nil {
		return "", err
	}
	v, err := resource.As[designSpecVersion](res)
	if err != nil {
		return "", err
	}
	return string(v), nil
}
