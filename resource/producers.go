package resource

import (
	"context"

	"github.com/egcore/egds/egerr"
)

// SecretToPublicDeriver bridges one EDO type pair for the
// PublicFromSecretKey producer (§4.I): "when a Validated public key is
// requested, attempt to obtain the corresponding Validated secret key and
// extract the public key." Domain packages (guardian) implement this
// without the resource package needing to know their concrete types.
type SecretToPublicDeriver interface {
	PublicEdoType() string
	SecretEdoType() string
	// SecretKeyFor maps the public key's disambiguating key to the secret
	// key's (usually identical, e.g. same guardian index).
	SecretKeyFor(publicKey string) string
	DeriveFromSecret(ctx context.Context, c *Ctx, secret Resource) (Resource, error)
}

// PublicFromSecretKeyProducer implements §4.I's "PublicFromSecretKey":
// requesting a Validated public key first tries to obtain the matching
// Validated secret key; a NoProducerFound there is treated as "this
// producer does not apply" (ok=false), not an error, matching §7's "producers
// do not convert NoProducerFound into Err unless they logically depend on
// that resource" — here the dependency is intentional, but its absence
// (no secret-key producer registered, e.g. for a public-only auditor
// context) is not itself a failure of this producer.
func PublicFromSecretKeyProducer(derivers ...SecretToPublicDeriver) Producer {
	return NewProducerFunc("PublicFromSecretKey", func(ctx context.Context, c *Ctx, op *Op) (Resource, Source, bool, error) {
		if op.RidFmt.Fmt != FormatValidElectionDataObject {
			return nil, Source{}, false, nil
		}
		for _, d := range derivers {
			if op.RidFmt.Rid.Kind != KindElectionDataObject || op.RidFmt.Rid.Edo.Type != d.PublicEdoType() {
				continue
			}
			secretRidFmt := ResourceIdFormat{
				Rid: EdoResourceId(d.SecretEdoType(), d.SecretKeyFor(op.RidFmt.Rid.Edo.Key)),
				Fmt: FormatValidElectionDataObject,
			}
			pr := c.ProduceResourceFor(op)
			secret, _, err := pr.Produce(ctx, secretRidFmt, op.Budget)
			if err != nil {
				if isNoProducerFound(err) {
					return nil, Source{}, false, nil
				}
				return nil, Source{}, false, err
			}
			pub, err := d.DeriveFromSecret(ctx, c, secret)
			if err != nil {
				return nil, Source{}, false, err
			}
			return pub, ValidlyExtractedFrom(FormatValidElectionDataObject), true, nil
		}
		return nil, Source{}, false, nil
	})
}

// ValidateToEdoProducer implements §4.I's "ValidateToEdo": request the
// ConcreteType (Info) variant of the same rid, then run §4.H validation.
func ValidateToEdoProducer() Producer {
	return NewProducerFunc("ValidateToEdo", func(ctx context.Context, c *Ctx, op *Op) (Resource, Source, bool, error) {
		if op.RidFmt.Fmt != FormatValidElectionDataObject {
			return nil, Source{}, false, nil
		}
		infoRidFmt := ResourceIdFormat{Rid: op.RidFmt.Rid, Fmt: FormatConcreteType}
		pr := c.ProduceResourceFor(op)
		infoRes, _, err := pr.Produce(ctx, infoRidFmt, op.Budget)
		if err != nil {
			if isNoProducerFound(err) {
				return nil, Source{}, false, nil
			}
			return nil, Source{}, false, err
		}
		validatable, ok := infoRes.(Validatable)
		if !ok {
			return nil, Source{}, false, nil
		}
		validated, err := validatable.TryValidateFrom(ctx, pr)
		if err != nil {
			// Validation errors propagate to callers unchanged (§4.H,
			// §7): this producer does not reinterpret them.
			return nil, Source{}, false, err
		}
		return validated, ValidatedSource(FormatConcreteType), true, nil
	})
}

// SlicebytesFromValidatedProducer implements §4.I's
// "SlicebytesFromValidated": request the ValidElectionDataObject variant of
// the same rid, then serialize canonically to bytes.
func SlicebytesFromValidatedProducer() Producer {
	return NewProducerFunc("SlicebytesFromValidated", func(ctx context.Context, c *Ctx, op *Op) (Resource, Source, bool, error) {
		if op.RidFmt.Fmt != FormatSliceBytes {
			return nil, Source{}, false, nil
		}
		// A guardian's secret key must never be serialized to public
		// outputs (§3): there is simply no SliceBytes producer for a
		// CategorySecretForGuardian resource, so resolution falls through
		// to NoProducerFound rather than this producer ever emitting bytes.
		if CategoryFor(op.RidFmt.Rid) == CategorySecretForGuardian {
			return nil, Source{}, false, nil
		}
		validRidFmt := ResourceIdFormat{Rid: op.RidFmt.Rid, Fmt: FormatValidElectionDataObject}
		pr := c.ProduceResourceFor(op)
		validRes, _, err := pr.Produce(ctx, validRidFmt, op.Budget)
		if err != nil {
			if isNoProducerFound(err) {
				return nil, Source{}, false, nil
			}
			return nil, Source{}, false, err
		}
		enc, ok := validRes.(CanonicalEncodable)
		if !ok {
			return nil, Source{}, false, nil
		}
		b, err := enc.CanonicalBytes()
		if err != nil {
			return nil, Source{}, false, err
		}
		return BytesResource(b), Constructed(FormatValidElectionDataObject), true, nil
	})
}

// BytesResource is the Resource wrapper for a FormatSliceBytes result.
type BytesResource []byte

func (BytesResource) ResourceTypeName() string { return "SliceBytes" }

// SpecificFunc is one per-EDO registered production function, per §4.I's
// "Specific: dispatch to per-EDO registered functions." Keyed by EDO type
// so the dispatcher can find the right function without a domain-specific
// switch living in this package.
type SpecificFunc func(ctx context.Context, c *Ctx, op *Op) (Resource, Source, bool, error)

// SpecificProducer implements §4.I's "Specific" producer kind: a table of
// per-EDO-type functions "gathered statically at program start" by the
// registering package (eg), dispatched by EDO type.
func SpecificProducer(byType map[string]SpecificFunc) Producer {
	return NewProducerFunc("Specific", func(ctx context.Context, c *Ctx, op *Op) (Resource, Source, bool, error) {
		if op.RidFmt.Rid.Kind != KindElectionDataObject {
			return nil, Source{}, false, nil
		}
		fn, ok := byType[op.RidFmt.Rid.Edo.Type]
		if !ok {
			return nil, Source{}, false, nil
		}
		return fn(ctx, c, op)
	})
}

func isNoProducerFound(err error) bool {
	rpe, ok := err.(*egerr.ResourceProductionError)
	return ok && rpe.Kind == "NoProducerFound"
}
