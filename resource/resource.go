// Package resource implements EGDS 2.1's resource production graph (§4.I):
// a content-addressed, memoizing producer registry that, given a
// (ResourceId, ResourceFormat) key, assembles the requested artifact by
// loading bytes, deserializing, validating, deriving from other resources,
// or computing it outright.
//
// Grounded on davinci-node/storage/storage.go's hashicorp/golang-lru/v2
// in-process memoizing cache and davinci-node/circuits's content-addressed
// artifact-fetch-and-cache idea, generalized from "download a file keyed
// by URL+hash" to "produce any election data object keyed by
// (ResourceId, ResourceFormat)."
package resource

import (
	"fmt"

	"github.com/egcore/egds/egerr"
)

// EdoKind names the two top-level resource-id kinds of §4.I.
type EdoKind int

const (
	KindDesignSpecVersion EdoKind = iota
	KindElectionDataObject
)

func (k EdoKind) String() string {
	switch k {
	case KindDesignSpecVersion:
		return "ElectionGuardDesignSpecificationVersion"
	case KindElectionDataObject:
		return "ElectionDataObject"
	default:
		return fmt.Sprintf("EdoKind(%d)", int(k))
	}
}

// EDO type names, matching the canonical-JSON schema list of spec §6.
const (
	EdoFixedParameters         = "FixedParameters"
	EdoVaryingParameters       = "VaryingParameters"
	EdoElectionParameters      = "ElectionParameters"
	EdoElectionManifest        = "ElectionManifest"
	EdoHashes                  = "Hashes"
	EdoExtendedBaseHash        = "ExtendedBaseHash"
	EdoGuardianSecretKey       = "GuardianSecretKey"
	EdoGuardianPublicKey       = "GuardianPublicKey"
	EdoGuardianEncryptedShare  = "GuardianEncryptedShare"
	EdoJointPublicKey          = "JointPublicKey"
	EdoVotingDeviceInformation = "VotingDeviceInformation"
	EdoBallot                  = "Ballot"
	EdoElectionTallies         = "ElectionTallies"
)

// EdoId names one election data object: a type tag plus a disambiguating
// key for types with more than one instance per election (guardian index,
// joint-key purpose, ballot id, ...). Key is empty for per-election
// singletons (ElectionManifest, Hashes, ExtendedBaseHash, ...).
type EdoId struct {
	Type string
	Key  string
}

func (e EdoId) String() string {
	if e.Key == "" {
		return e.Type
	}
	return e.Type + "/" + e.Key
}

// ResourceId is either the design-spec version marker or a concrete EDO,
// per §4.I's "rid ∈ { ElectionGuardDesignSpecificationVersion,
// ElectionDataObject(edoid) }".
type ResourceId struct {
	Kind EdoKind
	Edo  EdoId // meaningful only when Kind == KindElectionDataObject
}

func DesignSpecVersionId() ResourceId { return ResourceId{Kind: KindDesignSpecVersion} }

func EdoResourceId(edoType, key string) ResourceId {
	return ResourceId{Kind: KindElectionDataObject, Edo: EdoId{Type: edoType, Key: key}}
}

func (r ResourceId) String() string {
	if r.Kind == KindDesignSpecVersion {
		return r.Kind.String()
	}
	return r.Kind.String() + "(" + r.Edo.String() + ")"
}

// ResourceFormat is the representation a caller wants a ResourceId
// produced in, per §4.I.
type ResourceFormat int

const (
	FormatSliceBytes ResourceFormat = iota
	FormatConcreteType
	FormatValidElectionDataObject
)

func (f ResourceFormat) String() string {
	switch f {
	case FormatSliceBytes:
		return "SliceBytes"
	case FormatConcreteType:
		return "ConcreteType"
	case FormatValidElectionDataObject:
		return "ValidElectionDataObject"
	default:
		return fmt.Sprintf("ResourceFormat(%d)", int(f))
	}
}

// ResourceIdFormat is the full cache/graph key of §4.I: "Keyed by
// ResourceIdFormat { rid, fmt }".
type ResourceIdFormat struct {
	Rid ResourceId
	Fmt ResourceFormat
}

func (rf ResourceIdFormat) String() string { return rf.Rid.String() + "@" + rf.Fmt.String() }

func (rf ResourceIdFormat) cacheKey() string { return rf.String() }

// Resource is any artifact addressable by a ResourceIdFormat. Concrete
// wrapper types across the validate/eg packages implement it; ResourceTypeName
// identifies the concrete Go type for downcast-failure error messages, the
// tagged-capability check §9 substitutes for language-level RTTI.
type Resource interface {
	ResourceTypeName() string
}

// As downcasts r to T, returning a structured CouldntDowncastResource error
// (never a panic) if r does not actually hold a T, per §9's "if the target
// type does not match, the producer returns a structured
// CouldntDowncastResource."
func As[T Resource](r Resource) (T, error) {
	v, ok := r.(T)
	if !ok {
		var zero T
		return zero, &egerr.ResourceProductionError{
			Kind:  "CouldntDowncastResource",
			RidFmt: r.ResourceTypeName(),
		}
	}
	return v, nil
}

// Source records the provenance of a produced resource, per §4.I step 6.
type Source struct {
	Kind string // Constructed, Validated, UnValidated, SerializedFrom, ValidlyExtractedFrom, Inherent, ExampleData
	Fmt  ResourceFormat
}

func Constructed(fmt ResourceFormat) Source          { return Source{Kind: "Constructed", Fmt: fmt} }
func ValidatedSource(fmt ResourceFormat) Source      { return Source{Kind: "Validated", Fmt: fmt} }
func UnValidatedSource(fmt ResourceFormat) Source    { return Source{Kind: "UnValidated", Fmt: fmt} }
func SerializedFrom(fmt ResourceFormat) Source       { return Source{Kind: "SerializedFrom", Fmt: fmt} }
func ValidlyExtractedFrom(fmt ResourceFormat) Source { return Source{Kind: "ValidlyExtractedFrom", Fmt: fmt} }
func Inherent() Source                               { return Source{Kind: "Valid(Inherent)"} }
func ExampleData(fmt ResourceFormat) Source          { return Source{Kind: "ExampleData", Fmt: fmt} }
