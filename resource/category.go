package resource

// Category classifies a ResourceId by access/secrecy, mirroring the
// original Rust implementation's ResourceCategory (the same corpus
// electionguard-rust draws "SECRET_for_guardian_N"/"before_voting_begins"/
// "before_voting_ends"/"tally" style labels from). The filesystem path
// mapping that category fed in the original is out of scope here (§1
// non-goal: "filesystem layout conventions"), but the classification itself
// is not a filesystem concern: it is the input the resource graph uses to
// decide, at the SliceBytes producer, whether a resource is ever allowed to
// leave the process as serialized bytes.
type Category int

const (
	// CategoryPublished covers data intended to be published either before
	// voting begins or during/after voting: manifests, hashes, public keys,
	// ballots, tallies.
	CategoryPublished Category = iota
	// CategorySecretForGuardian marks a resource that is a secret held by a
	// specific Guardian (a GuardianSecretKey) and must never be serialized
	// to public outputs, per §3's "Owned by that guardian alone; must never
	// be serialized to public outputs."
	CategorySecretForGuardian
	// CategoryGeneratedTestData marks data generated for testing only, with
	// no secrecy requirement.
	CategoryGeneratedTestData
)

func (c Category) String() string {
	switch c {
	case CategoryPublished:
		return "Published"
	case CategorySecretForGuardian:
		return "SecretForGuardian"
	case CategoryGeneratedTestData:
		return "GeneratedTestData"
	default:
		return "Category(unknown)"
	}
}

// secretEdoTypes names the EDO types whose Category is always
// CategorySecretForGuardian regardless of disambiguating key: only the
// guardian secret key (the secret polynomial coefficients). Encrypted shares
// are not in the set and are CategoryPublished.
var secretEdoTypes = map[string]bool{
	EdoGuardianSecretKey: true,
}

// CategoryFor reports rid's access category. A design-spec-version marker
// has no secrecy concerns and is always CategoryPublished.
func CategoryFor(rid ResourceId) Category {
	if rid.Kind != KindElectionDataObject {
		return CategoryPublished
	}
	if secretEdoTypes[rid.Edo.Type] {
		return CategorySecretForGuardian
	}
	return CategoryPublished
}
