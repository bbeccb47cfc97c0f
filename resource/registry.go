package resource

import "context"

// ProduceResource is the capability a producer function receives to pull
// further resources (its own dependencies) from the same graph/context,
// per §4.H "given an XInfo plus a ProduceResource context, obtain any
// required validated dependencies via the context," and §4.I step 5 "a
// producer may recursively call produce_resource on the same context for
// dependencies."
type ProduceResource interface {
	Produce(ctx context.Context, ridfmt ResourceIdFormat, budget Budget) (Resource, Source, error)
}

// Validatable is implemented by every EDO's unvalidated Info form (§4.H):
// TryValidateFrom checks type-specific invariants, resolving any
// dependency EDOs through pr, and returns the corresponding Validated value
// or a structured error.
type Validatable interface {
	TryValidateFrom(ctx context.Context, pr ProduceResource) (Validated, error)
}

// Validated is implemented by every EDO's validated form (§4.H): Info
// returns the structural inverse of TryValidateFrom, the round-trip §4.H
// and §8 require.
type Validated interface {
	Resource
	Info() Validatable
}

// CanonicalEncodable is implemented by validated EDOs that participate in
// the canonical-bytes surface (§4.J); SlicebytesFromValidated depends on
// it, not on any specific domain package.
type CanonicalEncodable interface {
	CanonicalBytes() ([]byte, error)
}

// Producer is one entry in a ResourceProducerRegistry, per §4.I step 4:
// "For each registered producer, in deterministic order, call
// maybe_produce(rp_op). The first Some(result) is taken."
type Producer interface {
	// Name identifies the producer for debug logging and registry ordering
	// diagnostics.
	Name() string
	// MaybeProduce attempts to produce op.RidFmt. ok=false, err=nil means
	// "this producer does not apply; try the next one" (§4.I step 4's
	// "producers that return None are silently skipped").
	MaybeProduce(ctx context.Context, c *Ctx, op *Op) (res Resource, src Source, ok bool, err error)
}

// ProducerFunc adapts a plain function to the Producer interface.
type ProducerFunc struct {
	name string
	fn   func(ctx context.Context, c *Ctx, op *Op) (Resource, Source, bool, error)
}

// NewProducerFunc builds a Producer from a name and a maybe-produce function.
func NewProducerFunc(name string, fn func(ctx context.Context, c *Ctx, op *Op) (Resource, Source, bool, error)) Producer {
	return ProducerFunc{name: name, fn: fn}
}

func (p ProducerFunc) Name() string { return p.name }

func (p ProducerFunc) MaybeProduce(ctx context.Context, c *Ctx, op *Op) (Resource, Source, bool, error) {
	return p.fn(ctx, c, op)
}

// Registry holds an ordered, append-only set of producers, per §9's "global
// mutable state exists only as the ResourceProducerRegistry built by
// collecting statically-submitted registration functions at startup; after
// construction it is read-only." Registration order is call order, matching
// the teacher's circuits artifact registries (appended-to in init() order,
// not sorted by any key).
type Registry struct {
	producers []Producer
	frozen    bool
}

// NewRegistry builds an empty, mutable registry.
func NewRegistry() *Registry { return &Registry{} }

// Register appends a producer. Register panics if called after Freeze, per
// §9's read-only-after-construction contract.
func (r *Registry) Register(p Producer) {
	if r.frozen {
		panic("resource: Register called on a frozen Registry")
	}
	r.producers = append(r.producers, p)
}

// Freeze marks the registry read-only. Subsequent Register calls panic.
func (r *Registry) Freeze() { r.frozen = true }

// Producers returns the registered producers in registration order.
func (r *Registry) Producers() []Producer {
	out := make([]Producer, len(r.producers))
	copy(out, r.producers)
	return out
}
