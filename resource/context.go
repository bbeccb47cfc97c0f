package resource

import (
	"context"
	"crypto/rand"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/egcore/egds/egerr"
	"github.com/egcore/egds/log"
)

// DefaultCacheSize is the default capacity of a Ctx's memoizing cache.
// Eviction is a performance concern only: producers are cheap to re-invoke,
// and an evicted entry simply re-produces on next request (§4.I step 7
// requires within-operation memoization, not an unbounded cache).
const DefaultCacheSize = 4096

type cacheEntry struct {
	res Resource
	src Source
	err error
}

// Ctx is the resource production graph's context: the registry of
// producers, the memoizing cache, and a CSRNG that producers can read
// through CSRNG(). Guardian key generation and ballot encryption (packages
// guardian and ballotenc) do not read it: they sample from crypto/rand.Reader
// directly. Per §5's shared-resource policy, the cache is mutated only by its owning Ctx,
// the registry is read-only after construction, and CSRNG state is owned
// exclusively by this Ctx.
type Ctx struct {
	registry *Registry
	cache    *lru.Cache[string, cacheEntry]
	csrng    io.Reader
}

// NewCtx builds a Ctx over a frozen registry, a CSRNG (crypto/rand.Reader
// if nil), and a cache of the given capacity (DefaultCacheSize if <= 0).
func NewCtx(registry *Registry, csrng io.Reader, cacheSize int) (*Ctx, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, cacheEntry](cacheSize)
	if err != nil {
		return nil, err
	}
	registry.Freeze()
	if csrng == nil {
		csrng = rand.Reader
	}
	return &Ctx{registry: registry, cache: cache, csrng: csrng}, nil
}

// CSRNG returns the context's CSRNG, for producers that need to sample
// fresh randomness.
func (c *Ctx) CSRNG() io.Reader { return c.csrng }

// Produce resolves ridfmt under budget, per §4.I's resolution algorithm.
// This is the entry point described in §6: "produce_resource(ridfmt) ->
// (Arc<dyn Resource>, ResourceSource)".
func (c *Ctx) Produce(ctx context.Context, ridfmt ResourceIdFormat, budget Budget) (Resource, Source, error) {
	return c.produceOp(ctx, rootOp(ridfmt, budget))
}

// boundProduceResource implements ProduceResource for a specific Op in the
// chain, so a producer's dependency calls are tracked for recursion
// detection and budget accounting relative to that Op, per §4.I step 5.
type boundProduceResource struct {
	c      *Ctx
	parent *Op
}

func (b boundProduceResource) Produce(ctx context.Context, ridfmt ResourceIdFormat, budget Budget) (Resource, Source, error) {
	return b.c.produceOp(ctx, b.parent.child(ridfmt, budget))
}

// ProduceResourceFor returns a ProduceResource bound to op, the value
// passed to Validatable.TryValidateFrom and to Producer.MaybeProduce
// implementations that need to fetch their own dependencies.
func (c *Ctx) ProduceResourceFor(op *Op) ProduceResource { return boundProduceResource{c: c, parent: op} }

func (c *Ctx) produceOp(ctx context.Context, op *Op) (Resource, Source, error) {
	key := op.RidFmt.cacheKey()

	// Step 1: cache hit short-circuits everything else, including budget
	// and recursion checks — a cached failure is not retried.
	if entry, ok := c.cache.Get(key); ok {
		log.Debugw("resource: cache hit", "ridfmt", op.RidFmt.String())
		return entry.res, entry.src, entry.err
	}

	// Step 2: a cache-only budget cannot produce anything new.
	if op.Budget.CacheOnly() {
		err := &egerr.ResourceProductionError{Kind: "ProductionBudgetInsufficient", RidFmt: op.RidFmt.String()}
		c.store(key, nil, Source{}, err)
		return nil, Source{}, err
	}

	// Step 3: recursion detection over the ancestor chain.
	if op.ancestorRequested(op.RidFmt) {
		chain := chainStrings(op.Chain())
		err := &egerr.ResourceProductionError{Kind: "RecursionDetected", RidFmt: op.RidFmt.String(), Chain: chain}
		// Per §7: "A RecursionDetected is fatal to that operation but does
		// not poison the context" — it is still cached so a repeated
		// identical query within the same operation fails fast, but future
		// unrelated operations over this Ctx are unaffected.
		c.store(key, nil, Source{}, err)
		return nil, Source{}, err
	}

	decremented := *op
	decremented.Budget = op.Budget.Decrement()
	op = &decremented

	// Step 4: try each registered producer in order.
	for _, p := range c.registry.Producers() {
		log.Debugw("resource: dispatch producer", "producer", p.Name(), "ridfmt", op.RidFmt.String())
		res, src, ok, err := p.MaybeProduce(ctx, c, op)
		if err != nil {
			log.Warnw("resource: producer failed", "producer", p.Name(), "ridfmt", op.RidFmt.String(), "err", err)
			wrapped := wrapProductionError(op.RidFmt, err)
			c.store(key, nil, Source{}, wrapped)
			return nil, Source{}, wrapped
		}
		if !ok {
			continue
		}
		log.Debugw("resource: produced", "producer", p.Name(), "ridfmt", op.RidFmt.String(), "source", src.Kind)
		c.store(key, res, src, nil)
		return res, src, nil
	}

	notFound := &egerr.ResourceProductionError{Kind: "NoProducerFound", RidFmt: op.RidFmt.String()}
	c.store(key, nil, Source{}, notFound)
	return nil, Source{}, notFound
}

func wrapProductionError(ridfmt ResourceIdFormat, err error) error {
	if _, ok := err.(*egerr.ResourceProductionError); ok {
		return err
	}
	return &egerr.ResourceProductionError{Kind: "DependencyProductionError", RidFmt: ridfmt.String(), Cause: err}
}

func (c *Ctx) store(key string, res Resource, src Source, err error) {
	c.cache.Add(key, cacheEntry{res: res, src: src, err: err})
}

// Seed pre-populates the cache with a resource a caller already holds
// in-process (e.g. test-harness example data, or a deserialized file the
// out-of-scope filesystem collaborator already loaded), tagged with the
// given Source so its provenance is recorded like any produced resource —
// typically ExampleData(fmt) per §4.I step 6's source-tracking list. A
// later Produce for the same ridfmt returns this value without invoking any
// producer.
func (c *Ctx) Seed(ridfmt ResourceIdFormat, res Resource, src Source) {
	c.store(ridfmt.cacheKey(), res, src, nil)
}

// ProduceMany resolves several resources concurrently via an errgroup
// fan-out, each as its own top-level request under the same budget (the
// budget is not divided among them), returning results in request order so
// concurrency internal to ProduceMany never surfaces as nondeterministic
// ordering (SPEC_FULL.md's reconciliation of §5's ordering guarantees with
// concurrent production).
func (c *Ctx) ProduceMany(ctx context.Context, budget Budget, ridfmts ...ResourceIdFormat) ([]Resource, error) {
	results := make([]Resource, len(ridfmts))
	g, gctx := errgroup.WithContext(ctx)
	for i, rf := range ridfmts {
		i, rf := i, rf
		g.Go(func() error {
			res, _, err := c.Produce(gctx, rf, budget)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
