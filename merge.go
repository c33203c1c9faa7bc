package osmtopo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// promotedUseCount A point promoted at an attribute discontinuity had a
// pass-1 count of exactly 2, otherwise it would have been a junction
// already.
const promotedUseCount = 2

// openFragment Chain registered in the open fragment table, waiting for a
// continuation. Fragments carry explicit ids so that "is this the same
// pending chain" never relies on pointer identity.
type openFragment struct {
	id    uint64
	chain *Chain
}

// mergeEngine Online stitching of way fragments into maximal edges. Ways
// are split at interior junctions and each sub-chain is either emitted (both
// ends are junctions), merged with a previously seen open fragment sharing
// an endpoint, or parked in the open fragment table until a continuation
// arrives. The junction set may only grow during the pass: an attribute
// discontinuity at a degree-2 point promotes that point into a junction.
type mergeEngine struct {
	junctions      map[osm.NodeID]int32
	junctionCoords map[osm.NodeID]orb.Point
	open           map[osm.NodeID]openFragment
	keepAttributes []string
	lastFragmentID uint64
	emit           func(*Chain) error
}

func newMergeEngine(junctions map[osm.NodeID]int32, keepAttributes []string, emit func(*Chain) error) *mergeEngine {
	return &mergeEngine{
		junctions:      junctions,
		junctionCoords: make(map[osm.NodeID]orb.Point),
		open:           make(map[osm.NodeID]openFragment),
		keepAttributes: keepAttributes,
		emit:           emit,
	}
}

func (engine *mergeEngine) isJunction(ref osm.NodeID) bool {
	_, ok := engine.junctions[ref]
	return ok
}

// processWay Splits a resolved way at interior junctions and feeds every
// sub-chain through the merge procedure. Zero-length two-point sub-chains
// are dropped silently.
func (engine *mergeEngine) processWay(way *Way) error {
	for i, ref := range way.Nodes {
		if engine.isJunction(ref) {
			engine.junctionCoords[ref] = way.Geom[i]
		}
	}

	chain := NewChain(way.Nodes, way.Geom, way.ID, NewAttributeSet(engine.keepAttributes, way.Tags))

	prev := 0
	for i := 1; i < chain.Len(); i++ {
		if engine.isJunction(chain.PointAt(i)) && i > prev {
			if err := engine.submit(chain.Slice(prev, i+1)); err != nil {
				return err
			}
			prev = i
		}
	}
	if prev < chain.Len()-1 {
		return engine.submit(chain.Slice(prev, chain.Len()))
	}
	return nil
}

func (engine *mergeEngine) submit(chain *Chain) error {
	if chain.Len() == 2 && chain.Geom()[0] == chain.Geom()[1] {
		// Degenerate segment, not worth an edge
		return nil
	}
	return engine.mergeChain(chain)
}

// mergeChain Repeatedly concatenates the chain with open fragments sharing
// an endpoint. The recursion of the obvious formulation is flattened into a
// loop: every successful merge strictly grows the chain, and the loop exits
// as soon as no neighbour matches or both endpoints are junctions.
func (engine *mergeEngine) mergeChain(chain *Chain) error {
	id := engine.nextFragmentID()
	for {
		if chain.Start() == chain.End() {
			// Ring with no interior junction, finalize as self-loop
			return engine.emit(chain)
		}
		if engine.isJunction(chain.Start()) && engine.isJunction(chain.End()) {
			return engine.emit(chain)
		}

		neighbour, ok := engine.findNeighbour(chain, id)
		if !ok {
			engine.park(id, chain)
			return nil
		}

		engine.unpark(id, chain)
		engine.unpark(neighbour.id, neighbour.chain)

		if chain.CanJoin(neighbour.chain) {
			merged, err := chain.Concat(neighbour.chain)
			if err != nil {
				return errors.Wrapf(err, "merging %s with %s", chain, neighbour.chain)
			}
			chain = merged
			id = engine.nextFragmentID()
			continue
		}

		// Attribute discontinuity: the shared point has degree 2 but the
		// chains cannot be merged across it, so it becomes a junction.
		// Both chains are then finalized independently; the promoted
		// junction keeps them from ever meeting again.
		for _, ref := range chain.CommonNodes(neighbour.chain) {
			engine.promote(ref)
		}
		engine.recordEndpointCoords(chain)
		engine.recordEndpointCoords(neighbour.chain)
		if err := engine.mergeChain(neighbour.chain); err != nil {
			return err
		}
		return engine.mergeChain(chain)
	}
}

// findNeighbour Looks up an open fragment other than the current one
// touching either endpoint of the chain.
func (engine *mergeEngine) findNeighbour(chain *Chain, id uint64) (openFragment, bool) {
	start, end := chain.Endpoints()
	if fragment, ok := engine.open[start]; ok && fragment.id != id {
		return fragment, true
	}
	if fragment, ok := engine.open[end]; ok && fragment.id != id {
		return fragment, true
	}
	return openFragment{}, false
}

// park Registers the chain at each of its non-junction endpoints
func (engine *mergeEngine) park(id uint64, chain *Chain) {
	start, end := chain.Endpoints()
	if !engine.isJunction(start) {
		engine.open[start] = openFragment{id: id, chain: chain}
	}
	if !engine.isJunction(end) {
		engine.open[end] = openFragment{id: id, chain: chain}
	}
}

// unpark Removes table entries still pointing at the given fragment
func (engine *mergeEngine) unpark(id uint64, chain *Chain) {
	start, end := chain.Endpoints()
	if fragment, ok := engine.open[start]; ok && fragment.id == id {
		delete(engine.open, start)
	}
	if fragment, ok := engine.open[end]; ok && fragment.id == id {
		delete(engine.open, end)
	}
}

// promote Grows the junction set. Monotonic: once a point is a junction it
// never leaves the set.
func (engine *mergeEngine) promote(ref osm.NodeID) {
	if _, ok := engine.junctions[ref]; !ok {
		engine.junctions[ref] = promotedUseCount
	}
	delete(engine.open, ref)
}

func (engine *mergeEngine) recordEndpointCoords(chain *Chain) {
	start, end := chain.Endpoints()
	if engine.isJunction(start) {
		engine.junctionCoords[start] = chain.Geom()[0]
	}
	if engine.isJunction(end) {
		engine.junctionCoords[end] = chain.Geom()[chain.Len()-1]
	}
}

func (engine *mergeEngine) nextFragmentID() uint64 {
	engine.lastFragmentID++
	return engine.lastFragmentID
}

// finalize Drains the open fragment table after the last way. Survivors
// mean the input graph was inconsistent (dangling references); they are
// returned for diagnostics and excluded from output.
func (engine *mergeEngine) finalize() []*Chain {
	seen := make(map[uint64]struct{})
	dangling := []*Chain{}
	for _, fragment := range engine.open {
		if _, ok := seen[fragment.id]; ok {
			continue
		}
		seen[fragment.id] = struct{}{}
		dangling = append(dangling, fragment.chain)
	}
	engine.open = make(map[osm.NodeID]openFragment)
	return dangling
}
