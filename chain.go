package osmtopo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// ErrNoCommonNodes Concatenation has been attempted on two chains which do
// not share an endpoint. Indicates a corrupted open fragment table.
var ErrNoCommonNodes = errors.New("can't concatenate chains: no common nodes")

// UnknownWayID Source way identifier of a chain spliced from differently
// sourced chains
const UnknownWayID = osm.WayID(0)

// Chain Contiguous sub-polyline under construction during merging. Refs
// and geometry are parallel: one point per node reference. WayID is kept
// while the chain still belongs to a single source way and reset to
// UnknownWayID once two differently-sourced chains are joined.
type Chain struct {
	refs  []osm.NodeID
	geom  orb.LineString
	wayID osm.WayID
	attrs AttributeSet
}

// NewChain Builds a chain over a resolved way slice. Refs and geom must be
// of equal length.
func NewChain(refs []osm.NodeID, geom orb.LineString, wayID osm.WayID, attrs AttributeSet) *Chain {
	return &Chain{refs: refs, geom: geom, wayID: wayID, attrs: attrs}
}

// Len Number of points in the chain
func (chain *Chain) Len() int {
	return len(chain.refs)
}

// Start First node reference
func (chain *Chain) Start() osm.NodeID {
	return chain.refs[0]
}

// End Last node reference
func (chain *Chain) End() osm.NodeID {
	return chain.refs[len(chain.refs)-1]
}

// Endpoints Both terminal node references, in chain order
func (chain *Chain) Endpoints() (osm.NodeID, osm.NodeID) {
	return chain.Start(), chain.End()
}

// PointAt Node reference at given index
func (chain *Chain) PointAt(i int) osm.NodeID {
	return chain.refs[i]
}

// Geom Chain geometry. Callers must not mutate the returned line.
func (chain *Chain) Geom() orb.LineString {
	return chain.geom
}

// WayID Source way identifier, UnknownWayID when the chain has been
// spliced from several ways
func (chain *Chain) WayID() osm.WayID {
	return chain.wayID
}

// Attributes Retained attribute values of the chain
func (chain *Chain) Attributes() AttributeSet {
	return chain.attrs
}

// Slice Returns a new chain over the half-open range [from, to) of points,
// preserving source way identifier and attributes. The underlying arrays
// are shared with the parent chain.
func (chain *Chain) Slice(from, to int) *Chain {
	return &Chain{
		refs:  chain.refs[from:to],
		geom:  chain.geom[from:to],
		wayID: chain.wayID,
		attrs: chain.attrs,
	}
}

// Reverse Returns a copy of the chain with points in opposite order
func (chain *Chain) Reverse() *Chain {
	n := len(chain.refs)
	refs := make([]osm.NodeID, n)
	geom := make(orb.LineString, n)
	for i := 0; i < n; i++ {
		refs[i] = chain.refs[n-1-i]
		geom[i] = chain.geom[n-1-i]
	}
	return &Chain{refs: refs, geom: geom, wayID: chain.wayID, attrs: chain.attrs}
}

// CanJoin Chains may be concatenated only when their attribute sets are
// compatible
func (chain *Chain) CanJoin(other *Chain) bool {
	return chain.attrs.Compatible(other.attrs)
}

// CommonNodes Endpoints of the chain which are also endpoints of the other
// chain
func (chain *Chain) CommonNodes(other *Chain) []osm.NodeID {
	otherStart, otherEnd := other.Endpoints()
	common := []osm.NodeID{}
	if chain.Start() == otherStart || chain.Start() == otherEnd {
		common = append(common, chain.Start())
	}
	if chain.End() == otherStart || chain.End() == otherEnd {
		common = append(common, chain.End())
	}
	return common
}

// Concat Joins two chains sharing an endpoint into one. Orientation is
// determined by which endpoints match: the other chain or the chain itself
// is reversed (or operands swapped) so that the shared node sits in the
// middle. Attributes are inherited from the left operand; callers only
// ever join compatible chains. Returns ErrNoCommonNodes when no endpoint
// pair matches.
func (chain *Chain) Concat(other *Chain) (*Chain, error) {
	switch {
	case chain.End() == other.Start():
		return chain.append(other), nil
	case chain.End() == other.End():
		return chain.append(other.Reverse()), nil
	case chain.Start() == other.Start():
		return chain.Reverse().append(other), nil
	case chain.Start() == other.End():
		return other.append(chain), nil
	}
	return nil, ErrNoCommonNodes
}

// append Direct tail-to-head join; the shared node is taken once.
func (chain *Chain) append(other *Chain) *Chain {
	refs := make([]osm.NodeID, 0, len(chain.refs)+len(other.refs)-1)
	refs = append(refs, chain.refs...)
	refs = append(refs, other.refs[1:]...)
	geom := make(orb.LineString, 0, len(chain.geom)+len(other.geom)-1)
	geom = append(geom, chain.geom...)
	geom = append(geom, other.geom[1:]...)
	wayID := chain.wayID
	if chain.wayID != other.wayID {
		wayID = UnknownWayID
	}
	return &Chain{refs: refs, geom: geom, wayID: wayID, attrs: chain.attrs}
}

// String Pretty printing for Chain
func (chain *Chain) String() string {
	inter := "-"
	if len(chain.refs) > 2 {
		inter = fmt.Sprintf("-(%d)-", len(chain.refs)-2)
	}
	return fmt.Sprintf("<Chain %d%s%d>", chain.Start(), inter, chain.End())
}
