package osmtopo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// EdgeID Monotonic sequence number assigned to edges in emission order
type EdgeID int64

// Edge Finalized chain whose both endpoints are junctions; the unit of
// output. WayID is UnknownWayID when the edge was spliced from several
// source ways.
type Edge struct {
	ID           EdgeID
	WayID        osm.WayID
	SourceNodeID osm.NodeID
	TargetNodeID osm.NodeID
	Geom         orb.LineString
	Attributes   AttributeSet
}

// LengthMeters Great-circle length of the edge geometry
func (edge *Edge) LengthMeters() float64 {
	return lineLengthMeters(edge.Geom)
}

// JunctionRecord Junction with its resolved coordinate and occurrence
// count from the degree counting pass (2 for points promoted at attribute
// discontinuities).
type JunctionRecord struct {
	NodeID   osm.NodeID
	Geom     orb.Point
	UseCount int32
}

// EdgeWriter Receives finished edges in fixed-size batches
type EdgeWriter interface {
	WriteEdges(edges []Edge) error
}

// JunctionWriter Receives all junction records in one call after the
// merge pass completes
type JunctionWriter interface {
	WriteJunctions(junctions []JunctionRecord) error
}
