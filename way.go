package osmtopo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Way Single polyline of the road network as it comes from the source
// dataset. Geom is nil during the degree counting pass and carries one
// point per node reference once locations have been resolved.
type Way struct {
	ID    osm.WayID
	Nodes []osm.NodeID
	Geom  orb.LineString
	Tags  osm.Tags
}

// Valid Reports whether the way is well-formed: at least two node
// references and, when geometry is present, one coordinate per reference.
func (way *Way) Valid() bool {
	if len(way.Nodes) < 2 {
		return false
	}
	if way.Geom != nil && len(way.Geom) != len(way.Nodes) {
		return false
	}
	return true
}

// RoadFilter Allows to filter ways by certain tags from OSM data
type RoadFilter struct {
	EntityName string // Currently we support 'highway' only
	Tags       []string
}

// CheckTag Checks if incoming tag is represented in configuration
func (cfg *RoadFilter) CheckTag(tag string) bool {
	for i := range cfg.Tags {
		if cfg.Tags[i] == tag {
			return true
		}
	}
	return false
}

// Matches Reports whether given tags mark a road. With empty Tags list the
// mere presence of the entity key is enough.
func (cfg *RoadFilter) Matches(tags osm.Tags) bool {
	value := tags.Find(cfg.EntityName)
	if value == "" {
		return false
	}
	if len(cfg.Tags) == 0 {
		return true
	}
	return cfg.CheckTag(value)
}
