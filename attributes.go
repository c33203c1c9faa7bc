package osmtopo

import (
	"github.com/paulmach/osm"
)

// DefaultAttributes Attribute names retained on output edges when nothing
// else has been configured
var DefaultAttributes = []string{"highway", "lanes", "maxspeed", "maxspeed_practical", "oneway"}

// AttributeSet Ordered values for a fixed list of retained tag keys. Two
// sets built over the same key list are compatible iff their value vectors
// are equal; chains with incompatible sets never merge.
type AttributeSet struct {
	keys   []string
	values []string
}

// NewAttributeSet Extracts values for given keys from OSM tags. The keys
// slice is shared between all sets built from the same configuration.
func NewAttributeSet(keys []string, tags osm.Tags) AttributeSet {
	values := make([]string, len(keys))
	for i := range keys {
		values[i] = tags.Find(keys[i])
	}
	return AttributeSet{keys: keys, values: values}
}

// Compatible Reports whether both sets carry identical values. An empty
// key list makes every pair of sets compatible, which disables
// attribute-based splitting entirely.
func (attrs AttributeSet) Compatible(other AttributeSet) bool {
	if len(attrs.values) != len(other.values) {
		return false
	}
	for i := range attrs.values {
		if attrs.values[i] != other.values[i] {
			return false
		}
	}
	return true
}

// Value Returns the retained value for a key, empty string when the key is
// not retained or the source way had no such tag.
func (attrs AttributeSet) Value(key string) string {
	for i := range attrs.keys {
		if attrs.keys[i] == key {
			return attrs.values[i]
		}
	}
	return ""
}

// Values Returns retained values in key-list order.
func (attrs AttributeSet) Values() []string {
	return attrs.values
}
