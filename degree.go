package osmtopo

import (
	"github.com/paulmach/osm"
)

// degreeCounter Accumulates per-node occurrence counts over the way
// stream. Node ids are sparse over the whole OSM id space, hence a map
// and not an array.
type degreeCounter struct {
	counts map[osm.NodeID]int32
}

func newDegreeCounter() *degreeCounter {
	return &degreeCounter{
		counts: make(map[osm.NodeID]int32),
	}
}

// add Counts one way: terminal references gain 1, interior references
// gain 2. An interior point of a single way thus totals exactly 2, and so
// does the shared endpoint of exactly two ways: artificial way splits in
// the source data are absorbed instead of becoming junctions.
func (counter *degreeCounter) add(refs []osm.NodeID) {
	last := len(refs) - 1
	counter.counts[refs[0]]++
	counter.counts[refs[last]]++
	for _, ref := range refs[1:last] {
		counter.counts[ref] += 2
	}
}

// junctions Derives the junction set: every node whose total count differs
// from 2. Counts are retained for the junction records output; the counter
// itself can be discarded afterwards.
func (counter *degreeCounter) junctions() map[osm.NodeID]int32 {
	result := make(map[osm.NodeID]int32)
	for ref, count := range counter.counts {
		if count != 2 {
			result[ref] = count
		}
	}
	return result
}
