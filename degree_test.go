package osmtopo

import (
	"testing"

	"github.com/paulmach/osm"
)

func TestDegreeInteriorPointIsNotJunction(t *testing.T) {
	counter := newDegreeCounter()
	counter.add([]osm.NodeID{1, 2, 3})
	junctions := counter.junctions()
	if _, ok := junctions[2]; ok {
		t.Errorf("Interior point of a single way must not be a junction")
	}
	if count := junctions[1]; count != 1 {
		t.Errorf("Dead end must have count 1, but got %d", count)
	}
	if count := junctions[3]; count != 1 {
		t.Errorf("Dead end must have count 1, but got %d", count)
	}
}

func TestDegreeSharedEndpointOfTwoWays(t *testing.T) {
	counter := newDegreeCounter()
	counter.add([]osm.NodeID{10, 11, 12})
	counter.add([]osm.NodeID{12, 13, 14})
	junctions := counter.junctions()
	if _, ok := junctions[12]; ok {
		t.Errorf("Shared endpoint of exactly two ways must not be a junction (artificial split)")
	}
}

func TestDegreeThreeWayEndpoint(t *testing.T) {
	counter := newDegreeCounter()
	counter.add([]osm.NodeID{1, 2, 3})
	counter.add([]osm.NodeID{3, 4, 5})
	counter.add([]osm.NodeID{3, 6})
	junctions := counter.junctions()
	count, ok := junctions[3]
	if !ok {
		t.Errorf("Endpoint shared by three way ends must be a junction")
	}
	if count != 3 {
		t.Errorf("Count of node 3 must be 3, but got %d", count)
	}
}

func TestDegreeInteriorCrossing(t *testing.T) {
	counter := newDegreeCounter()
	counter.add([]osm.NodeID{1, 2, 3})
	counter.add([]osm.NodeID{4, 2, 5})
	junctions := counter.junctions()
	count, ok := junctions[2]
	if !ok {
		t.Errorf("Point interior to two ways must be a junction")
	}
	if count != 4 {
		t.Errorf("Count of node 2 must be 4, but got %d", count)
	}
}

func TestDegreeWayEndingAtInteriorPoint(t *testing.T) {
	counter := newDegreeCounter()
	counter.add([]osm.NodeID{1, 2, 3})
	counter.add([]osm.NodeID{4, 2})
	junctions := counter.junctions()
	count, ok := junctions[2]
	if !ok {
		t.Errorf("Interior point touched by another way end must be a junction")
	}
	if count != 3 {
		t.Errorf("Count of node 2 must be 3, but got %d", count)
	}
}

func TestDegreeRingWay(t *testing.T) {
	counter := newDegreeCounter()
	counter.add([]osm.NodeID{1, 2, 3, 1})
	junctions := counter.junctions()
	if _, ok := junctions[1]; ok {
		t.Errorf("Closure point of an isolated ring must not be a junction")
	}
	if len(junctions) != 0 {
		t.Errorf("Isolated ring must produce no junctions, but got %d", len(junctions))
	}
}
