package osmtopo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"
)

// sample.osm layout: ways 10 [1 2 3] and 11 [3 4] are mergeable
// residential roads, way 12 is a building (not a road), way 14 has a
// single node, way 13 references node 99 which is absent from the file,
// way 15 [5 6] is an isolated road segment.

func sampleSource() *FileSource {
	filter := RoadFilter{EntityName: "highway"}
	return NewFileSource("./sample.osm", filter, false)
}

func drainWays(t *testing.T, scanner WayScanner) []*Way {
	ways := []*Way{}
	for scanner.Scan() {
		ways = append(ways, scanner.Way())
	}
	require.NoError(t, scanner.Err())
	require.NoError(t, scanner.Close())
	return ways
}

func TestFileSourceScanWays(t *testing.T) {
	source := sampleSource()
	scanner, err := source.ScanWays()
	require.NoError(t, err)
	ways := drainWays(t, scanner)

	ids := []osm.WayID{}
	for _, way := range ways {
		ids = append(ids, way.ID)
		require.Nil(t, way.Geom, "first pass must not resolve geometry")
	}
	// Way 12 is filtered out (no highway tag), way 14 is malformed
	require.Equal(t, []osm.WayID{10, 11, 13, 15}, ids)
	require.Equal(t, []osm.NodeID{1, 2, 3}, ways[0].Nodes)
	require.Equal(t, "residential", ways[0].Tags.Find("highway"))
}

func TestFileSourceScanWaysTagFilter(t *testing.T) {
	filter := RoadFilter{EntityName: "highway", Tags: []string{"residential"}}
	source := NewFileSource("./sample.osm", filter, false)
	scanner, err := source.ScanWays()
	require.NoError(t, err)
	ways := drainWays(t, scanner)

	ids := []osm.WayID{}
	for _, way := range ways {
		ids = append(ids, way.ID)
	}
	// Way 15 is unclassified and must not pass the residential-only filter
	require.Equal(t, []osm.WayID{10, 11, 13}, ids)
}

func TestFileSourceResolvedWays(t *testing.T) {
	// ScanResolvedWays without a prior ScanWays exercises the fallback
	// ways scan inside loadLocations
	source := sampleSource()
	scanner, err := source.ScanResolvedWays()
	require.NoError(t, err)

	ways := []*Way{}
	for scanner.Scan() {
		ways = append(ways, scanner.Way())
	}
	require.NoError(t, scanner.Err())

	ids := []osm.WayID{}
	for _, way := range ways {
		ids = append(ids, way.ID)
		require.Len(t, way.Geom, len(way.Nodes))
	}
	// Way 13 references node 99 with no location, way 14 is malformed
	require.Equal(t, []osm.WayID{10, 11, 15}, ids)
	require.Equal(t, orb.Point{37.61, 55.75}, ways[0].Geom[0])

	reporter, ok := scanner.(SkipReporter)
	require.True(t, ok)
	require.Equal(t, 2, reporter.Skipped())
	require.NoError(t, scanner.Close())
}

func TestFileSourceConvert(t *testing.T) {
	source := sampleSource()
	edges := &collectEdgeWriter{}
	junctions := &collectJunctionWriter{}

	stats, err := NewConverter().Convert(source, edges, junctions)
	require.NoError(t, err)

	require.Equal(t, 4, stats.Ways)
	require.Equal(t, 2, stats.SkippedWays, "malformed way 14 and unresolved way 13 must be counted")
	require.Equal(t, 1, stats.Edges)
	require.Equal(t, 1, stats.DanglingFragments, "chain [1 2 3 4] never reaches a junction at node 4")
	require.Equal(t, 0, stats.PromotedJunctions)

	// Junctions: dead ends 1, 5, 6 and the dangling reference 99
	require.Equal(t, 4, stats.Junctions)

	all := edges.all()
	require.Len(t, all, 1)
	require.Equal(t, osm.WayID(15), all[0].WayID)
	require.Equal(t, osm.NodeID(5), all[0].SourceNodeID)
	require.Equal(t, osm.NodeID(6), all[0].TargetNodeID)

	// Node 99 never resolves, so no junction record is written for it
	for _, record := range junctions.records {
		require.NotEqual(t, osm.NodeID(99), record.NodeID)
	}
}
