package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LdDl/ch"
	"github.com/osmtopo/osmtopo"
)

var (
	osmFileName = flag.String("file", "my_graph.osm.pbf", "Filename of *.osm.pbf (or *.osm / *.xml) file")
	out         = flag.String("out", "my_graph.csv", "Filename of 'Comma-Separated Values' (CSV) formatted file for edges")
	vertices    = flag.String("vertices", "", "Filename of CSV file for junctions (node_id, geom, count). Empty = do not export junctions")
	tagStr      = flag.String("tags", "", "Set of needed 'highway' tag values separated by commas. Empty = any road")
	attrStr     = flag.String("attrs", strings.Join(osmtopo.DefaultAttributes, ","), "Set of way attributes to retain on edges (separated by commas). Empty string disables attribute-based splitting")
	geomFormat  = flag.String("geomf", "wkt", "Format of output geometry. Expected values: wkt / geojson")
	units       = flag.String("units", "km", "Units of weights for contraction. Expected values: km for kilometers / m for meters")
	batchSize   = flag.Int("batch", osmtopo.DefaultBatchSize, "Number of edge rows per output flush")
	verbose     = flag.Bool("verbose", true, "Print progress")
	contract    = flag.Bool("contract", false, "Prepare contraction hierarchies and export shortcuts?")
)

func main() {
	flag.Parse()

	keepAttributes := []string{}
	if *attrStr != "" {
		keepAttributes = strings.Split(*attrStr, ",")
	}
	roadTags := []string{}
	if *tagStr != "" {
		roadTags = strings.Split(*tagStr, ",")
	}
	filter := osmtopo.RoadFilter{
		EntityName: "highway", // Currently we do not support others
		Tags:       roadTags,
	}

	source := osmtopo.NewFileSource(*osmFileName, filter, *verbose)
	converter := osmtopo.NewConverter(
		osmtopo.WithKeepAttributes(keepAttributes),
		osmtopo.WithBatchSize(*batchSize),
		osmtopo.WithVerbose(*verbose),
	)

	/* Edges file */
	fileEdges, err := os.Create(*out)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer fileEdges.Close()
	writerEdges := csv.NewWriter(fileEdges)
	defer writerEdges.Flush()
	writerEdges.Comma = ';'
	header := append([]string{"way_id", "edge_id", "start_node", "end_node", "geom"}, keepAttributes...)
	if err := writerEdges.Write(header); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	graph := &ch.Graph{}
	edgeSink := &csvEdgeWriter{
		writer:     writerEdges,
		geomFormat: strings.ToLower(*geomFormat),
		units:      strings.ToLower(*units),
		graph:      graph,
		contract:   *contract,
	}

	var junctionSink osmtopo.JunctionWriter
	if *vertices != "" {
		fileVertices, err := os.Create(*vertices)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer fileVertices.Close()
		writerVertices := csv.NewWriter(fileVertices)
		defer writerVertices.Flush()
		writerVertices.Comma = ';'
		if err := writerVertices.Write([]string{"node_id", "geom", "count"}); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		junctionSink = &csvJunctionWriter{
			writer:     writerVertices,
			geomFormat: strings.ToLower(*geomFormat),
		}
	}

	stats, err := converter.Convert(source, edgeSink, junctionSink)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if edgeSink.err != nil {
		fmt.Println(edgeSink.err)
		os.Exit(1)
	}
	fmt.Printf("Ways: %d (skipped: %d)\nJunctions: %d (+%d promoted)\nEdges: %d\nDangling fragments: %d\n",
		stats.Ways, stats.SkippedWays, stats.Junctions, stats.PromotedJunctions, stats.Edges, stats.DanglingFragments)

	if *contract {
		fmt.Println("Starting contraction process....")
		st := time.Now()
		graph.PrepareContractionHierarchies()
		fmt.Printf("Done contraction process in %v\n", time.Since(st))
		fnamePart := strings.Split(*out, ".csv")
		fnameShortcuts := fnamePart[0] + "_shortcuts.csv"
		// 	from_vertex_id - int64, ID of source vertex
		// 	to_vertex_id - int64, ID of target vertex
		// 	weight - float64, Weight of an edge
		// 	via_vertex_id - int64, ID of vertex through which the shortcut exists
		if err := graph.ExportShortcutsToFile(fnameShortcuts); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
}

// csvEdgeWriter Writes edge batches as CSV rows and, when contraction has
// been requested, mirrors the graph topology into ch.Graph.
type csvEdgeWriter struct {
	writer     *csv.Writer
	geomFormat string
	units      string
	graph      *ch.Graph
	contract   bool
	err        error
}

func (sink *csvEdgeWriter) WriteEdges(edges []osmtopo.Edge) error {
	for i := range edges {
		edge := &edges[i]
		wayID := ""
		if edge.WayID != osmtopo.UnknownWayID {
			wayID = fmt.Sprintf("%d", edge.WayID)
		}
		geomStr := ""
		if sink.geomFormat == "geojson" {
			geomStr = osmtopo.PrepareGeoJSONLinestring(edge.Geom)
		} else {
			geomStr = osmtopo.PrepareWKTLinestring(edge.Geom)
		}
		row := []string{
			wayID,
			fmt.Sprintf("%d", edge.ID),
			fmt.Sprintf("%d", edge.SourceNodeID),
			fmt.Sprintf("%d", edge.TargetNodeID),
			geomStr,
		}
		row = append(row, edge.Attributes.Values()...)
		if err := sink.writer.Write(row); err != nil {
			return err
		}
		if sink.contract {
			sink.addToGraph(edge)
		}
	}
	sink.writer.Flush()
	return sink.writer.Error()
}

func (sink *csvEdgeWriter) addToGraph(edge *osmtopo.Edge) {
	source := int64(edge.SourceNodeID)
	target := int64(edge.TargetNodeID)
	if source == target {
		// Self-loops are meaningless for shortest path search
		return
	}
	if err := sink.graph.CreateVertex(source); err != nil && sink.err == nil {
		sink.err = err
		return
	}
	if err := sink.graph.CreateVertex(target); err != nil && sink.err == nil {
		sink.err = err
		return
	}
	cost := edge.LengthMeters()
	if sink.units != "m" {
		cost /= 1000.0
	}
	if err := sink.graph.AddEdge(source, target, cost); err != nil && sink.err == nil {
		sink.err = err
	}
}

// csvJunctionWriter Writes junction records as CSV rows
type csvJunctionWriter struct {
	writer     *csv.Writer
	geomFormat string
}

func (sink *csvJunctionWriter) WriteJunctions(junctions []osmtopo.JunctionRecord) error {
	for i := range junctions {
		junction := &junctions[i]
		geomStr := ""
		if sink.geomFormat == "geojson" {
			geomStr = osmtopo.PrepareGeoJSONPoint(junction.Geom)
		} else {
			geomStr = osmtopo.PrepareWKTPoint(junction.Geom)
		}
		row := []string{
			fmt.Sprintf("%d", junction.NodeID),
			geomStr,
			fmt.Sprintf("%d", junction.UseCount),
		}
		if err := sink.writer.Write(row); err != nil {
			return err
		}
	}
	sink.writer.Flush()
	return sink.writer.Error()
}
