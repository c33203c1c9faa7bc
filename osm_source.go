package osmtopo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

// OSMScanner Common subset of osmpbf and osmxml scanners
type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// FileSource Way stream backed by an *.osm.pbf or *.osm/*.xml file.
// The file is scanned once per pass; before the resolved pass an extra
// nodes scan builds a location table for every node referenced by a
// road way (the PBF format carries no coordinates inside ways).
type FileSource struct {
	filename  string
	filter    RoadFilter
	verbose   bool
	seen      map[osm.NodeID]struct{}
	locations map[osm.NodeID]orb.Point
}

// NewFileSource Prepares a file-backed way source. The filter decides
// which ways count as roads; everything else never reaches the core.
func NewFileSource(filename string, filter RoadFilter, verbose bool) *FileSource {
	return &FileSource{
		filename: filename,
		filter:   filter,
		verbose:  verbose,
	}
}

// openScanner Guesses file extension and prepares the correct scanner
func (source *FileSource) openScanner() (OSMScanner, *os.File, error) {
	file, err := os.Open(source.filename)
	if err != nil {
		return nil, nil, errors.Wrap(err, "File open")
	}
	var scanner OSMScanner
	ext := filepath.Ext(source.filename)
	switch ext {
	case ".osm", ".xml":
		scanner = osmxml.New(context.Background(), file)
	case ".pbf", ".osm.pbf":
		scanner = osmpbf.New(context.Background(), file, 4)
	default:
		file.Close()
		return nil, nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, source.filename)
	}
	return scanner, file, nil
}

// ScanWays First-pass stream: node references and tags only. Node ids met
// along the way are remembered so that the nodes scan before the resolved
// pass can be restricted to them.
func (source *FileSource) ScanWays() (WayScanner, error) {
	scanner, file, err := source.openScanner()
	if err != nil {
		return nil, err
	}
	source.seen = make(map[osm.NodeID]struct{})
	return &fileWayScanner{
		inner:  scanner,
		file:   file,
		source: source,
		seen:   source.seen,
	}, nil
}

// ScanResolvedWays Second-pass stream with coordinates resolved. Ways
// referencing a node without a known location are skipped, mirroring the
// underlying reader's own failure mode.
func (source *FileSource) ScanResolvedWays() (WayScanner, error) {
	if err := source.loadLocations(); err != nil {
		return nil, errors.Wrap(err, "Can't resolve node locations")
	}
	scanner, file, err := source.openScanner()
	if err != nil {
		return nil, err
	}
	return &fileWayScanner{
		inner:     scanner,
		file:      file,
		source:    source,
		locations: source.locations,
	}, nil
}

// loadLocations Scans nodes once and keeps coordinates of every node
// referenced by a road way. When ScanWays has not been called yet the
// reference set is collected by an extra ways scan first.
func (source *FileSource) loadLocations() error {
	if source.locations != nil {
		return nil
	}
	if source.seen == nil {
		scanner, err := source.ScanWays()
		if err != nil {
			return err
		}
		for scanner.Scan() {
		}
		if scanner.Err() != nil {
			scanner.Close()
			return scanner.Err()
		}
		scanner.Close()
	}

	if source.verbose {
		fmt.Printf("\tProcessing nodes... ")
	}
	st := time.Now()
	scanner, file, err := source.openScanner()
	if err != nil {
		return err
	}
	defer file.Close()
	defer scanner.Close()

	locations := make(map[osm.NodeID]orb.Point)
	for scanner.Scan() {
		obj := scanner.Object()
		if obj.ObjectID().Type() != "node" {
			continue
		}
		node := obj.(*osm.Node)
		if _, ok := source.seen[node.ID]; ok {
			locations[node.ID] = orb.Point{node.Lon, node.Lat}
		}
	}
	if scanner.Err() != nil {
		return errors.Wrap(scanner.Err(), "Scanner error on Nodes")
	}
	source.locations = locations
	if source.verbose {
		fmt.Printf("Done in %v\n\tNodes: %d\n", time.Since(st), len(locations))
	}
	return nil
}

// fileWayScanner Streams road ways out of an OSM object scanner. With a
// location table attached it also resolves way geometry.
type fileWayScanner struct {
	inner     OSMScanner
	file      *os.File
	source    *FileSource
	seen      map[osm.NodeID]struct{}
	locations map[osm.NodeID]orb.Point
	current   *Way
	skipped   int
	err       error
}

func (scanner *fileWayScanner) Scan() bool {
	for scanner.inner.Scan() {
		obj := scanner.inner.Object()
		if obj.ObjectID().Type() != "way" {
			continue
		}
		way := obj.(*osm.Way)
		if !scanner.source.filter.Matches(way.Tags) {
			continue
		}
		if len(way.Nodes) < 2 {
			scanner.skipped++
			if scanner.source.verbose {
				fmt.Printf("\n\t[WARNING]: Way with %d nodes met. Way ID: '%d'\n", len(way.Nodes), way.ID)
			}
			continue
		}
		prepared := &Way{
			ID:    way.ID,
			Nodes: make([]osm.NodeID, 0, len(way.Nodes)),
			Tags:  make(osm.Tags, len(way.Tags)),
		}
		copy(prepared.Tags, way.Tags)
		for _, wayNode := range way.Nodes {
			prepared.Nodes = append(prepared.Nodes, wayNode.ID)
			if scanner.seen != nil {
				scanner.seen[wayNode.ID] = struct{}{}
			}
		}
		if scanner.locations != nil {
			geom, ok := scanner.resolve(prepared.Nodes)
			if !ok {
				scanner.skipped++
				if scanner.source.verbose {
					fmt.Printf("\n\t[WARNING]: Unresolved node location met. Way ID: '%d'\n", way.ID)
				}
				continue
			}
			prepared.Geom = geom
		}
		scanner.current = prepared
		return true
	}
	scanner.err = scanner.inner.Err()
	return false
}

func (scanner *fileWayScanner) resolve(refs []osm.NodeID) (orb.LineString, bool) {
	geom := make(orb.LineString, 0, len(refs))
	for _, ref := range refs {
		pt, ok := scanner.locations[ref]
		if !ok {
			return nil, false
		}
		geom = append(geom, pt)
	}
	return geom, true
}

func (scanner *fileWayScanner) Way() *Way {
	return scanner.current
}

// Skipped Number of road ways dropped by this scanner (malformed or with
// unresolved node locations)
func (scanner *fileWayScanner) Skipped() int {
	return scanner.skipped
}

func (scanner *fileWayScanner) Err() error {
	return scanner.err
}

func (scanner *fileWayScanner) Close() error {
	scanner.inner.Close()
	return scanner.file.Close()
}
