package osmtopo

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// DefaultBatchSize Number of edges buffered before the output writer is
// asked to flush
const DefaultBatchSize = 10000

// Converter Orchestrates the two passes over a way source: degree
// counting, then fragment merging with batched edge output.
type Converter struct {
	keepAttributes []string
	batchSize      int
	verbose        bool
}

// NewConverter Prepares converter with provided options
func NewConverter(options ...func(*Converter)) *Converter {
	converter := &Converter{
		keepAttributes: DefaultAttributes,
		batchSize:      DefaultBatchSize,
	}
	for _, option := range options {
		option(converter)
	}
	return converter
}

// WithKeepAttributes Sets tag keys retained on output edges. An empty
// (non-nil) list disables attribute-based splitting: all roads may merge
// regardless of tag differences.
func WithKeepAttributes(keepAttributes []string) func(*Converter) {
	return func(converter *Converter) {
		converter.keepAttributes = keepAttributes
	}
}

// WithBatchSize Sets edge output batch size
func WithBatchSize(batchSize int) func(*Converter) {
	return func(converter *Converter) {
		converter.batchSize = batchSize
	}
}

// WithVerbose Enables progress reporting to stdout
func WithVerbose(verbose bool) func(*Converter) {
	return func(converter *Converter) {
		converter.verbose = verbose
	}
}

// Stats Counters gathered over a conversion run. SkippedWays covers ways
// dropped during the merge pass: malformed ones delivered by the scanner
// plus ways the scanner itself dropped (reported via SkipReporter).
type Stats struct {
	Ways              int
	SkippedWays       int
	Junctions         int
	PromotedJunctions int
	Edges             int
	DanglingFragments int
}

// Convert Runs both passes and forwards finished edges to the edge writer
// in fixed-size batches. When a junction writer is supplied, records for
// the (possibly grown) junction set are written once after the merge pass.
func (converter *Converter) Convert(source WaySource, edges EdgeWriter, junctions JunctionWriter) (*Stats, error) {
	stats := &Stats{}

	/* Pass 1: count node degrees */
	if converter.verbose {
		fmt.Printf("Counting node degrees... ")
	}
	st := time.Now()
	scanner, err := source.ScanWays()
	if err != nil {
		return nil, errors.Wrap(err, "Can't open way stream")
	}
	counter := newDegreeCounter()
	for scanner.Scan() {
		way := scanner.Way()
		if !way.Valid() {
			// Counted as skipped during the merge pass
			continue
		}
		counter.add(way.Nodes)
		stats.Ways++
	}
	if scanner.Err() != nil {
		scanner.Close()
		return nil, errors.Wrap(scanner.Err(), "Scanner error on Ways")
	}
	scanner.Close()
	junctionSet := counter.junctions()
	stats.Junctions = len(junctionSet)
	if converter.verbose {
		fmt.Printf("Done in %v\n\tWays: %d\n\tJunctions: %d\n", time.Since(st), stats.Ways, stats.Junctions)
	}

	/* Pass 2: merge fragments into edges */
	if converter.verbose {
		fmt.Printf("Merging way fragments... ")
	}
	st = time.Now()
	batch := make([]Edge, 0, converter.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := edges.WriteEdges(batch); err != nil {
			return errors.Wrap(err, "Can't write edges batch")
		}
		batch = batch[:0]
		return nil
	}
	emit := func(chain *Chain) error {
		stats.Edges++
		batch = append(batch, Edge{
			ID:           EdgeID(stats.Edges),
			WayID:        chain.WayID(),
			SourceNodeID: chain.Start(),
			TargetNodeID: chain.End(),
			Geom:         chain.Geom(),
			Attributes:   chain.Attributes(),
		})
		if len(batch) >= converter.batchSize {
			return flush()
		}
		return nil
	}
	engine := newMergeEngine(junctionSet, converter.keepAttributes, emit)

	resolved, err := source.ScanResolvedWays()
	if err != nil {
		return nil, errors.Wrap(err, "Can't open resolved way stream")
	}
	for resolved.Scan() {
		way := resolved.Way()
		if !way.Valid() {
			stats.SkippedWays++
			continue
		}
		if err := engine.processWay(way); err != nil {
			resolved.Close()
			return nil, errors.Wrap(err, "Merge engine failed")
		}
	}
	if resolved.Err() != nil {
		resolved.Close()
		return nil, errors.Wrap(resolved.Err(), "Scanner error on Ways")
	}
	if reporter, ok := resolved.(SkipReporter); ok {
		stats.SkippedWays += reporter.Skipped()
	}
	resolved.Close()

	dangling := engine.finalize()
	stats.DanglingFragments = len(dangling)
	if len(dangling) > 0 && converter.verbose {
		for _, chain := range dangling {
			fmt.Printf("\n\t[WARNING]: Dangling fragment left open: %s\n", chain)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	stats.PromotedJunctions = len(junctionSet) - stats.Junctions
	if converter.verbose {
		fmt.Printf("Done in %v\n\tEdges: %d\n\tPromoted junctions: %d\n", time.Since(st), stats.Edges, stats.PromotedJunctions)
	}

	/* Junction records output */
	if junctions != nil {
		records := make([]JunctionRecord, 0, len(engine.junctionCoords))
		for ref, pt := range engine.junctionCoords {
			records = append(records, JunctionRecord{
				NodeID:   ref,
				Geom:     pt,
				UseCount: junctionSet[ref],
			})
		}
		if err := junctions.WriteJunctions(records); err != nil {
			return nil, errors.Wrap(err, "Can't write junctions")
		}
	}
	return stats, nil
}
