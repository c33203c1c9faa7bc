package osmtopo

// WayScanner Lazy, finite, non-restartable stream of way records. Scan
// advances to the next way and reports false when the stream ends or
// fails; Err must be checked afterwards.
type WayScanner interface {
	Scan() bool
	Way() *Way
	Err() error
	Close() error
}

// SkipReporter Optional WayScanner extension: number of ways the scanner
// dropped on its own (malformed or with unresolvable locations) instead
// of delivering them downstream.
type SkipReporter interface {
	Skipped() int
}

// WaySource Produces fresh way scanners for each pass over the dataset.
// ScanWays yields ways with node references and tags only; ScanResolvedWays
// yields ways with coordinates attached, skipping ways whose locations can
// not be resolved. Both passes must deliver ways in the same order.
type WaySource interface {
	ScanWays() (WayScanner, error)
	ScanResolvedWays() (WayScanner, error)
}
