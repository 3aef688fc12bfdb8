package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID identifies a catalog record. It is derived from the record's row
// position in the source catalog, so a rebuild from the same file yields
// the same IDs.
type ID uint64

// String returns the decimal form used as the store key.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Fingerprint returns a 64-bit BLAKE2b digest of the given parts.
// Used to detect that an index was built from a different catalog.
func Fingerprint(parts ...string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

// CatalogRecord is one row of the source catalog.
type CatalogRecord struct {
	ID            ID
	Name          string
	Description   string // Embedding input only, never stored in the index
	TestType      string
	Duration      string
	RemoteTesting string
	AdaptiveIRT   string
	URL           string
}

// Metadata returns the display fields of the record.
func (r *CatalogRecord) Metadata() Metadata {
	return Metadata{
		Name:          r.Name,
		TestType:      r.TestType,
		Duration:      r.Duration,
		RemoteTesting: r.RemoteTesting,
		AdaptiveIRT:   r.AdaptiveIRT,
		URL:           r.URL,
	}
}

// Metadata is the bundle persisted next to each vector. It holds every
// CatalogRecord field except Description and ID.
type Metadata struct {
	Name          string
	TestType      string
	Duration      string
	RemoteTesting string
	AdaptiveIRT   string
	URL           string
}

// IndexedEntry is what the vector index persists for one catalog record.
type IndexedEntry struct {
	ID       ID
	Vector   []float32
	Metadata Metadata
}

// NewIndexedEntry builds the entry for a record and its embedding.
func NewIndexedEntry(record *CatalogRecord, vector []float32) *IndexedEntry {
	return &IndexedEntry{
		ID:       record.ID,
		Vector:   vector,
		Metadata: record.Metadata(),
	}
}

// Match is a nearest-neighbour hit returned by the vector index.
// Distance is the cosine distance (1 - cosine similarity); smaller is closer.
type Match struct {
	ID       ID
	Metadata Metadata
	Distance float32
}

// Metric names the distance function an index was built for.
type Metric string

const (
	// MetricCosine is cosine distance, the only metric the store implements.
	MetricCosine Metric = "cosine"
)

// Manifest describes a built index. It is written once, after every entry
// has been committed.
type Manifest struct {
	Collection  string
	ModelID     string
	Dimension   int
	Metric      Metric
	EntryCount  int
	Fingerprint uint64 // Catalog fingerprint, see Fingerprint
	CreatedAt   time.Time
}

// ResultKind distinguishes real matches from sentinel results.
type ResultKind int

const (
	// ResultMatch is a ranked catalog match.
	ResultMatch ResultKind = iota
	// ResultExtractionFailed reports that a URL in the input could not be read.
	ResultExtractionFailed
	// ResultNoMatches reports that the index returned nothing.
	ResultNoMatches
)

// QueryResult is one element of a recommendation response. Sentinel results
// carry a Message and a zero Rank.
type QueryResult struct {
	Kind     ResultKind
	Rank     int // 1-based, only for ResultMatch
	ID       ID
	Metadata Metadata
	Distance float32
	Message  string
}

// IsSentinel reports whether the result communicates a condition rather than a match.
func (r QueryResult) IsSentinel() bool {
	return r.Kind != ResultMatch
}
