// Package ingestion builds the vector index from the assessment catalog.
//
// The Builder loads the catalog, embeds every description on a worker pool
// (reusing vectors already present in the catalog), and writes one entry per
// row plus a manifest into a staging directory. The staging directory is
// renamed over the live index only after everything is committed, so a
// failed build leaves the live index untouched. A file lock next to the
// index directory serialises builds across processes.
package ingestion
