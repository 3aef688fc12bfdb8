// Package catalog reads the assessment catalog CSV and writes its enriched
// copy with one embedding per row.
//
// String-encoded embeddings are decoded here, so the rest of the system only
// sees []float32.
package catalog
