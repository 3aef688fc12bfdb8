package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// WriteEnriched writes the catalog's original columns plus an embedding
// column holding each row's vector as a JSON array. An existing embedding
// column is replaced. The file is written to a temporary name and renamed
// into place.
func WriteEnriched(path string, cat *Catalog, vectors [][]float32) error {
	if len(vectors) != len(cat.Rows) {
		return fmt.Errorf("%w: %d vectors for %d rows", ErrVectorCountMismatch, len(vectors), len(cat.Rows))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(cat.enrichedRow(cat.Header, ColumnEmbedding)); err != nil {
		tmp.Close()
		return err
	}
	for i, row := range cat.Rows {
		encoded, err := FormatVector(vectors[i])
		if err != nil {
			tmp.Close()
			return fmt.Errorf("row %d: %w", i, err)
		}
		if err := w.Write(cat.enrichedRow(row, encoded)); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// enrichedRow returns row without the existing embedding cell, with value appended.
func (c *Catalog) enrichedRow(row []string, value string) []string {
	out := make([]string, 0, len(row)+1)
	for i, v := range row {
		if i == c.embeddingCol {
			continue
		}
		out = append(out, v)
	}
	return append(out, value)
}
