package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/recommendit/core"
)

// Header names as they appear in the source catalog.
const (
	ColumnName          = "Assessment Name"
	ColumnDescription   = "Description"
	ColumnRemoteTesting = "Remote Testing"
	ColumnAdaptiveIRT   = "Adaptive/IRT"
	ColumnTestType      = "Test Type"
	ColumnDuration      = "Duration"
	ColumnURL           = "URL"
	ColumnEmbedding     = "embedding"
)

// Catalog is a parsed source catalog. Rows keeps the raw cells so an
// enriched copy can reproduce the original columns.
type Catalog struct {
	Header  []string
	Rows    [][]string
	Records []*core.CatalogRecord

	// Vectors holds pre-computed embeddings decoded from the embedding
	// column, aligned with Records. A nil element means the row has none.
	// Vectors is nil when the catalog has no embedding column.
	Vectors [][]float32

	embeddingCol int
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.Records)
}

// HasVector reports whether record i carries a pre-computed embedding.
func (c *Catalog) HasVector(i int) bool {
	return c.Vectors != nil && c.Vectors[i] != nil
}

// Load reads the catalog at path.
// All errors wrap core.ErrCatalogUnreadable.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCatalogUnreadable, err)
	}
	defer f.Close()

	cat, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse reads a catalog from r. Column order is free; header names are
// matched case-insensitively after trimming. Record IDs are the 0-based
// data row positions.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0 // every row must match the header width

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", core.ErrCatalogUnreadable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCatalogUnreadable, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cols := indexColumns(header)
	for _, required := range []string{ColumnName, ColumnDescription} {
		if _, ok := cols[normalizeColumn(required)]; !ok {
			return nil, fmt.Errorf("%w: %w: %q", core.ErrCatalogUnreadable, ErrMissingColumn, required)
		}
	}

	cat := &Catalog{Header: header, embeddingCol: -1}
	if idx, ok := cols[normalizeColumn(ColumnEmbedding)]; ok {
		cat.embeddingCol = idx
		cat.Vectors = [][]float32{}
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[normalizeColumn(name)]
		if !ok {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrCatalogUnreadable, err)
		}

		record := &core.CatalogRecord{
			ID:            core.ID(len(cat.Records)),
			Name:          cell(row, ColumnName),
			Description:   cell(row, ColumnDescription),
			TestType:      cell(row, ColumnTestType),
			Duration:      cell(row, ColumnDuration),
			RemoteTesting: cell(row, ColumnRemoteTesting),
			AdaptiveIRT:   cell(row, ColumnAdaptiveIRT),
			URL:           cell(row, ColumnURL),
		}
		if err := core.ValidateCatalogRecord(record); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrCatalogUnreadable, err)
		}

		if cat.embeddingCol >= 0 {
			var vector []float32
			if raw := strings.TrimSpace(row[cat.embeddingCol]); raw != "" {
				vector, err = ParseVector(raw)
				if err != nil {
					return nil, fmt.Errorf("%w: row %d: %w", core.ErrCatalogUnreadable, record.ID, err)
				}
			}
			cat.Vectors = append(cat.Vectors, vector)
		}

		cat.Rows = append(cat.Rows, row)
		cat.Records = append(cat.Records, record)
	}

	return cat, nil
}

// Fingerprint digests every record's content in row order. Two catalogs
// with the same fingerprint produce the same index under the same model.
func (c *Catalog) Fingerprint() uint64 {
	parts := make([]string, 0, len(c.Records)*7)
	for _, r := range c.Records {
		parts = append(parts, r.Name, r.Description, r.TestType, r.Duration, r.RemoteTesting, r.AdaptiveIRT, r.URL)
	}
	return core.Fingerprint(parts...)
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := normalizeColumn(name)
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
