package catalog

import "errors"

var (
	// ErrMissingColumn indicates a required header column is absent.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidVector indicates an embedding cell that is not a numeric array.
	ErrInvalidVector = errors.New("invalid embedding value")

	// ErrVectorCountMismatch indicates WriteEnriched got a vector count different from the row count.
	ErrVectorCountMismatch = errors.New("vector count does not match row count")
)
