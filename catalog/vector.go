package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseVector decodes a string-encoded embedding such as "[0.1, -0.2, 0.3]".
// The format is a JSON array of numbers, which is also how Python writes a
// list of floats.
func ParseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidVector)
	}
	var values []float64
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidVector, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values", ErrInvalidVector)
	}
	vector := make([]float32, len(values))
	for i, v := range values {
		vector[i] = float32(v)
	}
	return vector, nil
}

// FormatVector encodes a vector as a JSON array.
// NaN and infinite values are rejected.
func FormatVector(vector []float32) (string, error) {
	data, err := json.Marshal(vector)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidVector, err)
	}
	return string(data), nil
}
