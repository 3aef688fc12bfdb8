// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateCatalogRecord validates a CatalogRecord according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Description must not be empty (it is the embedding input)
//
// NOT validated:
//   - TestType, Duration, flags and URL (catalogs leave them blank)
//   - ID (0 is the first row)
func ValidateCatalogRecord(record *CatalogRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidCatalogRecord)
	}

	if record.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCatalogRecord, ErrEmptyName)
	}

	if record.Description == "" {
		return fmt.Errorf("%w: row %d: %w", ErrInvalidCatalogRecord, record.ID, ErrEmptyDescription)
	}

	return nil
}

// ValidateEntry validates an IndexedEntry before it is written.
// dim is the expected vector length; 0 skips the length check.
func ValidateEntry(entry *IndexedEntry, dim int) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if len(entry.Vector) == 0 {
		return fmt.Errorf("%w: id %d: %w", ErrInvalidEntry, entry.ID, ErrEmptyVector)
	}

	if dim > 0 && len(entry.Vector) != dim {
		return fmt.Errorf("%w: id %d has %d values, index has %d", ErrDimensionMismatch, entry.ID, len(entry.Vector), dim)
	}

	return nil
}

// ValidateTopK checks the requested number of results.
func ValidateTopK(topK int) error {
	if topK < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}
	return nil
}
