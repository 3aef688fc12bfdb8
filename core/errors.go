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

import "errors"

// Pipeline errors
var (
	// ErrCatalogUnreadable indicates the source catalog is missing or malformed.
	ErrCatalogUnreadable = errors.New("catalog unreadable")

	// ErrIndexWriteFailed indicates the vector index rejected a write during a build.
	ErrIndexWriteFailed = errors.New("index write failed")

	// ErrExtractionFailed indicates a URL in the query could not be fetched or parsed.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrInvalidTopK indicates a result count below 1.
	ErrInvalidTopK = errors.New("topK must be at least 1")

	// ErrDimensionMismatch indicates a vector whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Domain validation errors
var (
	// ErrInvalidCatalogRecord indicates a CatalogRecord failed validation.
	ErrInvalidCatalogRecord = errors.New("invalid catalog record")

	// ErrInvalidEntry indicates an IndexedEntry failed validation.
	ErrInvalidEntry = errors.New("invalid indexed entry")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyDescription indicates the Description field is empty.
	ErrEmptyDescription = errors.New("description cannot be empty")

	// ErrEmptyVector indicates an entry without an embedding.
	ErrEmptyVector = errors.New("vector cannot be empty")
)
