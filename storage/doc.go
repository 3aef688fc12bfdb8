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


// Package storage provides the vector index abstraction for recommendit.
//
// A Collection holds one IndexedEntry per catalog record and answers
// nearest-neighbour queries by cosine distance. Each collection also stores
// a Manifest describing how it was built (model, dimension, metric).
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.Collection interface:
//
//	coll, err := badger.OpenCollection("/path/to/shl_db", "assessments")
//
// Lower-level constructors (badger.OpenBackend, badger.NewCollection) return
// concrete types so several collections can share one backend.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	coll, err := badger.NewMemoryCollection("assessments")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer coll.Close()
//
// # Thread Safety
//
// All collection implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
