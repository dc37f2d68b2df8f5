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

// Package postgres implements storage.Store on PostgreSQL with the pgvector
// extension. Embeddings live in vector(N) columns and similarity search runs
// in the database using the cosine distance operator, so large archives never
// have to be ranked client-side.
//
// The schema is created on connect. The vector column width is fixed by the
// dimensions passed to NewStore; switching embedding models with a different
// dimensionality requires truncating and re-embedding.
package postgres
