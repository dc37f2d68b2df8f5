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


// Package storage defines the persistence boundary for the email archive.
//
// Two backends implement the Store interface:
//
//   - storage/postgres: PostgreSQL with the pgvector extension, the
//     production backend
//   - storage/memory: an in-memory implementation with brute-force cosine
//     ranking, used by tests and smoke runs
//
// Rows follow a create-then-embed lifecycle: emails and attachments are
// inserted once during ingest and only ever mutated to attach an embedding.
// An embedding vector is present if and only if its timestamp is set.
package storage
