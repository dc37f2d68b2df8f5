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

// Package backfill embeds rows that were stored without a vector: emails at
// the Vectorize tier and attachments with extracted text. It pulls batches
// until the store has nothing left, builds one normalized input per row, and
// writes each returned vector back with its embedded-at timestamp.
//
// Rows whose input normalizes to empty are not sent to the provider at all;
// they stay unembedded and are picked up again on a later invocation. The
// batch loop is sequential and must not run concurrently against the same
// store, since selection does not claim rows.
package backfill
