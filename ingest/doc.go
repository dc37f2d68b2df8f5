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

// Package ingest walks a mailbox source, classifies every message, and
// persists the ones worth keeping. Excluded messages are counted but never
// stored. Attachments of Vectorize-tier messages get their text extracted
// and stored alongside, whether or not extraction succeeded.
//
// The coordinator is deliberately sequential: one message at a time, one
// store write at a time. A bad message is skipped and counted, never fatal;
// a store failure ends the run with the partial counts accumulated so far.
package ingest
