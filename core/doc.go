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


// Package core defines the domain model for the mailvec email archive:
// emails, attachments, classification tiers, and search result types.
//
// The model has a deliberately narrow lifecycle. An email or attachment is
// created once during ingest and is thereafter only mutated to attach an
// embedding vector. The Tier is assigned exactly once, at ingest time, and is
// never re-evaluated.
package core
