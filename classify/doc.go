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


// Package classify assigns retention tiers to emails using a fixed,
// precedence-ordered rule set.
//
// Classification decides, per email, whether it is discarded outright
// (excluded), stored as metadata only, or stored and queued for embedding
// (vectorize). Rules live in an immutable Ruleset compiled once at startup;
// they are not independently scored, and the first matching rule wins.
package classify
