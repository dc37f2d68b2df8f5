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


// Package extract pulls plain text from email attachment payloads.
//
// Extraction never propagates a failure as an error value to the caller:
// every attempt yields a Result whose Status distinguishes success from
// unsupported formats, corrupt payloads, and read failures, so the ingest
// pipeline can count failures without aborting on them.
package extract
