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

package mailbox

import "errors"

var (
	// ErrMessageParse marks a per-message decode failure. Callers iterating
	// a Source should skip and count these rather than abort the run.
	ErrMessageParse = errors.New("message parse failed")

	// ErrSourceNotFound indicates the archive path does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrEmptySource indicates the archive contains no messages at all.
	ErrEmptySource = errors.New("source contains no messages")
)
