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

// Domain validation errors
var (
	// ErrInvalidEmail indicates an Email failed validation.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidAttachment indicates an Attachment failed validation.
	ErrInvalidAttachment = errors.New("invalid attachment")

	// ErrEmptySender indicates the Sender field is empty.
	ErrEmptySender = errors.New("sender cannot be empty")

	// ErrEmptyMessageId indicates the MessageId field is empty.
	ErrEmptyMessageId = errors.New("message id cannot be empty")

	// ErrEmptyOwner indicates an attachment has no owning email id.
	ErrEmptyOwner = errors.New("attachment email id cannot be empty")

	// ErrEmptyFilename indicates an attachment has no filename.
	ErrEmptyFilename = errors.New("attachment filename cannot be empty")

	// ErrInvalidTier indicates an invalid or non-persistable Tier value.
	ErrInvalidTier = errors.New("invalid tier")
)
