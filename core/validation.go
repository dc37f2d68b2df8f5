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

import "fmt"

// ValidateEmail validates an Email before persistence.
//
// Validation rules:
//   - MessageId must not be empty (the parser synthesizes one when absent)
//   - Sender must not be empty
//   - Tier must be MetadataOnly or Vectorize (Excluded and Unclassified
//     emails are never persisted)
//
// NOT validated (populated by the backfill):
//   - Vector and EmbeddedAt (absent until embedding succeeds)
func ValidateEmail(email *Email) error {
	if email == nil {
		return fmt.Errorf("%w: email is nil", ErrInvalidEmail)
	}

	if email.MessageId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmail, ErrEmptyMessageId)
	}

	if email.Sender == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmail, ErrEmptySender)
	}

	if email.Tier != TierMetadataOnly && email.Tier != TierVectorize {
		return fmt.Errorf("%w: %w: %s", ErrInvalidEmail, ErrInvalidTier, email.Tier)
	}

	return nil
}

// ValidateAttachment validates an Attachment before persistence.
//
// Validation rules:
//   - EmailId must reference an owning email
//   - Filename must not be empty
func ValidateAttachment(attachment *Attachment) error {
	if attachment == nil {
		return fmt.Errorf("%w: attachment is nil", ErrInvalidAttachment)
	}

	if attachment.EmailId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAttachment, ErrEmptyOwner)
	}

	if attachment.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAttachment, ErrEmptyFilename)
	}

	return nil
}
