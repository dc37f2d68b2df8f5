package classify

import (
	"strings"

	"github.com/poiesic/mailvec/core"
)

// Classify assigns a retention tier to an email. It is deterministic and
// side-effect-free; the same email always yields the same tier.
//
// Rules are evaluated in strict precedence order, first match wins:
//
//  1. Exclusion: calendar-invite attachments, subject patterns, body
//     patterns. Exclusion dominates regardless of body length; a long
//     password-reset email is still excluded.
//  2. Metadata-only: automated sender address, exact short-reply body, or a
//     body below the minimum word count. Length is the weakest signal and is
//     checked last within this step.
//  3. Everything else is vectorized.
func (r *Ruleset) Classify(email *core.Email, hasCalendarAttachment bool) core.Tier {
	if hasCalendarAttachment {
		return core.TierExcluded
	}

	for _, re := range r.subjectExclusions {
		if re.MatchString(email.Subject) {
			return core.TierExcluded
		}
	}

	for _, re := range r.bodyExclusions {
		if re.MatchString(email.BodyText) {
			return core.TierExcluded
		}
	}

	for _, re := range r.automatedSenders {
		if re.MatchString(strings.ToLower(email.Sender)) {
			return core.TierMetadataOnly
		}
	}

	trimmed := strings.ToLower(strings.TrimSpace(email.BodyText))
	if _, ok := r.shortReplies[trimmed]; ok {
		return core.TierMetadataOnly
	}

	if email.BodyWordCount() < r.minWordCount {
		return core.TierMetadataOnly
	}

	return core.TierVectorize
}
