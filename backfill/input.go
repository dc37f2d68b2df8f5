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

package backfill

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/mailvec/core"
)

// MaxInputChars caps normalized embedding inputs, sized to stay under the
// provider's token limit.
const MaxInputChars = 20000

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// BuildEmailInput renders the deterministic embedding template for an
// email. Attachments embed their extracted text verbatim and need no
// template.
func BuildEmailInput(email *core.Email) string {
	return fmt.Sprintf("Subject: %s\nFrom: %s\n\n%s", email.Subject, email.Sender, email.BodyText)
}

// Normalize prepares text for the embedding provider: unified line endings,
// at most two consecutive newlines, trimmed, truncated to MaxInputChars on a
// rune boundary so the provider never sees a torn multi-byte character.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if len(text) > MaxInputChars {
		cut := MaxInputChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
