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


package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// RulesetConfig enumerates the pattern sets driving classification. It exists
// so rules are loaded once at startup and swappable without code changes.
// All regular expression matching is case-insensitive.
type RulesetConfig struct {
	// SubjectExclusions are patterns that exclude an email by subject.
	SubjectExclusions []string

	// BodyExclusions are patterns that exclude an email by body text.
	BodyExclusions []string

	// AutomatedSenders are patterns matched against the sender address that
	// demote an email to metadata-only.
	AutomatedSenders []string

	// ShortReplies is the canonical set of acknowledgement phrases. An email
	// whose trimmed body equals one of these exactly (case-insensitively) is
	// metadata-only regardless of its length.
	ShortReplies []string

	// MinWordCount is the minimum body word count for vectorization.
	// Bodies below this are metadata-only.
	MinWordCount int
}

// Ruleset is an immutable, compiled classification rule set.
// Build one with NewRuleset or DefaultRuleset and reuse it for every email.
type Ruleset struct {
	subjectExclusions []*regexp.Regexp
	bodyExclusions    []*regexp.Regexp
	automatedSenders  []*regexp.Regexp
	shortReplies      map[string]struct{}
	minWordCount      int
}

// NewRuleset compiles a RulesetConfig into a Ruleset.
// Returns an error if any pattern fails to compile or MinWordCount is negative.
func NewRuleset(config *RulesetConfig) (*Ruleset, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}
	if config.MinWordCount < 0 {
		return nil, ErrInvalidWordCount
	}

	subject, err := compilePatterns(config.SubjectExclusions)
	if err != nil {
		return nil, fmt.Errorf("subject exclusions: %w", err)
	}

	body, err := compilePatterns(config.BodyExclusions)
	if err != nil {
		return nil, fmt.Errorf("body exclusions: %w", err)
	}

	senders, err := compilePatterns(config.AutomatedSenders)
	if err != nil {
		return nil, fmt.Errorf("automated senders: %w", err)
	}

	replies := make(map[string]struct{}, len(config.ShortReplies))
	for _, phrase := range config.ShortReplies {
		replies[strings.ToLower(strings.TrimSpace(phrase))] = struct{}{}
	}

	return &Ruleset{
		subjectExclusions: subject,
		bodyExclusions:    body,
		automatedSenders:  senders,
		shortReplies:      replies,
		minWordCount:      config.MinWordCount,
	}, nil
}

// compilePatterns compiles each pattern with case-insensitive matching.
func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// DefaultConfig returns the built-in rule configuration.
func DefaultConfig() *RulesetConfig {
	return &RulesetConfig{
		SubjectExclusions: []string{
			`password reset`,
			`reset your password`,
			`verification code`,
			`verify your email`,
			`confirm your email`,
			`unsubscribe`,
			`has been delivered`,
			`out for delivery`,
			`has shipped`,
			`delivery notification`,
			`delivery confirmation`,
			`accepted:\s`,
			`declined:\s`,
			`tentative:\s`,
			`canceled:\s`,
		},
		BodyExclusions: []string{
			`click here to reset your password`,
			`your verification code is`,
			`your package (has been |was )?(delivered|shipped)`,
			`you have successfully unsubscribed`,
			`delivery failure`,
			`mail delivery (failed|subsystem)`,
			`mailer-daemon`,
		},
		AutomatedSenders: []string{
			`^noreply@`,
			`^no-reply@`,
			`^notifications?@`,
			`^alerts?@`,
			`^mailer-daemon@`,
			`^postmaster@`,
			`^bounce`,
		},
		ShortReplies: []string{
			"thanks", "thank you", "thanks!", "thank you!",
			"ok", "okay", "ok!", "okay!",
			"got it", "got it!",
			"sounds good", "sounds good!",
			"great", "great!",
			"perfect", "perfect!",
			"sure", "sure!",
			"yes", "no", "yep", "nope",
			"agreed", "agreed!",
			"done", "done!",
			"noted", "noted!",
			"will do", "will do!",
		},
		MinWordCount: 30,
	}
}

// DefaultRuleset returns the compiled built-in rule set.
// The built-in patterns are known to compile, so this never fails.
func DefaultRuleset() *Ruleset {
	ruleset, err := NewRuleset(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return ruleset
}
