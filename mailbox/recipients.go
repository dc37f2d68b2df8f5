package mailbox

import (
	"strings"

	"github.com/jhillyerd/enmime"
)

// RecipientList is the outcome of recipient extraction. When Addresses is
// empty, Reason says why, so a missing To header and a decode failure are
// distinguishable downstream.
type RecipientList struct {
	Addresses []string
	Reason    string
}

// RecipientExtractor pulls recipient addresses out of a decoded envelope.
// Implementations are versioned so archives with provider-specific header
// conventions can get their own adapter without touching the parser.
type RecipientExtractor interface {
	Version() string
	Extract(env *enmime.Envelope) RecipientList
}

// headerExtractor is the default adapter: standard To, Cc, and Bcc headers,
// in that order, deduplicated case-insensitively.
type headerExtractor struct{}

// DefaultRecipientExtractor returns the standard-header adapter.
func DefaultRecipientExtractor() RecipientExtractor {
	return headerExtractor{}
}

func (headerExtractor) Version() string { return "headers/v1" }

func (headerExtractor) Extract(env *enmime.Envelope) RecipientList {
	var (
		addresses []string
		seen      = make(map[string]struct{})
		lastErr   string
	)

	for _, header := range []string{"To", "Cc", "Bcc"} {
		if env.GetHeader(header) == "" {
			continue
		}
		list, err := env.AddressList(header)
		if err != nil {
			lastErr = header + ": " + err.Error()
			continue
		}
		for _, addr := range list {
			key := strings.ToLower(addr.Address)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			addresses = append(addresses, addr.Address)
		}
	}

	if len(addresses) == 0 {
		reason := "no recipient headers present"
		if lastErr != "" {
			reason = "recipient headers undecodable: " + lastErr
		}
		return RecipientList{Reason: reason}
	}
	return RecipientList{Addresses: addresses}
}
