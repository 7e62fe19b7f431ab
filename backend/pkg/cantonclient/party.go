package cantonclient

import (
	"context"
	"strings"
)

// Party is a participant identity on the ledger.
type Party struct {
	Party       string `json:"party"`
	DisplayName string `json:"displayName,omitempty"`
}

// AllocateParty allocates a new party. The hint makes allocation
// idempotent by convention: callers derive it deterministically so a
// repeat allocation targets the same identifier. When hint is empty the
// display name is slugified instead.
func (c *Client) AllocateParty(ctx context.Context, displayName, hint string) (*Party, error) {
	if hint == "" {
		hint = slug(displayName)
	}
	req := map[string]string{
		"identifierHint": hint,
		"displayName":    displayName,
	}
	var party Party
	if err := c.request(ctx, routeAllocateParty, req, &party); err != nil {
		return nil, err
	}
	return &party, nil
}

// PhonePartyHint derives the customer party hint from a phone number.
// Only the digits count, so punctuation variants of the same number map
// to the same party.
func PhonePartyHint(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return "customer-" + digits.String()
}

// BusinessPartyHint derives the business party hint from the business
// name and contact email: lower-cased name with spaces collapsed to
// hyphens, plus the local part of the email.
func BusinessPartyHint(businessName, email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	return "business-" + slug(businessName) + "-" + local
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
