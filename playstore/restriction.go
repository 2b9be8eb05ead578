package playstore

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Restriction describes why an item is unavailable.
type Restriction struct {
	ID      string
	Message string
}

var availabilityRestrictions = map[int32]Restriction{
	0:  {"availability_restriction_generic", "This item isn't available."},
	2:  {"availability_restriction_country", "This item isn't available in your country."},
	8:  {"availability_restriction_not_in_group", "You're not in the targeted group for this item."},
	9:  {"availability_restriction_hardware", "Your device isn't compatible with this item."},
	10: {"availability_restriction_carrier", "This item isn't available on your carrier."},
	11: {"availability_restriction_country_or_carrier", "This item isn't available in your country or on your carrier."},
	12: {"availability_restriction_search_level", "Your content filtering level doesn't allow you to download this item."},
}

// RestrictionMessage maps an availability restriction code to its
// string id and message.
func RestrictionMessage(code int32) (Restriction, bool) {
	r, ok := availabilityRestrictions[code]
	return r, ok
}

// SignatureToSHA1 converts a delivery signature (URL-safe base64, padding
// optional) to a hex digest.
func SignatureToSHA1(sig string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(sig, "="))
	if err != nil {
		return "", fmt.Errorf("invalid signature %q: %w", sig, err)
	}
	return hex.EncodeToString(raw), nil
}
