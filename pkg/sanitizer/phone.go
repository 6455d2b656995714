package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Mobile money providers accept Ugandan MSISDNs only; numbers written
// in the local 0XXXXXXXXX form are parsed against the UG region.
const defaultRegion = "UG"

// NormalizePhone returns the E.164 form of phone, or "" when the number
// cannot be parsed as a valid Ugandan number.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// NormalizeMSISDN returns the bare-digit form the payment providers
// expect (256XXXXXXXXX, no plus sign), or "" for invalid input.
func NormalizeMSISDN(phone string) string {
	e164 := NormalizePhone(phone)
	if e164 == "" {
		return ""
	}
	return strings.TrimPrefix(e164, "+")
}
