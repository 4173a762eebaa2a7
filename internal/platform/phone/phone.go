// Package phone checks contact numbers entered at the front desk.
package phone

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers entered without a country code.
const DefaultRegion = "IN"

// Validate reports whether raw could be a dialable number. Local numbers are
// read in DefaultRegion; "+"-prefixed numbers carry their own country code.
func Validate(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("phone number is empty")
	}
	num, err := phonenumbers.Parse(raw, DefaultRegion)
	if err != nil {
		return fmt.Errorf("parse phone number: %w", err)
	}
	if !phonenumbers.IsPossibleNumber(num) {
		return fmt.Errorf("phone number %q has an invalid length", raw)
	}
	return nil
}

// E164 formats raw as +<country><number>, or returns raw unchanged when it
// cannot be parsed.
func E164(raw string) string {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), DefaultRegion)
	if err != nil {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
