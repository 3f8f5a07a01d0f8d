// Package notify builds outbound messaging handoffs. The service never sends
// anything itself; it hands the caller a deep link to open. Failure to open
// the link never fails the state transition that produced it.
package notify

import (
	"net/url"
	"strings"
)

// DefaultCountryCode is prefixed to bare national numbers.
const DefaultCountryCode = "91"

// WhatsAppLink returns a wa deep link that opens a chat with phone and the
// message prefilled.
func WhatsAppLink(phone, message string) string {
	params := url.Values{}
	params.Set("phone", normalizePhone(phone))
	params.Set("text", message)
	return "https://api.whatsapp.com/send?" + params.Encode()
}

func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "+")
	// 10-digit numbers are national; everything longer is assumed to
	// already carry a country code.
	if len(phone) == 10 {
		return DefaultCountryCode + phone
	}
	return phone
}
