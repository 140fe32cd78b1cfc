package services

import "strings"

// NormalizePhone brings a phone number to the +91XXXXXXXXXX form the
// backend keys OTPs by: everything except digits and '+' is dropped, and
// numbers without the country code get the default one.
func NormalizePhone(phone string) string {
	phone = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' {
			return r
		}
		return -1
	}, phone)

	switch {
	case strings.HasPrefix(phone, "+91"):
		return phone
	case strings.HasPrefix(phone, "91") && len(phone) > 10:
		return "+91" + phone[2:]
	case len(phone) == 10:
		return "+91" + phone
	case len(phone) >= 10:
		return "+91" + phone[len(phone)-10:]
	}
	return phone
}
