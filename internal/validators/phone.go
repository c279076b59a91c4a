package validators

import "strings"

// NormalizePhone keeps digits and a leading plus sign.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' || (i == 0 && r == '+') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanPhone normalizes user input. ok is false when the input had text
// but no digits, so "---" never becomes an empty phone.
func CleanPhone(raw string) (phone string, ok bool) {
	phone = NormalizePhone(raw)
	if strings.TrimPrefix(phone, "+") == "" {
		return "", strings.TrimSpace(raw) == ""
	}
	return phone, true
}
