package utils

import "strings"

var phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// NormalizePhone strips separators and ensures a leading "+". It does not
// validate the result.
func NormalizePhone(phone string) string {
	phone = phoneStripper.Replace(strings.TrimSpace(phone))
	if phone == "" {
		return ""
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return phone
}
