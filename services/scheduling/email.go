package scheduling

import "strings"

// NormalizeEmail turns a dictated address ("j o h n at gmail dot co") into its
// written form. It is a best-effort transform and never rejects input; the
// result must still be read back to the human.
func NormalizeEmail(spoken string) string {
	s := strings.ToLower(strings.TrimSpace(spoken))
	if s == "" {
		return ""
	}

	if strings.Contains(s, " at ") || strings.Contains(s, " dot ") {
		s = strings.Replace(s, " at ", "@", 1)
		s = strings.ReplaceAll(s, " dot ", ".")
	}
	s = strings.Join(strings.Fields(s), "")

	if !strings.Contains(s, "@") {
		s = strings.Replace(s, "atgmail", "@gmail", 1)
	}

	s = strings.ReplaceAll(s, "dotcom", ".com")
	// Gmail has no .co domain; a clipped "dot co" after gmail means .com.
	s = strings.ReplaceAll(s, "gmaildotco", "gmail.com")
	s = strings.ReplaceAll(s, "dotco", ".co")
	s = strings.ReplaceAll(s, "dotnet", ".net")
	s = strings.ReplaceAll(s, "dotorg", ".org")
	if strings.HasSuffix(s, "@gmail.co") {
		s += "m"
	}

	return strings.TrimRight(s, ".")
}
