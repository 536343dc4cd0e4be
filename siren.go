package registre

import "regexp"

var (
	sirenRe    = regexp.MustCompile(`(\d{3})\s*(\d{3})\s*(\d{3})`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

// IsSiren reports whether s is a well-formed 9-digit SIREN.
func IsSiren(s string) bool {
	if len(s) != 9 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExtractSiren pulls a SIREN out of free text such as the RCS mention
// "123 456 789 RCS Paris". The candidate is stripped of every non-digit and
// accepted only when exactly 9 digits remain; anything else returns "".
func ExtractSiren(text string) string {
	m := sirenRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	candidate := nonDigitRe.ReplaceAllString(m[1]+m[2]+m[3], "")
	if !IsSiren(candidate) {
		return ""
	}
	return candidate
}

// CleanSiren normalizes a value already meant to be a SIREN: strips every
// non-digit and returns "" unless exactly 9 digits remain.
func CleanSiren(s string) string {
	candidate := nonDigitRe.ReplaceAllString(s, "")
	if !IsSiren(candidate) {
		return ""
	}
	return candidate
}
