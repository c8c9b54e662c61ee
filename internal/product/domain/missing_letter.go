package domain

import "strings"

// MissingLetterSentinel is returned when no letter is missing or the name is unusable.
const MissingLetterSentinel = "_"

// MissingLetter returns the first letter of a..z that does not occur in name,
// ignoring case.
func MissingLetter(name string) string {
	if name == "" {
		return MissingLetterSentinel
	}

	var seen [26]bool
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			seen[r-'a'] = true
		}
	}
	for i, ok := range seen {
		if !ok {
			return string(rune('a' + i))
		}
	}
	return MissingLetterSentinel
}
