package card

import "strings"

// CustomPatternPrefix marks a response pattern defined by a skill rather
// than by card names. Such a pattern is satisfied only by the skill that
// declared it, never by a plain card.
const CustomPatternPrefix = "@@"

// IsCustomPattern reports whether pattern names a skill-defined response.
func IsCustomPattern(pattern string) bool {
	return strings.HasPrefix(pattern, CustomPatternPrefix)
}

// MatchPattern reports whether the card satisfies a response pattern.
// A pattern is a '+'-separated list of card names; "." matches any card and
// "slash" also matches its elemental variants.
func MatchPattern(pattern string, c *Card) bool {
	if c == nil || pattern == "" || IsCustomPattern(pattern) {
		return false
	}
	for _, alt := range strings.Split(pattern, "+") {
		alt = strings.TrimSpace(alt)
		switch {
		case alt == ".":
			return true
		case alt == c.Name:
			return true
		case alt == "slash" && strings.HasSuffix(c.Name, "_slash"):
			return true
		}
	}
	return false
}

// PatternNames returns the card names listed in a pattern.
func PatternNames(pattern string) []string {
	if IsCustomPattern(pattern) {
		return nil
	}
	var names []string
	for _, alt := range strings.Split(pattern, "+") {
		if alt = strings.TrimSpace(alt); alt != "" {
			names = append(names, alt)
		}
	}
	return names
}
