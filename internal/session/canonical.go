package session

import "regexp"

const uuidGroups = `([0-9a-zA-Z]{8}-[0-9a-zA-Z]{4}-[0-9a-zA-Z]{4}-[0-9a-zA-Z]{4}-[0-9a-zA-Z]{12})`

var (
	canonicalIDPattern = regexp.MustCompile(`/ess/client/section/` + uuidGroups)
	// sectionURLPattern accepts any route flavour (portal, client, ...).
	sectionURLPattern = regexp.MustCompile(`/section/` + uuidGroups + `(?:[/?#]|$)`)
)

// ExtractCanonicalID returns the first section identifier referenced in content.
func ExtractCanonicalID(content string) (string, bool) {
	match := canonicalIDPattern.FindStringSubmatch(content)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}

// SectionIDFromURL returns the section uuid embedded in a course URL such as
// https://host/ess/portal/section/<uuid>.
func SectionIDFromURL(raw string) (string, bool) {
	match := sectionURLPattern.FindStringSubmatch(raw)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}
