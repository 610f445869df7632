package utils

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b(\+?55\s?)?\(?\d{2}\)?\s?\d{4,5}[-.\s]?\d{4}\b`)
)

// HasContactInfo returns true when the text carries an email address or a
// brazilian phone number. Used to arm the abandoned-cart watcher.
func HasContactInfo(text string) bool {
	return emailPattern.MatchString(text) || phonePattern.MatchString(text)
}

// FirstName returns the first word of a full name.
func FirstName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, ' '); i > -1 {
		return name[:i]
	}
	return name
}
