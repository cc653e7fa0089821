package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// EmailPattern is the loose address shape accepted for stored emails.
const EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

const maxInputLength = 1000

var (
	emailRE   = regexp.MustCompile(EmailPattern)
	upperRE   = regexp.MustCompile(`[A-Z]`)
	lowerRE   = regexp.MustCompile(`[a-z]`)
	digitRE   = regexp.MustCompile(`\d`)
	specialRE = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// ValidateEmail reports whether s looks like an email address.
func ValidateEmail(s string) bool {
	return emailRE.MatchString(s)
}

// ValidatePassword returns every strength requirement the password misses.
func ValidatePassword(password string) (bool, []string) {
	var problems []string
	if utf8.RuneCountInString(password) < 8 {
		problems = append(problems, "password must be at least 8 characters long")
	}
	if !upperRE.MatchString(password) {
		problems = append(problems, "password must contain at least one uppercase letter")
	}
	if !lowerRE.MatchString(password) {
		problems = append(problems, "password must contain at least one lowercase letter")
	}
	if !digitRE.MatchString(password) {
		problems = append(problems, "password must contain at least one number")
	}
	if !specialRE.MatchString(password) {
		problems = append(problems, "password must contain at least one special character")
	}
	return len(problems) == 0, problems
}

// SanitizeInput trims, strips angle brackets and caps free text at 1000 characters.
func SanitizeInput(input string) string {
	s := strings.TrimSpace(input)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	if utf8.RuneCountInString(s) > maxInputLength {
		s = string([]rune(s)[:maxInputLength])
	}
	return s
}

// ValidateGDPRConsent reports whether a consent record was given and carries
// a timestamp and a policy version.
func ValidateGDPRConsent(consent any) bool {
	given, ok := Resolve(consent, "given")
	if !ok || given != true {
		return false
	}
	if _, ok := Resolve(consent, "timestamp"); !ok {
		return false
	}
	version, ok := Resolve(consent, "version")
	if !ok {
		return false
	}
	v, isString := asString(version)
	return isString && v != ""
}

// ValidateDocument is Validate flattened to a verdict and messages.
func ValidateDocument(record any, rules []Rule) (bool, []string) {
	errs := Validate(record, rules)
	return len(errs) == 0, Messages(errs)
}
