package service

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 6
	minNameLength     = 2
	maxNameLength     = 100
)

// normalizeEmail lower-cases and trims; emails are compared in this form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	_, domain, ok := strings.Cut(email, "@")
	return ok && strings.Contains(domain, ".")
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= minNameLength && n <= maxNameLength
}

// validLogoURL accepts absolute http and https URLs.
func validLogoURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func checkEmail(v *ValidationError, field, email string) {
	if !validEmail(email) {
		v.add(field, "must be a valid email address")
	}
}

func checkName(v *ValidationError, field, name string) {
	if !validName(name) {
		v.add(field, "must be between 2 and 100 characters")
	}
}

func checkPassword(v *ValidationError, field, password string) {
	if len(password) < minPasswordLength {
		v.add(field, "must be at least 6 characters")
	}
}
