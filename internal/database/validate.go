package database

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mixelka/stashbot/pkg/models"
)

// Field bounds; values longer than these are rejected, never truncated
const (
	maxLabelLength    = 200
	maxUsernameLength = 200
	maxPasswordLength = 500
	maxEmailLength    = 320
	maxURLLength      = 2000
)

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

func invalid(field, reason string) error {
	return &models.ValidationError{Field: field, Reason: reason}
}

func checkText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "empty")
	}
	if utf8.RuneCountInString(value) > max {
		return invalid(field, "too long")
	}
	return nil
}

func validateCredential(label, username, password string) error {
	if err := checkText("label", label, maxLabelLength); err != nil {
		return err
	}
	if err := checkText("username", username, maxUsernameLength); err != nil {
		return err
	}
	return checkText("password", password, maxPasswordLength)
}

func validatePassword(label, password string) error {
	if err := checkText("label", label, maxLabelLength); err != nil {
		return err
	}
	return checkText("password", password, maxPasswordLength)
}

func validateEmail(address, label string) error {
	if len(address) > maxEmailLength {
		return invalid("email", "too long")
	}
	if !emailRegex.MatchString(address) {
		return invalid("email", "malformed address")
	}
	if utf8.RuneCountInString(label) > maxLabelLength {
		return invalid("label", "too long")
	}
	return nil
}

func validateURL(raw string) error {
	if len(raw) > maxURLLength {
		return invalid("url", "too long")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return invalid("url", err.Error())
	}
	if u.Scheme == "" || u.Host == "" {
		return invalid("url", "missing scheme or host")
	}
	return nil
}
