package categorize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mixelka/stashbot/pkg/models"
)

// LinkRule maps a set of host names to a link type
type LinkRule struct {
	Type    models.LinkType `yaml:"type"`
	Domains []string        `yaml:"domains"`
}

// Rules is the keyword and threshold table the engine classifies with.
// It is read once at startup and never mutated afterwards.
type Rules struct {
	// Tokens that announce a password value follows
	PasswordIndicators []string `yaml:"password_indicators"`
	// Tokens that announce a username value follows
	UsernameIndicators []string `yaml:"username_indicators"`
	// Field-name tokens that are never stored as data
	ReservedKeywords []string `yaml:"reserved_keywords"`
	// Words skipped while looking for a label
	Stopwords []string `yaml:"stopwords"`

	// Normalizer: OCR correction gate and the field names it may repair
	OCRTriggers []string `yaml:"ocr_triggers"`
	FieldWords  []string `yaml:"field_words"`

	// Email domain -> label
	EmailProviders map[string]string `yaml:"email_providers"`
	// Checked in order, first match wins
	LinkTypes []LinkRule `yaml:"link_types"`

	MaxContentLength     int    `yaml:"max_content_length"`
	NoteMinLength        int    `yaml:"note_min_length"`
	CommandPrefix        string `yaml:"command_prefix"`
	MinPasswordLength    int    `yaml:"min_password_length"`
	StrongPasswordLength int    `yaml:"strong_password_length"`
	LongPasswordLength   int    `yaml:"long_password_length"`

	// Token windows of the primary heuristics
	ContextWindow  int `yaml:"context_window"`
	PairingWindow  int `yaml:"pairing_window"`
	NeighborWindow int `yaml:"neighbor_window"`

	DefaultLabel string `yaml:"default_label"`
}

// Field bounds enforced on every extracted value
const (
	MaxLabelLength    = 200
	MaxUsernameLength = 200
	MaxPasswordLength = 500
	MaxEmailLength    = 320
	MaxURLLength      = 2000
)

// DefaultRules returns the built-in classification rules
func DefaultRules() Rules {
	return Rules{
		PasswordIndicators: []string{
			"password", "passwd", "pass", "pwd", "passcode", "passphrase",
			"key", "secret", "token", "auth", "login",
		},
		UsernameIndicators: []string{
			"username", "user", "email", "e-mail", "login", "id", "account", "userid",
		},
		ReservedKeywords: []string{
			"username", "user", "password", "passwd", "pass", "pwd", "passcode", "passphrase",
			"email", "e-mail", "mail", "login", "id", "userid", "account", "key", "secret",
			"token", "auth", "label", "service", "site", "credential", "credentials",
		},
		Stopwords: []string{
			"a", "an", "the", "my", "our", "your", "his", "her", "their", "its", "it",
			"this", "that", "these", "those", "is", "are", "was", "be", "for", "of",
			"to", "in", "on", "at", "by", "with", "and", "or", "new", "here", "me",
			"i", "please", "save", "store", "remember", "keep", "note", "check",
			"out", "from", "as", "just", "also", "old", "main",
		},
		OCRTriggers: []string{"username", "password", "user", "pass", "login", "email"},
		FieldWords: []string{
			"username", "password", "passcode", "user", "pass", "pwd", "login", "email", "account",
		},
		EmailProviders: map[string]string{
			"gmail.com":      "Gmail",
			"googlemail.com": "Gmail",
			"outlook.com":    "Outlook",
			"hotmail.com":    "Outlook",
			"live.com":       "Outlook",
			"msn.com":        "Outlook",
			"yahoo.com":      "Yahoo",
			"yahoo.co.uk":    "Yahoo",
			"icloud.com":     "iCloud",
			"me.com":         "iCloud",
			"mac.com":        "iCloud",
			"aol.com":        "AOL",
			"zoho.com":       "Zoho",
			"protonmail.com": "Proton",
			"proton.me":      "Proton",
			"fastmail.com":   "Fastmail",
			"gmx.com":        "GMX",
			"gmx.de":         "GMX",
			"yandex.ru":      "Yandex",
			"yandex.com":     "Yandex",
			"mail.ru":        "Mail.ru",
		},
		LinkTypes: []LinkRule{
			{Type: models.LinkGitHub, Domains: []string{"github.com"}},
			{Type: models.LinkStackOverflow, Domains: []string{"stackoverflow.com"}},
			{Type: models.LinkYouTube, Domains: []string{"youtube.com", "youtu.be"}},
			{Type: models.LinkReddit, Domains: []string{"reddit.com"}},
			{Type: models.LinkTwitter, Domains: []string{"twitter.com", "x.com"}},
		},
		MaxContentLength:     10000,
		NoteMinLength:        50,
		CommandPrefix:        "/",
		MinPasswordLength:    6,
		StrongPasswordLength: 8,
		LongPasswordLength:   12,
		ContextWindow:        4,
		PairingWindow:        6,
		NeighborWindow:       3,
		DefaultLabel:         "Detected",
	}
}

// LoadRules reads a YAML file over the default rules.
// Keys missing from the file keep their default value.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("failed to parse rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return rules, err
	}
	return rules, nil
}

// Validate checks the thresholds are usable
func (r Rules) Validate() error {
	switch {
	case r.MaxContentLength <= 0:
		return fmt.Errorf("max_content_length must be positive, got %d", r.MaxContentLength)
	case r.MinPasswordLength <= 0:
		return fmt.Errorf("min_password_length must be positive, got %d", r.MinPasswordLength)
	case r.StrongPasswordLength < r.MinPasswordLength:
		return fmt.Errorf("strong_password_length %d is below min_password_length %d", r.StrongPasswordLength, r.MinPasswordLength)
	case r.LongPasswordLength < r.StrongPasswordLength:
		return fmt.Errorf("long_password_length %d is below strong_password_length %d", r.LongPasswordLength, r.StrongPasswordLength)
	case r.ContextWindow <= 0 || r.PairingWindow <= 0 || r.NeighborWindow <= 0:
		return fmt.Errorf("token windows must be positive")
	case r.DefaultLabel == "":
		return fmt.Errorf("default_label must not be empty")
	case len(r.PasswordIndicators) == 0 || len(r.UsernameIndicators) == 0:
		return fmt.Errorf("indicator lists must not be empty")
	}
	return nil
}
