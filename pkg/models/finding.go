package models

import "strings"

// Kind category of a classified piece of text
type Kind string

const (
	KindCredential Kind = "credential"
	KindPassword   Kind = "password"
	KindEmail      Kind = "email"
	KindLink       Kind = "link"
	KindNote       Kind = "note"
)

// LinkType classification of a saved URL
type LinkType string

const (
	LinkGeneral       LinkType = "general"
	LinkYouTube       LinkType = "youtube"
	LinkGitHub        LinkType = "github"
	LinkStackOverflow LinkType = "stackoverflow"
	LinkReddit        LinkType = "reddit"
	LinkTwitter       LinkType = "twitter"
)

// Finding is a single piece of structured data extracted from one message.
// Only the fields relevant to Kind are set.
type Finding struct {
	Kind     Kind     `yaml:"kind"`
	Label    string   `yaml:"label,omitempty"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Address  string   `yaml:"address,omitempty"`
	URL      string   `yaml:"url,omitempty"`
	LinkType LinkType `yaml:"link_type,omitempty"`
	Text     string   `yaml:"text,omitempty"`
}

// Key returns the type+value key used to deduplicate findings of one input
func (f Finding) Key() string {
	switch f.Kind {
	case KindCredential:
		return strings.Join([]string{string(f.Kind), f.Label, f.Username, f.Password}, "\x00")
	case KindPassword:
		return strings.Join([]string{string(f.Kind), f.Label, f.Password}, "\x00")
	case KindEmail:
		return string(f.Kind) + "\x00" + strings.ToLower(f.Address)
	case KindLink:
		return string(f.Kind) + "\x00" + f.URL
	default:
		return string(f.Kind) + "\x00" + f.Text
	}
}

// IsSecret reports whether the finding carries a password
func (f Finding) IsSecret() bool {
	return f.Kind == KindCredential || f.Kind == KindPassword
}
