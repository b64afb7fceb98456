package categorize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Strength how confidently a token looks like a password
type Strength int

const (
	StrengthNone Strength = iota
	// length >= MinPasswordLength, two character classes
	StrengthPlausible
	// length >= StrongPasswordLength, two character classes
	StrengthStrong
	// three classes at StrongPasswordLength, or two at LongPasswordLength
	StrengthMaximum
)

var (
	labelShape    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9&+._-]{0,39}$`)
	usernameShape = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	emailShape    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[A-Za-z]{2,}$`)
	// "ingredients:", "pwd=" but not base64 padding like "dGVzdA1="
	fieldShape    = regexp.MustCompile(`^\S*:$|^[A-Za-z_-]+=$`)
)

// minEmbeddedIndicator is the shortest indicator matched inside a longer word ("wifipassword")
const minEmbeddedIndicator = 5

// edgePunct is trimmed from tokens before keyword comparison
const edgePunct = ":=,;!?\"'()[]{}<>*`-."

// vocabulary is the shared predicate set every heuristic classifies with
type vocabulary struct {
	rules              Rules
	passwordIndicators map[string]bool
	usernameIndicators map[string]bool
	reserved           map[string]bool
	stopwords          map[string]bool
	// password indicators long enough to be found inside a word, longest first
	embedded           []string
}

func newVocabulary(rules Rules) *vocabulary {
	var embedded []string
	for _, kw := range rules.PasswordIndicators {
		if len(kw) >= minEmbeddedIndicator {
			embedded = append(embedded, strings.ToLower(kw))
		}
	}
	sort.SliceStable(embedded, func(i, j int) bool { return len(embedded[i]) > len(embedded[j]) })

	return &vocabulary{
		rules:              rules,
		passwordIndicators: toSet(rules.PasswordIndicators),
		usernameIndicators: toSet(rules.UsernameIndicators),
		reserved:           toSet(append(append(append([]string{}, rules.ReservedKeywords...), rules.PasswordIndicators...), rules.UsernameIndicators...)),
		stopwords:          toSet(rules.Stopwords),
		embedded:           embedded,
	}
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

// core lowercases a token and strips surrounding punctuation
func core(token string) string {
	return strings.ToLower(strings.Trim(token, edgePunct))
}

// isReserved reports whether token is a structural field name (or pure punctuation)
func (v *vocabulary) isReserved(token string) bool {
	c := core(token)
	return c == "" || v.reserved[c]
}

func (v *vocabulary) isPasswordIndicator(token string) bool {
	return isIndicator(token, v.passwordIndicators)
}

func (v *vocabulary) isUsernameIndicator(token string) bool {
	return isIndicator(token, v.usernameIndicators)
}

// isIndicator reports whether token names a field from set. Values that merely
// contain a keyword ("mypassword123", "john@email.com") are not indicators.
func isIndicator(token string, set map[string]bool) bool {
	c := core(token)
	if c == "" {
		return false
	}
	if set[c] {
		return true
	}

	for _, part := range strings.FieldsFunc(c, func(r rune) bool { return r == '_' || r == '-' }) {
		if set[part] {
			return true
		}
	}

	// "gmailpassword:" style field names
	if strings.HasSuffix(token, ":") || strings.HasSuffix(token, "=") {
		for kw := range set {
			if len(kw) >= minEmbeddedIndicator && (strings.HasPrefix(c, kw) || strings.HasSuffix(c, kw)) {
				return true
			}
		}
	}
	return false
}

// embeddedIndicator returns the password indicator a lowercased word starts or
// ends with ("wifipassword", "passwordgmail"), or ""
func (v *vocabulary) embeddedIndicator(word string) string {
	for _, kw := range v.embedded {
		if word != kw && (strings.HasPrefix(word, kw) || strings.HasSuffix(word, kw)) {
			return kw
		}
	}
	return ""
}

// fieldValue returns token as a field value with trailing sentence punctuation
// removed. A token ending in ':' or '=' names a field and is not a value.
func fieldValue(token string) (string, bool) {
	if fieldShape.MatchString(token) {
		return "", false
	}
	value := strings.TrimRight(token, ",;.")
	return value, value != ""
}

func (v *vocabulary) isStopword(token string) bool {
	return v.stopwords[core(token)]
}

// charClasses counts distinct classes among upper, lower, digit, symbol
func charClasses(s string) int {
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	n := 0
	for _, b := range []bool{upper, lower, digit, symbol} {
		if b {
			n++
		}
	}
	return n
}

// strength grades token against the password-shape invariant
func (v *vocabulary) strength(token string) Strength {
	n := utf8.RuneCountInString(token)
	if n < v.rules.MinPasswordLength || len(token) > MaxPasswordLength {
		return StrengthNone
	}
	if strings.IndexFunc(token, unicode.IsSpace) >= 0 {
		return StrengthNone
	}

	classes := charClasses(token)
	switch {
	case classes < 2:
		return StrengthNone
	case n >= v.rules.StrongPasswordLength && classes >= 3,
		n >= v.rules.LongPasswordLength:
		return StrengthMaximum
	case n >= v.rules.StrongPasswordLength:
		return StrengthStrong
	default:
		return StrengthPlausible
	}
}

// passwordCandidate reports whether token may be stored as a password at the given strength.
// Emails and URLs are never passwords.
func (v *vocabulary) passwordCandidate(token string, min Strength) bool {
	if v.isReserved(token) || isEmailLike(token) || isURLLike(token) {
		return false
	}
	return v.strength(token) >= min
}

// usernameCandidate reports whether token is shaped like a username
func (v *vocabulary) usernameCandidate(token string) bool {
	if v.isReserved(token) || v.isStopword(token) || len(token) > MaxUsernameLength || isURLLike(token) {
		return false
	}
	return strings.Contains(token, "@") || usernameShape.MatchString(token)
}

func isEmailLike(token string) bool {
	return emailShape.MatchString(strings.Trim(token, edgePunct))
}

// isURLLike reports whether token is a URL or a bare public domain ("github.com/bob")
func isURLLike(token string) bool {
	lower := strings.ToLower(strings.Trim(token, edgePunct))
	if strings.Contains(lower, "://") || strings.HasPrefix(lower, "www.") {
		return true
	}
	host := lower
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return hostShape.MatchString(host) && isPublicHost(host)
}

// labelCandidate returns the label a token spells, or "" when it is not label-shaped
func (v *vocabulary) labelCandidate(token string) string {
	trimmed := strings.Trim(token, edgePunct)
	if trimmed == "" || v.isReserved(trimmed) || v.isStopword(trimmed) {
		return ""
	}
	if v.isPasswordIndicator(token) || v.isUsernameIndicator(token) {
		return ""
	}
	if !labelShape.MatchString(trimmed) || v.strength(trimmed) >= StrengthStrong {
		return ""
	}
	return titleCase(trimmed)
}

// labelBefore walks back from idx for the nearest token usable as a label
func (v *vocabulary) labelBefore(tokens []token, idx int) string {
	limit := v.rules.PairingWindow
	for j := idx - 1; j >= 0 && idx-j <= limit; j-- {
		if label := v.labelCandidate(tokens[j].text); label != "" {
			return label
		}
	}
	return ""
}

// cleanLabel turns a free-form key ("gmail_password", "Work e-mail") into a label
func (v *vocabulary) cleanLabel(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-' || r == '.'
	})

	kept := words[:0]
	for _, w := range words {
		c := core(w)
		if c == "" || v.passwordIndicators[c] || v.usernameIndicators[c] || v.stopwords[c] {
			continue
		}
		w = strings.Trim(w, edgePunct)
		if kw := v.embeddedIndicator(c); kw != "" && len(c) == len(w) {
			if strings.HasPrefix(c, kw) {
				w = w[len(kw):]
			} else {
				w = w[:len(w)-len(kw)]
			}
			w = strings.Trim(w, edgePunct)
			if w == "" || v.stopwords[strings.ToLower(w)] {
				continue
			}
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return ""
	}
	return truncateRunes(titleCase(strings.Join(kept, " ")), MaxLabelLength)
}

// titleCase upper-cases the first letter of every word and keeps the rest ("GitHub" stays)
func titleCase(s string) string {
	return cases.Title(language.English, cases.NoLower).String(s)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
