package categorize

import (
	"strings"
	"unicode"

	"github.com/mixelka/stashbot/pkg/models"
)

// secretDetector holds the primary credential and password heuristics
type secretDetector struct {
	vocab *vocabulary
}

func (d *secretDetector) label(tokens []token, idx int) string {
	if label := d.vocab.labelBefore(tokens, idx); label != "" {
		return label
	}
	return d.vocab.rules.DefaultLabel
}

// contextAdjacency emits the first strong password within a few tokens after a
// password indicator ("Gmail password: Secr3tPass")
func (d *secretDetector) contextAdjacency(in *input) []models.Finding {
	var found []models.Finding
	tokens := in.tokens

	for i, tok := range tokens {
		if !d.vocab.isPasswordIndicator(tok.text) {
			continue
		}

		for j := i + 1; j < len(tokens) && j-i <= d.vocab.rules.ContextWindow; j++ {
			// the next field starts here
			if d.vocab.isPasswordIndicator(tokens[j].text) {
				break
			}
			// "password for gmail: ..." names the field, the value comes later
			candidate, ok := fieldValue(tokens[j].text)
			if !ok {
				continue
			}
			if d.vocab.passwordCandidate(candidate, StrengthStrong) {
				label := d.vocab.labelBefore(tokens, j)
				if label == "" {
					// "gmailpassword: ..."
					label = d.vocab.cleanLabel(tok.text)
				}
				if label == "" {
					label = d.vocab.rules.DefaultLabel
				}
				found = append(found, models.Finding{
					Kind:     models.KindPassword,
					Label:    label,
					Password: candidate,
				})
				break
			}
		}
	}

	return found
}

// usernamePairing emits a credential when a username indicator is followed by
// a username and then a strong password ("user: bob pass: Hunter22!")
func (d *secretDetector) usernamePairing(in *input) []models.Finding {
	var found []models.Finding
	tokens := in.tokens
	window := d.vocab.rules.PairingWindow

	for i, tok := range tokens {
		if !d.vocab.isUsernameIndicator(tok.text) {
			continue
		}

		u := -1
		var username string
		for j := i + 1; j < len(tokens) && j-i <= window; j++ {
			candidate := strings.TrimRight(tokens[j].text, ",;")
			if d.vocab.usernameCandidate(candidate) {
				u, username = j, candidate
				break
			}
		}
		if u < 0 {
			continue
		}

		for k := u + 1; k < len(tokens) && k-u <= window; k++ {
			password, ok := fieldValue(tokens[k].text)
			if !ok || !d.vocab.passwordCandidate(password, StrengthStrong) {
				continue
			}
			if password == username {
				break
			}

			label := d.vocab.labelBefore(tokens, u)
			if label == "" {
				label = truncateRunes(username, MaxLabelLength)
			}
			found = append(found, models.Finding{
				Kind:     models.KindCredential,
				Label:    label,
				Username: username,
				Password: password,
			})
			break
		}
	}

	return found
}

// keyValueLines emits a password for "<something> password: value" lines
func (d *secretDetector) keyValueLines(in *input) []models.Finding {
	var found []models.Finding

	for _, line := range in.lines {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value, ok = fieldValue(strings.TrimSpace(value))
		if !ok || !d.keyNamesPassword(key) {
			continue
		}
		if !d.vocab.passwordCandidate(value, StrengthStrong) {
			continue
		}

		label := d.vocab.cleanLabel(key)
		if label == "" {
			label = d.vocab.rules.DefaultLabel
		}
		found = append(found, models.Finding{
			Kind:     models.KindPassword,
			Label:    label,
			Password: value,
		})
	}

	return found
}

// keyNamesPassword reports whether any word of key is, or starts or ends with,
// a password indicator ("wifipassword for home")
func (d *secretDetector) keyNamesPassword(key string) bool {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-' || r == '.'
	})
	for _, w := range words {
		c := core(w)
		if d.vocab.passwordIndicators[c] || d.vocab.embeddedIndicator(c) != "" {
			return true
		}
	}
	return false
}

// unanchored emits strong password-shaped tokens that sit near a field name.
// A username indicator alone is weaker evidence, so it needs maximum strength.
func (d *secretDetector) unanchored(in *input) []models.Finding {
	var found []models.Finding
	tokens := in.tokens
	window := d.vocab.rules.NeighborWindow

	for i, tok := range tokens {
		value, ok := fieldValue(tok.text)
		if !ok || !d.vocab.passwordCandidate(value, StrengthStrong) {
			continue
		}

		var nearPassword, nearUsername bool
		for j := max(0, i-window); j < len(tokens) && j <= i+window; j++ {
			if j == i {
				continue
			}
			if d.vocab.isPasswordIndicator(tokens[j].text) {
				nearPassword = true
			}
			if d.vocab.isUsernameIndicator(tokens[j].text) {
				nearUsername = true
			}
		}

		if !nearPassword && !(nearUsername && d.vocab.strength(value) == StrengthMaximum) {
			continue
		}

		found = append(found, models.Finding{
			Kind:     models.KindPassword,
			Label:    d.label(tokens, i),
			Password: value,
		})
	}

	return found
}

// mergeSecrets deduplicates findings by password value, first occurrence wins.
// A credential replaces an earlier standalone password with the same value.
func mergeSecrets(findings []models.Finding) []models.Finding {
	var merged []models.Finding
	index := make(map[string]int)

	for _, f := range findings {
		pos, seen := index[f.Password]
		if !seen {
			index[f.Password] = len(merged)
			merged = append(merged, f)
			continue
		}
		if merged[pos].Kind == models.KindPassword && f.Kind == models.KindCredential {
			merged[pos] = f
		}
	}

	return merged
}
