package categorize

import (
	"regexp"
	"strings"

	"github.com/mixelka/stashbot/pkg/models"
)

// convenientDetector recognizes the loose shorthand formats people type when
// saving a secret quickly. It only runs when the primary heuristics found nothing.
type convenientDetector struct {
	vocab *vocabulary

	serviceSlash *regexp.Regexp
	blockUser    *regexp.Regexp
	blockPass    *regexp.Regexp
	userPassFor  *regexp.Regexp
	passFor      *regexp.Regexp
}

func newConvenientDetector(vocab *vocabulary) *convenientDetector {
	return &convenientDetector{
		vocab: vocab,
		// gmail: bob/Hunter22
		serviceSlash: regexp.MustCompile(`^([A-Za-z][A-Za-z0-9&+. _-]{0,39}?)\s*:\s*([^\s/:]+)\s*/\s*(\S+)$`),
		// three-line block: service / user: X / pass: Y
		blockUser: regexp.MustCompile(`(?i)^(?:user(?:name)?|login|e-?mail|account)\s*[:=]\s*(\S+)$`),
		blockPass: regexp.MustCompile(`(?i)^(?:pass(?:word|code)?|pwd)\s*[:=]\s*(\S+)$`),
		// user bob password Hunter22 for github
		userPassFor: regexp.MustCompile(`(?i)\b(?:user(?:name)?|login|e-?mail)(?:\s*[:=]\s*|\s+)(\S+)\s+(?:pass(?:word)?|pwd)(?:\s*[:=]\s*|\s+)(\S+)(?:\s+(?:for|on|at)\s+(\S+))?`),
		// pass for github: Hunter22
		passFor: regexp.MustCompile(`(?i)\b(?:pass(?:word)?|pwd)\s+(?:for\s+)?([A-Za-z][A-Za-z0-9&+._-]{0,39})\s*:\s*(\S+)`),
	}
}

func (d *convenientDetector) credential(label, username, password string) (models.Finding, bool) {
	username = strings.TrimRight(username, ",;")
	password, ok := fieldValue(password)
	if !ok || !d.vocab.usernameCandidate(username) || !d.vocab.passwordCandidate(password, StrengthPlausible) {
		return models.Finding{}, false
	}
	if username == password {
		return models.Finding{}, false
	}
	if label == "" {
		label = truncateRunes(username, MaxLabelLength)
	}
	return models.Finding{
		Kind:     models.KindCredential,
		Label:    label,
		Username: username,
		Password: password,
	}, true
}

func (d *convenientDetector) password(label, password string) (models.Finding, bool) {
	password, ok := fieldValue(password)
	if !ok || !d.vocab.passwordCandidate(password, StrengthPlausible) {
		return models.Finding{}, false
	}
	if label == "" {
		label = d.vocab.rules.DefaultLabel
	}
	return models.Finding{
		Kind:     models.KindPassword,
		Label:    label,
		Password: password,
	}, true
}

// shortForms handles whole messages of the shape "service user pass" and "service pass"
func (d *convenientDetector) shortForms(in *input) []models.Finding {
	tokens := in.tokens

	switch len(tokens) {
	case 3:
		label := d.vocab.labelCandidate(tokens[0].text)
		if label == "" {
			return nil
		}
		if f, ok := d.credential(label, tokens[1].text, tokens[2].text); ok {
			return []models.Finding{f}
		}
	case 2:
		label := d.vocab.labelCandidate(tokens[0].text)
		if label == "" {
			return nil
		}
		if f, ok := d.password(label, tokens[1].text); ok {
			return []models.Finding{f}
		}
	}
	return nil
}

// lineForms handles the line-oriented shorthand formats
func (d *convenientDetector) lineForms(in *input) []models.Finding {
	var found []models.Finding

	for i, line := range in.lines {
		if m := d.serviceSlash.FindStringSubmatch(line); m != nil {
			// "repo: github.com/bob" is a link, not user/pass
			if isURLLike(m[2] + "/" + m[3]) {
				continue
			}
			if f, ok := d.credential(d.vocab.cleanLabel(m[1]), m[2], m[3]); ok {
				found = append(found, f)
			}
			continue
		}

		if i+2 < len(in.lines) {
			user := d.blockUser.FindStringSubmatch(in.lines[i+1])
			pass := d.blockPass.FindStringSubmatch(in.lines[i+2])
			if user != nil && pass != nil {
				if label := d.vocab.labelCandidate(line); label != "" {
					if f, ok := d.credential(label, user[1], pass[1]); ok {
						found = append(found, f)
					}
					continue
				}
			}
		}

		if m := d.userPassFor.FindStringSubmatch(line); m != nil {
			if f, ok := d.credential(d.vocab.labelCandidate(m[3]), m[1], m[2]); ok {
				found = append(found, f)
			}
			continue
		}

		if m := d.passFor.FindStringSubmatch(line); m != nil {
			if f, ok := d.password(d.vocab.labelCandidate(m[1]), m[2]); ok {
				found = append(found, f)
			}
		}
	}

	return found
}

// dedupe drops repeated findings, keeping the first
func dedupe(findings []models.Finding) []models.Finding {
	seen := make(map[string]bool, len(findings))
	out := findings[:0]
	for _, f := range findings {
		key := f.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}
