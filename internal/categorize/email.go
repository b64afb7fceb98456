package categorize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"

	"github.com/mixelka/stashbot/pkg/models"
)

// emailDetector finds email addresses, including ones OCR has broken apart
type emailDetector struct {
	providers map[string]string
	patterns  []*emailPattern
	spaces    *regexp.Regexp
}

type emailPattern struct {
	Name  string
	Regex *regexp.Regexp
}

func newEmailDetector(rules Rules) *emailDetector {
	providers := make(map[string]string, len(rules.EmailProviders))
	for domain, label := range rules.EmailProviders {
		providers[strings.ToLower(domain)] = label
	}

	return &emailDetector{
		providers: providers,
		patterns: []*emailPattern{
			{
				Name:  "strict",
				Regex: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
			},
			// comma read in place of a dot
			{
				Name:  "ocr",
				Regex: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(?:[.,][A-Za-z0-9-]+)*[.,][A-Za-z]{2,}`),
			},
			// spaces around @ and dots: "john @ gmail . com"
			{
				Name:  "spaced",
				Regex: regexp.MustCompile(`[A-Za-z0-9._%+-]+[ \t]*@[ \t]*[A-Za-z0-9-]+(?:[ \t]*\.[ \t]*[A-Za-z0-9-]+)*[ \t]*\.[ \t]*[A-Za-z]{2,}`),
			},
		},
		spaces: regexp.MustCompile(`[ \t]+`),
	}
}

// detect returns one finding per distinct address, in order of first appearance
func (d *emailDetector) detect(in *input) []models.Finding {
	var found []models.Finding
	seen := make(map[string]bool)

	for _, pattern := range d.patterns {
		for _, match := range pattern.Regex.FindAllString(in.text, -1) {
			address, ok := d.clean(match)
			if !ok {
				continue
			}

			key := strings.ToLower(address)
			if seen[key] {
				continue
			}
			seen[key] = true

			found = append(found, models.Finding{
				Kind:    models.KindEmail,
				Address: address,
				Label:   d.providerLabel(address),
			})
		}
	}

	return found
}

// clean repairs an OCR-damaged match and reports whether it is still an address
func (d *emailDetector) clean(match string) (string, bool) {
	address := d.spaces.ReplaceAllString(match, "")
	address = strings.ReplaceAll(address, ",", ".")
	address = strings.Trim(address, ".")

	if len(address) > MaxEmailLength || strings.Count(address, "@") != 1 {
		return "", false
	}
	local, domain, _ := strings.Cut(address, "@")
	if local == "" || !strings.Contains(domain, ".") || strings.Contains(domain, "..") {
		return "", false
	}

	// repaired matches must end in a real TLD so "bob@site.com. Thanks" stays out,
	// and not in the first word of a sentence ("me @ work. It is")
	if address != match {
		if _, icann := publicsuffix.PublicSuffix(strings.ToLower(domain)); !icann {
			return "", false
		}
		if capitalized(domain[strings.LastIndex(domain, ".")+1:]) {
			return "", false
		}
	}

	return address, true
}

func (d *emailDetector) providerLabel(address string) string {
	_, domain, _ := strings.Cut(address, "@")
	return d.providers[strings.ToLower(domain)]
}

// capitalized reports whether word is an upper-case letter followed by lower-case ones
func capitalized(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}
