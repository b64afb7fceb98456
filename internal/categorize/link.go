package categorize

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/mixelka/stashbot/pkg/models"
)

// hostShape is a lowercased dotted host name ending in an alphabetic TLD
var hostShape = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,24}$`)

// isPublicHost reports whether host sits under an ICANN public suffix ("example.com", not "report.pdf")
func isPublicHost(host string) bool {
	suffix, icann := publicsuffix.PublicSuffix(host)
	return icann && suffix != host
}

// linkDetector finds URLs, including bare domains and OCR-spaced schemes
type linkDetector struct {
	linkTypes []LinkRule

	scheme    *regexp.Regexp
	ocrScheme *regexp.Regexp
	bare      *regexp.Regexp
	youtube   *regexp.Regexp
	spaces    *regexp.Regexp
}

func newLinkDetector(rules Rules) *linkDetector {
	return &linkDetector{
		linkTypes: rules.LinkTypes,
		scheme:    regexp.MustCompile(`(?i)\bhttps?://[^\s<>"']+`),
		// "https : // example.com"
		ocrScheme: regexp.MustCompile(`(?i)\bhttps?[ \t]*:[ \t]*//[ \t]*[^\s<>"']+`),
		bare:      regexp.MustCompile(`(?i)\b(?:www\.)?[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)*\.[a-z]{2,24}\b(?:[/?#][^\s<>"']*)?`),
		youtube:   regexp.MustCompile(`(?i)(?:youtube\.com/(?:watch|shorts|embed|live)|youtu\.be/)`),
		spaces:    regexp.MustCompile(`\s+`),
	}
}

type linkMatch struct {
	start int
	url   string
}

// detect returns one finding per distinct URL, in order of appearance
func (d *linkDetector) detect(in *input) []models.Finding {
	var matches []linkMatch
	var spans [][]int

	for _, re := range []*regexp.Regexp{d.scheme, d.ocrScheme} {
		for _, loc := range re.FindAllStringIndex(in.text, -1) {
			spans = append(spans, loc)
			matches = append(matches, linkMatch{start: loc[0], url: in.text[loc[0]:loc[1]]})
		}
	}

	for _, loc := range d.bare.FindAllStringIndex(in.text, -1) {
		if overlaps(loc, spans) || !d.bareBoundary(in.text, loc) {
			continue
		}
		matches = append(matches, linkMatch{start: loc[0], url: in.text[loc[0]:loc[1]]})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	var found []models.Finding
	seen := make(map[string]bool)
	for _, m := range matches {
		link, ok := d.clean(m.url)
		if !ok || seen[link] {
			continue
		}
		seen[link] = true

		found = append(found, models.Finding{
			Kind:     models.KindLink,
			URL:      link,
			LinkType: d.classify(link),
		})
	}

	return found
}

func overlaps(loc []int, spans [][]int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}

// bareBoundary rejects bare domains that are part of an email, a path or a longer host
func (d *linkDetector) bareBoundary(text string, loc []int) bool {
	if loc[0] > 0 {
		switch text[loc[0]-1] {
		case '@', '/', ':', '.':
			return false
		}
	}
	if loc[1] < len(text) && text[loc[1]] == '@' {
		return false
	}

	host := strings.ToLower(text[loc[0]:loc[1]])
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return isPublicHost(host)
}

// clean strips OCR whitespace and trailing punctuation, adds a scheme and validates
func (d *linkDetector) clean(raw string) (string, bool) {
	link := d.spaces.ReplaceAllString(raw, "")
	for {
		trimmed := strings.TrimRight(link, ".,;:!?")
		if strings.HasSuffix(trimmed, ")") && strings.Count(trimmed, "(") < strings.Count(trimmed, ")") {
			trimmed = strings.TrimSuffix(trimmed, ")")
		}
		if trimmed == link {
			break
		}
		link = trimmed
	}

	lower := strings.ToLower(link)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		link = "http://" + link
	}

	if len(link) > MaxURLLength {
		return "", false
	}
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return link, true
}

// classify picks the link type: a YouTube video pattern first, then the host table
func (d *linkDetector) classify(link string) models.LinkType {
	if d.youtube.MatchString(link) {
		return models.LinkYouTube
	}

	u, err := url.Parse(link)
	if err != nil {
		return models.LinkGeneral
	}
	host := strings.ToLower(u.Hostname())

	for _, rule := range d.linkTypes {
		for _, domain := range rule.Domains {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return rule.Type
			}
		}
	}
	return models.LinkGeneral
}
