package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default keyword sets used by NewNormalizer when none are given.
var (
	defaultTriggerWords = []string{"username", "password", "user", "pass", "login", "email"}
	defaultFieldWords   = []string{"username", "password", "passcode", "user", "pass", "pwd", "login", "email", "account"}
)

// ocrConfusions maps characters OCR commonly emits in place of letters
var ocrConfusions = map[rune][]rune{
	'0': {'o'},
	'1': {'i', 'l'},
	'|': {'i', 'l'},
	'5': {'s'},
}

// Normalizer cleans raw chat or OCR text before classification
type Normalizer struct {
	triggers   []string
	fieldWords []string
	punct      *strings.Replacer
}

// NewNormalizer creates a normalizer. OCR correction is only applied when the
// content contains one of triggers; confusable characters are only fixed in
// words that then spell one of fieldWords.
func NewNormalizer(triggers, fieldWords []string) *Normalizer {
	if len(triggers) == 0 {
		triggers = defaultTriggerWords
	}
	if len(fieldWords) == 0 {
		fieldWords = defaultFieldWords
	}

	lowered := make([]string, len(fieldWords))
	for i, w := range fieldWords {
		lowered[i] = strings.ToLower(w)
	}

	return &Normalizer{
		triggers:   triggers,
		fieldWords: lowered,
		punct: strings.NewReplacer(
			"“", `"`, "”", `"`, "„", `"`,
			"‘", "'", "’", "'",
			"–", "-", "—", "-", "−", "-",
		),
	}
}

// Normalize collapses whitespace inside each line, drops empty lines and,
// when the text looks like it carries field names, repairs OCR damage.
// Normalize(Normalize(s)) == Normalize(s).
func (n *Normalizer) Normalize(raw string) string {
	lines := splitWords(raw)
	if len(lines) == 0 {
		return ""
	}

	if n.shouldCorrect(lines) {
		for _, words := range lines {
			// the word after a field name is its value and keeps its spelling ("password: Pa55w0rd")
			afterField := false
			for i, w := range words {
				if afterField {
					words[i] = n.punct.Replace(w)
					if _, core, _ := splitPunct(words[i]); core != "" {
						afterField = false
					}
					continue
				}
				words[i] = n.correctWord(w)
				afterField = n.isFieldWord(words[i])
			}
		}
	}

	out := make([]string, len(lines))
	for i, words := range lines {
		out[i] = strings.Join(words, " ")
	}
	return strings.Join(out, "\n")
}

func (n *Normalizer) shouldCorrect(lines [][]string) bool {
	for _, words := range lines {
		for _, w := range words {
			lw := strings.ToLower(w)
			for _, t := range n.triggers {
				if strings.Contains(lw, t) {
					return true
				}
			}
		}
	}
	return false
}

func (n *Normalizer) correctWord(word string) string {
	word = n.punct.Replace(word)
	if len([]rune(word)) <= 2 {
		return word
	}

	prefix, core, suffix := splitPunct(word)
	if core == "" || !strings.ContainsAny(core, "015|") {
		return word
	}

	for _, field := range n.fieldWords {
		if confusableEqual(core, field) {
			return prefix + matchCase(core, field) + suffix
		}
	}
	return word
}

func (n *Normalizer) isFieldWord(word string) bool {
	_, core, _ := splitPunct(word)
	core = strings.ToLower(core)
	for _, field := range n.fieldWords {
		if core == field {
			return true
		}
	}
	return false
}

// confusableEqual reports whether word spells field once OCR confusions are undone
func confusableEqual(word, field string) bool {
	wr := []rune(strings.ToLower(word))
	fr := []rune(field)
	if len(wr) != len(fr) {
		return false
	}

	for i, r := range wr {
		if r == fr[i] {
			continue
		}
		alts, ok := ocrConfusions[r]
		if !ok {
			return false
		}
		found := false
		for _, a := range alts {
			if a == fr[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchCase spells field with the letter case found in word
func matchCase(word, field string) string {
	var upper, lower int
	firstUpper := false
	for i, r := range word {
		if unicode.IsUpper(r) {
			upper++
			if i == 0 {
				firstUpper = true
			}
		} else if unicode.IsLower(r) {
			lower++
		}
	}

	switch {
	case upper > 0 && lower == 0 && upper > 1:
		return strings.ToUpper(field)
	case firstUpper:
		return strings.ToUpper(field[:1]) + field[1:]
	default:
		return field
	}
}

// splitPunct separates leading and trailing punctuation (":", "=", quotes) from a word
func splitPunct(word string) (prefix, core, suffix string) {
	isEdge := func(r rune) bool {
		return r != '|' && (unicode.IsPunct(r) || unicode.IsSymbol(r))
	}
	start := strings.IndexFunc(word, func(r rune) bool { return !isEdge(r) })
	if start < 0 {
		return word, "", ""
	}
	end := strings.LastIndexFunc(word, func(r rune) bool { return !isEdge(r) })
	_, size := utf8.DecodeRuneInString(word[end:])
	end += size
	return word[:start], word[start:end], word[end:]
}

// splitWords splits text into non-empty lines of whitespace separated words
func splitWords(text string) [][]string {
	var lines [][]string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) > 0 {
			lines = append(lines, words)
		}
	}
	return lines
}

// CollapseLines trims every line, collapses inner whitespace and removes empty lines
func CollapseLines(text string) string {
	lines := splitWords(text)
	out := make([]string, len(lines))
	for i, words := range lines {
		out[i] = strings.Join(words, " ")
	}
	return strings.Join(out, "\n")
}
