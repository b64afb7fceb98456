package categorize

import "strings"

// token is one whitespace-separated word of the normalized text
type token struct {
	text string
	line int
}

// input is the normalized text in the shapes the heuristics read it
type input struct {
	text   string
	lines  []string
	tokens []token
}

func newInput(normalized string) *input {
	in := &input{text: normalized}
	if normalized == "" {
		return in
	}

	in.lines = strings.Split(normalized, "\n")
	for i, line := range in.lines {
		for _, w := range strings.Fields(line) {
			in.tokens = append(in.tokens, token{text: w, line: i})
		}
	}
	return in
}
