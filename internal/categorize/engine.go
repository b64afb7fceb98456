package categorize

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mixelka/stashbot/internal/parser"
	"github.com/mixelka/stashbot/pkg/models"
)

// heuristic is one independent pure extraction step
type heuristic struct {
	Name string
	Run  func(in *input) []models.Finding
}

// Engine turns free text into typed findings.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	rules      Rules
	normalizer *parser.Normalizer
	logger     *slog.Logger

	primary    []heuristic
	convenient []heuristic
	emails     heuristic
	links      heuristic
}

// NewEngine compiles rules into an engine
func NewEngine(rules Rules, logger *slog.Logger) *Engine {
	vocab := newVocabulary(rules)
	secrets := &secretDetector{vocab: vocab}
	shorthand := newConvenientDetector(vocab)

	return &Engine{
		rules:      rules,
		normalizer: parser.NewNormalizer(rules.OCRTriggers, rules.FieldWords),
		logger:     logger.With("component", "categorize"),
		primary: []heuristic{
			{Name: "context_adjacency", Run: secrets.contextAdjacency},
			{Name: "username_pairing", Run: secrets.usernamePairing},
			{Name: "key_value_lines", Run: secrets.keyValueLines},
			{Name: "unanchored", Run: secrets.unanchored},
		},
		convenient: []heuristic{
			{Name: "convenient_lines", Run: shorthand.lineForms},
			{Name: "convenient_short", Run: shorthand.shortForms},
		},
		emails: heuristic{Name: "emails", Run: newEmailDetector(rules).detect},
		links:  heuristic{Name: "links", Run: newLinkDetector(rules).detect},
	}
}

// Normalize exposes the engine's text normalizer
func (e *Engine) Normalize(text string) string {
	return e.normalizer.Normalize(e.truncate(text))
}

// Extract classifies text. Findings are ordered credentials and passwords
// first, then emails, links and finally the note.
func (e *Engine) Extract(text string) []models.Finding {
	normalized := e.Normalize(text)
	if normalized == "" {
		return nil
	}
	in := newInput(normalized)

	var secrets []models.Finding
	for _, h := range e.primary {
		secrets = append(secrets, e.run(h, in)...)
	}
	secrets = mergeSecrets(secrets)

	// shorthand formats only when nothing better matched; the first one that hits wins
	if len(secrets) == 0 {
		for _, h := range e.convenient {
			if secrets = dedupe(e.run(h, in)); len(secrets) > 0 {
				break
			}
		}
	}

	findings := secrets
	findings = append(findings, e.run(e.emails, in)...)
	findings = append(findings, e.run(e.links, in)...)

	if e.wantsNote(normalized, len(findings) > 0) {
		findings = append(findings, models.Finding{Kind: models.KindNote, Text: normalized})
	}

	return dedupe(findings)
}

// run executes one heuristic; a panic only loses that heuristic's findings
func (e *Engine) run(h heuristic, in *input) (found []models.Finding) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("heuristic failed", "heuristic", h.Name, "panic", r)
			found = nil
		}
	}()

	return h.Run(in)
}

// truncate bounds the input before any regex sees it
func (e *Engine) truncate(text string) string {
	if utf8.RuneCountInString(text) <= e.rules.MaxContentLength {
		return text
	}
	e.logger.Debug("content truncated", "length", utf8.RuneCountInString(text), "max", e.rules.MaxContentLength)
	return truncateRunes(text, e.rules.MaxContentLength)
}

// wantsNote keeps free text unless it is a command, or it is short and already
// fully explained by structured findings
func (e *Engine) wantsNote(content string, structured bool) bool {
	if e.rules.CommandPrefix != "" && strings.HasPrefix(content, e.rules.CommandPrefix) {
		return false
	}
	if !structured {
		return true
	}
	return utf8.RuneCountInString(content) > e.rules.NoteMinLength
}
