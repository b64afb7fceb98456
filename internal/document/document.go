package document

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/mixelka/stashbot/internal/parser"
)

// ErrUnsupported is returned for documents that are not text
var ErrUnsupported = errors.New("unsupported document type")

// ErrTooLarge is returned when a document exceeds the size limit
var ErrTooLarge = errors.New("document too large")

// Kind of text document the bot accepts
type Kind int

const (
	KindUnknown Kind = iota
	KindPlain
	KindHTML
	KindMail
)

// Extractor converts uploaded text documents to plain text
type Extractor struct {
	html    *parser.HTMLParser
	maxSize int64
}

// NewExtractor creates an extractor that reads at most maxSize bytes
func NewExtractor(html *parser.HTMLParser, maxSize int64) *Extractor {
	return &Extractor{html: html, maxSize: maxSize}
}

// Detect picks the document kind from its MIME type, falling back to the file extension
func Detect(mimeType, fileName string) Kind {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(mimeType)
	}

	switch mediaType {
	case "text/plain", "text/markdown", "text/csv":
		return KindPlain
	case "text/html", "application/xhtml+xml":
		return KindHTML
	case "message/rfc822":
		return KindMail
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".md", ".csv", ".log":
		return KindPlain
	case ".html", ".htm":
		return KindHTML
	case ".eml":
		return KindMail
	}
	return KindUnknown
}

// Supported reports whether a document can be converted
func Supported(mimeType, fileName string) bool {
	return Detect(mimeType, fileName) != KindUnknown
}

// Extract reads r and returns its text content
func (e *Extractor) Extract(r io.Reader, mimeType, fileName string) (string, error) {
	kind := Detect(mimeType, fileName)
	if kind == KindUnknown {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}

	data, err := io.ReadAll(io.LimitReader(r, e.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if int64(len(data)) > e.maxSize {
		return "", ErrTooLarge
	}

	switch kind {
	case KindHTML:
		return e.html.Parse(strings.ToValidUTF8(string(data), ""))
	case KindMail:
		return e.parseMail(strings.NewReader(string(data)))
	default:
		return parser.CollapseLines(strings.ToValidUTF8(string(data), "")), nil
	}
}

// parseMail turns a saved email into "Subject/From" lines plus its body.
// The plain text part is preferred; HTML is converted when it is the only body.
func (e *Extractor) parseMail(r io.Reader) (string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to create mail reader: %w", err)
	}
	defer mr.Close()

	var lines []string
	if subject, err := mr.Header.Subject(); err == nil && subject != "" {
		lines = append(lines, "Subject: "+subject)
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		lines = append(lines, "From: "+from[0].Address)
	}

	var bodyText, bodyHTML string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		if strings.HasPrefix(ct, "text/html") && bodyHTML == "" {
			bodyHTML = string(body)
		} else if strings.HasPrefix(ct, "text/plain") && bodyText == "" {
			bodyText = string(body)
		}
	}

	body := bodyText
	if strings.TrimSpace(body) == "" && bodyHTML != "" {
		if body, err = e.html.Parse(bodyHTML); err != nil {
			return "", fmt.Errorf("failed to parse html body: %w", err)
		}
	}
	lines = append(lines, body)

	return parser.CollapseLines(strings.Join(lines, "\n")), nil
}
