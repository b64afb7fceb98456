package formatter

import (
	"fmt"
	"strings"

	"github.com/mixelka/stashbot/internal/categorize"
	"github.com/mixelka/stashbot/pkg/models"
)

const (
	listLimit      = 10
	previewLength  = 100
	snippetLength  = 150
	highlightLimit = 3
)

// TelegramFormatter renders stored records as Telegram HTML
type TelegramFormatter struct {
	maxLength int
}

// NewTelegramFormatter creates a new Telegram formatter
func NewTelegramFormatter() *TelegramFormatter {
	return &TelegramFormatter{
		maxLength: 4000, // Leave room for markup
	}
}

// FormatPassword formats a single stored password
func (f *TelegramFormatter) FormatPassword(p *models.Password) string {
	return fmt.Sprintf("<b>%s</b>\nPassword: %s", f.escapeHTML(p.Label), f.secret(p.Password))
}

// FormatCredential formats a single stored username/password pair
func (f *TelegramFormatter) FormatCredential(c *models.Credential) string {
	return fmt.Sprintf("<b>%s</b>\nUsername: <code>%s</code>\nPassword: %s",
		f.escapeHTML(c.Label), f.escapeHTML(c.Username), f.secret(c.Password))
}

// FormatCredentials formats all credentials of a user
func (f *TelegramFormatter) FormatCredentials(creds []*models.Credential) string {
	if len(creds) == 0 {
		return "No credentials saved yet."
	}
	items := make([]string, len(creds))
	for i, c := range creds {
		items[i] = fmt.Sprintf("<b>%s</b>\n   Username: <code>%s</code>\n   Password: %s\n",
			f.escapeHTML(c.Label), f.escapeHTML(c.Username), f.secret(c.Password))
	}
	return f.list("🔐 <b>Your credentials:</b>", items, listLimit)
}

// FormatPasswords formats all standalone passwords of a user
func (f *TelegramFormatter) FormatPasswords(passwords []*models.Password) string {
	if len(passwords) == 0 {
		return "No passwords saved yet."
	}
	items := make([]string, len(passwords))
	for i, p := range passwords {
		items[i] = fmt.Sprintf("<b>%s</b>: %s", f.escapeHTML(p.Label), f.secret(p.Password))
	}
	return f.list("🔑 <b>Your passwords:</b>", items, listLimit)
}

// FormatNotes formats notes, newest first
func (f *TelegramFormatter) FormatNotes(notes []*models.Note) string {
	if len(notes) == 0 {
		return "No notes saved yet."
	}
	items := make([]string, len(notes))
	for i, n := range notes {
		items[i] = f.escapeHTML(f.preview(n.Note, snippetLength))
	}
	return f.list("📝 <b>Your notes:</b>", items, listLimit)
}

// FormatEmails formats saved email addresses
func (f *TelegramFormatter) FormatEmails(emails []*models.Email) string {
	if len(emails) == 0 {
		return "No emails saved yet."
	}
	items := make([]string, len(emails))
	for i, e := range emails {
		items[i] = "<code>" + f.escapeHTML(e.Email) + "</code>"
		if e.Label.Valid && e.Label.String != "" {
			items[i] += " (" + f.escapeHTML(e.Label.String) + ")"
		}
	}
	return f.list("📧 <b>Your emails:</b>", items, listLimit)
}

// FormatLinks formats saved links with their type
func (f *TelegramFormatter) FormatLinks(links []*models.Link) string {
	if len(links) == 0 {
		return "No links saved yet."
	}
	items := make([]string, len(links))
	for i, l := range links {
		items[i] = f.escapeHTML(l.URL)
		if l.LinkType.Valid && l.LinkType.String != "" {
			items[i] += " [" + f.escapeHTML(l.LinkType.String) + "]"
		}
	}
	return f.list("🔗 <b>Your links:</b>", items, listLimit)
}

// FormatCounts formats the per-category summary used by /list
func (f *TelegramFormatter) FormatCounts(c *models.CategoryCounts) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Your data:</b>\n")
	f.writeCounts(&sb, c)
	return sb.String()
}

func (f *TelegramFormatter) writeCounts(sb *strings.Builder, c *models.CategoryCounts) {
	fmt.Fprintf(sb, "📝 Total messages: %d\n", c.TotalMessages)
	fmt.Fprintf(sb, "🔑 Passwords: %d\n", c.Passwords)
	fmt.Fprintf(sb, "👤 Credentials: %d\n", c.Credentials)
	fmt.Fprintf(sb, "📄 Notes: %d\n", c.Notes)
	fmt.Fprintf(sb, "📧 Emails: %d\n", c.Emails)
	fmt.Fprintf(sb, "🔗 Links: %d\n", c.Links)
}

// FormatMessages formats raw messages for /recent and /search
func (f *TelegramFormatter) FormatMessages(title string, messages []*models.RawMessage) string {
	items := make([]string, len(messages))
	for i, m := range messages {
		items[i] = fmt.Sprintf("[%s] %s", m.Type, f.escapeHTML(f.preview(m.Content, previewLength)))
	}
	return f.list("<b>"+f.escapeHTML(title)+"</b>", items, listLimit)
}

// FormatReport summarizes what was saved from one message. Empty when nothing new was stored.
func (f *TelegramFormatter) FormatReport(report categorize.Report) string {
	if len(report.Stored) == 0 {
		return ""
	}

	counts := make(map[models.Kind]int)
	for _, finding := range report.Stored {
		counts[finding.Kind]++
	}

	var parts []string
	for _, kind := range []models.Kind{
		models.KindCredential, models.KindPassword, models.KindEmail, models.KindLink, models.KindNote,
	} {
		if n := counts[kind]; n > 0 {
			parts = append(parts, plural(n, string(kind)))
		}
	}

	text := "✅ Saved " + strings.Join(parts, ", ")
	for _, finding := range report.Stored {
		if finding.IsSecret() {
			text += "\nLabel: <b>" + f.escapeHTML(finding.Label) + "</b>"
		}
	}
	return text
}

// WakeSummary is the data shown after a history reprocess
type WakeSummary struct {
	Processed   int
	Report      categorize.Report
	Counts      *models.CategoryCounts
	Credentials []*models.Credential
	Notes       []*models.Note
	Emails      []*models.Email
	Links       []*models.Link
}

// FormatWake formats the /wake summary. Credentials list labels and usernames only.
func (f *TelegramFormatter) FormatWake(s WakeSummary) string {
	if s.Processed == 0 {
		return "👋 Hello! I'm awake and ready to help. No previous conversation found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🤖 <b>I'm awake!</b> Reviewed %s, saved %d new item(s).\n\n",
		plural(s.Processed, "message"), len(s.Report.Stored))

	if s.Counts != nil {
		f.writeCounts(&sb, s.Counts)
		sb.WriteString("\n")
	}

	if len(s.Credentials) > 0 {
		sb.WriteString("👤 <b>Recent credentials:</b>\n")
		for _, c := range head(s.Credentials) {
			fmt.Fprintf(&sb, "• <b>%s</b>: %s\n", f.escapeHTML(c.Label), f.escapeHTML(c.Username))
		}
		sb.WriteString("\n")
	}
	if len(s.Notes) > 0 {
		sb.WriteString("📝 <b>Recent notes:</b>\n")
		for _, n := range head(s.Notes) {
			fmt.Fprintf(&sb, "• %s\n", f.escapeHTML(f.preview(n.Note, previewLength)))
		}
		sb.WriteString("\n")
	}
	if len(s.Emails) > 0 {
		sb.WriteString("📧 <b>Saved emails:</b>\n")
		for _, e := range head(s.Emails) {
			fmt.Fprintf(&sb, "• %s\n", f.escapeHTML(e.Email))
		}
		sb.WriteString("\n")
	}
	if len(s.Links) > 0 {
		sb.WriteString("🔗 <b>Saved links:</b>\n")
		for _, l := range head(s.Links) {
			fmt.Fprintf(&sb, "• %s\n", f.escapeHTML(l.URL))
		}
	}

	return f.truncate(strings.TrimRight(sb.String(), "\n"), f.maxLength)
}

// HelpText lists the commands with the configured prefix
func (f *TelegramFormatter) HelpText(prefix string) string {
	p := f.escapeHTML(prefix)
	lines := []string{
		"<b>Available commands:</b>",
		"",
		p + "wake - reprocess your history and show a summary",
		p + "get password &lt;label&gt; - show a saved password",
		p + "get passwords - list saved passwords",
		p + "get credentials - list saved username/password pairs",
		p + "get credential &lt;label&gt; - show one credential",
		p + "get notes - list your notes",
		p + "get emails - list saved emails",
		p + "get links - list saved links",
		p + "list - show how much is stored per category",
		p + "recent [n] - show recent messages (max 20)",
		p + "search &lt;term&gt; - search your messages",
		p + "clear - delete all your data",
		p + "help - show this message",
		"",
		"<b>Auto-detection:</b>",
		"• Credentials: <code>Gmail username: bob password: Hunter22!</code>",
		"• Passwords: <code>password: gmail Hunter22!</code>",
		"• Emails and links are saved wherever they appear",
		"• Photos are read with OCR",
		"• Anything else becomes a note",
	}
	return strings.Join(lines, "\n")
}

// list writes items as a numbered list, stopping at limit or when the message would get too long
func (f *TelegramFormatter) list(title string, items []string, limit int) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")

	for i, item := range items {
		line := fmt.Sprintf("%d. %s\n", i+1, item)
		if i >= limit || sb.Len()+len(line) > f.maxLength-64 {
			fmt.Fprintf(&sb, "\n<i>... and %d more</i>", len(items)-i)
			break
		}
		sb.WriteString(line)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// secret hides a password behind a spoiler, copyable on tap
func (f *TelegramFormatter) secret(s string) string {
	return "<tg-spoiler><code>" + f.escapeHTML(s) + "</code></tg-spoiler>"
}

func (f *TelegramFormatter) preview(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// escapeHTML escapes HTML special characters for Telegram
func (f *TelegramFormatter) escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// truncate cuts already formatted text at a line boundary
func (f *TelegramFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := strings.LastIndex(s[:maxLen], "\n")
	if cut <= 0 {
		cut = maxLen
	}
	return s[:cut] + "\n\n<i>... (truncated)</i>"
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func head[T any](items []T) []T {
	if len(items) > highlightLimit {
		return items[:highlightLimit]
	}
	return items
}
