package formatter

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/stashbot/internal/categorize"
	"github.com/mixelka/stashbot/pkg/models"
)

func TestFormatCredential_EscapesAndHidesPassword(t *testing.T) {
	t.Parallel()

	f := NewTelegramFormatter()
	out := f.FormatCredential(&models.Credential{Label: "AT&T", Username: "bob<1>", Password: "p<a>ss&1"})

	assert.Equal(t,
		"<b>AT&amp;T</b>\nUsername: <code>bob&lt;1&gt;</code>\nPassword: <tg-spoiler><code>p&lt;a&gt;ss&amp;1</code></tg-spoiler>",
		out)
}

func TestFormatPasswords(t *testing.T) {
	t.Parallel()

	f := NewTelegramFormatter()
	assert.Equal(t, "No passwords saved yet.", f.FormatPasswords(nil))

	out := f.FormatPasswords([]*models.Password{{Label: "Gmail", Password: "Secret123"}})
	assert.Equal(t, "🔑 <b>Your passwords:</b>\n1. <b>Gmail</b>: <tg-spoiler><code>Secret123</code></tg-spoiler>", out)
}

func TestList_LimitsItems(t *testing.T) {
	t.Parallel()

	f := NewTelegramFormatter()
	var notes []*models.Note
	for i := range 13 {
		notes = append(notes, &models.Note{Note: fmt.Sprintf("note %d", i)})
	}

	out := f.FormatNotes(notes)
	assert.Contains(t, out, "10. note 9")
	assert.NotContains(t, out, "note 10")
	assert.True(t, strings.HasSuffix(out, "<i>... and 3 more</i>"))
}

func TestList_RespectsMessageLength(t *testing.T) {
	t.Parallel()

	f := NewTelegramFormatter()
	long := strings.Repeat("x", 1500)
	var links []*models.Link
	for range 5 {
		links = append(links, &models.Link{URL: "https://example.com/" + long})
	}

	out := f.FormatLinks(links)
	assert.LessOrEqual(t, len(out), 4000)
	assert.Contains(t, out, "more</i>")
}

func TestFormatEmailsAndLinks(t *testing.T) {
	t.Parallel()

	f := NewTelegramFormatter()

	emails := f.FormatEmails([]*models.Email{
		{Email: "bob@gmail.com", Label: sql.NullString{String: "Gmail", Valid: true}},
		{Email: "me@corp.io"},
	})
	assert.Equal(t, "📧 <b>Your emails:</b>\n1. <code>bob@gmail.com</code> (Gmail)\n2. <code>me@corp.io</code>", emails)

	links := f.FormatLinks([]*models.Link{
		{URL: "https://github.com/a?b=1&c=2", LinkType: sql.NullString{String: "github", Valid: true}},
	})
	assert.Equal(t, "🔗 <b>Your links:</b>\n1. https://github.com/a?b=1&amp;c=2 [github]", links)
}

func TestFormatMessages_Preview(t *testing.T) {
	t.Parallel()

	f := NewTelegramFormatter()
	out := f.FormatMessages("Recent messages (1):", []*models.RawMessage{
		{Type: models.MessageImageOCR, Content: "[IMAGE OCR] " + strings.Repeat("a", 200)},
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "<b>Recent messages (1):</b>", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1. [image_ocr] [IMAGE OCR] aaa"))
	assert.True(t, strings.HasSuffix(lines[1], "..."))
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	f := NewTelegramFormatter()
	assert.Empty(t, f.FormatReport(categorize.Report{Duplicates: 2}))

	out := f.FormatReport(categorize.Report{Stored: []models.Finding{
		{Kind: models.KindLink, URL: "https://a.io"},
		{Kind: models.KindCredential, Label: "Netflix", Username: "bob", Password: "x"},
		{Kind: models.KindLink, URL: "https://b.io"},
	}})
	assert.Equal(t, "✅ Saved 1 credential, 2 links\nLabel: <b>Netflix</b>", out)
}

func TestFormatWake(t *testing.T) {
	t.Parallel()

	f := NewTelegramFormatter()
	assert.Contains(t, f.FormatWake(WakeSummary{}), "No previous conversation")

	out := f.FormatWake(WakeSummary{
		Processed:   4,
		Report:      categorize.Report{Stored: []models.Finding{{Kind: models.KindNote, Text: "x"}}},
		Counts:      &models.CategoryCounts{Credentials: 1, Notes: 1, TotalMessages: 4},
		Credentials: []*models.Credential{{Label: "Netflix", Username: "bob", Password: "Hunter22!"}},
	})
	assert.Contains(t, out, "Reviewed 4 messages, saved 1 new item(s).")
	assert.Contains(t, out, "👤 Credentials: 1")
	assert.Contains(t, out, "• <b>Netflix</b>: bob")
	assert.NotContains(t, out, "Hunter22!")
}

func TestHelpText(t *testing.T) {
	t.Parallel()

	out := NewTelegramFormatter().HelpText("!")
	assert.Contains(t, out, "!get password &lt;label&gt;")
	assert.Contains(t, out, "!wake")
}

func TestCallbackRoundTrip(t *testing.T) {
	t.Parallel()

	kb := BuildClearKeyboard(99)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)

	confirm, err := DecodeCallback(kb.InlineKeyboard[0][0].CallbackData)
	require.NoError(t, err)
	assert.Equal(t, models.CallbackData{Action: models.CallbackClearConfirm, UserID: 99}, confirm)
	assert.LessOrEqual(t, len(kb.InlineKeyboard[0][0].CallbackData), 64)

	_, err = DecodeCallback("not json")
	assert.Error(t, err)
}
