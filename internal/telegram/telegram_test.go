package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mixelka/stashbot/internal/categorize"
	appmodels "github.com/mixelka/stashbot/pkg/models"
)

func TestHistoryMessages(t *testing.T) {
	t.Parallel()

	// Newest first, as GetRecentMessages returns them
	raw := []*appmodels.RawMessage{
		{ID: "5", Type: appmodels.MessageText, Content: "/get notes"},
		{ID: "4", Type: appmodels.MessageError, Content: "[IMAGE ERROR] no text recognized"},
		{ID: "3", Type: appmodels.MessageImageOCR, Content: "[IMAGE OCR] login: alice password: Secret123!"},
		{ID: "2", Type: appmodels.MessageDocument, Content: "Subject: Wifi\nwifi password: CorrectHorse9"},
		{ID: "1", Type: appmodels.MessageText, Content: "  buy milk "},
	}

	got := historyMessages(raw, "/")

	assert.Equal(t, []categorize.Message{
		{ID: "1", Text: "buy milk"},
		{ID: "2", Text: "Subject: Wifi\nwifi password: CorrectHorse9"},
		{ID: "3", Text: "login: alice password: Secret123!"},
	}, got)
}

func TestHistoryMessages_CustomPrefix(t *testing.T) {
	t.Parallel()

	raw := []*appmodels.RawMessage{
		{ID: "2", Type: appmodels.MessageText, Content: "!wake"},
		{ID: "1", Type: appmodels.MessageText, Content: "/not a command here"},
	}

	assert.Equal(t, []categorize.Message{{ID: "1", Text: "/not a command here"}}, historyMessages(raw, "!"))
}

func TestParseGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text  string
		what  string
		label string
	}{
		{"/get", "", ""},
		{"/get Password My Bank", "password", "My Bank"},
		{"/get   credentials", "credentials", ""},
		{"/get credential  github ", "credential", "github"},
	}

	for _, tt := range tests {
		what, label := parseGet(tt.text)
		assert.Equal(t, tt.what, what, tt.text)
		assert.Equal(t, tt.label, label, tt.text)
	}
}

func TestParseLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, parseLimit("/recent", 5, 20))
	assert.Equal(t, 7, parseLimit("/recent 7", 5, 20))
	assert.Equal(t, 20, parseLimit("/recent 500", 5, 20))
	assert.Equal(t, 5, parseLimit("/recent -3", 5, 20))
	assert.Equal(t, 5, parseLimit("/recent lots", 5, 20))
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", commandArgs("/search"))
	assert.Equal(t, "wifi password", commandArgs("/search  wifi   password"))
	assert.Equal(t, "a &lt;b&gt; &amp; c", escape("a <b> & c"))
}
