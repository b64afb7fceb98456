package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/stashbot/internal/database"
	"github.com/mixelka/stashbot/internal/formatter"
	appmodels "github.com/mixelka/stashbot/pkg/models"
)

const (
	defaultRecent = 5
	maxRecent     = 20
	searchLimit   = 50
	wakeHistory   = 100
	wakeHighlight = 3
)

// handleStart handles /start command
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	b.reply(ctx, msg.Chat.ID, "👋 Send me anything: passwords, logins, emails, links, notes or screenshots. I'll sort and keep them.\n\n"+
		b.formatter.HelpText(b.config.CommandPrefix))
}

// handleHelp handles /help command
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	b.reply(ctx, msg.Chat.ID, b.formatter.HelpText(b.config.CommandPrefix))
}

// handleGet handles /get <what> [label]
func (b *Bot) handleGet(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	userID := msg.From.ID
	what, label := parseGet(msg.Text)
	usage := "Usage: <code>" + b.config.CommandPrefix + "get password &lt;label&gt;</code>, " +
		"<code>credentials</code>, <code>credential &lt;label&gt;</code>, <code>passwords</code>, " +
		"<code>notes</code>, <code>emails</code> or <code>links</code>"

	var (
		text string
		err  error
	)

	switch what {
	case "password":
		if label == "" {
			text = usage
			break
		}
		var p *appmodels.Password
		p, err = b.db.GetPassword(ctx, userID, label)
		if errors.Is(err, database.ErrNotFound) {
			text, err = fmt.Sprintf("No password found for label '%s'.", escape(label)), nil
		} else if err == nil {
			text = b.formatter.FormatPassword(p)
		}
	case "passwords":
		var ps []*appmodels.Password
		ps, err = b.db.GetAllPasswords(ctx, userID)
		text = b.formatter.FormatPasswords(ps)
	case "credential":
		if label == "" {
			text = usage
			break
		}
		var c *appmodels.Credential
		c, err = b.db.GetCredential(ctx, userID, label)
		if errors.Is(err, database.ErrNotFound) {
			text, err = fmt.Sprintf("No credentials found for label '%s'.", escape(label)), nil
		} else if err == nil {
			text = b.formatter.FormatCredential(c)
		}
	case "credentials":
		var cs []*appmodels.Credential
		cs, err = b.db.GetAllCredentials(ctx, userID)
		text = b.formatter.FormatCredentials(cs)
	case "notes":
		var ns []*appmodels.Note
		ns, err = b.db.GetNotes(ctx, userID, 0)
		text = b.formatter.FormatNotes(ns)
	case "emails":
		var es []*appmodels.Email
		es, err = b.db.GetEmails(ctx, userID)
		text = b.formatter.FormatEmails(es)
	case "links":
		var ls []*appmodels.Link
		ls, err = b.db.GetLinks(ctx, userID)
		text = b.formatter.FormatLinks(ls)
	default:
		text = usage
	}

	if err != nil {
		b.logger.Error("failed to load records", "user_id", userID, "what", what, "error", err)
		text = "Failed to load your data, try again later."
	}
	b.reply(ctx, msg.Chat.ID, text)
}

// handleList handles /list command
func (b *Bot) handleList(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message

	counts, err := b.db.CategoryCounts(ctx, msg.From.ID)
	if err != nil {
		b.logger.Error("failed to count records", "user_id", msg.From.ID, "error", err)
		b.reply(ctx, msg.Chat.ID, "Failed to load your data, try again later.")
		return
	}
	b.reply(ctx, msg.Chat.ID, b.formatter.FormatCounts(counts))
}

// handleRecent handles /recent [n]
func (b *Bot) handleRecent(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	limit := parseLimit(msg.Text, defaultRecent, maxRecent)

	messages, err := b.db.GetRecentMessages(ctx, msg.From.ID, limit)
	if err != nil {
		b.logger.Error("failed to get recent messages", "user_id", msg.From.ID, "error", err)
		b.reply(ctx, msg.Chat.ID, "Failed to load your messages, try again later.")
		return
	}
	if len(messages) == 0 {
		b.reply(ctx, msg.Chat.ID, "No recent messages found.")
		return
	}

	title := fmt.Sprintf("Recent messages (%d):", len(messages))
	b.reply(ctx, msg.Chat.ID, b.formatter.FormatMessages(title, messages))
}

// handleSearch handles /search <term>
func (b *Bot) handleSearch(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	term := commandArgs(msg.Text)
	if term == "" {
		b.reply(ctx, msg.Chat.ID, "Usage: <code>"+b.config.CommandPrefix+"search &lt;term&gt;</code>")
		return
	}

	matches, err := b.db.SearchMessages(ctx, msg.From.ID, term, searchLimit)
	if err != nil {
		b.logger.Error("failed to search messages", "user_id", msg.From.ID, "error", err)
		b.reply(ctx, msg.Chat.ID, "Search failed, try again later.")
		return
	}
	if len(matches) == 0 {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("No matches found for '%s'.", escape(term)))
		return
	}

	title := fmt.Sprintf("Search results for '%s' (%d):", term, len(matches))
	b.reply(ctx, msg.Chat.ID, b.formatter.FormatMessages(title, matches))
}

// handleClear asks for confirmation before deleting everything
func (b *Bot) handleClear(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	keyboard := formatter.BuildClearKeyboard(msg.From.ID)

	if _, err := b.sendMessageWithKeyboard(ctx, msg.Chat.ID,
		"⚠️ Delete <b>all</b> your saved data and message history? This cannot be undone.", keyboard); err != nil {
		b.logger.Error("failed to send clear confirmation", "error", err)
	}
}

// handleWake reprocesses the recent history and replies with a summary
func (b *Bot) handleWake(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	userID := msg.From.ID

	raw, err := b.db.GetRecentMessages(ctx, userID, wakeHistory)
	if err != nil {
		b.logger.Error("failed to load history", "user_id", userID, "error", err)
		b.reply(ctx, msg.Chat.ID, "Failed to load your history, try again later.")
		return
	}

	history := historyMessages(raw, b.config.CommandPrefix)
	summary := formatter.WakeSummary{Processed: len(history)}
	if len(history) == 0 {
		b.reply(ctx, msg.Chat.ID, b.formatter.FormatWake(summary))
		return
	}

	summary.Report, err = b.service.Reprocess(ctx, userID, history)
	if err != nil {
		b.logger.Error("failed to reprocess history", "user_id", userID, "error", err)
		b.reply(ctx, msg.Chat.ID, "Failed to process your history, try again later.")
		return
	}

	// Partial summaries are still useful; load errors only drop a section
	if summary.Counts, err = b.db.CategoryCounts(ctx, userID); err != nil {
		b.logger.Warn("failed to count records", "user_id", userID, "error", err)
	}
	if summary.Credentials, err = b.db.GetAllCredentials(ctx, userID); err != nil {
		b.logger.Warn("failed to load credentials", "user_id", userID, "error", err)
	}
	if summary.Notes, err = b.db.GetNotes(ctx, userID, wakeHighlight); err != nil {
		b.logger.Warn("failed to load notes", "user_id", userID, "error", err)
	}
	if summary.Emails, err = b.db.GetEmails(ctx, userID); err != nil {
		b.logger.Warn("failed to load emails", "user_id", userID, "error", err)
	}
	if summary.Links, err = b.db.GetLinks(ctx, userID); err != nil {
		b.logger.Warn("failed to load links", "user_id", userID, "error", err)
	}

	b.reply(ctx, msg.Chat.ID, b.formatter.FormatWake(summary))
}

// handleCallback handles inline button callbacks
func (b *Bot) handleCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	data, err := formatter.DecodeCallback(callback.Data)
	if err != nil {
		b.logger.Error("failed to decode callback", "error", err)
		b.answerCallback(ctx, callback.ID, "Error", false)
		return
	}

	// Buttons only act for the user they were created for
	if data.UserID != callback.From.ID {
		b.answerCallback(ctx, callback.ID, "This button is not for you", false)
		return
	}

	switch data.Action {
	case appmodels.CallbackClearConfirm:
		b.handleClearConfirm(ctx, callback)
	case appmodels.CallbackClearCancel:
		b.answerCallback(ctx, callback.ID, "Cancelled", false)
		b.editCallbackMessage(ctx, callback, "Nothing was deleted.")
	default:
		b.answerCallback(ctx, callback.ID, "Unknown action", false)
	}
}

func (b *Bot) handleClearConfirm(ctx context.Context, callback *models.CallbackQuery) {
	userID := callback.From.ID

	deleted, err := b.db.ClearUserData(ctx, userID)
	if err != nil {
		b.logger.Error("failed to clear user data", "user_id", userID, "error", err)
		b.answerCallback(ctx, callback.ID, "Failed to delete your data", true)
		return
	}

	b.logger.Info("user data cleared", "user_id", userID, "rows", deleted)
	b.answerCallback(ctx, callback.ID, "Deleted", false)
	b.editCallbackMessage(ctx, callback, "✅ All your data has been cleared.")
}

// editCallbackMessage replaces the message that carried the keyboard
func (b *Bot) editCallbackMessage(ctx context.Context, callback *models.CallbackQuery, text string) {
	msg := callback.Message.Message
	if msg == nil {
		return
	}
	if err := b.editMessageText(ctx, msg.Chat.ID, msg.ID, text); err != nil {
		b.logger.Warn("failed to edit message", "error", err)
	}
}

// commandArgs returns everything after the command word
func commandArgs(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}

// parseGet splits "/get password My Bank" into ("password", "My Bank")
func parseGet(text string) (what, label string) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", ""
	}
	return strings.ToLower(fields[1]), strings.Join(fields[2:], " ")
}

// parseLimit reads an optional count argument, capped at limit
func parseLimit(text string, def, limit int) int {
	arg := commandArgs(text)
	if arg == "" {
		return def
	}
	n, err := strconv.Atoi(strings.Fields(arg)[0])
	if err != nil || n <= 0 {
		return def
	}
	return min(n, limit)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
