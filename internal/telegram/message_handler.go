package telegram

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/stashbot/internal/categorize"
	"github.com/mixelka/stashbot/internal/document"
	"github.com/mixelka/stashbot/internal/ocr"
	appmodels "github.com/mixelka/stashbot/pkg/models"
)

// Raw log prefixes of image messages
const (
	ocrPrefix      = "[IMAGE OCR]"
	ocrErrorPrefix = "[IMAGE ERROR]"
)

// defaultHandler receives every message no command handler matched
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	switch {
	case msg.Text != "":
		if strings.HasPrefix(msg.Text, b.config.CommandPrefix) {
			b.logger.Debug("unknown command", "user_id", msg.From.ID)
			b.reply(ctx, msg.Chat.ID, "Unknown command. Send "+b.config.CommandPrefix+"help for the list.")
			return
		}
		b.handleText(ctx, msg)
	case len(msg.Photo) > 0:
		// Sizes are ordered smallest first
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleImage(ctx, msg, photo.FileID, int64(photo.FileSize))
	case msg.Document != nil:
		b.handleDocument(ctx, msg)
	}
}

// handleText logs and categorizes a plain text message
func (b *Bot) handleText(ctx context.Context, msg *models.Message) {
	sourceID := b.logRaw(ctx, msg.From.ID, msg.Text, appmodels.MessageText)
	report := b.service.Categorize(ctx, msg.From.ID, sourceID, msg.Text)
	b.finish(ctx, msg, report)
}

// handleImage runs OCR on a photo or image document and categorizes the text
func (b *Bot) handleImage(ctx context.Context, msg *models.Message, fileID string, size int64) {
	userID := msg.From.ID

	if size > b.config.MaxImageSize {
		b.reply(ctx, msg.Chat.ID, "The image is too large to process.")
		return
	}

	data, err := b.downloadFile(ctx, fileID, b.config.MaxImageSize)
	if err != nil {
		b.imageFailed(ctx, msg, err)
		return
	}

	text, err := b.ocr.ExtractText(ctx, data)
	if err != nil {
		b.imageFailed(ctx, msg, err)
		return
	}

	if msg.Caption != "" {
		text = msg.Caption + "\n" + text
	}

	sourceID := b.logRaw(ctx, userID, ocrPrefix+" "+text, appmodels.MessageImageOCR)
	report := b.service.Categorize(ctx, userID, sourceID, text)
	b.finish(ctx, msg, report)
}

func (b *Bot) imageFailed(ctx context.Context, msg *models.Message, err error) {
	b.logger.Warn("failed to process image", "user_id", msg.From.ID, "error", err)
	b.logRaw(ctx, msg.From.ID, ocrErrorPrefix+" "+err.Error(), appmodels.MessageError)

	text := "Could not read any text from the image."
	if errors.Is(err, errFileTooLarge) || errors.Is(err, ocr.ErrImageTooLarge) {
		text = "The image is too large to process."
	}
	b.reply(ctx, msg.Chat.ID, text)
}

// handleDocument routes images to OCR and converts text documents
func (b *Bot) handleDocument(ctx context.Context, msg *models.Message) {
	doc := msg.Document
	if ocr.IsImage(doc.MimeType, doc.FileName) {
		b.handleImage(ctx, msg, doc.FileID, doc.FileSize)
		return
	}
	if !document.Supported(doc.MimeType, doc.FileName) {
		b.reply(ctx, msg.Chat.ID, "I can only read images and text, HTML or .eml documents.")
		return
	}

	data, err := b.downloadFile(ctx, doc.FileID, b.config.MaxImageSize)
	if err != nil {
		b.logger.Warn("failed to download document", "user_id", msg.From.ID, "error", err)
		b.reply(ctx, msg.Chat.ID, "Could not download the document.")
		return
	}

	text, err := b.documents.Extract(bytes.NewReader(data), doc.MimeType, doc.FileName)
	if err != nil || strings.TrimSpace(text) == "" {
		b.logger.Warn("failed to read document", "user_id", msg.From.ID, "mime", doc.MimeType, "error", err)
		b.reply(ctx, msg.Chat.ID, "Could not read any text from the document.")
		return
	}

	sourceID := b.logRaw(ctx, msg.From.ID, text, appmodels.MessageDocument)
	report := b.service.Categorize(ctx, msg.From.ID, sourceID, text)
	b.finish(ctx, msg, report)
}

// logRaw appends the message to the audit log. A failed write is logged and
// categorization continues without a source id.
func (b *Bot) logRaw(ctx context.Context, userID int64, content string, msgType appmodels.MessageType) string {
	raw := &appmodels.RawMessage{UserID: userID, Content: content, Type: msgType}
	if err := b.db.CreateMessage(ctx, raw); err != nil {
		b.logger.Error("failed to log raw message", "user_id", userID, "error", err)
		return ""
	}
	return raw.ID
}

// finish removes messages that carried a stored secret and acknowledges what was saved
func (b *Bot) finish(ctx context.Context, msg *models.Message, report categorize.Report) {
	if report.HasSecrets() && b.config.DeleteSecretMessages {
		if err := b.deleteMessage(ctx, msg.Chat.ID, msg.ID); err != nil {
			b.logger.Warn("failed to delete secret message", "user_id", msg.From.ID, "error", err)
		}
	}

	if text := b.formatter.FormatReport(report); text != "" {
		b.reply(ctx, msg.Chat.ID, text)
	}
}

// historyMessages prepares logged messages for reprocessing, oldest first.
// Error records and commands are skipped; OCR text loses its log prefix.
func historyMessages(raw []*appmodels.RawMessage, commandPrefix string) []categorize.Message {
	out := make([]categorize.Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		m := raw[i]
		text := m.Content

		switch m.Type {
		case appmodels.MessageText, appmodels.MessageDocument:
		case appmodels.MessageImageOCR:
			text = strings.TrimPrefix(text, ocrPrefix)
		default:
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" || strings.HasPrefix(text, ocrErrorPrefix) || strings.HasPrefix(text, commandPrefix) {
			continue
		}
		out = append(out, categorize.Message{ID: m.ID, Text: text})
	}
	return out
}
