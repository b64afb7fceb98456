// Package ocr extracts text from images sent to the bot.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/sync/semaphore"
)

// ErrNoText is returned when no segmentation mode recognized any text
var ErrNoText = errors.New("no text recognized")

// ErrImageTooLarge is returned for images over the configured size
var ErrImageTooLarge = errors.New("image too large")

// Page segmentation modes tried in order until one yields text:
// a uniform block, full auto segmentation, then a single line.
var defaultModes = []gosseract.PageSegMode{
	gosseract.PSM_SINGLE_BLOCK,
	gosseract.PSM_AUTO,
	gosseract.PSM_SINGLE_LINE,
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tiff": true, ".tif": true, ".webp": true,
}

// Recognizer runs a single OCR pass over an encoded image
type Recognizer interface {
	Recognize(image []byte, mode gosseract.PageSegMode) (string, error)
}

// Provider turns image bytes into text, limiting how many images are
// recognized at the same time
type Provider struct {
	recognizer Recognizer
	modes      []gosseract.PageSegMode
	sem        *semaphore.Weighted
	maxSize    int64
	logger     *slog.Logger
}

// New creates a provider running at most concurrency recognitions at once
func New(recognizer Recognizer, concurrency int, maxSize int64, logger *slog.Logger) *Provider {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Provider{
		recognizer: recognizer,
		modes:      defaultModes,
		sem:        semaphore.NewWeighted(int64(concurrency)),
		maxSize:    maxSize,
		logger:     logger.With("component", "ocr"),
	}
}

// ExtractText recognizes the text of image. It returns ErrNoText when every
// segmentation mode came back empty.
func (p *Provider) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrNoText
	}
	if p.maxSize > 0 && int64(len(image)) > p.maxSize {
		return "", ErrImageTooLarge
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)

	var lastErr error
	for _, mode := range p.modes {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := p.recognizer.Recognize(image, mode)
		if err != nil {
			p.logger.Debug("ocr pass failed", "mode", int(mode), "error", err)
			lastErr = err
			continue
		}

		text = strings.TrimSpace(text)
		if text != "" {
			p.logger.Info("ocr extracted text", "mode", int(mode), "chars", len([]rune(text)))
			return text, nil
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to recognize image: %w", lastErr)
	}
	p.logger.Warn("ocr returned empty text")
	return "", ErrNoText
}

// IsImage reports whether a document upload should be sent through OCR
func IsImage(mimeType, fileName string) bool {
	if strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return true
	}
	return imageExtensions[strings.ToLower(filepath.Ext(fileName))]
}
