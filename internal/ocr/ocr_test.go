package ocr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/otiai10/gosseract/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRecognizer struct {
	mu      sync.Mutex
	results map[gosseract.PageSegMode]string
	errs    map[gosseract.PageSegMode]error
	modes   []gosseract.PageSegMode
}

func (r *scriptedRecognizer) Recognize(_ []byte, mode gosseract.PageSegMode) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes = append(r.modes, mode)
	return r.results[mode], r.errs[mode]
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvider_FallsBackThroughModes(t *testing.T) {
	t.Parallel()

	rec := &scriptedRecognizer{results: map[gosseract.PageSegMode]string{
		gosseract.PSM_SINGLE_BLOCK: "  \n",
		gosseract.PSM_AUTO:         " login: alice\npassword: Secret123! \n",
	}}
	p := New(rec, 1, 1024, discard())

	text, err := p.ExtractText(context.Background(), []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "login: alice\npassword: Secret123!", text)
	assert.Equal(t, []gosseract.PageSegMode{gosseract.PSM_SINGLE_BLOCK, gosseract.PSM_AUTO}, rec.modes)
}

func TestProvider_NoText(t *testing.T) {
	t.Parallel()

	rec := &scriptedRecognizer{}
	p := New(rec, 1, 1024, discard())

	_, err := p.ExtractText(context.Background(), []byte("png"))
	require.ErrorIs(t, err, ErrNoText)
	assert.Len(t, rec.modes, 3)
}

func TestProvider_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("tesseract missing")
	rec := &scriptedRecognizer{errs: map[gosseract.PageSegMode]error{
		gosseract.PSM_SINGLE_BLOCK: boom,
		gosseract.PSM_AUTO:         boom,
		gosseract.PSM_SINGLE_LINE:  boom,
	}}
	p := New(rec, 1, 4, discard())

	_, err := p.ExtractText(context.Background(), []byte("png"))
	require.ErrorIs(t, err, boom)

	_, err = p.ExtractText(context.Background(), []byte("too big"))
	require.ErrorIs(t, err, ErrImageTooLarge)

	_, err = p.ExtractText(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoText)
}

type blockingRecognizer struct {
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (r *blockingRecognizer) Recognize(_ []byte, _ gosseract.PageSegMode) (string, error) {
	n := r.active.Add(1)
	defer r.active.Add(-1)
	for {
		seen := r.maxSeen.Load()
		if n <= seen || r.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return "text", nil
}

func TestProvider_LimitsConcurrency(t *testing.T) {
	t.Parallel()

	rec := &blockingRecognizer{}
	p := New(rec, 2, 0, discard())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.ExtractText(context.Background(), []byte("png"))
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, rec.maxSeen.Load(), int32(2))
}

func TestProvider_Canceled(t *testing.T) {
	t.Parallel()

	p := New(&scriptedRecognizer{}, 1, 0, discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ExtractText(ctx, []byte("png"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestIsImage(t *testing.T) {
	t.Parallel()

	assert.True(t, IsImage("image/png", ""))
	assert.True(t, IsImage("application/octet-stream", "scan.JPEG"))
	assert.False(t, IsImage("text/plain", "notes.txt"))
}

func TestNewTesseract(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"eng", "deu"}, NewTesseract("eng+deu").Languages())
	assert.Equal(t, []string{"eng"}, NewTesseract("").Languages())
}
