// Package selection reads the text selected in the foreground application
// by sending the platform copy shortcut and reading the clipboard.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	"golang.org/x/text/unicode/norm"

	"go.aimuz.me/refiner/clipboard"
)

// ErrNoSelection is returned when the copy produced no text.
var ErrNoSelection = errors.New("no text selected")

// DefaultCopyDelay is how long to wait for the clipboard after the copy shortcut.
const DefaultCopyDelay = 100 * time.Millisecond

// Options configures a Reader.
type Options struct {
	// CopyDelay is waited between the copy shortcut and the clipboard read.
	CopyDelay time.Duration
	// Restore puts the previous clipboard text back after reading. The
	// clipboard is cleared before copying so a copy that selects nothing is
	// reported as ErrNoSelection instead of returning stale contents.
	Restore bool
}

// Reader implements gesture.TextReader. Reads are serialised since they
// all go through the one system clipboard.
type Reader struct {
	copyDelay time.Duration
	restore   bool

	copy    func() error
	getText func() (string, error)
	setText func(string) error

	mu sync.Mutex
}

// NewReader returns a Reader backed by robotgo and the system clipboard.
func NewReader(opts Options) *Reader {
	if opts.CopyDelay <= 0 {
		opts.CopyDelay = DefaultCopyDelay
	}
	return &Reader{
		copyDelay: opts.CopyDelay,
		restore:   opts.Restore,
		copy:      sendCopyShortcut,
		getText:   clipboard.GetText,
		setText:   clipboard.SetText,
	}
}

// SetRestore changes whether the previous clipboard text is put back.
// It waits for an in-flight read.
func (r *Reader) SetRestore(restore bool) {
	r.mu.Lock()
	r.restore = restore
	r.mu.Unlock()
}

// ReadSelectedText copies the current selection and returns it normalised.
func (r *Reader) ReadSelectedText(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.restore {
		previous, err := r.getText()
		if err != nil {
			return "", fmt.Errorf("read clipboard: %w", err)
		}
		if err := r.setText(""); err != nil {
			return "", fmt.Errorf("clear clipboard: %w", err)
		}
		defer func() {
			if err := r.setText(previous); err != nil {
				slog.Warn("restore clipboard", "error", err)
			}
		}()
	}

	if err := r.copy(); err != nil {
		return "", err
	}

	timer := time.NewTimer(r.copyDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	text, err := r.getText()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}

	text = Normalize(text)
	if text == "" {
		return "", ErrNoSelection
	}
	return text, nil
}

// Normalize converts text to NFC and trims surrounding whitespace, so the
// same selection copied from different applications compares equal.
func Normalize(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}

func sendCopyShortcut() error {
	modifier := "ctrl"
	if runtime.GOOS == "darwin" {
		modifier = "cmd"
	}
	if err := robotgo.KeyTap("c", modifier); err != nil {
		return fmt.Errorf("send copy shortcut: %w", err)
	}
	return nil
}
