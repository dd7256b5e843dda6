// Package clipboard reads and writes plain text on the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// ErrUnavailable is returned when the system clipboard cannot be opened,
// for example in a headless session.
var ErrUnavailable = errors.New("clipboard unavailable")

var (
	initOnce sync.Once
	initErr  error

	clipboardLock sync.RWMutex
)

// Init opens the system clipboard. It is safe to call more than once.
func Init() error {
	initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			initErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	})
	return initErr
}

// GetText returns the current clipboard text.
func GetText() (string, error) {
	if err := Init(); err != nil {
		return "", err
	}

	clipboardLock.RLock()
	defer clipboardLock.RUnlock()

	return string(clipboard.Read(clipboard.FmtText)), nil
}

// SetText replaces the clipboard contents with text.
func SetText(text string) error {
	if err := Init(); err != nil {
		return err
	}

	clipboardLock.Lock()
	defer clipboardLock.Unlock()

	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
