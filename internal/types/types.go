// Package types provides shared type definitions for the application.
package types

// Provider is a stored LLM provider choice. The application only keeps the
// record; requests are made by the frontend.
type Provider struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"` // "openai", "gemini", "groq", "ollama"
	Model  string `json:"model"`
	APIKey string `json:"api_key,omitempty"`
	Active bool   `json:"active"`
}

// Default gesture timings in milliseconds.
const (
	DefaultPollIntervalMs   = 10
	DefaultDoubleClickMs    = 500
	DefaultDebounceMs       = 300
	DefaultDragSettleMs     = 50
	DefaultExtractTimeoutMs = 2000
)

// GestureSettings controls gesture-triggered selection.
type GestureSettings struct {
	Enabled           bool `json:"enabled"`
	DragSelect        bool `json:"drag_select"`
	DoubleClickSelect bool `json:"double_click_select"`
	RestoreClipboard  bool `json:"restore_clipboard"`
	PollIntervalMs    int  `json:"poll_interval_ms,omitempty"`
	DoubleClickMs     int  `json:"double_click_ms,omitempty"`
	DebounceMs        int  `json:"debounce_ms,omitempty"`
	DragSettleMs      int  `json:"drag_settle_ms,omitempty"`
	ExtractTimeoutMs  int  `json:"extract_timeout_ms,omitempty"`
}

// Shortcut window targets.
const (
	WindowMain  = "main"
	WindowPopup = "popup"
)

// ShortcutSettings controls the global quick-translate shortcut.
type ShortcutSettings struct {
	Enabled bool   `json:"enabled"`
	Combo   string `json:"combo,omitempty"`
	Window  string `json:"window,omitempty"` // WindowMain or WindowPopup
}

// DetectResult represents the result of language detection.
type DetectResult struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	DefaultTarget string `json:"defaultTarget"`
}

// SelectedText is sent to the selection icon when a gesture selects text.
type SelectedText struct {
	Text     string       `json:"text"`
	X        int          `json:"x"`
	Y        int          `json:"y"`
	Language DetectResult `json:"language"`
}

// QuickTranslate asks a window to translate text immediately.
type QuickTranslate struct {
	Text     string       `json:"text"`
	Language DetectResult `json:"language"`
}
