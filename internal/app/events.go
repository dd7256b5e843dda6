// Package app provides the core application service for Wails bindings.
package app

// Event names for frontend communication.
const (
	EventSelectedText     = "set-selected-text"
	EventQuickTranslate   = "shortcut-quickTranslate"
	EventGesturesEnabled  = "gestures-enabled"
	EventInputUnavailable = "input-unavailable"
)

// Selection icon placement relative to the pointer.
const (
	iconOffset = 5
	iconSize   = 24
)
