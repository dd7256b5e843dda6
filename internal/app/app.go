package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.aimuz.me/refiner/clipboard"
	"go.aimuz.me/refiner/config"
	"go.aimuz.me/refiner/gesture"
	"go.aimuz.me/refiner/hotkey"
	"go.aimuz.me/refiner/input"
	"go.aimuz.me/refiner/internal/types"
	"go.aimuz.me/refiner/langdetect"
	"go.aimuz.me/refiner/selection"
)

const (
	// shortcutReadTimeout bounds the selection read behind the shortcut.
	shortcutReadTimeout = 2 * time.Second
	// restartTimeout bounds the wait for a replaced gesture loop.
	restartTimeout = 3 * time.Second
)

// UI is the window surface driven by the service.
// Implementations must be safe to call from any goroutine.
type UI interface {
	ShowSelectionIcon(x, y int)
	HideSelectionIcon()
	ShowPopup(x, y int)
	ShowMain()
}

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; detection lives in the gesture package.
type Service struct {
	mu  sync.RWMutex
	cfg *config.Config

	hub     *input.Hub
	sampler gesture.Sampler
	reader  gesture.TextReader
	locate  func() (int, int)
	hotkey  *hotkey.Manager

	restartMu sync.Mutex
	gmu       sync.Mutex
	gestures  *gesture.Service

	// selected is the text behind the visible selection icon.
	selectedMu sync.Mutex
	selected   string

	// UI references - set via Init
	ui   UI
	emit func(name string, data any)

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init loads configuration, installs the input hook and starts gesture
// detection. Must be called after the Wails windows exist.
func (s *Service) Init(ui UI, emit func(name string, data any)) {
	s.ui = ui
	s.emit = emit

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = config.Default()
	}
	s.cfg = cfg

	if err := clipboard.Init(); err != nil {
		slog.Error("init clipboard", "error", err)
	}
	s.reader = selection.NewReader(selection.Options{Restore: cfg.Gestures.RestoreClipboard})

	s.hub = input.NewHub()
	if err := s.hub.Start(); err != nil {
		slog.Error("start input hook", "error", err)
		s.emitEvent(EventInputUnavailable, err.Error())
	}
	s.sampler = s.hub
	s.locate = s.hub.Location

	s.setupHotkey()
	s.startGestures()
}

// Shutdown stops gesture detection and removes the input hook.
func (s *Service) Shutdown() {
	s.restartMu.Lock()
	s.gmu.Lock()
	svc := s.gestures
	s.gestures = nil
	s.gmu.Unlock()
	if svc != nil {
		stopAndWait(svc)
	}
	s.restartMu.Unlock()

	if s.hub != nil {
		s.hub.Stop()
	}
}

func (s *Service) setupHotkey() {
	s.mu.RLock()
	shortcut := s.cfg.Shortcut
	s.mu.RUnlock()

	m, err := hotkey.NewManager(shortcut.Combo, s.quickTranslate)
	if err != nil {
		slog.Error("create hotkey", "combo", shortcut.Combo, "error", err)
		return
	}
	m.SetEnabled(shortcut.Enabled)
	m.Attach(s.hub)
	s.hotkey = m
}

// emitEvent is a safe wrapper around the frontend emitter.
func (s *Service) emitEvent(name string, data any) {
	if s.emit != nil {
		s.emit(name, data)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Gesture Detection
// ─────────────────────────────────────────────────────────────────────────────

// startGestures replaces the running gesture service with one built from
// the current settings. Icon state carries over.
func (s *Service) startGestures() {
	s.restartMu.Lock()
	defer s.restartMu.Unlock()

	s.mu.RLock()
	cfg := gestureConfig(s.cfg.Gestures)
	s.mu.RUnlock()

	// The old loop may be inside the handler, so it is stopped without
	// holding gmu.
	var icon gesture.IconBounds
	if old := s.gestureService(); old != nil {
		stopAndWait(old)
		icon = old.SelectionIcon()
	}

	svc := gesture.NewService(cfg, s.sampler, s.reader, s.gesturesEnabled)
	svc.SetSelectionIconBounds(icon.X, icon.Y, icon.Width, icon.Height)
	svc.SetSelectionIconVisible(icon.Visible)
	if err := svc.Start(func(ev gesture.Event) { s.handleGesture(svc, ev) }); err != nil {
		slog.Error("start gesture service", "error", err)
		return
	}

	s.gmu.Lock()
	s.gestures = svc
	s.gmu.Unlock()
}

func stopAndWait(svc *gesture.Service) {
	svc.Stop()
	done := svc.Done()
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(restartTimeout):
		slog.Warn("gesture loop did not stop", "timeout", restartTimeout)
	}
}

func (s *Service) gestureService() *gesture.Service {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	return s.gestures
}

// gesturesEnabled is consulted by the gesture loop before every selection read.
func (s *Service) gesturesEnabled(context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return false, errors.New("config not loaded")
	}
	return s.cfg.Gestures.Enabled, nil
}

// handleGesture runs on the loop of svc and only touches that service.
func (s *Service) handleGesture(svc *gesture.Service, ev gesture.Event) {
	switch ev.Kind {
	case gesture.EventTextSelected:
		s.showSelectionIcon(svc, ev.Position, ev.Text)
	case gesture.EventClickOutsideIcon:
		if s.ui != nil {
			s.ui.HideSelectionIcon()
		}
		svc.SetSelectionIconVisible(false)
	}
}

func (s *Service) showSelectionIcon(svc *gesture.Service, pos gesture.Point, text string) {
	x, y := pos.X+iconOffset, pos.Y-iconOffset

	s.selectedMu.Lock()
	s.selected = text
	s.selectedMu.Unlock()

	if s.ui != nil {
		s.ui.ShowSelectionIcon(x, y)
	}
	svc.SetSelectionIconBounds(x, y, iconSize, iconSize)
	svc.SetSelectionIconVisible(true)

	s.emitEvent(EventSelectedText, types.SelectedText{
		Text:     text,
		X:        x,
		Y:        y,
		Language: s.DetectLanguage(text),
	})
}

func (s *Service) hideSelectionIcon() {
	if s.ui != nil {
		s.ui.HideSelectionIcon()
	}
	s.SetSelectionIconVisible(false)
}

// IconClicked opens the popup for the selection behind the icon. An empty
// text falls back to the last selection announced.
func (s *Service) IconClicked(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.selectedMu.Lock()
		text = s.selected
		s.selectedMu.Unlock()
	}

	s.hideSelectionIcon()
	if text == "" {
		return
	}

	if s.ui != nil {
		x, y := s.cursor()
		s.ui.ShowPopup(x, y)
	}
	s.emitEvent(EventQuickTranslate, types.QuickTranslate{
		Text:     text,
		Language: s.DetectLanguage(text),
	})
}

// SetSelectionIconBounds records where the selection icon is drawn.
func (s *Service) SetSelectionIconBounds(x, y, width, height int) {
	if svc := s.gestureService(); svc != nil {
		svc.SetSelectionIconBounds(x, y, width, height)
	}
}

// SetSelectionIconVisible records whether the selection icon is shown.
func (s *Service) SetSelectionIconVisible(visible bool) {
	if svc := s.gestureService(); svc != nil {
		svc.SetSelectionIconVisible(visible)
	}
}

// IsSelecting reports whether a primary-button gesture is in progress.
func (s *Service) IsSelecting() bool {
	if svc := s.gestureService(); svc != nil {
		return svc.IsSelecting()
	}
	return false
}

func (s *Service) cursor() (int, int) {
	if s.locate == nil {
		return 0, 0
	}
	return s.locate()
}

// ─────────────────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────────────────

// GetGestureSettings returns the gesture settings.
func (s *Service) GetGestureSettings() types.GestureSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Gestures
}

// SetGestureSettings stores gesture settings and restarts detection with them.
func (s *Service) SetGestureSettings(g types.GestureSettings) error {
	s.mu.Lock()
	err := s.cfg.SetGestureSettings(g)
	restore := s.cfg.Gestures.RestoreClipboard
	enabled := s.cfg.Gestures.Enabled
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("save gesture settings: %w", err)
	}

	if r, ok := s.reader.(interface{ SetRestore(bool) }); ok {
		r.SetRestore(restore)
	}
	s.startGestures()
	s.emitEvent(EventGesturesEnabled, enabled)
	return nil
}

// GesturesEnabled reports whether gestures may trigger a selection read.
func (s *Service) GesturesEnabled() bool {
	ok, _ := s.gesturesEnabled(context.Background())
	return ok
}

// SetGesturesEnabled toggles gesture-triggered selection. The loop keeps
// running so clicks outside the icon still dismiss it.
func (s *Service) SetGesturesEnabled(enabled bool) error {
	s.mu.Lock()
	err := s.cfg.SetGesturesEnabled(enabled)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("save gestures enabled: %w", err)
	}

	if !enabled {
		s.hideSelectionIcon()
	}
	s.emitEvent(EventGesturesEnabled, enabled)
	slog.Info("gestures toggled", "enabled", enabled)
	return nil
}

// GetShortcutSettings returns the quick-translate shortcut settings.
func (s *Service) GetShortcutSettings() types.ShortcutSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Shortcut
}

// SetShortcutSettings validates and stores the shortcut settings.
func (s *Service) SetShortcutSettings(sc types.ShortcutSettings) error {
	if sc.Combo != "" {
		if _, err := hotkey.ParseCombo(sc.Combo); err != nil {
			return err
		}
	}

	s.mu.Lock()
	err := s.cfg.SetShortcutSettings(sc)
	sc = s.cfg.Shortcut
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("save shortcut settings: %w", err)
	}

	if s.hotkey != nil {
		if err := s.hotkey.SetCombo(sc.Combo); err != nil {
			return err
		}
		s.hotkey.SetEnabled(sc.Enabled)
	}
	return nil
}

// quickTranslate reads the current selection and opens the configured window.
func (s *Service) quickTranslate() {
	ctx, cancel := context.WithTimeout(context.Background(), shortcutReadTimeout)
	defer cancel()

	var text string
	if s.reader != nil {
		t, err := s.reader.ReadSelectedText(ctx)
		switch {
		case errors.Is(err, selection.ErrNoSelection):
		case err != nil:
			slog.Warn("read selection for shortcut", "error", err)
		default:
			text = strings.TrimSpace(t)
		}
	}

	s.mu.RLock()
	window := s.cfg.Shortcut.Window
	s.mu.RUnlock()

	if s.ui != nil {
		if window == types.WindowMain {
			s.ui.ShowMain()
		} else {
			x, y := s.cursor()
			s.ui.ShowPopup(x, y)
		}
	}
	if text != "" {
		s.emitEvent(EventQuickTranslate, types.QuickTranslate{
			Text:     text,
			Language: s.DetectLanguage(text),
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Provider Management
// ─────────────────────────────────────────────────────────────────────────────

// GetProviders returns all providers.
func (s *Service) GetProviders() []types.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Provider(nil), s.cfg.Providers...)
}

// AddProvider adds a new provider.
func (s *Service) AddProvider(p types.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.AddProvider(p)
}

// UpdateProvider updates an existing provider.
func (s *Service) UpdateProvider(id string, p types.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.UpdateProvider(id, p)
}

// RemoveProvider removes a provider by ID.
func (s *Service) RemoveProvider(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.RemoveProvider(id)
}

// SetProviderActive sets a provider as active.
func (s *Service) SetProviderActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.SetProviderActive(id)
}

// GetActiveProvider returns the currently active provider.
func (s *Service) GetActiveProvider() *types.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.GetActiveProvider()
}

// ─────────────────────────────────────────────────────────────────────────────
// Language Settings
// ─────────────────────────────────────────────────────────────────────────────

// GetDefaultLanguages returns the default language mappings.
func (s *Service) GetDefaultLanguages() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.cfg.DefaultLanguages))
	for k, v := range s.cfg.DefaultLanguages {
		out[k] = v
	}
	return out
}

// SetDefaultLanguage sets the default target language for a source.
func (s *Service) SetDefaultLanguage(src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.DefaultLanguages == nil {
		s.cfg.DefaultLanguages = make(map[string]string)
	}
	s.cfg.DefaultLanguages[src] = dst
	return s.cfg.Save()
}

// DetectLanguage detects the language of the given text.
func (s *Service) DetectLanguage(text string) types.DetectResult {
	code, name := langdetect.Detect(text)

	target := "en"
	s.mu.RLock()
	if code != langdetect.Auto && s.cfg != nil {
		if t, ok := s.cfg.DefaultLanguages[code]; ok {
			target = t
		}
	}
	s.mu.RUnlock()

	return types.DetectResult{
		Code:          code,
		Name:          name,
		DefaultTarget: target,
	}
}

// gestureConfig converts stored settings to a detector configuration.
func gestureConfig(g types.GestureSettings) gesture.Config {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return gesture.Config{
		PollInterval:      ms(g.PollIntervalMs),
		DoubleClickWindow: ms(g.DoubleClickMs),
		DebounceInterval:  ms(g.DebounceMs),
		DragSettleDelay:   ms(g.DragSettleMs),
		ExtractTimeout:    ms(g.ExtractTimeoutMs),
		PrimaryButton:     gesture.PrimaryButton,
		DragSelect:        g.DragSelect,
		DoubleClickSelect: g.DoubleClickSelect,
	}
}
