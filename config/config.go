// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/google/uuid"

	"go.aimuz.me/refiner/internal/types"
)

const (
	appName        = "refiner"
	configFileName = "config.json"
)

// Config represents the application configuration.
// It is not safe for concurrent use.
type Config struct {
	Providers        []types.Provider       `json:"providers"`
	DefaultLanguages map[string]string      `json:"default_languages"`
	Gestures         types.GestureSettings  `json:"gestures"`
	Shortcut         types.ShortcutSettings `json:"shortcut"`
}

// Load loads configuration from the config file.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Ensure default languages exist
	if cfg.DefaultLanguages == nil {
		cfg.DefaultLanguages = defaultLanguages()
	}
	applyGestureDefaults(&cfg.Gestures)
	applyShortcutDefaults(&cfg.Shortcut)

	return &cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Gestures & Shortcut
// ─────────────────────────────────────────────────────────────────────────────

// SetGestureSettings validates and stores gesture settings.
func (c *Config) SetGestureSettings(g types.GestureSettings) error {
	for name, ms := range map[string]int{
		"poll interval":       g.PollIntervalMs,
		"double click window": g.DoubleClickMs,
		"debounce interval":   g.DebounceMs,
		"drag settle delay":   g.DragSettleMs,
		"extract timeout":     g.ExtractTimeoutMs,
	} {
		if ms < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	applyGestureDefaults(&g)
	c.Gestures = g
	return c.Save()
}

// SetGesturesEnabled toggles gesture-triggered selection.
func (c *Config) SetGesturesEnabled(enabled bool) error {
	c.Gestures.Enabled = enabled
	return c.Save()
}

// SetShortcutSettings stores shortcut settings. The combo is validated by
// the caller, which owns the key parser.
func (c *Config) SetShortcutSettings(s types.ShortcutSettings) error {
	applyShortcutDefaults(&s)
	if s.Window != types.WindowMain && s.Window != types.WindowPopup {
		return fmt.Errorf("unknown shortcut window: %s", s.Window)
	}
	c.Shortcut = s
	return c.Save()
}

// ─────────────────────────────────────────────────────────────────────────────
// Provider Management
// ─────────────────────────────────────────────────────────────────────────────

// AddProvider adds a new provider.
func (c *Config) AddProvider(p types.Provider) error {
	if err := validateProvider(p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	// First provider or explicitly active: deactivate others
	if len(c.Providers) == 0 || p.Active {
		for i := range c.Providers {
			c.Providers[i].Active = false
		}
		p.Active = true
	}

	c.Providers = append(c.Providers, p)
	return c.Save()
}

// UpdateProvider updates an existing provider.
func (c *Config) UpdateProvider(id string, p types.Provider) error {
	if err := validateProvider(p); err != nil {
		return err
	}

	idx := slices.IndexFunc(c.Providers, func(x types.Provider) bool {
		return x.ID == id
	})
	if idx == -1 {
		return fmt.Errorf("provider not found: %s", id)
	}

	wasActive := c.Providers[idx].Active
	if p.Active && !wasActive {
		for i := range c.Providers {
			c.Providers[i].Active = false
		}
	} else {
		p.Active = wasActive
	}

	p.ID = id // Preserve ID
	c.Providers[idx] = p
	return c.Save()
}

// RemoveProvider removes a provider.
func (c *Config) RemoveProvider(id string) error {
	idx := slices.IndexFunc(c.Providers, func(p types.Provider) bool {
		return p.ID == id
	})
	if idx == -1 {
		return fmt.Errorf("provider not found: %s", id)
	}

	wasActive := c.Providers[idx].Active
	c.Providers = slices.Delete(c.Providers, idx, idx+1)

	if wasActive && len(c.Providers) > 0 {
		c.Providers[0].Active = true
	}

	return c.Save()
}

// SetProviderActive marks a provider active and all others inactive.
func (c *Config) SetProviderActive(id string) error {
	found := false
	for i := range c.Providers {
		if c.Providers[i].ID == id {
			c.Providers[i].Active = true
			found = true
		} else {
			c.Providers[i].Active = false
		}
	}
	if !found {
		return fmt.Errorf("provider not found: %s", id)
	}
	return c.Save()
}

// GetActiveProvider returns the currently active provider.
func (c *Config) GetActiveProvider() *types.Provider {
	for i := range c.Providers {
		if c.Providers[i].Active {
			p := c.Providers[i]
			return &p
		}
	}
	return nil
}

// Helper functions

func validateProvider(p types.Provider) error {
	if p.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if p.Model == "" {
		return fmt.Errorf("model required")
	}
	switch p.Type {
	case "openai", "gemini", "groq":
		if p.APIKey == "" {
			return fmt.Errorf("api key required")
		}
	case "ollama":
	default:
		return fmt.Errorf("unknown provider type: %s", p.Type)
	}
	return nil
}

func applyGestureDefaults(g *types.GestureSettings) {
	if g.PollIntervalMs == 0 {
		g.PollIntervalMs = types.DefaultPollIntervalMs
	}
	if g.DoubleClickMs == 0 {
		g.DoubleClickMs = types.DefaultDoubleClickMs
	}
	if g.DebounceMs == 0 {
		g.DebounceMs = types.DefaultDebounceMs
	}
	if g.DragSettleMs == 0 {
		g.DragSettleMs = types.DefaultDragSettleMs
	}
	if g.ExtractTimeoutMs == 0 {
		g.ExtractTimeoutMs = types.DefaultExtractTimeoutMs
	}
}

func applyShortcutDefaults(s *types.ShortcutSettings) {
	if s.Combo == "" {
		s.Combo = defaultCombo()
	}
	if s.Window == "" {
		s.Window = types.WindowPopup
	}
}

func defaultCombo() string {
	if runtime.GOOS == "darwin" {
		return "cmd+e"
	}
	return "ctrl+e"
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	cfg := &Config{
		Providers:        []types.Provider{},
		DefaultLanguages: defaultLanguages(),
		Gestures: types.GestureSettings{
			Enabled:           true,
			DragSelect:        true,
			DoubleClickSelect: true,
		},
		Shortcut: types.ShortcutSettings{Enabled: true},
	}
	applyGestureDefaults(&cfg.Gestures)
	applyShortcutDefaults(&cfg.Shortcut)
	return cfg
}

func defaultLanguages() map[string]string {
	return map[string]string{
		"zh": "en",
		"en": "zh",
		"vi": "en",
	}
}
