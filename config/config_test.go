package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.aimuz.me/refiner/internal/types"
)

// useTempConfigDir points os.UserConfigDir at a temporary directory.
func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("AppData", dir)

	configDir, err := os.UserConfigDir()
	if err != nil {
		t.Fatalf("UserConfigDir: %v", err)
	}
	return configDir
}

func TestLoad_Defaults(t *testing.T) {
	useTempConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.Gestures.Enabled || !cfg.Gestures.DragSelect || !cfg.Gestures.DoubleClickSelect {
		t.Errorf("default gestures = %+v, want all enabled", cfg.Gestures)
	}
	if cfg.Gestures.DoubleClickMs != types.DefaultDoubleClickMs {
		t.Errorf("DoubleClickMs = %d, want %d", cfg.Gestures.DoubleClickMs, types.DefaultDoubleClickMs)
	}
	if cfg.Gestures.DebounceMs != types.DefaultDebounceMs {
		t.Errorf("DebounceMs = %d, want %d", cfg.Gestures.DebounceMs, types.DefaultDebounceMs)
	}
	if cfg.Shortcut.Combo == "" || cfg.Shortcut.Window != types.WindowPopup {
		t.Errorf("default shortcut = %+v", cfg.Shortcut)
	}
	if cfg.DefaultLanguages["en"] != "zh" {
		t.Errorf("DefaultLanguages = %v", cfg.DefaultLanguages)
	}
}

func TestLoad_FillsMissingTimings(t *testing.T) {
	configDir := useTempConfigDir(t)

	path := filepath.Join(configDir, appName, configFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte(`{"gestures": {"enabled": true, "drag_settle_ms": 80}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gestures.DragSettleMs != 80 {
		t.Errorf("DragSettleMs = %d, want 80", cfg.Gestures.DragSettleMs)
	}
	if cfg.Gestures.PollIntervalMs != types.DefaultPollIntervalMs {
		t.Errorf("PollIntervalMs = %d, want default", cfg.Gestures.PollIntervalMs)
	}
	if cfg.DefaultLanguages == nil {
		t.Error("DefaultLanguages not filled")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	configDir := useTempConfigDir(t)

	path := filepath.Join(configDir, appName, configFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load with invalid JSON returned nil error")
	}
}

func TestSaveAndReload(t *testing.T) {
	useTempConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.SetGestureSettings(types.GestureSettings{Enabled: false, DebounceMs: 450}); err != nil {
		t.Fatalf("SetGestureSettings: %v", err)
	}

	reloaded, err := Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Gestures.Enabled {
		t.Error("Enabled = true after disabling")
	}
	if reloaded.Gestures.DebounceMs != 450 {
		t.Errorf("DebounceMs = %d, want 450", reloaded.Gestures.DebounceMs)
	}
	if reloaded.Gestures.DoubleClickMs != types.DefaultDoubleClickMs {
		t.Errorf("DoubleClickMs = %d, want default", reloaded.Gestures.DoubleClickMs)
	}
}

func TestSetGestureSettings_RejectsNegative(t *testing.T) {
	useTempConfigDir(t)
	cfg := defaultConfig()

	if err := cfg.SetGestureSettings(types.GestureSettings{DragSettleMs: -1}); err == nil {
		t.Error("negative settle delay accepted")
	}
}

func TestSetShortcutSettings(t *testing.T) {
	useTempConfigDir(t)
	cfg := defaultConfig()

	if err := cfg.SetShortcutSettings(types.ShortcutSettings{Window: "sidebar"}); err == nil {
		t.Error("unknown window accepted")
	}
	if err := cfg.SetShortcutSettings(types.ShortcutSettings{Enabled: true, Window: types.WindowMain}); err != nil {
		t.Fatalf("SetShortcutSettings: %v", err)
	}
	if cfg.Shortcut.Combo != defaultCombo() {
		t.Errorf("Combo = %q, want default %q", cfg.Shortcut.Combo, defaultCombo())
	}
}

func TestProviders(t *testing.T) {
	useTempConfigDir(t)
	cfg := defaultConfig()

	if err := cfg.AddProvider(types.Provider{Name: "OpenAI", Type: "openai", Model: "gpt-4o-mini", APIKey: "sk-test"}); err != nil {
		t.Fatalf("AddProvider: %v", err)
	}
	if err := cfg.AddProvider(types.Provider{Name: "Local", Type: "ollama", Model: "llama3"}); err != nil {
		t.Fatalf("AddProvider ollama: %v", err)
	}

	if len(cfg.Providers) != 2 {
		t.Fatalf("providers = %d, want 2", len(cfg.Providers))
	}
	first, second := cfg.Providers[0], cfg.Providers[1]
	if first.ID == "" || second.ID == "" || first.ID == second.ID {
		t.Errorf("provider ids = %q, %q; want distinct non-empty", first.ID, second.ID)
	}
	if active := cfg.GetActiveProvider(); active == nil || active.ID != first.ID {
		t.Errorf("active = %+v, want first provider", active)
	}

	if err := cfg.SetProviderActive(second.ID); err != nil {
		t.Fatalf("SetProviderActive: %v", err)
	}
	if active := cfg.GetActiveProvider(); active == nil || active.ID != second.ID {
		t.Errorf("active = %+v, want second provider", active)
	}

	if err := cfg.RemoveProvider(second.ID); err != nil {
		t.Fatalf("RemoveProvider: %v", err)
	}
	if active := cfg.GetActiveProvider(); active == nil || active.ID != first.ID {
		t.Errorf("active after removal = %+v, want first provider", active)
	}

	if err := cfg.SetProviderActive("missing"); err == nil {
		t.Error("SetProviderActive on missing id returned nil error")
	}
}

func TestValidateProvider(t *testing.T) {
	tests := []struct {
		name    string
		p       types.Provider
		wantErr bool
	}{
		{name: "valid openai", p: types.Provider{Name: "a", Type: "openai", Model: "m", APIKey: "k"}},
		{name: "ollama without key", p: types.Provider{Name: "a", Type: "ollama", Model: "m"}},
		{name: "missing name", p: types.Provider{Type: "openai", Model: "m", APIKey: "k"}, wantErr: true},
		{name: "missing key", p: types.Provider{Name: "a", Type: "groq", Model: "m"}, wantErr: true},
		{name: "unknown type", p: types.Provider{Name: "a", Type: "other", Model: "m", APIKey: "k"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProvider(tt.p)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
