package main

import (
	"embed"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"go.aimuz.me/refiner/internal/app"
)

//go:embed all:frontend/dist
var assets embed.FS

//go:embed build/tray.png
var trayIconBytes []byte

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// windowUI drives the Wails windows on behalf of the app service.
type windowUI struct {
	main  *application.WebviewWindow
	icon  *application.WebviewWindow
	popup *application.WebviewWindow
}

func (w *windowUI) ShowSelectionIcon(x, y int) {
	w.icon.SetPosition(x, y)
	w.icon.Show()
}

func (w *windowUI) HideSelectionIcon() {
	w.icon.Hide()
}

func (w *windowUI) ShowPopup(x, y int) {
	w.popup.SetPosition(x, y)
	w.popup.Show()
	w.popup.Focus()
}

func (w *windowUI) ShowMain() {
	w.main.Show()
	w.main.Focus()
}

// setupLogger installs a tint handler. REFINER_LOG_LEVEL selects the level.
func setupLogger() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(os.Getenv("REFINER_LOG_LEVEL")))); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))
}

// hideOnClose keeps a window alive so it can be shown again.
func hideOnClose(w *application.WebviewWindow) {
	w.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		w.Hide()
	})
}

func main() {
	setupLogger()
	slog.Info("starting app", "version", version, "commit", commit, "date", date)
	appService := app.New(version)

	wailsApp := application.New(application.Options{
		Name:        "Refiner",
		Description: "Select text anywhere to translate it",
		Services: []application.Service{
			application.NewService(appService),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// Don't quit when all windows are closed (we have a system tray)
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	mainWindow := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Name:   "main",
		Title:  "Refiner",
		Width:  1024,
		Height: 768,
		URL:    "/",
		Mac: application.MacWindow{
			TitleBar:                application.MacTitleBarHiddenInsetUnified,
			InvisibleTitleBarHeight: 38,
		},
		DevToolsEnabled: true,
	})
	hideOnClose(mainWindow)

	iconWindow := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Name:           "selection-icon",
		Width:          24,
		Height:         24,
		URL:            "/selection-icon.html",
		Frameless:      true,
		AlwaysOnTop:    true,
		Hidden:         true,
		DisableResize:  true,
		BackgroundType: application.BackgroundTypeTransparent,
	})

	popupWindow := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Name:        "popup",
		Title:       "Refiner",
		Width:       420,
		Height:      320,
		URL:         "/popup.html",
		Frameless:   true,
		AlwaysOnTop: true,
		Hidden:      true,
	})
	hideOnClose(popupWindow)

	ui := &windowUI{main: mainWindow, icon: iconWindow, popup: popupWindow}
	appService.Init(ui, func(name string, data any) {
		wailsApp.Event.Emit(name, data)
	})

	systemTray := wailsApp.SystemTray.New()
	systemTray.SetIcon(trayIconBytes)

	trayMenu := wailsApp.NewMenu()
	trayMenu.Add("Show Window").OnClick(func(ctx *application.Context) {
		ui.ShowMain()
	})

	gesturesItem := trayMenu.AddCheckbox("Translate Selection", appService.GesturesEnabled())
	gesturesItem.OnClick(func(ctx *application.Context) {
		enabled := !appService.GesturesEnabled()
		if err := appService.SetGesturesEnabled(enabled); err != nil {
			slog.Error("toggle gestures from tray", "error", err)
			enabled = !enabled
		}
		gesturesItem.SetChecked(enabled)
		trayMenu.Update()
	})

	trayMenu.AddSeparator()
	trayMenu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(ctx *application.Context) {
			appService.Shutdown()
			wailsApp.Quit()
		})

	systemTray.SetMenu(trayMenu)

	if err := wailsApp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}
