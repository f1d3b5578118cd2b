// Package main provides the entry point for the Pattern Tiler application.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"pattern-tiler/internal/app"
	"pattern-tiler/internal/config"
	"pattern-tiler/internal/version"
	"pattern-tiler/ui/mainwindow"
	"pattern-tiler/ui/prefs"
)

const (
	appTitle         = "Pattern Tiler"
	prefKeyLastProj  = "lastProject"
	prefKeyVirtual   = "virtualMode"
	defaultConfigRel = "pattern-tiler/tiler.toml"
)

func main() {
	configPath := flag.String("config", "", "path to the TOML config file")
	virtual := flag.Bool("virtual", false, "store new shapes canonically")
	dev := flag.Bool("dev", false, "watch the binary and offer restart after rebuild")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	cfg, err := config.Load(resolveConfigPath(*configPath))
	if err != nil {
		log.Fatalf("Config: %v", err)
	}

	state, err := app.NewState(cfg)
	if err != nil {
		log.Fatalf("State: %v", err)
	}

	appPrefs := prefs.Load()
	if *virtual || appPrefs.Bool(prefKeyVirtual, false) {
		state.EnableVirtualMode()
	}

	fyneApp := fyneapp.NewWithID("pattern-tiler")
	fyneApp.Settings().SetTheme(&app.TilerTheme{})

	win := mainwindow.New(fyneApp, state)

	// Remember the last project across sessions.
	rememberProject := func(data interface{}) {
		if path, ok := data.(string); ok {
			appPrefs.SetString(prefKeyLastProj, path)
			if err := appPrefs.Save(); err != nil {
				log.Printf("Preferences: %v", err)
			}
		}
	}
	state.On(app.EventProjectLoaded, rememberProject)
	state.On(app.EventProjectSaved, rememberProject)

	projectPath := flag.Arg(0)
	if projectPath == "" {
		projectPath = appPrefs.String(prefKeyLastProj)
	}
	if projectPath != "" {
		if err := state.LoadProject(context.Background(), projectPath); err != nil {
			log.Printf("Failed to load project %s: %v", projectPath, err)
		}
	}

	if *dev {
		setupHotReload(win)
	}

	win.ShowAndRun()
}

func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, defaultConfigRel)
}

// setupHotReload configures automatic restart detection when the binary
// is recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(yes bool) {
				if !yes {
					return
				}
				log.Println("Hot reload: restarting...")
				if err := reloader.Restart(); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win.Window)
	})

	reloader.Start()
}
