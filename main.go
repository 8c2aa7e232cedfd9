// Package main provides the entry point for the Bounding Box Annotator.
package main

import (
	"log"
	"os"

	"bbox-annotator/internal/app"
	"bbox-annotator/ui/mainwindow"
	"bbox-annotator/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const (
	appTitle   = "Bounding Box Annotator"
	appVersion = "0.1.0"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, appVersion)

	fyneApp := fyneapp.NewWithID("bbox-annotator")

	appPrefs := prefs.Load()
	cfg := configFromPrefs(appPrefs)

	session := app.NewSession(cfg)
	win := mainwindow.New(fyneApp, session, appPrefs)

	// A dataset path on the command line overrides the restored one.
	if len(os.Args) > 1 {
		path := os.Args[1]
		if err := session.LoadFile(path); err != nil {
			log.Printf("Failed to load dataset %s: %v", path, err)
		} else {
			appPrefs.SetString(prefs.KeyLastDataset, path)
			if err := appPrefs.Save(); err != nil {
				log.Printf("Failed to save preferences: %v", err)
			}
		}
	}

	win.ShowAndRun()
}

// configFromPrefs overlays saved preferences on the default configuration.
func configFromPrefs(p *prefs.Prefs) app.Config {
	cfg := app.DefaultConfig()
	cfg.FlipY = p.Bool(prefs.KeyFlipY, cfg.FlipY)
	cfg.ShowBackground = p.Bool(prefs.KeyShowBackground, cfg.ShowBackground)
	cfg.ShowHoverLabels = p.Bool(prefs.KeyHoverLabels, cfg.ShowHoverLabels)
	cfg.HighQualityThumbnails = p.Bool(prefs.KeyHighQuality, cfg.HighQualityThumbnails)
	cfg.ThumbnailSize = p.Int(prefs.KeyThumbnailSize, cfg.ThumbnailSize)
	return cfg
}
