// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"

	"bbox-annotator/internal/annotate"
	"bbox-annotator/internal/app"
	"bbox-annotator/internal/version"
	uicanvas "bbox-annotator/ui/canvas"
	"bbox-annotator/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session
	prefs   *prefs.Prefs

	plot       *uicanvas.PlotView
	thumbs     *uicanvas.ThumbStrip
	statusBar  *widget.Label
	hoverLabel *widget.Label
	modeRadio  *widget.RadioGroup

	helpDialog dialog.Dialog

	// Menu items that need state tracking
	backgroundItem  *fyne.MenuItem
	hoverLabelsItem *fyne.MenuItem
	flipYItem       *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, session *app.Session, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Bounding Box Annotator")

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: session,
		prefs:   p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()
	mw.restoreLastDataset()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.plot = uicanvas.NewPlotView(mw.session)
	mw.thumbs = uicanvas.NewThumbStrip(mw.session)

	mw.statusBar = widget.NewLabel("Ready - open a dataset to begin")
	mw.hoverLabel = widget.NewLabel("")

	mw.plot.OnResult(mw.updateStatus)
	mw.plot.OnHover(func(labels []string, ok bool) {
		if !ok {
			mw.hoverLabel.SetText("")
			return
		}
		text := ""
		for i, l := range labels {
			if i > 0 {
				text += "  |  "
			}
			text += l
		}
		mw.hoverLabel.SetText(text)
	})

	toolbar := mw.createToolbar()

	// Thumbnail strip and status row at the bottom
	statusRow := container.NewBorder(nil, nil, nil, mw.hoverLabel,
		container.NewPadded(mw.statusBar))
	bottom := container.NewVBox(mw.thumbs, statusRow)

	content := container.NewBorder(
		toolbar, // top
		bottom,  // bottom
		nil,     // left
		nil,     // right
		mw.plot, // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1100, 800))
}

// createToolbar creates the toolbar with mode and annotation controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.modeRadio = widget.NewRadioGroup([]string{string(annotate.ModeX), string(annotate.ModeNumber)}, func(sel string) {
		if sel == "" || !mw.session.Loaded() {
			return
		}
		if annotate.Mode(sel) == mw.session.Controller.Mode() {
			return
		}
		mw.session.SetMode(annotate.Mode(sel))
	})
	mw.modeRadio.Horizontal = true
	mw.modeRadio.SetSelected(string(annotate.ModeX))

	prevBtn := widget.NewButton("<", func() { mw.session.PrevImage() })
	nextBtn := widget.NewButton(">", func() { mw.session.NextImage() })
	undoBtn := widget.NewButton("Undo", func() { mw.session.Undo() })
	redoBtn := widget.NewButton("Redo", func() { mw.session.Redo() })
	clearBtn := widget.NewButton("Clear", func() { mw.session.ClearAll() })
	counterBtn := widget.NewButton("Reset Counter", func() {
		mw.session.ResetCounter()
		mw.updateStatus("Number counter reset to 1")
	})
	saveBtn := widget.NewButton("Save", func() { mw.onSave() })
	exportBtn := widget.NewButton("Export All", func() { mw.onExportAll() })

	return container.NewHBox(
		widget.NewLabel("Mode:"),
		mw.modeRadio,
		widget.NewSeparator(),
		prevBtn,
		nextBtn,
		widget.NewSeparator(),
		undoBtn,
		redoBtn,
		clearBtn,
		counterBtn,
		widget.NewSeparator(),
		saveBtn,
		exportBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Dataset...", mw.onOpenDataset),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Annotations", mw.onSave),
		fyne.NewMenuItem("Export All Plots...", mw.onExportAll),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { mw.session.Undo() }),
		fyne.NewMenuItem("Redo", func() { mw.session.Redo() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Marks on Image", func() { mw.session.ClearAll() }),
		fyne.NewMenuItem("Reset Number Counter", func() { mw.session.ResetCounter() }),
	)

	mw.backgroundItem = fyne.NewMenuItem(toggleLabel("Background Images", mw.session.ShowBackground()), mw.onToggleBackground)
	mw.hoverLabelsItem = fyne.NewMenuItem(toggleLabel("Hover Labels", mw.session.ShowHoverLabels()), mw.onToggleHoverLabels)
	mw.flipYItem = fyne.NewMenuItem(toggleLabel("Flip Y Axis", mw.session.FlipY()), mw.onToggleFlipY)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("First Image", func() { mw.session.FirstImage() }),
		fyne.NewMenuItem("Last Image", func() { mw.session.LastImage() }),
		fyne.NewMenuItemSeparator(),
		mw.backgroundItem,
		mw.hoverLabelsItem,
		mw.flipYItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Image in Browser", mw.onOpenExternal),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Keyboard Shortcuts", mw.showHelp),
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mainMenu := fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mainMenu)
}

func toggleLabel(name string, on bool) string {
	if on {
		return "✓ " + name
	}
	return "  " + name
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(app.EventDatasetLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle("Bounding Box Annotator - " + filepath.Base(path))
		}
		mw.refreshAll()
		mw.session.RequestBackground()
		mw.updateImageStatus()
	})

	mw.session.On(app.EventImageChanged, func(data interface{}) {
		mw.refreshAll()
		mw.session.RequestBackground()
		mw.updateImageStatus()
	})

	mw.session.On(app.EventAnnotationChanged, func(data interface{}) {
		mw.refreshAll()
	})

	mw.session.On(app.EventModeChanged, func(data interface{}) {
		if mode, ok := data.(annotate.Mode); ok {
			mw.modeRadio.SetSelected(string(mode))
			mw.updateStatus("Mode: " + string(mode))
		}
	})

	mw.session.On(app.EventMarksCleared, func(data interface{}) {
		if id, ok := data.(string); ok {
			mw.updateStatus("Cleared all session marks on " + id)
		}
	})

	mw.session.On(app.EventBackgroundLoaded, func(data interface{}) {
		mw.plot.Refresh()
	})

	mw.session.On(app.EventSaved, func(data interface{}) {
		if dir, ok := data.(string); ok {
			mw.updateStatus("Saved to " + dir)
		}
	})
}

// refreshAll redraws the plot and the thumbnail strip.
func (mw *MainWindow) refreshAll() {
	mw.plot.Refresh()
	mw.thumbs.Rebuild()
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// updateImageStatus shows the navigation position in the status bar.
func (mw *MainWindow) updateImageStatus() {
	if !mw.session.Loaded() {
		return
	}
	mw.updateStatus(fmt.Sprintf("Image %d/%d: %s",
		mw.session.CurrentIndex()+1, mw.session.ImageCount(), mw.session.CurrentImageID()))
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDirectory)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDirectory, filepath.Dir(filePath))
	if err := mw.prefs.Save(); err != nil {
		log.Printf("failed to save preferences: %v", err)
	}
}

// restoreLastDataset reloads the dataset from the previous run, if any.
func (mw *MainWindow) restoreLastDataset() {
	path := mw.prefs.String(prefs.KeyLastDataset)
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := mw.session.LoadFile(path); err != nil {
		log.Printf("failed to restore last dataset %s: %v", path, err)
	}
}

// Menu action handlers

func (mw *MainWindow) onOpenDataset() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.session.LoadFile(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetString(prefs.KeyLastDataset, path)
		if err := mw.prefs.Save(); err != nil {
			log.Printf("failed to save preferences: %v", err)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".xlsx", ".xlsm"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSave() {
	if err := mw.session.Save(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onExportAll() {
	if !mw.session.Loaded() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	progress := widget.NewLabel("Starting export...")
	d := dialog.NewCustom("Exporting Plots", "Cancel", progress, mw.Window)
	d.SetOnClosed(cancel)
	d.Show()

	go func() {
		dir, err := mw.session.ExportAll(ctx, func(current, total int, message string) {
			progress.SetText(fmt.Sprintf("[%d/%d] %s", current, total, message))
		})
		d.Hide()
		if err != nil {
			log.Printf("export failed: %v", err)
			dialog.ShowError(err, mw.Window)
			return
		}
		dialog.ShowInformation("Export Complete", "Plots written to:\n"+dir, mw.Window)
	}()
}

func (mw *MainWindow) onToggleBackground() {
	mw.session.ToggleBackground()
	mw.backgroundItem.Label = toggleLabel("Background Images", mw.session.ShowBackground())
	mw.prefs.SetBool(prefs.KeyShowBackground, mw.session.ShowBackground())
	mw.persistPrefs()
	if mw.session.ShowBackground() {
		mw.session.RequestBackground()
	}
}

func (mw *MainWindow) onToggleHoverLabels() {
	mw.session.ToggleHoverLabels()
	mw.hoverLabelsItem.Label = toggleLabel("Hover Labels", mw.session.ShowHoverLabels())
	mw.prefs.SetBool(prefs.KeyHoverLabels, mw.session.ShowHoverLabels())
	mw.persistPrefs()
	if !mw.session.ShowHoverLabels() {
		mw.hoverLabel.SetText("")
	}
}

func (mw *MainWindow) onToggleFlipY() {
	mw.session.ToggleFlipY()
	mw.flipYItem.Label = toggleLabel("Flip Y Axis", mw.session.FlipY())
	mw.prefs.SetBool(prefs.KeyFlipY, mw.session.FlipY())
	mw.persistPrefs()
}

func (mw *MainWindow) persistPrefs() {
	if err := mw.prefs.Save(); err != nil {
		log.Printf("failed to save preferences: %v", err)
	}
}

// onOpenExternal opens the current image URL in the system browser.
func (mw *MainWindow) onOpenExternal() {
	raw := mw.session.CurrentImageURL()
	if raw == "" {
		mw.updateStatus("No image URL for current image")
		return
	}
	u, err := url.Parse(raw)
	if err != nil {
		mw.updateStatus("Invalid image URL: " + raw)
		return
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if err := mw.app.OpenURL(u); err != nil {
		log.Printf("failed to open URL %s: %v", raw, err)
	}
}

const helpText = `Navigation
  Left / a        previous image
  Right / d       next image
  Home / End      first / last image
  PgUp / PgDn     back / forward 10 images
  1-9             jump to image 1-9

Annotation
  Click           mark the box under the pointer
  Ctrl+Z          undo last mark on this image
  Ctrl+Y          redo
  r               reset number counter to 1

Display
  b               toggle background images
  l               toggle hover labels
  f               flip Y axis
  o / Enter       open image URL in browser

Session
  s / Ctrl+S      save annotation CSVs
  h / ? / F1      this help
  Esc             dismiss help`

// showHelp displays the keyboard shortcut overlay.
func (mw *MainWindow) showHelp() {
	if mw.helpDialog != nil {
		mw.helpDialog.Show()
		return
	}
	text := widget.NewLabel(helpText)
	text.TextStyle = fyne.TextStyle{Monospace: true}
	mw.helpDialog = dialog.NewCustom("Keyboard Shortcuts", "Close", text, mw.Window)
	mw.helpDialog.Show()
}

// hideHelp dismisses the help overlay if it is up.
func (mw *MainWindow) hideHelp() {
	if mw.helpDialog != nil {
		mw.helpDialog.Hide()
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Bounding Box Annotator",
		fmt.Sprintf("Bounding Box Annotator v%s\n\n"+
			"Interactive review and marking of pre-computed\n"+
			"bounding boxes from CSV/XLSX datasets.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
