package mainwindow

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// setupKeys wires the keyboard surface: plain keys and runes through the
// canvas typed handlers, Ctrl chords through desktop shortcuts.
func (mw *MainWindow) setupKeys() {
	c := mw.Canvas()
	c.SetOnTypedKey(mw.onTypedKey)
	c.SetOnTypedRune(mw.onTypedRune)

	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl},
		func(fyne.Shortcut) { mw.session.Undo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl},
		func(fyne.Shortcut) { mw.session.Redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl},
		func(fyne.Shortcut) { mw.onSave() })
}

func (mw *MainWindow) onTypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyLeft:
		mw.session.PrevImage()
	case fyne.KeyRight:
		mw.session.NextImage()
	case fyne.KeyHome:
		mw.session.FirstImage()
	case fyne.KeyEnd:
		mw.session.LastImage()
	case fyne.KeyPageUp:
		mw.session.PageBack()
	case fyne.KeyPageDown:
		mw.session.PageForward()
	case fyne.KeyReturn, fyne.KeyEnter:
		mw.onOpenExternal()
	case fyne.KeyF1:
		mw.showHelp()
	case fyne.KeyEscape:
		mw.hideHelp()
	}
}

func (mw *MainWindow) onTypedRune(r rune) {
	switch r {
	case 'a':
		mw.session.PrevImage()
	case 'd':
		mw.session.NextImage()
	case 'r':
		mw.session.ResetCounter()
		mw.updateStatus("Number counter reset to 1")
	case 's':
		mw.onSave()
	case 'l':
		mw.onToggleHoverLabels()
	case 'f':
		mw.onToggleFlipY()
	case 'b':
		mw.onToggleBackground()
	case 'o':
		mw.onOpenExternal()
	case 'h', '?':
		mw.showHelp()
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		mw.session.JumpToImage(int(r - '0'))
	}
}
