package ui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/palette"
)

func (a *App) updateMenu() error {
	switch a.menuMode {
	case "rom":
		a.updateRomMenu()
	case "settings":
		a.updateSettingsMenu()
	case "keys":
		a.updateKeysMenu()
	default:
		return a.updateMainMenu()
	}
	return nil
}

func back() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyBackspace)
}

func (a *App) updateMainMenu() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < len(mainItems)-1 {
		a.menuIdx++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		switch a.menuIdx {
		case 0:
			a.openRomMenu()
		case 1:
			a.menuMode = "settings"
			a.menuIdx = 0
		case 2:
			a.menuMode = "keys"
			a.keysOff = 0
		case 3:
			a.reset()
			a.showMenu = false
		case 4:
			return ebiten.Termination
		}
	}
	if back() {
		a.showMenu = false
	}
	return nil
}

func (a *App) openRomMenu() {
	a.romList = a.findROMs()
	a.romSel, a.romOff = 0, 0
	a.menuMode = "rom"
}

func (a *App) updateRomMenu() {
	n := len(a.romList)
	if n == 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || back() {
			a.menuMode = "main"
		}
		return
	}
	maxRows := a.rows(40)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.romSel > 0 {
		a.romSel--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.romSel < n-1 {
		a.romSel++
	}
	// keep the selection visible
	if a.romSel < a.romOff {
		a.romOff = a.romSel
	}
	if a.romSel >= a.romOff+maxRows {
		a.romOff = a.romSel - maxRows + 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.loadROM(a.romList[a.romSel])
		a.showMenu = false
		a.menuMode = "main"
	}
	if back() {
		a.menuMode = "main"
	}
}

func (a *App) updateKeysMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.keysOff > 0 {
		a.keysOff--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		a.keysOff++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || back() {
		a.menuMode = "main"
	}
}

func (a *App) updateSettingsMenu() {
	items := len(a.settingsItems())
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < items-1 {
		a.menuIdx++
	}
	dir := 0
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		dir = -1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		dir = +1
	}
	if dir != 0 {
		switch a.menuIdx {
		case 0: // Scale
			a.cfg.Scale = max(1, min(a.cfg.Scale+dir, 10))
			a.applyWindowSize()
		case 1: // Palette
			a.cyclePalette(dir)
		case 2: // Audio
			a.audio.SetMuted(!a.audio.Muted())
		}
	}
	if back() {
		a.menuMode = "main"
		a.menuIdx = 1
	}
}

func (a *App) paletteName() string {
	return palette.Get(a.m.PaletteID()).Name
}

// findROMs lists the .gb files in the configured ROMs directory tree.
func (a *App) findROMs() []string {
	var out []string
	_ = filepath.WalkDir(a.cfg.ROMsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".gb") {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out
}
