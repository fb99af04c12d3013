package ui

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

const (
	lineHeight = 14
	charWidth  = 7
)

var menuFace = text.NewGoXFace(basicfont.Face7x13)

var mainItems = []string{"Switch ROM", "Settings", "Keybindings", "Reset", "Exit"}

var keyRows = []string{
	"Z: A",
	"X: B",
	"Enter: Start",
	"RightShift/Backspace: Select",
	"Arrows: D-Pad",
	"P: Pause",
	"N: Step (when paused)",
	"Tab: Fast-forward",
	"R: Reset",
	"[ / ]: Cycle palette",
	"M: Mute",
	"F11: Fullscreen",
	"F12: Screenshot",
	"Esc: Open/Close Menu",
}

func (a *App) printAt(dst *ebiten.Image, s string, x, y int) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(dst, s, menuFace, op)
}

func (a *App) drawMenu(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, float32(a.curW), float32(a.curH), color.RGBA{0, 0, 0, 176}, false)
	switch a.menuMode {
	case "rom":
		a.drawRomMenu(screen)
	case "settings":
		a.drawSettingsMenu(screen)
	case "keys":
		a.drawKeysMenu(screen)
	default:
		a.drawMainMenu(screen)
	}
}

func (a *App) drawToast(screen *ebiten.Image) {
	msg := a.truncateText(a.toastMsg, a.maxCharsForText(10))
	y := a.curH - lineHeight - 6
	vector.DrawFilledRect(screen, 0, float32(y-2), float32(a.curW), lineHeight+6, color.RGBA{0, 0, 0, 160}, false)
	a.printAt(screen, msg, 10, y)
}

func (a *App) drawList(screen *ebiten.Image, title string, items []string, sel int) {
	a.printAt(screen, title, 10, 10)
	for i, s := range items {
		prefix := "  "
		if i == sel {
			prefix = "> "
		}
		a.printAt(screen, a.truncateText(prefix+s, a.maxCharsForText(10)), 10, 10+(i+1)*lineHeight)
	}
}

func (a *App) drawMainMenu(screen *ebiten.Image) {
	a.drawList(screen, "Menu:", mainItems, a.menuIdx)
}

func (a *App) drawRomMenu(screen *ebiten.Image) {
	a.printAt(screen, a.truncateText("Select ROM (Enter to load, Backspace to return)", a.maxCharsForText(10)), 10, 10)
	a.printAt(screen, a.truncateText("Dir: "+a.cfg.ROMsDir, a.maxCharsForText(10)), 10, 24)
	if len(a.romList) == 0 {
		a.printAt(screen, "No ROMs found", 10, 40)
		return
	}
	baseY := 40
	maxRows := a.rows(baseY)
	end := min(a.romOff+maxRows, len(a.romList))
	maxChars := max(a.maxCharsForText(10)-2, 1)
	for i, p := range a.romList[a.romOff:end] {
		prefix := "  "
		if a.romOff+i == a.romSel {
			prefix = "> "
		}
		a.printAt(screen, prefix+a.truncateText(filepath.Base(p), maxChars), 10, baseY+i*lineHeight)
	}
	// scroll indicators
	if a.romOff > 0 {
		a.printAt(screen, "^", 2, baseY)
	}
	if end < len(a.romList) {
		a.printAt(screen, "v", 2, baseY+(maxRows-1)*lineHeight)
	}
}

func (a *App) drawKeysMenu(screen *ebiten.Image) {
	cursorY := 10
	for _, w := range a.wrapText("Keybindings (Up/Down to scroll, Backspace to return)", a.maxCharsForText(10)) {
		a.printAt(screen, w, 10, cursorY)
		cursorY += lineHeight
	}
	baseY := cursorY + 4
	maxRows := a.rows(baseY)
	a.keysOff = max(0, min(a.keysOff, len(keyRows)-1))
	end := min(a.keysOff+maxRows, len(keyRows))
	for i := a.keysOff; i < end; i++ {
		a.printAt(screen, a.truncateText(keyRows[i], a.maxCharsForText(10)), 10, baseY+(i-a.keysOff)*lineHeight)
	}
	if a.keysOff > 0 {
		a.printAt(screen, "^", 2, baseY)
	}
	if end < len(keyRows) {
		a.printAt(screen, "v", 2, baseY+(maxRows-1)*lineHeight)
	}
}

func (a *App) settingsItems() []string {
	audio := "On"
	if a.audio.Muted() {
		audio = "Muted"
	}
	return []string{
		fmt.Sprintf("Scale: %dx", a.cfg.Scale),
		fmt.Sprintf("Palette: %s", a.paletteName()),
		fmt.Sprintf("Audio: %s", audio),
	}
}

func (a *App) drawSettingsMenu(screen *ebiten.Image) {
	a.drawList(screen, "Settings (Left/Right change, Backspace back)", a.settingsItems(), a.menuIdx)
}

func (a *App) rows(baseY int) int {
	return max((a.curH-baseY)/lineHeight, 1)
}

func (a *App) maxCharsForText(x int) int {
	return max((a.curW-x)/charWidth, 1)
}

func (a *App) truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// wrapText breaks s at spaces into lines of at most n characters.
func (a *App) wrapText(s string, n int) []string {
	var lines []string
	var cur strings.Builder
	for _, w := range strings.Fields(s) {
		if cur.Len() > 0 && cur.Len()+1+len(w) > n {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
