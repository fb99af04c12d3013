package ui

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/draw"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/apu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/joypad"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/wavout"
)

// keymap maps each Game Boy button to the keys that press it.
var keymap = map[joypad.Button][]ebiten.Key{
	joypad.Right:  {ebiten.KeyArrowRight},
	joypad.Left:   {ebiten.KeyArrowLeft},
	joypad.Up:     {ebiten.KeyArrowUp},
	joypad.Down:   {ebiten.KeyArrowDown},
	joypad.A:      {ebiten.KeyZ},
	joypad.B:      {ebiten.KeyX},
	joypad.Start:  {ebiten.KeyEnter},
	joypad.Select: {ebiten.KeyShiftRight, ebiten.KeyBackspace},
}

// App is the ebiten frontend. It is the machine's controller, owns the LCD
// sink and steps one frame per ebiten update.
type App struct {
	cfg   Config
	m     *emu.Machine
	audio *stream
	lcd   *lcd
	tex   *ebiten.Image
	pix   []byte

	keys [8]bool

	paused bool
	fast   bool
	halted bool // the core reported an error

	curW, curH int

	// overlay/menu
	showMenu    bool
	menuMode    string // "main", "rom", "settings", "keys"
	menuIdx     int
	romList     []string
	romSel      int
	romOff      int
	keysOff     int
	toastMsg    string
	toastFrames int
}

func NewApp(cfg Config, m *emu.Machine) (*App, error) {
	cfg.Defaults()
	a := &App{
		cfg:      cfg,
		m:        m,
		lcd:      newLCD(),
		pix:      make([]byte, fbWidth*fbHeight*4),
		menuMode: "main",
	}
	m.SetScreen(a.lcd)
	m.SetController(a)
	a.audio = newStream(cfg.AudioBufferMs)
	var pb apu.Playback = a.audio
	if cfg.WAVPath != "" {
		rec := wavout.New(cfg.WAVPath)
		rec.Next = a.audio
		pb = rec
	}
	if err := m.SetPlayback(pb); err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	if m.Header() == nil {
		// nothing loaded yet: start in the ROM browser
		a.showMenu = true
		a.openRomMenu()
	}
	a.applyRomPalette()
	ebiten.SetWindowTitle(a.windowTitle())
	a.applyWindowSize()
	return a, nil
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) IsPressed(b joypad.Button) bool { return a.keys[b] }

func (a *App) Update() error {
	if a.toastFrames > 0 {
		a.toastFrames--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.showMenu = !a.showMenu
		a.menuMode = "main"
		a.menuIdx = 0
	}
	if a.showMenu {
		a.keys = [8]bool{}
		return a.updateMenu()
	}

	// Keyboard → Game Boy buttons
	for b, keys := range keymap {
		pressed := false
		for _, k := range keys {
			if ebiten.IsKeyPressed(k) {
				pressed = true
			}
		}
		a.keys[b] = pressed
	}

	// Pause toggle (P)
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
		a.audio.SetMuted(a.paused)
	}
	// Fast-forward (Tab): while held, run multiple frames per Ebiten update
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		a.cyclePalette(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		a.cyclePalette(+1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.audio.SetMuted(!a.audio.Muted())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if path, err := a.saveScreenshot(); err != nil {
			a.toast("Screenshot failed: " + err.Error())
		} else {
			a.toast("Saved " + path)
		}
	}

	switch {
	case a.halted:
	case a.paused:
		// Frame-step when paused (N)
		if inpututil.IsKeyJustPressed(ebiten.KeyN) {
			a.step()
		}
	case a.fast:
		for i := 0; i < 5 && !a.halted; i++ {
			a.step()
		}
	default:
		a.step()
	}
	return nil
}

func (a *App) step() {
	if a.m.Header() == nil {
		return
	}
	if err := a.m.StepFrame(); err != nil {
		a.halted = true
		a.audio.SetMuted(true)
		log.Printf("emulation stopped: %v", err)
		if tr := a.m.Trace(); len(tr) > 0 {
			log.Printf("last instructions:\n%s", cpu.Format(tr))
		}
		a.toast(err.Error())
	}
}

func (a *App) reset() {
	if a.m.ROMPath() == "" {
		return
	}
	a.loadROM(a.m.ROMPath())
}

// loadROM saves the current battery RAM, then loads path and its save file.
func (a *App) loadROM(path string) {
	a.saveBattery()
	if err := a.m.LoadROMFromFile(path); err != nil {
		a.toast("ROM load failed: " + err.Error())
		return
	}
	if ok, err := a.m.LoadBatteryFile(emu.BatteryPath(path)); err != nil {
		log.Printf("battery: %v", err)
	} else if ok {
		log.Printf("battery: restored %s", emu.BatteryPath(path))
	}
	a.halted = false
	a.audio.SetMuted(a.paused)
	a.applyRomPalette()
	ebiten.SetWindowTitle(a.windowTitle())
	a.toast("Loaded ROM: " + filepath.Base(path))
}

func (a *App) saveBattery() {
	if a.m.ROMPath() == "" {
		return
	}
	path := emu.BatteryPath(a.m.ROMPath())
	if ok, err := a.m.SaveBatteryFile(path); err != nil {
		log.Printf("battery: %v", err)
	} else if ok {
		log.Printf("battery: wrote %s", path)
	}
}

// Close persists battery RAM and stops audio.
func (a *App) Close() error {
	a.saveBattery()
	return a.m.Close()
}

func (a *App) applyRomPalette() {
	if pid, ok := a.cfg.PerROMPalette[a.m.ROMPath()]; ok {
		a.m.SetPalette(pid)
	}
}

func (a *App) cyclePalette(dir int) {
	pid := a.m.CyclePalette(dir)
	if p := a.m.ROMPath(); p != "" {
		a.cfg.PerROMPalette[p] = pid
	}
	a.toast("Palette: " + a.paletteName())
}

func (a *App) windowTitle() string {
	if h := a.m.Header(); h != nil && h.Title != "" {
		return a.cfg.Title + " - [" + h.Title + "]"
	}
	return a.cfg.Title
}

func (a *App) applyWindowSize() {
	ebiten.SetWindowSize(fbWidth*a.cfg.Scale, fbHeight*a.cfg.Scale)
}

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastFrames = 120
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(fbWidth, fbHeight)
	}
	a.lcd.pixels(a.pix)
	a.tex.WritePixels(a.pix)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(a.cfg.Scale), float64(a.cfg.Scale))
	screen.DrawImage(a.tex, op)

	if a.showMenu {
		a.drawMenu(screen)
	}
	if a.toastFrames > 0 {
		a.drawToast(screen)
	}
}

func (a *App) Layout(outW, outH int) (int, int) {
	a.curW, a.curH = fbWidth*a.cfg.Scale, fbHeight*a.cfg.Scale
	return a.curW, a.curH
}

// saveScreenshot writes the last frame scaled by the window scale factor.
func (a *App) saveScreenshot() (string, error) {
	src := a.lcd.Frame()
	dst := image.NewRGBA(image.Rect(0, 0, fbWidth*a.cfg.Scale, fbHeight*a.cfg.Scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	ts := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("screenshot_%s.png", ts)
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return name, png.Encode(f, dst)
}
