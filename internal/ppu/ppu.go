package ppu

import (
	"image/color"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"
)

const (
	Width         = 160
	Height        = 144
	DotsPerLine   = 456
	LinesPerFrame = 154
	DotsPerFrame  = DotsPerLine * LinesPerFrame

	oamScanDots     = 80
	minTransferDots = 172
	maxTransferDots = 289
)

// Mode is the PPU state reported in STAT bits 0-1.
type Mode byte

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeTransfer
)

// Layer identifies which layer produced a pixel.
type Layer int

const (
	LayerBG Layer = iota
	LayerWindow
	LayerSprite
)

// Screen receives finished pixels in raster order and one Draw per frame.
type Screen interface {
	TurnOn()
	TurnOff()
	SetPixel(x, y int, c color.RGBA)
	Draw()
}

// Palette maps a shade (0 lightest .. 3 darkest) to a display color.
// palette is the OBP index for sprites and 0 otherwise.
type Palette interface {
	Color(layer Layer, shade byte, palette int) color.RGBA
}

// PPU models VRAM/OAM, the LCD registers and the per-dot line state machine.
type PPU struct {
	vram vram
	oam  [0xA0]byte

	lcdc byte // FF40
	stat byte // FF41 enable bits 3-6
	scy  byte // FF42
	scx  byte // FF43
	ly   byte // FF44
	lyc  byte // FF45
	bgp  byte // FF47
	obp0 byte // FF48
	obp1 byte // FF49
	wy   byte // FF4A
	wx   byte // FF4B

	mode     Mode
	dot      int
	transfer int // mode 3 length for the current line
	statLine bool

	sprites  [MaxSpritesPerLine]Sprite
	nSprites int

	winLine      byte // internal window line counter
	winTriggered bool // WY matched LY this frame
	winOnLine    bool

	irq     *interrupt.Controller
	screen  Screen
	palette Palette
	frames  uint64
}

func New(irq *interrupt.Controller) *PPU {
	return &PPU{irq: irq}
}

// SetScreen attaches the pixel sink; nil discards pixels.
func (p *PPU) SetScreen(s Screen) { p.screen = s }

// SetPalette sets the shade-to-color mapping used for Screen pixels.
func (p *PPU) SetPalette(pal Palette) { p.palette = pal }

func (p *PPU) Mode() Mode       { return p.mode }
func (p *PPU) LY() byte         { return p.ly }
func (p *PPU) Frames() uint64   { return p.frames }
func (p *PPU) LCDEnabled() bool { return p.lcdc&0x80 != 0 }

// TransferLength returns the mode 3 length of the current line in dots.
func (p *PPU) TransferLength() int { return p.transfer }

// CPURead returns bytes for VRAM, OAM and the LCD registers.
// VRAM reads 0xFF during mode 3 and OAM during modes 2-3.
func (p *PPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.mode == ModeTransfer {
			return 0xFF
		}
		return p.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if p.mode == ModeOAMScan || p.mode == ModeTransfer {
			return 0xFF
		}
		return p.oam[addr-0xFE00]
	}
	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		v := 0x80 | p.stat&0x78 | byte(p.mode)
		if p.ly == p.lyc {
			v |= 0x04
		}
		return v
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	}
	return 0xFF
}

// CPUWrite handles writes to VRAM, OAM and the LCD registers. LY is read-only.
func (p *PPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.mode != ModeTransfer {
			p.vram[addr-0x8000] = value
		}
		return
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if p.mode != ModeOAMScan && p.mode != ModeTransfer {
			p.oam[addr-0xFE00] = value
		}
		return
	}
	switch addr {
	case 0xFF40:
		prev := p.lcdc
		p.lcdc = value
		switch {
		case prev&0x80 != 0 && value&0x80 == 0:
			p.ly, p.dot = 0, 0
			p.mode = ModeHBlank
			p.statLine = false
			if p.screen != nil {
				p.screen.TurnOff()
			}
		case prev&0x80 == 0 && value&0x80 != 0:
			p.ly, p.dot = 0, 0
			p.winLine, p.winTriggered = 0, false
			p.startLine()
			if p.screen != nil {
				p.screen.TurnOn()
			}
		}
	case 0xFF41:
		p.stat = value & 0x78
		p.updateStat()
	case 0xFF42:
		p.scy = value
	case 0xFF43:
		p.scx = value
	case 0xFF45:
		p.lyc = value
		p.updateStat()
	case 0xFF47:
		p.bgp = value
	case 0xFF48:
		p.obp0 = value
	case 0xFF49:
		p.obp1 = value
	case 0xFF4A:
		p.wy = value
	case 0xFF4B:
		p.wx = value
	}
}

// VRAM reads video RAM regardless of the current mode.
func (p *PPU) VRAM(addr uint16) byte { return p.vram.Read(addr) }

// DMAWrite stores one OAM byte regardless of the current mode.
func (p *PPU) DMAWrite(index int, value byte) {
	if index >= 0 && index < len(p.oam) {
		p.oam[index] = value
	}
}

// Step advances the PPU by the given number of dots (CPU clocks).
func (p *PPU) Step(cycles int) {
	if p.lcdc&0x80 == 0 {
		return
	}
	for i := 0; i < cycles; i++ {
		p.tick()
	}
}

func (p *PPU) tick() {
	p.dot++
	if p.ly < Height {
		switch {
		case p.mode == ModeOAMScan && p.dot == oamScanDots:
			p.nSprites = scanOAM(&p.oam, p.ly, p.lcdc&0x04 != 0, &p.sprites)
			p.transfer = p.transferLength()
			p.setMode(ModeTransfer)
		case p.mode == ModeTransfer && p.dot == oamScanDots+p.transfer:
			p.renderLine()
			p.setMode(ModeHBlank)
		}
	}
	if p.dot < DotsPerLine {
		return
	}
	p.dot = 0
	if p.winOnLine {
		p.winLine++
	}
	p.ly++
	if p.ly == LinesPerFrame {
		p.ly = 0
		p.winLine, p.winTriggered = 0, false
	}
	// a new LY=LYC match requests STAT even while another source holds the line high
	if p.statLine && p.ly == p.lyc && p.stat&0x40 != 0 {
		p.irq.Request(interrupt.STAT)
	}
	switch {
	case p.ly == Height:
		p.mode = ModeVBlank
		p.updateStat()
		p.irq.Request(interrupt.VBlank)
		p.frames++
		if p.screen != nil {
			p.screen.Draw()
		}
	case p.ly < Height:
		p.startLine()
	default:
		p.updateStat()
	}
}

// startLine enters mode 2 for a visible line.
func (p *PPU) startLine() {
	p.winOnLine = false
	if p.ly == p.wy {
		p.winTriggered = true
	}
	p.mode = ModeOAMScan
	p.updateStat()
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	p.updateStat()
}

// updateStat recomputes the STAT interrupt line and requests the interrupt
// on its rising edge only.
func (p *PPU) updateStat() {
	line := p.ly == p.lyc && p.stat&0x40 != 0
	switch p.mode {
	case ModeHBlank:
		line = line || p.stat&0x08 != 0
	case ModeVBlank:
		line = line || p.stat&0x10 != 0
	case ModeOAMScan:
		line = line || p.stat&0x20 != 0
	}
	if p.lcdc&0x80 == 0 {
		line = false
	}
	if line && !p.statLine {
		p.irq.Request(interrupt.STAT)
	}
	p.statLine = line
}

func (p *PPU) windowActive() bool {
	return p.lcdc&0x21 == 0x21 && p.winTriggered && p.wx <= 166
}

// transferLength is 172 dots plus the SCX fine scroll, 6 per sprite and 6
// for a window on this line, capped at 289.
func (p *PPU) transferLength() int {
	n := minTransferDots + int(p.scx&7)
	if p.lcdc&0x02 != 0 {
		n += 6 * p.nSprites
	}
	if p.windowActive() {
		n += 6
	}
	if n > maxTransferDots {
		n = maxTransferDots
	}
	return n
}

func (p *PPU) renderLine() {
	var bgci [Width]byte
	var layer [Width]Layer
	if p.lcdc&0x01 != 0 {
		bgci = bgLine(&p.vram, mapBase(p.lcdc, 0x08), p.lcdc&0x10 != 0, p.scx, p.scy, p.ly)
		if p.windowActive() {
			start := int(p.wx) - 7
			win := windowLine(&p.vram, mapBase(p.lcdc, 0x40), p.lcdc&0x10 != 0, start, p.winLine)
			if start < 0 {
				start = 0
			}
			for x := start; x < Width; x++ {
				bgci[x] = win[x]
				layer[x] = LayerWindow
			}
			p.winOnLine = true
		}
	}
	var sci, spal [Width]byte
	if p.lcdc&0x02 != 0 && p.nSprites > 0 {
		sci, spal = spriteLine(&p.vram, p.sprites[:p.nSprites], int(p.ly), bgci, p.lcdc&0x04 != 0)
	}
	if p.screen == nil {
		return
	}
	y := int(p.ly)
	for x := 0; x < Width; x++ {
		if sci[x] != 0 {
			obp := p.obp0
			if spal[x] == 1 {
				obp = p.obp1
			}
			p.screen.SetPixel(x, y, p.color(LayerSprite, shade(obp, sci[x]), int(spal[x])))
			continue
		}
		s := byte(0)
		if p.lcdc&0x01 != 0 {
			s = shade(p.bgp, bgci[x])
		}
		p.screen.SetPixel(x, y, p.color(layer[x], s, 0))
	}
}

func (p *PPU) color(l Layer, s byte, pal int) color.RGBA {
	if p.palette != nil {
		return p.palette.Color(l, s, pal)
	}
	v := 255 - s*85
	return color.RGBA{v, v, v, 0xFF}
}

func mapBase(lcdc, bit byte) uint16 {
	if lcdc&bit != 0 {
		return 0x9C00
	}
	return 0x9800
}

// shade maps a 2-bit color index through a BGP/OBP register.
func shade(reg, ci byte) byte { return reg >> (ci * 2) & 0x03 }
