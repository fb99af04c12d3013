package ui

import (
	"image"
	"image/color"
	"sync"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
)

const (
	fbWidth  = ppu.Width
	fbHeight = ppu.Height
)

// lcd is a double-buffered framebuffer. The PPU writes back; Draw swaps it
// to front, which the window reads.
type lcd struct {
	mu    sync.Mutex
	back  []byte
	front []byte
}

func newLCD() *lcd {
	l := &lcd{
		back:  make([]byte, fbWidth*fbHeight*4),
		front: make([]byte, fbWidth*fbHeight*4),
	}
	l.TurnOff()
	return l
}

func (l *lcd) TurnOn() {}

// TurnOff blanks both buffers.
func (l *lcd) TurnOff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.front {
		l.front[i] = 0xFF
		l.back[i] = 0xFF
	}
}

func (l *lcd) SetPixel(x, y int, c color.RGBA) {
	i := (y*fbWidth + x) * 4
	l.back[i] = c.R
	l.back[i+1] = c.G
	l.back[i+2] = c.B
	l.back[i+3] = 0xFF
}

func (l *lcd) Draw() {
	l.mu.Lock()
	l.back, l.front = l.front, l.back
	l.mu.Unlock()
}

// Frame returns a copy of the last finished frame.
func (l *lcd) Frame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fbWidth, fbHeight))
	l.mu.Lock()
	copy(img.Pix, l.front)
	l.mu.Unlock()
	return img
}

// pixels copies the last finished frame into dst.
func (l *lcd) pixels(dst []byte) {
	l.mu.Lock()
	copy(dst, l.front)
	l.mu.Unlock()
}
