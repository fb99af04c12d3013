package ppu

// Sprite is one OAM entry in screen coordinates (OAM X-8, OAM Y-16).
type Sprite struct {
	X, Y     int
	Tile     byte
	Attr     byte
	OAMIndex int
}

const (
	attrBGPriority = 1 << 7
	attrYFlip      = 1 << 6
	attrXFlip      = 1 << 5
	attrPalette    = 1 << 4
)

// MaxSpritesPerLine is the OAM scan limit.
const MaxSpritesPerLine = 10

// scanOAM returns up to 10 sprites overlapping line ly, in OAM order.
func scanOAM(oam *[0xA0]byte, ly byte, sprite16 bool, out *[MaxSpritesPerLine]Sprite) int {
	height := 8
	if sprite16 {
		height = 16
	}
	n := 0
	for i := 0; i < 40 && n < MaxSpritesPerLine; i++ {
		y := int(oam[i*4]) - 16
		if int(ly) < y || int(ly) >= y+height {
			continue
		}
		out[n] = Sprite{
			X:        int(oam[i*4+1]) - 8,
			Y:        y,
			Tile:     oam[i*4+2],
			Attr:     oam[i*4+3],
			OAMIndex: i,
		}
		n++
	}
	return n
}

// spriteLine returns sprite color indices for line y (0 = no sprite pixel)
// and the OBP palette (0 or 1) chosen for each pixel. Overlaps go to the sprite with the
// smaller X, then the lower OAM index. The winning sprite's BG-priority flag
// hides it behind nonzero background pixels.
func spriteLine(mem VRAMReader, sprites []Sprite, y int, bgci [160]byte, sprite16 bool) (ci, pal [160]byte) {
	var order [MaxSpritesPerLine]Sprite
	n := copy(order[:], sprites)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && drawsBefore(order[j], order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	height := 8
	if sprite16 {
		height = 16
	}
	var claimed [160]bool
	for _, s := range order[:n] {
		row := y - s.Y
		if row < 0 || row >= height {
			continue
		}
		if s.Attr&attrYFlip != 0 {
			row = height - 1 - row
		}
		tile := s.Tile
		if sprite16 {
			tile &^= 1
		}
		base := 0x8000 + uint16(tile)*16 + uint16(row)*2
		lo, hi := mem.Read(base), mem.Read(base+1)
		for px := 0; px < 8; px++ {
			x := s.X + px
			if x < 0 || x >= Width || claimed[x] {
				continue
			}
			bit := 7 - byte(px)
			if s.Attr&attrXFlip != 0 {
				bit = byte(px)
			}
			c := pixelAt(lo, hi, bit)
			if c == 0 {
				continue
			}
			claimed[x] = true
			if s.Attr&attrBGPriority != 0 && bgci[x] != 0 {
				continue
			}
			ci[x] = c
			if s.Attr&attrPalette != 0 {
				pal[x] = 1
			}
		}
	}
	return ci, pal
}

func drawsBefore(a, b Sprite) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.OAMIndex < b.OAMIndex
}
