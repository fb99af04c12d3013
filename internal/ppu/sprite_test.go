package ppu

import "testing"

func TestSpriteLinePriorityAndTransparency(t *testing.T) {
	mem := mockVRAM{}
	// Sprite tile with a single opaque leftmost pixel at bit7: lo=0x01<<7 -> 0x80, hi=0
	base := uint16(0x8000)
	mem[base+0] = 0x80
	mem[base+1] = 0x00
	sprites := []Sprite{{X: 10, Y: 5, Tile: 0, Attr: 0, OAMIndex: 0}}
	var bgci [160]byte
	out, _ := spriteLine(mem, sprites, 5, bgci, false)
	if out[10] == 0 {
		t.Fatalf("expected sprite pixel at x=10")
	}
	// With priority behind BG and bgci non-zero, pixel must be skipped
	sprites[0].Attr = 1 << 7
	bgci[10] = 1
	out, _ = spriteLine(mem, sprites, 5, bgci, false)
	if out[10] != 0 {
		t.Fatalf("expected sprite pixel to be hidden behind BG")
	}
}

func TestSpriteLineTieBreaker(t *testing.T) {
	mem := mockVRAM{}
	// Two sprites overlap at x=20; both opaque full row (lo=0xFF, hi=0)
	base := uint16(0x8000)
	mem[base+0] = 0xFF
	mem[base+1] = 0x00
	s0 := Sprite{X: 19, Y: 0, Tile: 0, Attr: 0, OAMIndex: 5}
	s1 := Sprite{X: 20, Y: 0, Tile: 0, Attr: 0, OAMIndex: 3}
	var bgci [160]byte
	out, _ := spriteLine(mem, []Sprite{s0, s1}, 0, bgci, false)
	// At x=20, s0 contributes col=1 (exists) and s1 contributes col=0; leftmost X wins -> s1 (X=20) should win
	if out[20] == 0 {
		t.Fatalf("expected a sprite at x=20")
	}
}

func TestSpriteLinePaletteSelection(t *testing.T) {
	mem := mockVRAM{}
	base := uint16(0x8000)
	// Make an opaque pixel at bit7
	mem[base+0] = 0x80
	mem[base+1] = 0x00
	// Two overlapping sprites at same X; one selects OBP0, the other OBP1; leftmost X rule should pick X=10
	s0 := Sprite{X: 10, Y: 0, Tile: 0, Attr: 0 << 4, OAMIndex: 2}   // OBP0
	s1 := Sprite{X: 11, Y: 0, Tile: 0, Attr: 1<<4 | 0, OAMIndex: 1} // OBP1 but appears to the right, shouldn't win at x=10
	var bgci [160]byte
	ci, pal := spriteLine(mem, []Sprite{s0, s1}, 0, bgci, false)
	if ci[10] == 0 {
		t.Fatalf("expected sprite pixel at x=10")
	}
	if pal[10] != 0 {
		t.Fatalf("expected OBP0 at x=10, got pal=%d", pal[10])
	}
	// Now put both with same X but different OAM index; lower OAM index should win and carry its palette
	s0 = Sprite{X: 12, Y: 0, Tile: 0, Attr: 0 << 4, OAMIndex: 5} // OBP0, higher index
	s1 = Sprite{X: 12, Y: 0, Tile: 0, Attr: 1 << 4, OAMIndex: 3} // OBP1, lower index
	ci, pal = spriteLine(mem, []Sprite{s0, s1}, 0, bgci, false)
	if ci[12] == 0 {
		t.Fatalf("expected sprite pixel at x=12")
	}
	if pal[12] != 1 {
		t.Fatalf("expected OBP1 at x=12 due to lower OAM index, got pal=%d", pal[12])
	}
}

func TestScanOAMLimitAndHeight(t *testing.T) {
	var oam [0xA0]byte
	for i := 0; i < 12; i++ {
		oam[i*4] = 16 + 2 // covers lines 2..9 (8px) or 2..17 (16px)
		oam[i*4+1] = byte(8 + i)
	}
	var out [MaxSpritesPerLine]Sprite
	if n := scanOAM(&oam, 5, false, &out); n != 10 {
		t.Fatalf("selected %d sprites want 10", n)
	}
	if out[9].OAMIndex != 9 || out[0].X != 0 || out[0].Y != 2 {
		t.Fatalf("OAM order/coords wrong: %+v", out[0])
	}
	if n := scanOAM(&oam, 12, false, &out); n != 0 {
		t.Fatalf("8px sprites selected on line 12: %d", n)
	}
	if n := scanOAM(&oam, 12, true, &out); n != 10 {
		t.Fatalf("16px sprites on line 12 got %d want 10", n)
	}
}

func TestSpriteLineFlips(t *testing.T) {
	mem := mockVRAM{}
	// tile 0 row 0: leftmost pixel only; row 7 empty
	mem[0x8000] = 0x80
	s := Sprite{X: 0, Y: 0, Tile: 0, Attr: attrXFlip}
	out, _ := spriteLine(mem, []Sprite{s}, 0, [160]byte{}, false)
	if out[0] != 0 || out[7] == 0 {
		t.Fatalf("x flip: px0=%d px7=%d", out[0], out[7])
	}
	s.Attr = attrYFlip
	out, _ = spriteLine(mem, []Sprite{s}, 7, [160]byte{}, false)
	if out[0] == 0 {
		t.Fatalf("y flip: row 7 should show tile row 0")
	}
}

func TestSpriteLineTransparentWinnerLetsOtherThrough(t *testing.T) {
	mem := mockVRAM{}
	// tile 0: only leftmost pixel; tile 1: full row
	mem[0x8000] = 0x80
	mem[0x8010] = 0xFF
	front := Sprite{X: 0, Y: 0, Tile: 0, OAMIndex: 0}
	back := Sprite{X: 1, Y: 0, Tile: 1, OAMIndex: 1}
	out, _ := spriteLine(mem, []Sprite{back, front}, 0, [160]byte{}, false)
	if out[1] == 0 {
		t.Fatalf("transparent pixel of the front sprite hid the one behind it")
	}
}
