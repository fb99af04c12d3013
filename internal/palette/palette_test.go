package palette

import (
	"image/color"
	"testing"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
)

var _ ppu.Palette = (*Set)(nil)

func TestGrayscaleShades(t *testing.T) {
	s := Get(Grayscale)
	want := []byte{0xFF, 0xAA, 0x55, 0x00}
	for i, w := range want {
		c := s.Color(ppu.LayerBG, byte(i), 0)
		if c != (color.RGBA{w, w, w, 0xFF}) {
			t.Fatalf("shade %d got %v want %02x", i, c, w)
		}
	}
}

func TestSpritePaletteSelection(t *testing.T) {
	s := Get(Blue)
	if got := s.Color(ppu.LayerSprite, 1, 1); got != s.OBJ1[1] {
		t.Fatalf("OBP1 sprite got %v want %v", got, s.OBJ1[1])
	}
	if got := s.Color(ppu.LayerSprite, 1, 0); got != s.OBJ0[1] {
		t.Fatalf("OBP0 sprite got %v want %v", got, s.OBJ0[1])
	}
	if got := s.Color(ppu.LayerWindow, 1, 1); got != s.BG[1] {
		t.Fatalf("window pixel got %v want BG ramp %v", got, s.BG[1])
	}
}

func TestByNameAndNext(t *testing.T) {
	id, ok := ByName("sepia")
	if !ok || id != Sepia {
		t.Fatalf("ByName(sepia) got %d,%v", id, ok)
	}
	if _, ok := ByName("nope"); ok {
		t.Fatalf("unknown name resolved")
	}
	if got := Next(Grayscale, -1); got != len(Sets)-1 {
		t.Fatalf("Next wrap back got %d", got)
	}
	if got := Next(len(Sets)-1, 1); got != Grayscale {
		t.Fatalf("Next wrap forward got %d", got)
	}
	if got := Get(-1).Name; got != Sets[len(Sets)-1].Name {
		t.Fatalf("Get(-1) got %s", got)
	}
	if len(Names()) != len(Sets) {
		t.Fatalf("Names length mismatch")
	}
}

func TestForHeader(t *testing.T) {
	cases := []struct {
		h    cart.Header
		want int
	}{
		{cart.Header{Title: "TETRIS"}, Blue},
		{cart.Header{Title: "ZELDA\x00\x00"}, Green},
		{cart.Header{Title: "SUPER MARIOLAND3"}, Red},
		{cart.Header{Title: "HOMEBREW", OldLicensee: 0x00}, Grayscale},
		{cart.Header{Title: "SOMETHING", OldLicensee: 0x01, HeaderChecksum: 9}, 9 % len(Sets)},
		{cart.Header{Title: "OTHER", OldLicensee: 0x33, NewLicensee: "01", HeaderChecksum: 4}, 4},
	}
	for _, c := range cases {
		h := c.h
		if got := ForHeader(&h); got != c.want {
			t.Fatalf("ForHeader(%q) got %d want %d", h.Title, got, c.want)
		}
	}
	if got := ForHeader(nil); got != Grayscale {
		t.Fatalf("nil header got %d", got)
	}
}

func TestResolve(t *testing.T) {
	h := &cart.Header{Title: "TETRIS"}
	if id, ok := Resolve("", h); !ok || id != Blue {
		t.Fatalf("auto got %d,%v", id, ok)
	}
	if id, ok := Resolve("Green", h); !ok || id != Green {
		t.Fatalf("named got %d,%v", id, ok)
	}
	if _, ok := Resolve("mauve", h); ok {
		t.Fatalf("unknown palette resolved")
	}
}
