// Package palette maps DMG shades to display colours.
package palette

import (
	"image/color"
	"strings"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
)

// Set colours the background/window and the two sprite palettes separately.
// Index 0 of each ramp is the lightest shade.
type Set struct {
	Name string
	BG   [4]color.RGBA
	OBJ0 [4]color.RGBA
	OBJ1 [4]color.RGBA
}

// Color implements ppu.Palette.
func (s *Set) Color(layer ppu.Layer, shade byte, pal int) color.RGBA {
	shade &= 0x03
	if layer != ppu.LayerSprite {
		return s.BG[shade]
	}
	if pal == 1 {
		return s.OBJ1[shade]
	}
	return s.OBJ0[shade]
}

func rgb(v uint32) color.RGBA {
	return color.RGBA{byte(v >> 16), byte(v >> 8), byte(v), 0xFF}
}

func ramp(a, b, c, d uint32) [4]color.RGBA {
	return [4]color.RGBA{rgb(a), rgb(b), rgb(c), rgb(d)}
}

func uniform(name string, r [4]color.RGBA) Set {
	return Set{Name: name, BG: r, OBJ0: r, OBJ1: r}
}

// Sets lists the built-in palettes; the slice index is the palette ID.
var Sets = []Set{
	uniform("Grayscale", ramp(0xFFFFFF, 0xAAAAAA, 0x555555, 0x000000)),
	uniform("Green", ramp(0x9BBC0F, 0x8BAC0F, 0x306230, 0x0F380F)),
	uniform("Sepia", ramp(0xF8E8C8, 0xD8B078, 0xA07040, 0x402810)),
	{
		Name: "Blue",
		BG:   ramp(0xFFFFFF, 0x63A5FF, 0x0000FF, 0x000000),
		OBJ0: ramp(0xFFFFFF, 0xFF8484, 0x943A3A, 0x000000),
		OBJ1: ramp(0xFFFFFF, 0x7BFF31, 0x008400, 0x000000),
	},
	{
		Name: "Red",
		BG:   ramp(0xFFFFFF, 0xFF8484, 0x943A3A, 0x000000),
		OBJ0: ramp(0xFFFFFF, 0x7BFF31, 0x008400, 0x000000),
		OBJ1: ramp(0xFFFFFF, 0x63A5FF, 0x0000FF, 0x000000),
	},
	{
		Name: "Pastel",
		BG:   ramp(0xFFFFA5, 0xFF9494, 0x9494FF, 0x000000),
		OBJ0: ramp(0xFFFFA5, 0xFF9494, 0x9494FF, 0x000000),
		OBJ1: ramp(0xFFFFA5, 0xFF9494, 0x9494FF, 0x000000),
	},
}

const (
	Grayscale = iota
	Green
	Sepia
	Blue
	Red
	Pastel
)

// Get returns the set for id, wrapping out-of-range IDs.
func Get(id int) *Set {
	n := len(Sets)
	return &Sets[((id%n)+n)%n]
}

// Next steps through the sets in either direction.
func Next(id, dir int) int {
	n := len(Sets)
	return (((id+dir)%n)+n)%n
}

// ByName looks a set up case-insensitively.
func ByName(name string) (int, bool) {
	for i := range Sets {
		if strings.EqualFold(Sets[i].Name, name) {
			return i, true
		}
	}
	return 0, false
}

// Names returns every set name in ID order.
func Names() []string {
	out := make([]string, len(Sets))
	for i := range Sets {
		out[i] = Sets[i].Name
	}
	return out
}

var titleExact = map[string]int{
	"TETRIS":              Blue,
	"TETRIS DX":           Blue,
	"SUPER MARIO LAND":    Red,
	"SUPER MARIO LAND 2":  Red,
	"DR. MARIO":           Pastel,
	"DONKEY KONG":         Sepia,
	"THE LEGEND OF ZELDA": Green,
	"ZELDA":               Green,
	"METROID II":          Red,
	"KIRBY'S DREAM LAND":  Pastel,
	"MEGA MAN":            Blue,
	"MEGAMAN":             Blue,
	"WARIO LAND":          Sepia,
	"POKEMON YELLOW":      Pastel,
	"POKEMON RED":         Pastel,
	"POKEMON BLUE":        Pastel,
	"POCKET MONSTERS":     Pastel,
}

type containsRule struct {
	substr string
	id     int
}

var titleContains = []containsRule{
	{"TETRIS", Blue},
	{"MARIO", Red},
	{"ZELDA", Green},
	{"KIRBY", Pastel},
	{"DONKEY KONG", Sepia},
	{"METROID", Red},
	{"MEGA MAN", Blue},
	{"MEGAMAN", Blue},
	{"WARIO", Sepia},
	{"POKEMON", Pastel},
	{"POCKET MONSTERS", Pastel},
}

// ForHeader picks a default palette for a cartridge: exact title match, then
// a substring match, then a checksum-derived choice for Nintendo titles.
// Everything else is grayscale.
func ForHeader(h *cart.Header) int {
	if h == nil {
		return Grayscale
	}
	t := strings.ToUpper(strings.TrimSpace(strings.TrimRight(h.Title, "\x00")))
	if id, ok := titleExact[t]; ok {
		return id
	}
	for _, r := range titleContains {
		if strings.Contains(t, r.substr) {
			return r.id
		}
	}
	nintendo := h.OldLicensee == 0x01
	if h.OldLicensee == 0x33 {
		nintendo = h.NewLicensee == "01"
	}
	if nintendo {
		return int(h.HeaderChecksum) % len(Sets)
	}
	return Grayscale
}

// Resolve turns a user setting into a palette ID: "" or "auto" uses the
// cartridge header, anything else must name a set.
func Resolve(name string, h *cart.Header) (int, bool) {
	if name == "" || strings.EqualFold(name, "auto") {
		return ForHeader(h), true
	}
	return ByName(name)
}
