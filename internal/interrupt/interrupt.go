package interrupt

// Source identifies one of the five interrupt lines. The value is the bit
// position in IE/IF, which is also the priority (lower wins).
type Source int

const (
	VBlank Source = iota
	STAT
	Timer
	Serial
	Joypad
)

const mask = 0x1F

var vectors = [5]uint16{0x0040, 0x0048, 0x0050, 0x0058, 0x0060}

var names = [5]string{"VBlank", "STAT", "Timer", "Serial", "Joypad"}

func (s Source) String() string {
	if s < VBlank || s > Joypad {
		return "Unknown"
	}
	return names[s]
}

// Bit returns the IE/IF mask for the source.
func (s Source) Bit() byte { return 1 << uint(s) }

// Vector returns the fixed jump address for the source.
func (s Source) Vector() uint16 { return vectors[s] }

// Controller holds the IE and IF registers. Peripherals only ever call
// Request; the CPU is the only reader of IE and the only one clearing IF.
type Controller struct {
	IE byte // FFFF, all 8 bits are stored
	IF byte // FF0F, low 5 bits meaningful
}

// Request raises the IF bit for s.
func (c *Controller) Request(s Source) { c.IF |= s.Bit() }

// Pending returns IE & IF restricted to the five meaningful bits.
func (c *Controller) Pending() byte { return c.IE & c.IF & mask }

// Highest returns the highest-priority pending source.
func (c *Controller) Highest() (Source, bool) {
	p := c.Pending()
	if p == 0 {
		return 0, false
	}
	for s := VBlank; s <= Joypad; s++ {
		if p&s.Bit() != 0 {
			return s, true
		}
	}
	return 0, false
}

// Acknowledge clears the IF bit for s.
func (c *Controller) Acknowledge(s Source) { c.IF &^= s.Bit() }

// ReadIF returns IF as the CPU sees it: upper 3 bits read as 1.
func (c *Controller) ReadIF() byte { return 0xE0 | (c.IF & mask) }

// WriteIF stores the meaningful bits of v.
func (c *Controller) WriteIF(v byte) { c.IF = v & mask }
