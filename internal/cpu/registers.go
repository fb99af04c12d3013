package cpu

// Flag is one of the condition bits stored in the high nibble of F.
type Flag byte

const (
	FlagZ Flag = 1 << 7
	FlagN Flag = 1 << 6
	FlagH Flag = 1 << 5
	FlagC Flag = 1 << 4
)

// Registers is the SM83 register file. Pairs are composed big-endian from
// the 8-bit cells; the low nibble of F is always zero.
type Registers struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16
}

func (r *Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F) }
func (r *Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

func (r *Registers) SetAF(v uint16) { r.A, r.F = byte(v>>8), byte(v)&0xF0 }
func (r *Registers) SetBC(v uint16) { r.B, r.C = byte(v>>8), byte(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = byte(v>>8), byte(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = byte(v>>8), byte(v) }

// Flag reports whether f is set.
func (r *Registers) Flag(f Flag) bool { return r.F&byte(f) != 0 }

// SetFlag sets or clears f.
func (r *Registers) SetFlag(f Flag, on bool) {
	if on {
		r.F |= byte(f)
	} else {
		r.F &^= byte(f)
	}
}

func (r *Registers) setFlags(z, n, h, c bool) {
	var f byte
	if z {
		f |= byte(FlagZ)
	}
	if n {
		f |= byte(FlagN)
	}
	if h {
		f |= byte(FlagH)
	}
	if c {
		f |= byte(FlagC)
	}
	r.F = f
}

func (r *Registers) carry() byte {
	if r.F&byte(FlagC) != 0 {
		return 1
	}
	return 0
}
