package cpu

func (c *CPU) inc8(v byte) byte {
	r := v + 1
	c.SetFlag(FlagZ, r == 0)
	c.SetFlag(FlagN, false)
	c.SetFlag(FlagH, v&0x0F == 0x0F)
	return r
}

func (c *CPU) dec8(v byte) byte {
	r := v - 1
	c.SetFlag(FlagZ, r == 0)
	c.SetFlag(FlagN, true)
	c.SetFlag(FlagH, v&0x0F == 0)
	return r
}

func (c *CPU) add8(v byte, withCarry bool) {
	var ci byte
	if withCarry {
		ci = c.carry()
	}
	r := uint16(c.A) + uint16(v) + uint16(ci)
	c.setFlags(byte(r) == 0, false, c.A&0x0F+v&0x0F+ci > 0x0F, r > 0xFF)
	c.A = byte(r)
}

func (c *CPU) sub8(v byte, withCarry bool) byte {
	var ci byte
	if withCarry {
		ci = c.carry()
	}
	r := int(c.A) - int(v) - int(ci)
	c.setFlags(byte(r) == 0, true, int(c.A&0x0F) < int(v&0x0F)+int(ci), r < 0)
	return byte(r)
}

func (c *CPU) and8(v byte) {
	c.A &= v
	c.setFlags(c.A == 0, false, true, false)
}

func (c *CPU) xor8(v byte) {
	c.A ^= v
	c.setFlags(c.A == 0, false, false, false)
}

func (c *CPU) or8(v byte) {
	c.A |= v
	c.setFlags(c.A == 0, false, false, false)
}

// aluOps is indexed by bits 3-5 of the 0x80-0xBF and 0xC6-0xFE opcodes.
var aluOps = [8]struct {
	name string
	fn   func(c *CPU, v byte)
}{
	{"ADD A,", func(c *CPU, v byte) { c.add8(v, false) }},
	{"ADC A,", func(c *CPU, v byte) { c.add8(v, true) }},
	{"SUB ", func(c *CPU, v byte) { c.A = c.sub8(v, false) }},
	{"SBC A,", func(c *CPU, v byte) { c.A = c.sub8(v, true) }},
	{"AND ", (*CPU).and8},
	{"XOR ", (*CPU).xor8},
	{"OR ", (*CPU).or8},
	{"CP ", func(c *CPU, v byte) { c.sub8(v, false) }},
}

func (c *CPU) addHL(v uint16) {
	hl := c.HL()
	r := uint32(hl) + uint32(v)
	c.SetFlag(FlagN, false)
	c.SetFlag(FlagH, hl&0x0FFF+v&0x0FFF > 0x0FFF)
	c.SetFlag(FlagC, r > 0xFFFF)
	c.SetHL(uint16(r))
}

// addSPe returns SP plus a signed offset. Flags come from the unsigned
// low-byte addition; Z and N are cleared.
func (c *CPU) addSPe(e byte) uint16 {
	u := uint16(int16(int8(e)))
	c.setFlags(false, false, c.SP&0x0F+u&0x0F > 0x0F, c.SP&0xFF+u&0xFF > 0xFF)
	return c.SP + u
}

func (c *CPU) daa() {
	a := c.A
	carry := c.Flag(FlagC)
	if !c.Flag(FlagN) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.Flag(FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if c.Flag(FlagH) {
			a -= 0x06
		}
	}
	c.A = a
	c.SetFlag(FlagZ, a == 0)
	c.SetFlag(FlagH, false)
	c.SetFlag(FlagC, carry)
}

func (c *CPU) rotResult(r byte, carryOut bool) byte {
	c.setFlags(r == 0, false, false, carryOut)
	return r
}

func (c *CPU) rlc(v byte) byte { return c.rotResult(v<<1|v>>7, v&0x80 != 0) }
func (c *CPU) rrc(v byte) byte { return c.rotResult(v>>1|v<<7, v&0x01 != 0) }
func (c *CPU) rl(v byte) byte  { return c.rotResult(v<<1|c.carry(), v&0x80 != 0) }
func (c *CPU) rr(v byte) byte  { return c.rotResult(v>>1|c.carry()<<7, v&0x01 != 0) }
func (c *CPU) sla(v byte) byte { return c.rotResult(v<<1, v&0x80 != 0) }
func (c *CPU) sra(v byte) byte { return c.rotResult(v>>1|v&0x80, v&0x01 != 0) }
func (c *CPU) srl(v byte) byte { return c.rotResult(v>>1, v&0x01 != 0) }

func (c *CPU) swap(v byte) byte { return c.rotResult(v<<4|v>>4, false) }

// shiftOps is indexed by bits 3-5 of CB 0x00-0x3F.
var shiftOps = [8]struct {
	name string
	fn   func(c *CPU, v byte) byte
}{
	{"RLC", (*CPU).rlc},
	{"RRC", (*CPU).rrc},
	{"RL", (*CPU).rl},
	{"RR", (*CPU).rr},
	{"SLA", (*CPU).sla},
	{"SRA", (*CPU).sra},
	{"SWAP", (*CPU).swap},
	{"SRL", (*CPU).srl},
}

func (c *CPU) bit(n uint, v byte) {
	c.SetFlag(FlagZ, v&(1<<n) == 0)
	c.SetFlag(FlagN, false)
	c.SetFlag(FlagH, true)
}
