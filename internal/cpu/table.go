package cpu

import "fmt"

// Instruction is one decoded opcode. Execute performs it and returns the
// clocks consumed by this variant (conditional branches report the taken or
// not-taken cost).
type Instruction interface {
	Execute(c *CPU) int
	String() string
}

type op struct {
	name string
	exec func(c *CPU) int
}

func (o op) Execute(c *CPU) int { return o.exec(c) }
func (o op) String() string     { return o.name }

var (
	table   [256]Instruction
	cbTable [256]Instruction
)

// Lookup returns the instruction for an unprefixed opcode.
func Lookup(opcode byte) Instruction { return table[opcode] }

// LookupCB returns the instruction for a 0xCB-prefixed opcode.
func LookupCB(opcode byte) Instruction { return cbTable[opcode] }

func init() {
	buildTable()
	buildCBTable()
}

func unmapped(opcode byte) Instruction {
	return op{fmt.Sprintf("ILLEGAL_%02X", opcode), func(c *CPU) int {
		c.locked = true
		return 4
	}}
}

// cost returns reg for register operands and mem for (HL).
func cost(r reg8, reg, mem int) int {
	if r.mem {
		return mem
	}
	return reg
}

func buildTable() {
	for i := range table {
		table[i] = unmapped(byte(i))
	}

	table[0x00] = op{"NOP", func(*CPU) int { return 4 }}
	table[0x10] = op{"STOP", func(c *CPU) int { c.stop(); return 4 }}
	table[0x76] = op{"HALT", func(c *CPU) int { c.halt(); return 4 }}
	table[0xF3] = op{"DI", func(c *CPU) int { c.IME = false; c.imeDelay = 0; return 4 }}
	table[0xFB] = op{"EI", func(c *CPU) int {
		if !c.IME && c.imeDelay == 0 {
			c.imeDelay = 2
		}
		return 4
	}}

	// 16-bit pair families
	for i, r := range rp {
		b := byte(i) << 4
		table[0x01|b] = op{"LD " + r.name + ",d16", func(c *CPU) int { r.set(c, c.fetch16()); return 12 }}
		table[0x03|b] = op{"INC " + r.name, func(c *CPU) int { r.set(c, r.get(c)+1); return 8 }}
		table[0x0B|b] = op{"DEC " + r.name, func(c *CPU) int { r.set(c, r.get(c)-1); return 8 }}
		table[0x09|b] = op{"ADD HL," + r.name, func(c *CPU) int { c.addHL(r.get(c)); return 8 }}
	}
	for i, r := range rp2 {
		b := byte(i) << 4
		table[0xC1|b] = op{"POP " + r.name, func(c *CPU) int { r.set(c, c.pop()); return 12 }}
		table[0xC5|b] = op{"PUSH " + r.name, func(c *CPU) int { c.push(r.get(c)); return 16 }}
	}

	// indirect A loads through BC, DE, HL+ and HL-
	indirect := [4]struct {
		name string
		addr func(c *CPU) uint16
	}{
		{"(BC)", (*CPU).BC},
		{"(DE)", (*CPU).DE},
		{"(HL+)", func(c *CPU) uint16 { hl := c.HL(); c.SetHL(hl + 1); return hl }},
		{"(HL-)", func(c *CPU) uint16 { hl := c.HL(); c.SetHL(hl - 1); return hl }},
	}
	for i, m := range indirect {
		b := byte(i) << 4
		table[0x02|b] = op{"LD " + m.name + ",A", func(c *CPU) int { c.write(m.addr(c), c.A); return 8 }}
		table[0x0A|b] = op{"LD A," + m.name, func(c *CPU) int { c.A = c.read(m.addr(c)); return 8 }}
	}

	// 8-bit register families
	for i, r := range regs8 {
		b := byte(i) << 3
		table[0x04|b] = op{"INC " + r.name, func(c *CPU) int { r.set(c, c.inc8(r.get(c))); return cost(r, 4, 12) }}
		table[0x05|b] = op{"DEC " + r.name, func(c *CPU) int { r.set(c, c.dec8(r.get(c))); return cost(r, 4, 12) }}
		table[0x06|b] = op{"LD " + r.name + ",d8", func(c *CPU) int { r.set(c, c.fetch()); return cost(r, 8, 12) }}
	}
	for d, dst := range regs8 {
		for s, src := range regs8 {
			opcode := 0x40 | byte(d)<<3 | byte(s)
			if opcode == 0x76 {
				continue
			}
			cyc := 4
			if dst.mem || src.mem {
				cyc = 8
			}
			table[opcode] = op{"LD " + dst.name + "," + src.name, func(c *CPU) int { dst.set(c, src.get(c)); return cyc }}
		}
	}
	for a, alu := range aluOps {
		for s, src := range regs8 {
			table[0x80|byte(a)<<3|byte(s)] = op{alu.name + src.name, func(c *CPU) int { alu.fn(c, src.get(c)); return cost(src, 4, 8) }}
		}
		table[0xC6|byte(a)<<3] = op{alu.name + "d8", func(c *CPU) int { alu.fn(c, c.fetch()); return 8 }}
	}

	// accumulator rotates always clear Z
	table[0x07] = op{"RLCA", func(c *CPU) int { c.A = c.rlc(c.A); c.SetFlag(FlagZ, false); return 4 }}
	table[0x0F] = op{"RRCA", func(c *CPU) int { c.A = c.rrc(c.A); c.SetFlag(FlagZ, false); return 4 }}
	table[0x17] = op{"RLA", func(c *CPU) int { c.A = c.rl(c.A); c.SetFlag(FlagZ, false); return 4 }}
	table[0x1F] = op{"RRA", func(c *CPU) int { c.A = c.rr(c.A); c.SetFlag(FlagZ, false); return 4 }}

	table[0x27] = op{"DAA", func(c *CPU) int { c.daa(); return 4 }}
	table[0x2F] = op{"CPL", func(c *CPU) int {
		c.A = ^c.A
		c.SetFlag(FlagN, true)
		c.SetFlag(FlagH, true)
		return 4
	}}
	table[0x37] = op{"SCF", func(c *CPU) int {
		c.SetFlag(FlagN, false)
		c.SetFlag(FlagH, false)
		c.SetFlag(FlagC, true)
		return 4
	}}
	table[0x3F] = op{"CCF", func(c *CPU) int {
		c.SetFlag(FlagN, false)
		c.SetFlag(FlagH, false)
		c.SetFlag(FlagC, !c.Flag(FlagC))
		return 4
	}}

	table[0x08] = op{"LD (a16),SP", func(c *CPU) int {
		addr := c.fetch16()
		c.write(addr, byte(c.SP))
		c.write(addr+1, byte(c.SP>>8))
		return 20
	}}

	// control flow
	table[0x18] = op{"JR e", func(c *CPU) int { c.jr(int8(c.fetch())); return 12 }}
	table[0xC3] = op{"JP a16", func(c *CPU) int { c.PC = c.fetch16(); return 16 }}
	table[0xE9] = op{"JP HL", func(c *CPU) int { c.PC = c.HL(); return 4 }}
	table[0xCD] = op{"CALL a16", func(c *CPU) int {
		addr := c.fetch16()
		c.push(c.PC)
		c.PC = addr
		return 24
	}}
	table[0xC9] = op{"RET", func(c *CPU) int { c.PC = c.pop(); return 16 }}
	table[0xD9] = op{"RETI", func(c *CPU) int { c.PC = c.pop(); c.IME = true; c.imeDelay = 0; return 16 }}
	for i, cc := range conds {
		b := byte(i) << 3
		table[0x20|b] = op{"JR " + cc.name + ",e", func(c *CPU) int {
			e := int8(c.fetch())
			if !cc.test(c) {
				return 8
			}
			c.jr(e)
			return 12
		}}
		table[0xC2|b] = op{"JP " + cc.name + ",a16", func(c *CPU) int {
			addr := c.fetch16()
			if !cc.test(c) {
				return 12
			}
			c.PC = addr
			return 16
		}}
		table[0xC4|b] = op{"CALL " + cc.name + ",a16", func(c *CPU) int {
			addr := c.fetch16()
			if !cc.test(c) {
				return 12
			}
			c.push(c.PC)
			c.PC = addr
			return 24
		}}
		table[0xC0|b] = op{"RET " + cc.name, func(c *CPU) int {
			if !cc.test(c) {
				return 8
			}
			c.PC = c.pop()
			return 20
		}}
	}
	for i := 0; i < 8; i++ {
		vec := uint16(i) << 3
		table[0xC7|byte(i)<<3] = op{fmt.Sprintf("RST %02XH", vec), func(c *CPU) int {
			c.push(c.PC)
			c.PC = vec
			return 16
		}}
	}

	// high page and absolute loads
	table[0xE0] = op{"LDH (a8),A", func(c *CPU) int { c.write(0xFF00|uint16(c.fetch()), c.A); return 12 }}
	table[0xF0] = op{"LDH A,(a8)", func(c *CPU) int { c.A = c.read(0xFF00 | uint16(c.fetch())); return 12 }}
	table[0xE2] = op{"LD (C),A", func(c *CPU) int { c.write(0xFF00|uint16(c.C), c.A); return 8 }}
	table[0xF2] = op{"LD A,(C)", func(c *CPU) int { c.A = c.read(0xFF00 | uint16(c.C)); return 8 }}
	table[0xEA] = op{"LD (a16),A", func(c *CPU) int { c.write(c.fetch16(), c.A); return 16 }}
	table[0xFA] = op{"LD A,(a16)", func(c *CPU) int { c.A = c.read(c.fetch16()); return 16 }}

	// stack pointer arithmetic
	table[0xE8] = op{"ADD SP,e", func(c *CPU) int { c.SP = c.addSPe(c.fetch()); return 16 }}
	table[0xF8] = op{"LD HL,SP+e", func(c *CPU) int { c.SetHL(c.addSPe(c.fetch())); return 12 }}
	table[0xF9] = op{"LD SP,HL", func(c *CPU) int { c.SP = c.HL(); return 8 }}

	table[0xCB] = op{"PREFIX CB", func(c *CPU) int { return cbTable[c.fetch()].Execute(c) }}
}

func (c *CPU) jr(e int8) { c.PC += uint16(int16(e)) }

func buildCBTable() {
	for z, r := range regs8 {
		for y, sh := range shiftOps {
			cbTable[byte(y)<<3|byte(z)] = op{sh.name + " " + r.name, func(c *CPU) int { r.set(c, sh.fn(c, r.get(c))); return cost(r, 8, 16) }}
		}
		for y := 0; y < 8; y++ {
			n := uint(y)
			mask := byte(1) << n
			b := byte(y)<<3 | byte(z)
			cbTable[0x40|b] = op{fmt.Sprintf("BIT %d,%s", n, r.name), func(c *CPU) int { c.bit(n, r.get(c)); return cost(r, 8, 12) }}
			cbTable[0x80|b] = op{fmt.Sprintf("RES %d,%s", n, r.name), func(c *CPU) int { r.set(c, r.get(c)&^mask); return cost(r, 8, 16) }}
			cbTable[0xC0|b] = op{fmt.Sprintf("SET %d,%s", n, r.name), func(c *CPU) int { r.set(c, r.get(c)|mask); return cost(r, 8, 16) }}
		}
	}
}
