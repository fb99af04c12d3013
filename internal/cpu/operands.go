package cpu

// reg8 is an accessor pair for one 8-bit operand. Opcode families index
// regs8 with the 3-bit register field: B C D E H L (HL) A.
type reg8 struct {
	name string
	get  func(c *CPU) byte
	set  func(c *CPU, v byte)
	mem  bool
}

// reg16 is an accessor pair for one 16-bit register pair.
type reg16 struct {
	name string
	get  func(c *CPU) uint16
	set  func(c *CPU, v uint16)
}

type cond struct {
	name string
	test func(c *CPU) bool
}

func r8(name string, p func(c *CPU) *byte) reg8 {
	return reg8{
		name: name,
		get:  func(c *CPU) byte { return *p(c) },
		set:  func(c *CPU, v byte) { *p(c) = v },
	}
}

var regs8 = [8]reg8{
	r8("B", func(c *CPU) *byte { return &c.B }),
	r8("C", func(c *CPU) *byte { return &c.C }),
	r8("D", func(c *CPU) *byte { return &c.D }),
	r8("E", func(c *CPU) *byte { return &c.E }),
	r8("H", func(c *CPU) *byte { return &c.H }),
	r8("L", func(c *CPU) *byte { return &c.L }),
	{
		name: "(HL)",
		get:  func(c *CPU) byte { return c.read(c.HL()) },
		set:  func(c *CPU, v byte) { c.write(c.HL(), v) },
		mem:  true,
	},
	r8("A", func(c *CPU) *byte { return &c.A }),
}

var (
	regBC = reg16{"BC", (*CPU).BC, func(c *CPU, v uint16) { c.SetBC(v) }}
	regDE = reg16{"DE", (*CPU).DE, func(c *CPU, v uint16) { c.SetDE(v) }}
	regHL = reg16{"HL", (*CPU).HL, func(c *CPU, v uint16) { c.SetHL(v) }}
	regSP = reg16{"SP", func(c *CPU) uint16 { return c.SP }, func(c *CPU, v uint16) { c.SP = v }}
	regAF = reg16{"AF", (*CPU).AF, func(c *CPU, v uint16) { c.SetAF(v) }}
)

// pairs used by LD/INC/DEC/ADD (rp) and by PUSH/POP (rp2).
var (
	rp  = [4]reg16{regBC, regDE, regHL, regSP}
	rp2 = [4]reg16{regBC, regDE, regHL, regAF}
)

var conds = [4]cond{
	{"NZ", func(c *CPU) bool { return !c.Flag(FlagZ) }},
	{"Z", func(c *CPU) bool { return c.Flag(FlagZ) }},
	{"NC", func(c *CPU) bool { return !c.Flag(FlagC) }},
	{"C", func(c *CPU) bool { return c.Flag(FlagC) }},
}
