package cpu

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"
)

// Bus is the CPU's view of memory.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// PendingWrite is a memory write queued by the last Step. Offset is the
// number of clocks into the step at which the write lands.
type PendingWrite struct {
	Addr   uint16
	Value  byte
	Offset int
}

// CPU implements the SM83 core.
type CPU struct {
	Registers

	IME      bool
	imeDelay int // EI: IME turns on at the start of the step after next
	halted   bool
	haltBug  bool

	bus Bus
	irq *interrupt.Controller

	deferWrites bool
	writes      []PendingWrite

	onStop func()

	trace *Trace
	cur   TraceEntry

	locked bool
	fault  error
}

// New creates a CPU at power-on state: registers zero except SP, PC at 0x0000.
func New(b Bus, irq *interrupt.Controller) *CPU {
	c := &CPU{bus: b, irq: irq}
	c.SP = 0xFFFE
	return c
}

// SetPC allows tests or a boot stub to set the program counter.
func (c *CPU) SetPC(pc uint16) { c.PC = pc }

// Halted reports whether the CPU is waiting in HALT.
func (c *CPU) Halted() bool { return c.halted }

// SetTrace attaches a ring buffer that records every executed step; nil disables tracing.
func (c *CPU) SetTrace(t *Trace) { c.trace = t }

// Trace returns the attached trace ring, or nil.
func (c *CPU) Trace() *Trace { return c.trace }

// SetStopHandler installs the callback run by STOP (the divider reset).
func (c *CPU) SetStopHandler(fn func()) { c.onStop = fn }

// DeferWrites switches memory writes to queued mode. Queued writes are
// returned by PendingWrites and must be committed by the caller.
func (c *CPU) DeferWrites(on bool) { c.deferWrites = on }

// PendingWrites returns the writes queued by the last Step in order.
// The slice is reused by the next Step.
func (c *CPU) PendingWrites() []PendingWrite { return c.writes }

// ResetPostBoot loads the register values the DMG boot ROM leaves behind.
func (c *CPU) ResetPostBoot() {
	c.SetAF(0x01B0)
	c.SetBC(0x0013)
	c.SetDE(0x00D8)
	c.SetHL(0x014D)
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.IME = false
	c.imeDelay = 0
	c.halted = false
	c.haltBug = false
}

// VerifyPostBoot checks the registers against the documented post-boot state.
func (c *CPU) VerifyPostBoot() error {
	want := [...]struct {
		name      string
		got, want uint16
	}{
		{"AF", c.AF(), 0x01B0},
		{"BC", c.BC(), 0x0013},
		{"DE", c.DE(), 0x00D8},
		{"HL", c.HL(), 0x014D},
		{"SP", c.SP, 0xFFFE},
		{"PC", c.PC, 0x0100},
	}
	for _, w := range want {
		if w.got != w.want {
			return fmt.Errorf("%w: %s=%04X want %04X", ErrBootState, w.name, w.got, w.want)
		}
	}
	return nil
}

// Step dispatches a pending interrupt or executes one instruction and
// returns the clocks consumed. After an unmapped opcode the CPU is locked
// and every Step returns the same error.
func (c *CPU) Step() (int, error) {
	if c.fault != nil {
		return 4, c.fault
	}
	c.writes = c.writes[:0]
	if c.imeDelay > 0 {
		c.imeDelay--
		if c.imeDelay == 0 {
			c.IME = true
		}
	}

	if c.halted {
		if c.irq.Pending() == 0 {
			return 4, nil
		}
		c.halted = false
		if !c.IME {
			return 4, nil
		}
		c.begin()
		cycles := 4 + c.dispatch()
		c.end(cycles)
		return cycles, nil
	}

	c.begin()
	var cycles int
	if c.IME && c.irq.Pending() != 0 {
		cycles = c.dispatch()
	} else {
		pc := c.PC
		opcode := c.fetch()
		cycles = table[opcode].Execute(c)
		if c.locked {
			c.end(cycles)
			c.fault = &UnmappedOpcodeError{Opcode: opcode, PC: pc, Trace: c.trace.Entries()}
			return cycles, c.fault
		}
	}
	c.end(cycles)
	return cycles, nil
}

func (c *CPU) dispatch() int {
	src, _ := c.irq.Highest()
	c.irq.Acknowledge(src)
	c.IME = false
	if c.trace != nil {
		c.cur.Mnemonic = "INT " + src.String()
	}
	c.push(c.PC)
	c.PC = src.Vector()
	return 20
}

// begin and end bracket one step: end assigns write offsets (the last write
// lands in the last machine cycle) and records the trace entry.
func (c *CPU) begin() {
	if c.trace == nil {
		return
	}
	c.cur = TraceEntry{PC: c.PC, Before: c.Registers}
}

func (c *CPU) end(cycles int) {
	n := len(c.writes)
	for i := range c.writes {
		c.writes[i].Offset = cycles - 4*(n-i)
	}
	if c.trace == nil {
		return
	}
	c.cur.Cycles = cycles
	c.cur.After = c.Registers
	if c.cur.Mnemonic == "" && c.cur.Len > 0 {
		if c.cur.Opcode[0] == 0xCB && c.cur.Len > 1 {
			c.cur.Mnemonic = cbTable[c.cur.Opcode[1]].String()
		} else {
			c.cur.Mnemonic = table[c.cur.Opcode[0]].String()
		}
	}
	c.trace.add(c.cur)
}

func (c *CPU) fetch() byte {
	v := c.bus.Read(c.PC)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.PC++
	}
	if c.trace != nil && c.cur.Len < len(c.cur.Opcode) {
		c.cur.Opcode[c.cur.Len] = v
		c.cur.Len++
	}
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) read(addr uint16) byte { return c.bus.Read(addr) }

func (c *CPU) write(addr uint16, v byte) {
	if c.trace != nil {
		c.cur.Writes = append(c.cur.Writes, MemWrite{Addr: addr, Old: c.bus.Read(addr), New: v})
	}
	if c.deferWrites {
		c.writes = append(c.writes, PendingWrite{Addr: addr, Value: v})
		return
	}
	c.bus.Write(addr, v)
}

func (c *CPU) push(v uint16) {
	c.SP--
	c.write(c.SP, byte(v>>8))
	c.SP--
	c.write(c.SP, byte(v))
}

func (c *CPU) pop() uint16 {
	lo := c.read(c.SP)
	c.SP++
	hi := c.read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// halt enters low-power mode. With IME clear and an interrupt already
// pending the CPU does not halt and the next opcode byte is fetched twice.
func (c *CPU) halt() {
	if !c.IME && c.irq.Pending() != 0 {
		c.haltBug = true
		return
	}
	c.halted = true
}

func (c *CPU) stop() {
	c.fetch()
	if c.onStop != nil {
		c.onStop()
	}
}
