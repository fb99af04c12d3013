package cpu

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"
)

// testBus is a flat 64 KiB memory with IE/IF routed to an interrupt controller.
type testBus struct {
	mem [0x10000]byte
	irq *interrupt.Controller
}

func newTestBus(rom []byte) *testBus {
	b := &testBus{irq: &interrupt.Controller{}}
	copy(b.mem[:], rom)
	return b
}

func (b *testBus) Read(addr uint16) byte {
	switch addr {
	case 0xFF0F:
		return b.irq.ReadIF()
	case 0xFFFF:
		return b.irq.IE
	}
	return b.mem[addr]
}

func (b *testBus) Write(addr uint16, v byte) {
	switch addr {
	case 0xFF0F:
		b.irq.WriteIF(v)
	case 0xFFFF:
		b.irq.IE = v
	default:
		b.mem[addr] = v
	}
}

func newCPUWithROM(code []byte) *CPU {
	b := newTestBus(code)
	return New(b, b.irq)
}

func mustStep(t *testing.T, c *CPU) int {
	t.Helper()
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step at PC=%04X: %v", c.PC, err)
	}
	return cycles
}
