package bus

import (
	"bytes"
	"testing"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/joypad"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/serial"
)

func newBus(rom []byte) *Bus {
	return New(cart.NewROMOnly(rom, 0), 0)
}

func TestBus_ROMAndRAM(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x42
	b := newBus(rom)

	if got := b.Read(0x0100); got != 0x42 {
		t.Fatalf("ROM read got %02x, want 42", got)
	}

	b.Write(0xC000, 0x99)
	if got := b.Read(0xC000); got != 0x99 {
		t.Fatalf("RAM read got %02x, want 99", got)
	}

	// Echo RAM mirrors C000-DDFF both ways
	b.Write(0xE000, 0x55)
	if got := b.Read(0xC000); got != 0x55 {
		t.Fatalf("Echo write did not mirror to WRAM: got %02x", got)
	}
	b.Write(0xDDFF, 0x66)
	if got := b.Read(0xFDFF); got != 0x66 {
		t.Fatalf("WRAM write not visible in echo: got %02x", got)
	}

	b.Write(0xFF80, 0xAB)
	if got := b.Read(0xFF80); got != 0xAB {
		t.Fatalf("HRAM read got %02x, want AB", got)
	}

	// ROM-only cart without RAM
	if got := b.Read(0xA123); got != 0xFF {
		t.Fatalf("Ext RAM (ROM-only) got %02x, want FF", got)
	}

	// ROM is not writable
	b.Write(0x0100, 0x00)
	if got := b.Read(0x0100); got != 0x42 {
		t.Fatalf("ROM changed by write: %02x", got)
	}
}

func TestBus_UnusableAndUnmappedIO(t *testing.T) {
	b := newBus(make([]byte, 0x8000))
	b.Write(0xFEA0, 0x12)
	if got := b.Read(0xFEA0); got != 0x00 {
		t.Fatalf("FEA0 got %02x want 00", got)
	}
	if got := b.Read(0xFEFF); got != 0x00 {
		t.Fatalf("FEFF got %02x want 00", got)
	}
	for _, addr := range []uint16{0xFF03, 0xFF08, 0xFF4C, 0xFF50, 0xFF7F} {
		if got := b.Read(addr); got != 0xFF {
			t.Fatalf("unmapped IO %04X got %02x want FF", addr, got)
		}
	}
}

func TestBus_VRAM_OAM_InterruptRegs(t *testing.T) {
	b := newBus(make([]byte, 0x8000))

	b.Write(0x8000, 0x11)
	if got := b.Read(0x8000); got != 0x11 {
		t.Fatalf("VRAM read got %02x, want 11", got)
	}

	b.Write(0xFE00, 0x22)
	if got := b.Read(0xFE00); got != 0x22 {
		t.Fatalf("OAM read got %02x, want 22", got)
	}

	// IF: bits 5-7 read as 1
	b.Write(0xFF0F, 0x3F)
	if got := b.Read(0xFF0F); got != 0xE0|0x1F {
		t.Fatalf("IF read got %02x, want FF (E0|1F)", got)
	}
	if got := b.Interrupts().IF; got != 0x1F {
		t.Fatalf("IF stored got %02x want 1F", got)
	}

	b.Write(0xFFFF, 0x1B)
	if got := b.Read(0xFFFF); got != 0x1B {
		t.Fatalf("IE read got %02x, want 1B", got)
	}
	if got := b.Interrupts().IE; got != 0x1B {
		t.Fatalf("IE stored got %02x want 1B", got)
	}
}

func TestBus_Word(t *testing.T) {
	b := newBus(make([]byte, 0x8000))
	b.Write16(0xC010, 0xBEEF)
	if got := b.Read(0xC010); got != 0xEF {
		t.Fatalf("low byte got %02x want EF", got)
	}
	if got := b.Read16(0xC010); got != 0xBEEF {
		t.Fatalf("Read16 got %04x want BEEF", got)
	}
}

func TestBus_BootOverlay(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0000] = 0x11
	rom[0x0100] = 0x22
	b := newBus(rom)
	boot := make([]byte, 0x100)
	boot[0] = 0xAA
	b.SetBootROM(boot)

	if got := b.Read(0x0000); got != 0xAA {
		t.Fatalf("boot overlay read got %02x want AA", got)
	}
	if got := b.Read(0x0100); got != 0x22 {
		t.Fatalf("cart read above overlay got %02x want 22", got)
	}
	b.Write(0xFF50, 0x00)
	if !b.BootROMActive() {
		t.Fatalf("FF50=0 disabled the overlay")
	}
	b.Write(0xFF50, 0x01)
	if got := b.Read(0x0000); got != 0x11 {
		t.Fatalf("after FF50 read got %02x want 11", got)
	}
	b.Write(0xFF50, 0x00)
	if b.BootROMActive() {
		t.Fatalf("overlay came back after FF50 was cleared")
	}

	b.SetBootROM(boot[:0x80])
	if b.BootROMActive() {
		t.Fatalf("short boot image enabled the overlay")
	}
}

func TestBus_JOYP_And_Timers(t *testing.T) {
	b := newBus(make([]byte, 0x8000))

	if got := b.Read(0xFF00); got&0x0F != 0x0F {
		t.Fatalf("JOYP default lower bits got %02x want 0x0F", got)
	}

	b.Write(0xFF00, 0x20)
	b.Joypad().SetState(1<<uint(joypad.Right) | 1<<uint(joypad.Up))
	if got := b.Read(0xFF00); got&0x0F != 0x0A {
		t.Fatalf("JOYP D-Pad got %02x want 0x0A", got&0x0F)
	}

	b.Tick(0x1234)
	b.Write(0xFF04, 0x12) // DIV write resets to 0
	if got := b.Read(0xFF04); got != 0x00 {
		t.Fatalf("DIV got %02x want 00", got)
	}
	b.Write(0xFF05, 0x77)
	if got := b.Read(0xFF05); got != 0x77 {
		t.Fatalf("TIMA got %02x want 77", got)
	}
	b.Write(0xFF06, 0x88)
	if got := b.Read(0xFF06); got != 0x88 {
		t.Fatalf("TMA got %02x want 88", got)
	}
}

func TestBus_TimerInterruptThroughTick(t *testing.T) {
	b := newBus(make([]byte, 0x8000))
	b.Write(0xFF06, 0x40)
	b.Write(0xFF05, 0xFF)
	b.Write(0xFF07, 0x05) // 16 clocks per increment
	b.Tick(16 + 4)
	if got := b.Read(0xFF05); got != 0x40 {
		t.Fatalf("TIMA after overflow got %02X want 40", got)
	}
	if b.Read(0xFF0F)&(1<<2) == 0 {
		t.Fatalf("timer IF not set")
	}
}

func TestBus_SerialImmediate(t *testing.T) {
	b := newBus(make([]byte, 0x8000))
	var out bytes.Buffer
	b.Serial().SetConnection(serial.WriterConnection{W: &out})

	b.Write(0xFF01, 0x41) // 'A'
	b.Write(0xFF02, 0x81)
	if out.String() != "A" {
		t.Fatalf("serial out got %q want %q", out.String(), "A")
	}
	if got := b.Read(0xFF02); got&0x80 != 0 {
		t.Fatalf("serial control bit7 not cleared: %02x", got)
	}
	if b.Read(0xFF0F)&(1<<3) == 0 {
		t.Fatalf("serial IF bit not set after transfer")
	}
}

func TestBus_APURouting(t *testing.T) {
	b := newBus(make([]byte, 0x8000))
	b.Write(0xFF26, 0x80)
	if got := b.Read(0xFF26); got&0x80 == 0 {
		t.Fatalf("NR52 power bit not set: %02x", got)
	}
	b.Write(0xFF3F, 0x5A)
	if got := b.Read(0xFF3F); got != 0x5A {
		t.Fatalf("wave RAM got %02x want 5A", got)
	}
}

func TestBus_OAMDMA(t *testing.T) {
	b := newBus(make([]byte, 0x8000))
	for i := 0; i < 0xA0; i++ {
		b.Write(0xC000+uint16(i), byte(i))
	}
	b.Write(0xFF46, 0xC0)
	for i := 0; i < 0xA0; i++ {
		if got := b.Read(0xFE00 + uint16(i)); got != byte(i) {
			t.Fatalf("OAM[%02X] got %02X want %02X", i, got, byte(i))
		}
	}
	if got := b.Read(0xFF46); got != 0xC0 {
		t.Fatalf("FF46 read got %02x want C0", got)
	}

	// echo source folds onto WRAM
	b.Write(0xC100, 0x77)
	b.Write(0xFF46, 0xE1)
	if got := b.Read(0xFE00); got != 0x77 {
		t.Fatalf("DMA from echo got %02x want 77", got)
	}
}

func TestBus_OAMDMADuringModeLock(t *testing.T) {
	b := newBus(make([]byte, 0x8000))
	b.Write(0xC000, 0x5C)
	b.Write(0xFF40, 0x80)
	b.Tick(80) // mode 3: OAM locked for the CPU
	b.Write(0xFF46, 0xC0)
	b.Tick(172) // HBlank
	if got := b.Read(0xFE00); got != 0x5C {
		t.Fatalf("DMA blocked by mode lock: got %02x want 5C", got)
	}
}
