package bus

import (
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/apu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/joypad"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/serial"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/timer"
)

// Bus decodes the 16-bit address space and owns every peripheral that sits
// on it. All peripherals share one interrupt controller.
type Bus struct {
	cart   cart.Cartridge
	irq    *interrupt.Controller
	ppu    *ppu.PPU
	timer  *timer.Timer
	joypad *joypad.Joypad
	serial *serial.Serial
	apu    *apu.APU

	wram [0x2000]byte
	hram [0x7F]byte

	boot   []byte
	bootOn bool
	dma    byte // last value written to FF46
}

// New wires a bus around the cartridge. sampleRate configures the APU; a
// non-positive value picks the APU default.
func New(c cart.Cartridge, sampleRate int) *Bus {
	irq := &interrupt.Controller{}
	return &Bus{
		cart:   c,
		irq:    irq,
		ppu:    ppu.New(irq),
		timer:  timer.New(irq),
		joypad: joypad.New(irq),
		serial: serial.New(irq),
		apu:    apu.New(sampleRate),
	}
}

func (b *Bus) Cart() cart.Cartridge              { return b.cart }
func (b *Bus) Interrupts() *interrupt.Controller { return b.irq }
func (b *Bus) PPU() *ppu.PPU                     { return b.ppu }
func (b *Bus) Timer() *timer.Timer               { return b.timer }
func (b *Bus) Joypad() *joypad.Joypad            { return b.joypad }
func (b *Bus) Serial() *serial.Serial            { return b.serial }
func (b *Bus) APU() *apu.APU                     { return b.apu }

// SetBootROM maps the first 256 bytes of data over 0x0000-0x00FF until FF50
// is written. Shorter images leave the overlay off.
func (b *Bus) SetBootROM(data []byte) {
	if len(data) < 0x100 {
		b.boot, b.bootOn = nil, false
		return
	}
	b.boot = make([]byte, 0x100)
	copy(b.boot, data)
	b.bootOn = true
}

// BootROMActive reports whether the boot overlay is still mapped.
func (b *Bus) BootROMActive() bool { return b.bootOn }

// Tick advances every clocked peripheral by cycles CPU clocks.
func (b *Bus) Tick(cycles int) {
	b.timer.Step(cycles)
	b.ppu.Step(cycles)
	b.joypad.Step(cycles)
	b.apu.Step(cycles)
}

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x0100 && b.bootOn:
		return b.boot[addr]
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr < 0xA000:
		return b.ppu.CPURead(addr)
	case addr < 0xC000:
		return b.cart.Read(addr)
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFE00:
		return b.wram[addr-0xE000]
	case addr < 0xFEA0:
		return b.ppu.CPURead(addr)
	case addr < 0xFF00:
		return 0x00
	case addr < 0xFF80:
		return b.readIO(addr)
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	default:
		return b.irq.IE
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr < 0xA000:
		b.ppu.CPUWrite(addr, value)
	case addr < 0xC000:
		b.cart.Write(addr, value)
	case addr < 0xE000:
		b.wram[addr-0xC000] = value
	case addr < 0xFE00:
		b.wram[addr-0xE000] = value
	case addr < 0xFEA0:
		b.ppu.CPUWrite(addr, value)
	case addr < 0xFF00:
		// unusable
	case addr < 0xFF80:
		b.writeIO(addr, value)
	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = value
	default:
		b.irq.IE = value
	}
}

// Read16 reads a little-endian word.
func (b *Bus) Read16(addr uint16) uint16 {
	return uint16(b.Read(addr)) | uint16(b.Read(addr+1))<<8
}

// Write16 writes a little-endian word.
func (b *Bus) Write16(addr uint16, v uint16) {
	b.Write(addr, byte(v))
	b.Write(addr+1, byte(v>>8))
}

func (b *Bus) readIO(addr uint16) byte {
	switch {
	case addr == 0xFF00:
		return b.joypad.Read()
	case addr == serial.SB || addr == serial.SC:
		return b.serial.Read(addr)
	case addr >= timer.DIV && addr <= timer.TAC:
		return b.timer.Read(addr)
	case addr == 0xFF0F:
		return b.irq.ReadIF()
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.apu.Read(addr)
	case addr == 0xFF46:
		return b.dma
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return b.ppu.CPURead(addr)
	}
	return 0xFF
}

func (b *Bus) writeIO(addr uint16, value byte) {
	switch {
	case addr == 0xFF00:
		b.joypad.Write(value)
	case addr == serial.SB || addr == serial.SC:
		b.serial.Write(addr, value)
	case addr >= timer.DIV && addr <= timer.TAC:
		b.timer.Write(addr, value)
	case addr == 0xFF0F:
		b.irq.WriteIF(value)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.apu.Write(addr, value)
	case addr == 0xFF46:
		b.dma = value
		b.oamDMA(uint16(value) << 8)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		b.ppu.CPUWrite(addr, value)
	case addr == 0xFF50:
		if value != 0 {
			b.bootOn = false
		}
	}
}

// oamDMA copies 160 bytes from src to OAM in one go.
func (b *Bus) oamDMA(src uint16) {
	for i := 0; i < 0xA0; i++ {
		b.ppu.DMAWrite(i, b.dmaRead(src+uint16(i)))
	}
}

// dmaRead reads a DMA source byte. Sources at E000 and above fold onto WRAM.
func (b *Bus) dmaRead(addr uint16) byte {
	switch {
	case addr >= 0xE000:
		return b.wram[(addr-0xE000)&0x1FFF]
	case addr >= 0x8000 && addr < 0xA000:
		return b.ppu.VRAM(addr)
	}
	return b.Read(addr)
}
