package emu

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/apu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/joypad"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/palette"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/serial"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/timer"
)

const (
	// ClockHz is the DMG master clock.
	ClockHz = 4194304
	// FrameCycles is the number of clocks in one LCD frame.
	FrameCycles = ppu.DotsPerFrame
	// FrameRate is ClockHz / FrameCycles.
	FrameRate = 59.7275
)

var (
	ErrNoCartridge    = errors.New("emu: no cartridge loaded")
	ErrRunning        = errors.New("emu: already running")
	ErrMalformedBoot  = fmt.Errorf("boot image: %w", cart.ErrMalformedImage)
	ErrUnknownPalette = errors.New("emu: unknown palette")
)

// Machine ties the CPU and the bus together and schedules them. All core
// state is mutated by the goroutine that calls StepFrame or Run.
type Machine struct {
	cfg Config

	bus    *bus.Bus
	cpu    *cpu.CPU
	header *cart.Header

	carry  int // clocks already run into the next frame
	frames uint64

	romPath string
	bootROM []byte

	screen    ppu.Screen
	paletteID int
	ctrl      joypad.Controller
	playback  apu.Playback
	link      serial.Connection

	running atomic.Bool
	stop    atomic.Bool
}

func New(cfg Config) *Machine {
	cfg.Defaults()
	return &Machine{cfg: cfg}
}

func (m *Machine) Config() Config { return m.cfg }

// LoadCartridge validates rom and rebuilds the machine around it. With a boot
// image (at least 256 bytes) execution starts at 0x0000 under the overlay;
// without one the CPU and I/O start in the state the boot ROM leaves behind.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	if boot != nil && len(boot) < 0x100 {
		return fmt.Errorf("%w: %d bytes, need 256", ErrMalformedBoot, len(boot))
	}
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return err
	}
	c, err := cart.NewCartridge(rom)
	if err != nil {
		return err
	}
	pid, ok := palette.Resolve(m.cfg.Palette, h)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPalette, m.cfg.Palette)
	}

	b := bus.New(c, m.cfg.SampleRate)
	core := cpu.New(b, b.Interrupts())
	core.SetTrace(cpu.NewTrace(m.cfg.TraceDepth))
	core.DeferWrites(true)
	core.SetStopHandler(func() { b.Timer().Write(timer.DIV, 0) })

	m.bus, m.cpu, m.header = b, core, h
	m.paletteID = pid
	m.carry, m.frames = 0, 0
	m.bootROM = nil
	if boot != nil {
		m.bootROM = append([]byte(nil), boot[:0x100]...)
	}
	m.attach()

	if m.bootROM != nil {
		b.SetBootROM(m.bootROM)
		return nil
	}
	return m.ResetPostBoot()
}

// LoadROMFromFile reads a ROM from disk and loads it with the current boot
// image, if any.
func (m *Machine) LoadROMFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadCartridge(data, m.bootROM); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

func (m *Machine) ROMPath() string { return m.romPath }

// Header returns the parsed header of the loaded cartridge.
func (m *Machine) Header() *cart.Header { return m.header }

// SetBootROM sets the boot image used by later loads.
func (m *Machine) SetBootROM(data []byte) error {
	if data == nil {
		m.bootROM = nil
		return nil
	}
	if len(data) < 0x100 {
		return fmt.Errorf("%w: %d bytes, need 256", ErrMalformedBoot, len(data))
	}
	m.bootROM = append([]byte(nil), data[:0x100]...)
	return nil
}

// ResetPostBoot puts CPU and I/O into the DMG post-boot state and unmaps the
// boot overlay, keeping the loaded cartridge.
func (m *Machine) ResetPostBoot() error {
	if m.cpu == nil {
		return ErrNoCartridge
	}
	m.cpu.ResetPostBoot()
	m.applyDMGPostBootIO()
	m.bus.Write(0xFF50, 0x01)
	return nil
}

// applyDMGPostBootIO writes the I/O registers the boot ROM leaves set.
func (m *Machine) applyDMGPostBootIO() {
	b := m.bus
	b.Timer().Reset(0xABCC)
	b.Write(0xFF00, 0xCF) // JOYP
	b.Write(0xFF01, 0x00) // SB
	b.Write(0xFF02, 0x7E) // SC
	b.Write(0xFF05, 0x00) // TIMA
	b.Write(0xFF06, 0x00) // TMA
	b.Write(0xFF07, 0x00) // TAC
	b.Write(0xFF0F, 0xE1) // IF: VBlank left pending
	// APU: power on first so the channel registers accept writes
	b.Write(0xFF26, 0xF1)
	b.Write(0xFF10, 0x80)
	b.Write(0xFF11, 0xBF)
	b.Write(0xFF12, 0xF3)
	b.Write(0xFF14, 0xBF)
	b.Write(0xFF16, 0x3F)
	b.Write(0xFF17, 0x00)
	b.Write(0xFF19, 0xBF)
	b.Write(0xFF1A, 0x7F)
	b.Write(0xFF1B, 0xFF)
	b.Write(0xFF1C, 0x9F)
	b.Write(0xFF1E, 0xBF)
	b.Write(0xFF20, 0xFF)
	b.Write(0xFF21, 0x00)
	b.Write(0xFF22, 0x00)
	b.Write(0xFF23, 0xBF)
	b.Write(0xFF24, 0x77)
	b.Write(0xFF25, 0xF3)
	// LCD
	b.Write(0xFF40, 0x91)
	b.Write(0xFF42, 0x00)
	b.Write(0xFF43, 0x00)
	b.Write(0xFF45, 0x00)
	b.Write(0xFF47, 0xFC)
	b.Write(0xFF48, 0xFF)
	b.Write(0xFF49, 0xFF)
	b.Write(0xFF4A, 0x00)
	b.Write(0xFF4B, 0x00)
	b.Write(0xFFFF, 0x00)
}

// attach connects the host-side endpoints to the current bus.
func (m *Machine) attach() {
	if m.bus == nil {
		return
	}
	p := m.bus.PPU()
	p.SetScreen(m.screen)
	p.SetPalette(palette.Get(m.paletteID))
	m.bus.Joypad().SetController(m.ctrl)
	m.bus.Serial().SetConnection(m.link)
	m.bus.APU().SetPlayback(m.playback)
}

// SetScreen sets the frame sink; nil renders nothing.
func (m *Machine) SetScreen(s ppu.Screen) {
	m.screen = s
	m.attach()
}

// SetController sets the input device polled by the joypad.
func (m *Machine) SetController(c joypad.Controller) {
	m.ctrl = c
	m.attach()
}

// SetPlayback starts p at the configured sample rate and routes APU output
// to it. A previously attached playback is stopped.
func (m *Machine) SetPlayback(p apu.Playback) error {
	if m.playback != nil {
		if err := m.playback.Stop(); err != nil {
			return err
		}
		m.playback = nil
	}
	if p != nil {
		if err := p.Start(m.cfg.SampleRate); err != nil {
			return err
		}
	}
	m.playback = p
	m.attach()
	return nil
}

// SetSerialConnection attaches a link partner.
func (m *Machine) SetSerialConnection(c serial.Connection) {
	m.link = c
	m.attach()
}

// SetSerialWriter forwards every byte sent over the link port to w.
// Test ROMs report their results this way.
func (m *Machine) SetSerialWriter(w io.Writer) {
	m.SetSerialConnection(serial.WriterConnection{W: w})
}

// PaletteID returns the active palette.
func (m *Machine) PaletteID() int { return m.paletteID }

// SetPalette switches to the palette with the given ID.
func (m *Machine) SetPalette(id int) {
	m.paletteID = palette.Next(id, 0)
	m.attach()
}

// CyclePalette steps to the next (dir > 0) or previous palette.
func (m *Machine) CyclePalette(dir int) int {
	m.SetPalette(palette.Next(m.paletteID, dir))
	return m.paletteID
}

// Close stops the attached playback.
func (m *Machine) Close() error {
	return m.SetPlayback(nil)
}

// SaveBattery returns the cartridge RAM to persist, if the cartridge has any.
// SaveBatteryFile writes it to disk.
func (m *Machine) SaveBattery() ([]byte, bool) {
	if m.bus == nil || m.header == nil || !m.header.HasBattery() {
		return nil, false
	}
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok {
		return nil, false
	}
	data := bb.SaveRAM()
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

// LoadBattery restores cartridge RAM saved by SaveBattery.
func (m *Machine) LoadBattery(data []byte) bool {
	if m.bus == nil || m.header == nil || !m.header.HasBattery() {
		return false
	}
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok {
		return false
	}
	bb.LoadRAM(data)
	return true
}

// CPU exposes the core for debugging tools.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// Bus exposes the memory bus for debugging tools.
func (m *Machine) Bus() *bus.Bus { return m.bus }

// Frames returns the number of completed StepFrame calls.
func (m *Machine) Frames() uint64 { return m.frames }

// Trace returns the recorded instructions, oldest first.
func (m *Machine) Trace() []cpu.TraceEntry {
	if m.cpu == nil {
		return nil
	}
	return m.cpu.Trace().Entries()
}
