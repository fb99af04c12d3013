package emu

import "image/color"

// romWith builds a 32 KiB image of the given cartridge type. The entry point
// jumps to 0x0150 where code is placed; extra places bytes at fixed addresses
// (interrupt vectors).
func romWith(cartType byte, code []byte, extra map[uint16][]byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], []byte{0x00, 0xC3, 0x50, 0x01}) // NOP; JP 0x0150
	copy(rom[0x0134:], "TESTROM")
	rom[0x0147] = cartType
	rom[0x0148] = 0x00
	if cartType == 0x03 {
		rom[0x0149] = 0x02
	}
	copy(rom[0x0150:], code)
	for addr, b := range extra {
		copy(rom[addr:], b)
	}
	return rom
}

func loadROM(cfg Config, code []byte, extra map[uint16][]byte) (*Machine, error) {
	m := New(cfg)
	return m, m.LoadCartridge(romWith(0x00, code, extra), nil)
}

type countingScreen struct {
	on, off, draws, pixels int
}

func (s *countingScreen) TurnOn()                         { s.on++ }
func (s *countingScreen) TurnOff()                        { s.off++ }
func (s *countingScreen) SetPixel(_, _ int, _ color.RGBA) { s.pixels++ }
func (s *countingScreen) Draw()                           { s.draws++ }
