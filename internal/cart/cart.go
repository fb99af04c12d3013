package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedMapper is returned at load time for cartridge types the
	// emulator has no banking logic for.
	ErrUnsupportedMapper = errors.New("unsupported cartridge mapper")
	// ErrMalformedImage is returned for truncated or inconsistently sized images.
	ErrMalformedImage = errors.New("malformed image")
)

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

// Cartridge is what the Bus needs for ROM/RAM banking. Addresses are CPU
// addresses: ROM and MBC control at 0x0000–0x7FFF, external RAM at 0xA000–0xBFFF.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// BatteryBacked is implemented by cartridges whose external RAM is persisted
// by the host. SaveRAM returns a copy; LoadRAM accepts a previously saved blob.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// NewCartridge validates the image and picks a mapper from the header.
func NewCartridge(rom []byte) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(rom); err != nil {
		return nil, err
	}
	switch h.CartType {
	case 0x00, 0x08, 0x09:
		return NewROMOnly(rom, h.RAMSizeBytes), nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h.RAMSizeBytes), nil
	case 0x05, 0x06:
		return NewMBC2(rom), nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h.RAMSizeBytes), nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, h.RAMSizeBytes), nil
	default:
		return nil, fmt.Errorf("%w: type %#02x (%s)", ErrUnsupportedMapper, h.CartType, h.CartTypeStr)
	}
}

// romBanks returns the number of 16 KiB banks in rom, at least 2.
func romBanks(rom []byte) int {
	n := len(rom) / romBankSize
	if n < 2 {
		n = 2
	}
	return n
}

func readROM(rom []byte, bank int, addr uint16) byte {
	off := bank*romBankSize + int(addr&0x3FFF)
	if off < len(rom) {
		return rom[off]
	}
	return 0xFF
}

func copyRAM(ram []byte) []byte {
	if len(ram) == 0 {
		return nil
	}
	out := make([]byte, len(ram))
	copy(out, ram)
	return out
}

// ROMOnly is a cartridge without a mapper; types 0x08/0x09 add up to 8 KiB RAM.
type ROMOnly struct {
	rom []byte
	ram []byte
}

func NewROMOnly(rom []byte, ramSize int) *ROMOnly {
	c := &ROMOnly{rom: rom}
	if ramSize > 0 {
		c.ram = make([]byte, ramBankSize)
	}
	return c
}

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF && len(c.ram) > 0:
		return c.ram[addr-0xA000]
	default:
		return 0xFF
	}
}

func (c *ROMOnly) Write(addr uint16, value byte) {
	if addr >= 0xA000 && addr <= 0xBFFF && len(c.ram) > 0 {
		c.ram[addr-0xA000] = value
	}
}

func (c *ROMOnly) SaveRAM() []byte { return copyRAM(c.ram) }

func (c *ROMOnly) LoadRAM(data []byte) { copy(c.ram, data) }
