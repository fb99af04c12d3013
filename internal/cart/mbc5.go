package cart

// MBC5 supports up to 8 MiB ROM and 128 KiB RAM. Unlike the older mappers,
// bank 0 may be mapped at 0x4000.
type MBC5 struct {
	rom []byte
	ram []byte

	romBank    uint16 // 9 bits
	ramBank    byte   // 0..15
	ramEnabled bool
	banks      int
}

func NewMBC5(rom []byte, ramSize int) *MBC5 {
	m := &MBC5{rom: rom, romBank: 1, banks: romBanks(rom)}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC5) ramOffset(addr uint16) int {
	return (int(m.ramBank)*ramBankSize + int(addr-0xA000)) % len(m.ram)
}

func (m *MBC5) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return readROM(m.rom, 0, addr)
	case addr < 0x8000:
		return readROM(m.rom, int(m.romBank)%m.banks, addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		return m.ram[m.ramOffset(addr)]
	}
	return 0xFF
}

func (m *MBC5) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case addr < 0x4000:
		m.romBank = m.romBank&0x0FF | uint16(value&0x01)<<8
	case addr < 0x6000:
		// bit 3 drives the rumble motor on some boards
		m.ramBank = value & 0x0F
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled && len(m.ram) > 0 {
			m.ram[m.ramOffset(addr)] = value
		}
	}
}

func (m *MBC5) SaveRAM() []byte { return copyRAM(m.ram) }

func (m *MBC5) LoadRAM(data []byte) { copy(m.ram, data) }
