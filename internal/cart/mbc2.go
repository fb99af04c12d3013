package cart

const mbc2RAMSize = 512

// MBC2 has up to 256 KiB ROM and 512 half-bytes of built-in RAM.
// Address bit 8 selects between RAM enable and ROM bank writes in 0x0000–0x3FFF.
type MBC2 struct {
	rom        []byte
	ram        [mbc2RAMSize]byte
	romBank    byte
	ramEnabled bool
	banks      int
}

func NewMBC2(rom []byte) *MBC2 {
	return &MBC2{rom: rom, romBank: 1, banks: romBanks(rom)}
}

func (m *MBC2) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return readROM(m.rom, 0, addr)
	case addr < 0x8000:
		return readROM(m.rom, int(m.romBank)%m.banks, addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return 0xF0 | m.ram[addr&0x01FF]
	}
	return 0xFF
}

func (m *MBC2) Write(addr uint16, value byte) {
	switch {
	case addr < 0x4000:
		if addr&0x0100 == 0 {
			m.ramEnabled = value&0x0F == 0x0A
			return
		}
		v := value & 0x0F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled {
			m.ram[addr&0x01FF] = value & 0x0F
		}
	}
}

func (m *MBC2) SaveRAM() []byte {
	out := make([]byte, mbc2RAMSize)
	copy(out, m.ram[:])
	return out
}

func (m *MBC2) LoadRAM(data []byte) {
	for i := 0; i < len(data) && i < mbc2RAMSize; i++ {
		m.ram[i] = data[i] & 0x0F
	}
}
