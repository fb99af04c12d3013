package cart

// MBC1 implements ROM banking up to 2 MiB and RAM up to 32 KiB.
type MBC1 struct {
	rom []byte
	ram []byte

	romBankLow5 byte // 0 reads as 1
	bank2       byte // RAM bank or ROM bank bits 5-6
	ramEnabled  bool
	mode        byte // 0: simple banking, 1: advanced (bank2 also applies to 0x0000 and RAM)
	banks       int
}

func NewMBC1(rom []byte, ramSize int) *MBC1 {
	m := &MBC1{rom: rom, romBankLow5: 1, banks: romBanks(rom)}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC1) lowBank() int {
	if m.mode == 0 {
		return 0
	}
	return int(m.bank2<<5) % m.banks
}

func (m *MBC1) highBank() int {
	return int(m.bank2<<5|m.romBankLow5) % m.banks
}

func (m *MBC1) ramOffset(addr uint16) int {
	bank := 0
	if m.mode == 1 {
		bank = int(m.bank2)
	}
	off := bank*ramBankSize + int(addr-0xA000)
	return off % len(m.ram)
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return readROM(m.rom, m.lowBank(), addr)
	case addr < 0x8000:
		return readROM(m.rom, m.highBank(), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		return m.ram[m.ramOffset(addr)]
	}
	return 0xFF
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		v := value & 0x1F
		if v == 0 {
			v = 1
		}
		m.romBankLow5 = v
	case addr < 0x6000:
		m.bank2 = value & 0x03
	case addr < 0x8000:
		m.mode = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled && len(m.ram) > 0 {
			m.ram[m.ramOffset(addr)] = value
		}
	}
}

func (m *MBC1) SaveRAM() []byte { return copyRAM(m.ram) }

func (m *MBC1) LoadRAM(data []byte) { copy(m.ram, data) }
