package cart

import "testing"

func TestMBC5_NineBitROMBank(t *testing.T) {
	rom := make([]byte, 8*1024*1024)
	for bank := 0; bank < 512; bank++ {
		rom[bank*0x4000] = byte(bank)
		rom[bank*0x4000+1] = byte(bank >> 8)
	}
	m := NewMBC5(rom, 0)
	m.Write(0x2000, 0x34)
	m.Write(0x3000, 0x01)
	if lo, hi := m.Read(0x4000), m.Read(0x4001); lo != 0x34 || hi != 0x01 {
		t.Fatalf("bank 0x134 read got %02X%02X", hi, lo)
	}
	m.Write(0x3000, 0x00)
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x00 {
		t.Fatalf("bank 0 at 4000 got %02X want 00", got)
	}
}

func TestMBC5_RAMBanks(t *testing.T) {
	m := NewMBC5(make([]byte, 64*1024), 128*1024)
	m.Write(0x0000, 0x0A)
	m.Write(0x4000, 0x0F)
	m.Write(0xBFFF, 0x99)
	m.Write(0x4000, 0x00)
	if got := m.Read(0xBFFF); got == 0x99 {
		t.Fatalf("bank 0 sees bank 15 data")
	}
	m.Write(0x4000, 0x0F)
	if got := m.Read(0xBFFF); got != 0x99 {
		t.Fatalf("bank 15 got %02X want 99", got)
	}
}
