package cart

import (
	"encoding/binary"
	"time"
)

// MBC3 adds a real-time clock to 2 MiB ROM / 32 KiB RAM banking.
// - 0000-1FFF: RAM and RTC enable (0x0A in low nibble)
// - 2000-3FFF: ROM bank low 7 bits (0 maps to 1)
// - 4000-5FFF: RAM bank 0-3 or RTC register 08-0C
// - 6000-7FFF: writing 00 then 01 latches the clock
type MBC3 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    byte
	sel        byte
	banks      int

	// live clock
	rtcSec, rtcMin, rtcHour byte
	rtcDay                  uint16 // 9 bits
	rtcHalt, rtcCarry       bool
	lastRTCWallSec          int64

	latched    [5]byte
	latchPrime byte
}

// nowUnix is the wall clock source for the RTC; tests replace it.
var nowUnix = func() int64 { return time.Now().Unix() }

// rtcFooterSize is the RTC block appended after RAM in .sav files:
// five live registers, five latched registers (uint32 each) and a 64-bit timestamp.
const rtcFooterSize = 48

func NewMBC3(rom []byte, ramSize int) *MBC3 {
	m := &MBC3{rom: rom, romBank: 1, banks: romBanks(rom), latchPrime: 0xFF}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	m.lastRTCWallSec = nowUnix()
	return m
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return readROM(m.rom, 0, addr)
	case addr < 0x8000:
		return readROM(m.rom, int(m.romBank)%m.banks, addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.sel >= 0x08 && m.sel <= 0x0C {
			return m.latched[m.sel-0x08]
		}
		if m.sel > 0x03 || len(m.ram) == 0 {
			return 0xFF
		}
		return m.ram[(int(m.sel)*ramBankSize+int(addr-0xA000))%len(m.ram)]
	}
	return 0xFF
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		v := value & 0x7F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr < 0x6000:
		m.sel = value & 0x0F
	case addr < 0x8000:
		if m.latchPrime != 0x01 && value == 0x01 {
			m.latch()
		}
		m.latchPrime = value
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if m.sel >= 0x08 && m.sel <= 0x0C {
			m.writeRTC(m.sel, value)
			return
		}
		if m.sel > 0x03 || len(m.ram) == 0 {
			return
		}
		m.ram[(int(m.sel)*ramBankSize+int(addr-0xA000))%len(m.ram)] = value
	}
}

func (m *MBC3) latch() {
	m.updateRTC()
	m.latched = m.liveRegs()
}

func (m *MBC3) liveRegs() [5]byte {
	dh := byte(m.rtcDay>>8) & 0x01
	if m.rtcHalt {
		dh |= 0x40
	}
	if m.rtcCarry {
		dh |= 0x80
	}
	return [5]byte{m.rtcSec, m.rtcMin, m.rtcHour, byte(m.rtcDay), dh}
}

func (m *MBC3) setLive(r [5]byte) {
	m.rtcSec = r[0] & 0x3F
	m.rtcMin = r[1] & 0x3F
	m.rtcHour = r[2] & 0x1F
	m.rtcDay = uint16(r[3]) | uint16(r[4]&0x01)<<8
	m.rtcHalt = r[4]&0x40 != 0
	m.rtcCarry = r[4]&0x80 != 0
}

func (m *MBC3) writeRTC(reg, value byte) {
	m.updateRTC()
	r := m.liveRegs()
	r[reg-0x08] = value
	m.setLive(r)
}

// updateRTC advances the live clock by the wall time elapsed since the last update.
func (m *MBC3) updateRTC() {
	now := nowUnix()
	elapsed := now - m.lastRTCWallSec
	m.lastRTCWallSec = now
	if m.rtcHalt || elapsed <= 0 {
		return
	}
	m.advance(elapsed)
}

func (m *MBC3) advance(secs int64) {
	total := int64(m.rtcSec) + secs
	m.rtcSec = byte(total % 60)
	total = int64(m.rtcMin) + total/60
	m.rtcMin = byte(total % 60)
	total = int64(m.rtcHour) + total/60
	m.rtcHour = byte(total % 24)
	days := int64(m.rtcDay) + total/24
	if days > 0x1FF {
		m.rtcCarry = true
	}
	m.rtcDay = uint16(days & 0x1FF)
}

// SaveRAM returns the RAM followed by the RTC footer.
func (m *MBC3) SaveRAM() []byte {
	m.updateRTC()
	out := make([]byte, len(m.ram)+rtcFooterSize)
	copy(out, m.ram)
	f := out[len(m.ram):]
	live := m.liveRegs()
	for i := 0; i < 5; i++ {
		binary.LittleEndian.PutUint32(f[i*4:], uint32(live[i]))
		binary.LittleEndian.PutUint32(f[20+i*4:], uint32(m.latched[i]))
	}
	binary.LittleEndian.PutUint64(f[40:], uint64(m.lastRTCWallSec))
	return out
}

// LoadRAM accepts RAM with or without the RTC footer. Time that passed while
// the file was on disk is applied to the clock.
func (m *MBC3) LoadRAM(data []byte) {
	copy(m.ram, data)
	if len(data) < len(m.ram)+rtcFooterSize {
		return
	}
	f := data[len(m.ram):]
	var live [5]byte
	for i := 0; i < 5; i++ {
		live[i] = byte(binary.LittleEndian.Uint32(f[i*4:]))
		m.latched[i] = byte(binary.LittleEndian.Uint32(f[20+i*4:]))
	}
	m.setLive(live)
	m.lastRTCWallSec = int64(binary.LittleEndian.Uint64(f[40:]))
	m.updateRTC()
}
