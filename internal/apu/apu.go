package apu

// CPU frequency in Hz (DMG)
const cpuHz = 4194304

// frame sequencer runs at 512 Hz
const sequencerPeriod = cpuHz / 512

// DefaultSampleRate is used when New is given a non-positive rate.
const DefaultSampleRate = 48000

// Playback receives stereo PCM frames at the rate passed to Start.
type Playback interface {
	Start(sampleRate int) error
	Output(left, right int16)
	Stop() error
}

// readMask holds the bits that always read back as 1 for FF10-FF2F.
var readMask = [0x20]byte{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // NR20-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // NR40-NR44
	0x00, 0x00, 0x70, // NR50-NR52
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

// APU is the DMG sound unit: two pulse channels (the first with sweep), a
// wave channel and a noise channel mixed to stereo through NR50/NR51.
type APU struct {
	power bool
	regs  [0x20]byte // raw FF10-FF2F as last written

	sampleRate int
	sampleAcc  int // in units of 1/sampleRate clocks
	mixGain    float64
	out        Playback

	seqCounter int
	seqStep    int

	ch1 square
	ch2 square
	ch3 wave
	ch4 noise
}

func New(sampleRate int) *APU {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	a := &APU{
		sampleRate: sampleRate,
		mixGain:    0.20,
		seqCounter: sequencerPeriod,
	}
	a.resetChannels()
	return a
}

func (a *APU) resetChannels() {
	ram := a.ch3.ram
	a.ch1 = square{hasSweep: true, length: lengthCounter{max: 64}}
	a.ch2 = square{length: lengthCounter{max: 64}}
	a.ch3 = wave{length: lengthCounter{max: 256}, ram: ram}
	a.ch4 = noise{length: lengthCounter{max: 64}}
	a.regs = [0x20]byte{}
	a.seqStep = 0
}

// SetPlayback attaches the sample sink; nil discards audio.
func (a *APU) SetPlayback(p Playback) { a.out = p }

func (a *APU) SampleRate() int { return a.sampleRate }

// Enabled reports the NR52 master power bit.
func (a *APU) Enabled() bool { return a.power }

// Read returns the register at FF10-FF3F.
func (a *APU) Read(addr uint16) byte {
	switch {
	case addr >= 0xFF30 && addr <= 0xFF3F:
		return a.ch3.ram[addr-0xFF30]
	case addr == 0xFF26:
		v := byte(0x70)
		if a.power {
			v |= 0x80
		}
		for i, on := range [4]bool{a.ch1.on, a.ch2.on, a.ch3.on, a.ch4.on} {
			if on {
				v |= 1 << uint(i)
			}
		}
		return v
	case addr >= 0xFF10 && addr < 0xFF30:
		i := addr - 0xFF10
		return a.regs[i] | readMask[i]
	}
	return 0xFF
}

// Write stores an APU register. While powered off only NR52 and wave RAM
// accept writes.
func (a *APU) Write(addr uint16, v byte) {
	if addr >= 0xFF30 && addr <= 0xFF3F {
		a.ch3.ram[addr-0xFF30] = v
		return
	}
	if addr < 0xFF10 || addr >= 0xFF30 {
		return
	}
	if addr == 0xFF26 {
		on := v&0x80 != 0
		if a.power && !on {
			a.resetChannels()
		}
		if !a.power && on {
			a.seqCounter = sequencerPeriod
			a.seqStep = 0
		}
		a.power = on
		return
	}
	if !a.power {
		return
	}
	a.regs[addr-0xFF10] = v

	switch addr {
	case 0xFF10:
		a.ch1.sweepPeriod = v >> 4 & 0x07
		a.ch1.sweepNeg = v&0x08 != 0
		a.ch1.sweepShift = v & 0x07
	case 0xFF11:
		a.ch1.duty = v >> 6
		a.ch1.length.load(int(v & 0x3F))
	case 0xFF12:
		writeEnvelope(&a.ch1.env, &a.ch1.dac, &a.ch1.on, v)
	case 0xFF13:
		a.ch1.freq = a.ch1.freq&0x700 | uint16(v)
	case 0xFF14:
		a.ch1.freq = a.ch1.freq&0xFF | uint16(v&0x07)<<8
		a.ch1.length.enabled = v&0x40 != 0
		if v&0x80 != 0 {
			a.ch1.trigger()
		}

	case 0xFF16:
		a.ch2.duty = v >> 6
		a.ch2.length.load(int(v & 0x3F))
	case 0xFF17:
		writeEnvelope(&a.ch2.env, &a.ch2.dac, &a.ch2.on, v)
	case 0xFF18:
		a.ch2.freq = a.ch2.freq&0x700 | uint16(v)
	case 0xFF19:
		a.ch2.freq = a.ch2.freq&0xFF | uint16(v&0x07)<<8
		a.ch2.length.enabled = v&0x40 != 0
		if v&0x80 != 0 {
			a.ch2.trigger()
		}

	case 0xFF1A:
		a.ch3.dac = v&0x80 != 0
		if !a.ch3.dac {
			a.ch3.on = false
		}
	case 0xFF1B:
		a.ch3.length.load(int(v))
	case 0xFF1C:
		a.ch3.volume = v >> 5 & 0x03
	case 0xFF1D:
		a.ch3.freq = a.ch3.freq&0x700 | uint16(v)
	case 0xFF1E:
		a.ch3.freq = a.ch3.freq&0xFF | uint16(v&0x07)<<8
		a.ch3.length.enabled = v&0x40 != 0
		if v&0x80 != 0 {
			a.ch3.trigger()
		}

	case 0xFF20:
		a.ch4.length.load(int(v & 0x3F))
	case 0xFF21:
		writeEnvelope(&a.ch4.env, &a.ch4.dac, &a.ch4.on, v)
	case 0xFF22:
		a.ch4.shift = v >> 4
		a.ch4.short = v&0x08 != 0
		a.ch4.div = v & 0x07
	case 0xFF23:
		a.ch4.length.enabled = v&0x40 != 0
		if v&0x80 != 0 {
			a.ch4.trigger()
		}
	}
}

// writeEnvelope handles NRx2: the DAC is on while any of the upper five bits
// is set, and turning it off silences the channel.
func writeEnvelope(e *envelope, dac, on *bool, v byte) {
	e.write(v)
	*dac = v&0xF8 != 0
	if !*dac {
		*on = false
	}
}

// Step advances the APU by cycles CPU clocks and emits any samples that
// became due to the attached Playback.
func (a *APU) Step(cycles int) {
	if cycles <= 0 {
		return
	}
	if a.power {
		a.seqCounter -= cycles
		for a.seqCounter <= 0 {
			a.seqCounter += sequencerPeriod
			a.clockSequencer()
		}
		a.ch1.step(cycles)
		a.ch2.step(cycles)
		a.ch3.step(cycles)
		a.ch4.step(cycles)
	}
	if a.out == nil {
		return
	}
	a.sampleAcc += cycles * a.sampleRate
	for a.sampleAcc >= cpuHz {
		a.sampleAcc -= cpuHz
		a.out.Output(a.mix())
	}
}

// clockSequencer runs one of the eight 512 Hz steps: length on even steps,
// sweep on 2 and 6, envelope on 7.
func (a *APU) clockSequencer() {
	if a.seqStep%2 == 0 {
		if a.ch1.length.clock() {
			a.ch1.on = false
		}
		if a.ch2.length.clock() {
			a.ch2.on = false
		}
		if a.ch3.length.clock() {
			a.ch3.on = false
		}
		if a.ch4.length.clock() {
			a.ch4.on = false
		}
	}
	if a.seqStep == 2 || a.seqStep == 6 {
		a.ch1.clockSweep()
	}
	if a.seqStep == 7 {
		a.ch1.env.clock()
		a.ch2.env.clock()
		a.ch4.env.clock()
	}
	a.seqStep = (a.seqStep + 1) & 7
}

// dacLevel maps a 4-bit DAC input to -1..1; a disabled DAC outputs 0.
func dacLevel(dac bool, in byte) float64 {
	if !dac {
		return 0
	}
	return float64(in)/7.5 - 1
}

// mix produces one stereo frame. NR51 upper nibble routes to the left
// terminal, lower nibble to the right; NR50 scales each side by (vol+1)/8.
func (a *APU) mix() (int16, int16) {
	if !a.power {
		return 0, 0
	}
	ch := [4]float64{
		dacLevel(a.ch1.dac, a.ch1.output()),
		dacLevel(a.ch2.dac, a.ch2.output()),
		dacLevel(a.ch3.dac, a.ch3.output()),
		dacLevel(a.ch4.dac, a.ch4.output()),
	}
	nr50 := a.regs[0x14]
	nr51 := a.regs[0x15]
	var l, r float64
	for i, v := range ch {
		if nr51&(0x10<<uint(i)) != 0 {
			l += v
		}
		if nr51&(1<<uint(i)) != 0 {
			r += v
		}
	}
	l *= float64(nr50>>4&0x07+1) / 8
	r *= float64(nr50&0x07+1) / 8
	return toPCM(l * a.mixGain), toPCM(r * a.mixGain)
}

func toPCM(v float64) int16 {
	switch {
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	}
	return int16(v * 32767)
}
