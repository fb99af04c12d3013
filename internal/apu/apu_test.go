package apu

import "testing"

type sink struct {
	rate    int
	frames  int
	nonzero int
}

func (s *sink) Start(rate int) error {
	s.rate = rate
	return nil
}

func (s *sink) Output(l, r int16) {
	s.frames++
	if l != 0 || r != 0 {
		s.nonzero++
	}
}
func (s *sink) Stop() error { return nil }

func powered() *APU {
	a := New(48000)
	a.Write(0xFF26, 0x80)
	a.Write(0xFF24, 0x77)
	a.Write(0xFF25, 0xFF)
	return a
}

func TestReadMasks(t *testing.T) {
	a := powered()
	if got := a.Read(0xFF10); got != 0x80 {
		t.Fatalf("NR10 got %02x want 80", got)
	}
	a.Write(0xFF11, 0x80)
	if got := a.Read(0xFF11); got != 0xBF {
		t.Fatalf("NR11 got %02x want BF", got)
	}
	if got := a.Read(0xFF13); got != 0xFF {
		t.Fatalf("NR13 (write-only) got %02x want FF", got)
	}
	if got := a.Read(0xFF27); got != 0xFF {
		t.Fatalf("unused FF27 got %02x want FF", got)
	}
	a.Write(0xFF24, 0x35)
	if got := a.Read(0xFF24); got != 0x35 {
		t.Fatalf("NR50 got %02x want 35", got)
	}
}

func TestPowerOffClearsRegistersButKeepsWaveRAM(t *testing.T) {
	a := powered()
	a.Write(0xFF30, 0x12)
	a.Write(0xFF12, 0xF0)
	a.Write(0xFF14, 0x80)
	if a.Read(0xFF26)&0x01 == 0 {
		t.Fatalf("channel 1 not on after trigger")
	}
	a.Write(0xFF26, 0x00)
	if got := a.Read(0xFF26); got != 0x70 {
		t.Fatalf("NR52 after power off got %02x want 70", got)
	}
	a.Write(0xFF12, 0xF0) // ignored while off
	if got := a.Read(0xFF12); got != 0x00 {
		t.Fatalf("NR12 writable while powered off: %02x", got)
	}
	if got := a.Read(0xFF30); got != 0x12 {
		t.Fatalf("wave RAM got %02x want 12", got)
	}
}

func TestDACOffKeepsChannelSilent(t *testing.T) {
	a := powered()
	a.Write(0xFF17, 0x00) // volume 0, decreasing: DAC off
	a.Write(0xFF19, 0x80)
	if a.Read(0xFF26)&0x02 != 0 {
		t.Fatalf("channel 2 enabled with DAC off")
	}
	a.Write(0xFF17, 0x08) // DAC on
	a.Write(0xFF19, 0x80)
	if a.Read(0xFF26)&0x02 == 0 {
		t.Fatalf("channel 2 not enabled with DAC on")
	}
	a.Write(0xFF17, 0x00)
	if a.Read(0xFF26)&0x02 != 0 {
		t.Fatalf("turning the DAC off did not disable channel 2")
	}
}

func TestLengthCounterExpires(t *testing.T) {
	a := powered()
	a.Write(0xFF12, 0xF0)
	a.Write(0xFF11, 0x3E) // length 64-62 = 2
	a.Write(0xFF14, 0xC0) // trigger with length enabled
	// length clocks on every other 512 Hz step
	a.Step(sequencerPeriod)
	if a.Read(0xFF26)&0x01 == 0 {
		t.Fatalf("channel 1 stopped after one length clock")
	}
	a.Step(2 * sequencerPeriod)
	if a.Read(0xFF26)&0x01 != 0 {
		t.Fatalf("channel 1 still on after length expired")
	}
}

func TestEnvelopeDecays(t *testing.T) {
	a := powered()
	a.Write(0xFF21, 0x21) // volume 2, decreasing, period 1
	a.Write(0xFF23, 0x80)
	if a.ch4.env.volume != 2 {
		t.Fatalf("initial envelope volume got %d want 2", a.ch4.env.volume)
	}
	a.Step(8 * sequencerPeriod) // one envelope clock
	if a.ch4.env.volume != 1 {
		t.Fatalf("volume after one envelope clock got %d want 1", a.ch4.env.volume)
	}
	a.Step(8 * sequencerPeriod)
	a.Step(8 * sequencerPeriod)
	if a.ch4.env.volume != 0 {
		t.Fatalf("volume went below 0: %d", a.ch4.env.volume)
	}
}

func TestSweepOverflowDisablesChannel(t *testing.T) {
	a := powered()
	a.Write(0xFF10, 0x11) // period 1, add, shift 1
	a.Write(0xFF12, 0xF0)
	a.Write(0xFF13, 0xFF)
	a.Write(0xFF14, 0x87) // freq 0x7FF: 0x7FF + 0x3FF overflows at trigger
	if a.Read(0xFF26)&0x01 != 0 {
		t.Fatalf("channel 1 enabled despite sweep overflow")
	}
}

func TestSamplesAtConfiguredRate(t *testing.T) {
	a := powered()
	s := &sink{}
	a.SetPlayback(s)
	a.Write(0xFF12, 0xF0)
	a.Write(0xFF11, 0x80)
	a.Write(0xFF13, 0x00)
	a.Write(0xFF14, 0x87)
	for i := 0; i < cpuHz/4; i++ {
		a.Step(4)
	}
	if s.frames != 48000 {
		t.Fatalf("frames for one second got %d want 48000", s.frames)
	}
	if s.nonzero == 0 {
		t.Fatalf("triggered square wave produced only silence")
	}
}

func TestNoPlaybackNoPanic(t *testing.T) {
	a := powered()
	a.Step(70224)
	if a.SampleRate() != 48000 {
		t.Fatalf("sample rate got %d", a.SampleRate())
	}
	if New(0).SampleRate() != DefaultSampleRate {
		t.Fatalf("default sample rate not applied")
	}
}
