package apu

var dutyTable = [4][8]byte{
	{0, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 0, 1, 1, 1},
	{0, 1, 1, 1, 1, 1, 1, 0},
}

var noiseDivisors = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

// lengthCounter silences a channel after max-n frame sequencer length clocks.
type lengthCounter struct {
	count   int
	max     int
	enabled bool
}

func (l *lengthCounter) load(n int) { l.count = l.max - n }

func (l *lengthCounter) trigger() {
	if l.count == 0 {
		l.count = l.max
	}
}

// clock reports whether the counter just expired.
func (l *lengthCounter) clock() bool {
	if !l.enabled || l.count == 0 {
		return false
	}
	l.count--
	return l.count == 0
}

type envelope struct {
	initial byte
	up      bool
	period  byte
	volume  byte
	timer   byte
}

func (e *envelope) write(v byte) {
	e.initial = v >> 4
	e.up = v&0x08 != 0
	e.period = v & 0x07
}

func (e *envelope) trigger() {
	e.volume = e.initial
	e.timer = e.period
	if e.timer == 0 {
		e.timer = 8
	}
}

func (e *envelope) clock() {
	if e.period == 0 {
		return
	}
	if e.timer > 0 {
		e.timer--
	}
	if e.timer != 0 {
		return
	}
	e.timer = e.period
	switch {
	case e.up && e.volume < 15:
		e.volume++
	case !e.up && e.volume > 0:
		e.volume--
	}
}

// square is a pulse channel; channel 1 adds a frequency sweep.
type square struct {
	on     bool
	dac    bool
	duty   byte
	length lengthCounter
	env    envelope
	freq   uint16
	timer  int
	phase  int

	hasSweep    bool
	sweepPeriod byte
	sweepNeg    bool
	sweepShift  byte
	sweepTimer  byte
	sweepOn     bool
	shadow      uint16
}

func (s *square) period() int { return int(2048-s.freq&0x7FF) * 4 }

func (s *square) trigger() {
	s.on = s.dac
	s.length.trigger()
	s.phase = 0
	s.timer = s.period()
	s.env.trigger()
	if !s.hasSweep {
		return
	}
	s.shadow = s.freq
	s.sweepTimer = s.sweepPeriod
	if s.sweepTimer == 0 {
		s.sweepTimer = 8
	}
	s.sweepOn = s.sweepPeriod != 0 || s.sweepShift != 0
	if s.sweepShift != 0 && s.nextSweep() > 0x7FF {
		s.on = false
	}
}

func (s *square) nextSweep() int {
	delta := int(s.shadow >> s.sweepShift)
	if s.sweepNeg {
		return int(s.shadow) - delta
	}
	return int(s.shadow) + delta
}

func (s *square) clockSweep() {
	if !s.on || !s.sweepOn {
		return
	}
	if s.sweepTimer > 0 {
		s.sweepTimer--
	}
	if s.sweepTimer != 0 {
		return
	}
	s.sweepTimer = s.sweepPeriod
	if s.sweepTimer == 0 {
		s.sweepTimer = 8
		return
	}
	nf := s.nextSweep()
	if nf > 0x7FF {
		s.on = false
		return
	}
	if s.sweepShift == 0 {
		return
	}
	s.shadow = uint16(nf)
	s.freq = uint16(nf)
	if s.nextSweep() > 0x7FF {
		s.on = false
	}
}

func (s *square) step(cycles int) {
	if !s.on {
		return
	}
	s.timer -= cycles
	for s.timer <= 0 {
		s.timer += s.period()
		s.phase = (s.phase + 1) & 7
	}
}

// output returns the DAC input, 0..15.
func (s *square) output() byte {
	if !s.on || dutyTable[s.duty][s.phase] == 0 {
		return 0
	}
	return s.env.volume
}

type wave struct {
	on     bool
	dac    bool
	length lengthCounter
	volume byte // NR32 bits 5-6
	freq   uint16
	timer  int
	pos    int
	ram    [16]byte
}

func (w *wave) period() int { return int(2048-w.freq&0x7FF) * 2 }

func (w *wave) trigger() {
	w.on = w.dac
	w.length.trigger()
	w.pos = 0
	w.timer = w.period()
}

func (w *wave) step(cycles int) {
	if !w.on {
		return
	}
	w.timer -= cycles
	for w.timer <= 0 {
		w.timer += w.period()
		w.pos = (w.pos + 1) & 31
	}
}

func (w *wave) output() byte {
	if !w.on || w.volume == 0 {
		return 0
	}
	b := w.ram[w.pos>>1]
	if w.pos&1 == 0 {
		b >>= 4
	}
	return (b & 0x0F) >> (w.volume - 1)
}

type noise struct {
	on     bool
	dac    bool
	length lengthCounter
	env    envelope
	shift  byte
	short  bool
	div    byte
	timer  int
	lfsr   uint16
}

func (n *noise) period() int { return noiseDivisors[n.div] << n.shift }

func (n *noise) trigger() {
	n.on = n.dac
	n.length.trigger()
	n.env.trigger()
	n.lfsr = 0x7FFF
	n.timer = n.period()
}

func (n *noise) step(cycles int) {
	if !n.on {
		return
	}
	n.timer -= cycles
	for n.timer <= 0 {
		n.timer += n.period()
		x := (n.lfsr ^ n.lfsr>>1) & 1
		n.lfsr = n.lfsr>>1 | x<<14
		if n.short {
			n.lfsr = n.lfsr&^(1<<6) | x<<6
		}
	}
}

func (n *noise) output() byte {
	if !n.on || n.lfsr&1 != 0 {
		return 0
	}
	return n.env.volume
}
