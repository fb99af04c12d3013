package timer

import "github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"

// Register addresses.
const (
	DIV  uint16 = 0xFF04
	TIMA uint16 = 0xFF05
	TMA  uint16 = 0xFF06
	TAC  uint16 = 0xFF07
)

// reloadDelay is the number of clocks TIMA reads 0x00 after an overflow
// before TMA is copied in and the interrupt is raised (one M-cycle).
const reloadDelay = 4

// divider bit watched for each TAC rate select (1024, 16, 64, 256 clocks).
var rateBit = [4]uint{9, 3, 5, 7}

// Timer is the DIV/TIMA/TMA/TAC block. TIMA is clocked by the falling edge of
// (selected divider bit AND enable), which is also how DIV and TAC writes can
// bump it.
type Timer struct {
	div  uint16 // 16-bit internal divider; DIV is the high byte
	tima byte
	tma  byte
	tac  byte

	pending  int // clocks until a pending reload happens
	reloaded int // clocks left in the M-cycle in which the reload happened

	irq *interrupt.Controller
}

func New(irq *interrupt.Controller) *Timer {
	return &Timer{irq: irq}
}

// Reset sets the divider to the given value and clears TIMA/TMA/TAC.
func (t *Timer) Reset(div uint16) {
	t.div = div
	t.tima, t.tma, t.tac = 0, 0, 0
	t.pending, t.reloaded = 0, 0
}

// Divider returns the internal 16-bit counter.
func (t *Timer) Divider() uint16 { return t.div }

func (t *Timer) input() bool {
	if t.tac&0x04 == 0 {
		return false
	}
	return t.div&(1<<rateBit[t.tac&0x03]) != 0
}

func (t *Timer) increment() {
	if t.pending > 0 {
		return
	}
	if t.tima == 0xFF {
		t.tima = 0
		t.pending = reloadDelay
		return
	}
	t.tima++
}

// Step advances the timer by the given number of clocks.
func (t *Timer) Step(cycles int) {
	for i := 0; i < cycles; i++ {
		t.tick()
	}
}

func (t *Timer) tick() {
	if t.reloaded > 0 {
		t.reloaded--
	}
	if t.pending > 0 {
		t.pending--
		if t.pending == 0 {
			t.tima = t.tma
			t.reloaded = reloadDelay
			if t.irq != nil {
				t.irq.Request(interrupt.Timer)
			}
		}
	}
	prev := t.input()
	t.div++
	if prev && !t.input() {
		t.increment()
	}
}

// Read returns the CPU view of a timer register.
func (t *Timer) Read(addr uint16) byte {
	switch addr {
	case DIV:
		return byte(t.div >> 8)
	case TIMA:
		return t.tima
	case TMA:
		return t.tma
	case TAC:
		return 0xF8 | t.tac
	}
	return 0xFF
}

// Write handles CPU writes, including the falling-edge side effects.
func (t *Timer) Write(addr uint16, v byte) {
	switch addr {
	case DIV:
		prev := t.input()
		t.div = 0
		if prev && !t.input() {
			t.increment()
		}
	case TIMA:
		// the reload cycle wins over a write in the same M-cycle
		if t.reloaded > 0 {
			return
		}
		t.tima = v
		t.pending = 0
	case TMA:
		t.tma = v
		if t.reloaded > 0 {
			t.tima = v
		}
	case TAC:
		prev := t.input()
		t.tac = v & 0x07
		if prev && !t.input() {
			t.increment()
		}
	}
}
