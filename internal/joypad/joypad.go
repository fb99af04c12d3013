package joypad

import "github.com/FabianRolfMatthiasNoll/gbcore/internal/interrupt"

// Button is one of the eight physical inputs.
type Button int

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

var buttonNames = [...]string{"Right", "Left", "Up", "Down", "A", "B", "Select", "Start"}

func (b Button) String() string {
	if b < Right || b > Start {
		return "Unknown"
	}
	return buttonNames[b]
}

// Buttons lists every button in mask order.
var Buttons = [...]Button{Right, Left, Up, Down, A, B, Select, Start}

// Controller is the host input device.
type Controller interface {
	IsPressed(b Button) bool
}

// PollInterval is the number of clocks between two Controller polls.
const PollInterval = 4096

// Joypad implements the P1/JOYP register at FF00.
// The pressed mask uses bits 0-3 for the d-pad and bits 4-7 for the buttons.
type Joypad struct {
	selectBits byte // bits 4-5 as written by the CPU
	pressed    byte
	acc        int

	ctrl Controller
	irq  *interrupt.Controller
}

func New(irq *interrupt.Controller) *Joypad {
	return &Joypad{irq: irq, selectBits: 0x30}
}

// SetController attaches the input device polled by Step.
func (j *Joypad) SetController(c Controller) { j.ctrl = c }

// Step polls the controller every PollInterval clocks.
func (j *Joypad) Step(cycles int) {
	if j.ctrl == nil {
		return
	}
	j.acc += cycles
	for j.acc >= PollInterval {
		j.acc -= PollInterval
		j.poll()
	}
}

func (j *Joypad) poll() {
	var mask byte
	for i, b := range Buttons {
		if j.ctrl.IsPressed(b) {
			mask |= 1 << uint(i)
		}
	}
	j.SetState(mask)
}

// SetState replaces the pressed mask; any newly pressed button requests the
// Joypad interrupt.
func (j *Joypad) SetState(mask byte) {
	if mask&^j.pressed != 0 && j.irq != nil {
		j.irq.Request(interrupt.Joypad)
	}
	j.pressed = mask
}

// State returns the current pressed mask.
func (j *Joypad) State() byte { return j.pressed }

// Read returns the FF00 value: lines are active low.
func (j *Joypad) Read() byte {
	lines := byte(0x0F)
	if j.selectBits&0x10 == 0 {
		lines &^= j.pressed & 0x0F
	}
	if j.selectBits&0x20 == 0 {
		lines &^= j.pressed >> 4
	}
	return 0xC0 | j.selectBits | lines
}

// Write stores the group select bits.
func (j *Joypad) Write(v byte) { j.selectBits = v & 0x30 }
