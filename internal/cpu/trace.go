package cpu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnmappedOpcode is wrapped by UnmappedOpcodeError.
	ErrUnmappedOpcode = errors.New("unmapped opcode")
	// ErrBootState is returned by VerifyPostBoot on a register mismatch.
	ErrBootState = errors.New("unexpected post-boot register state")
)

// UnmappedOpcodeError reports an opcode with no instruction together with
// the most recent trace entries (empty when tracing is off).
type UnmappedOpcodeError struct {
	Opcode byte
	PC     uint16
	Trace  []TraceEntry
}

func (e *UnmappedOpcodeError) Error() string {
	return fmt.Sprintf("%v 0x%02X at 0x%04X", ErrUnmappedOpcode, e.Opcode, e.PC)
}

func (e *UnmappedOpcodeError) Unwrap() error { return ErrUnmappedOpcode }

// MemWrite is one memory write performed by a traced step.
type MemWrite struct {
	Addr     uint16
	Old, New byte
}

// TraceEntry records one step: the instruction bytes and the register and
// memory deltas it produced.
type TraceEntry struct {
	PC       uint16
	Opcode   [3]byte
	Len      int
	Mnemonic string
	Cycles   int
	Before   Registers
	After    Registers
	Writes   []MemWrite
}

func (e TraceEntry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04X  ", e.PC)
	for i := 0; i < 3; i++ {
		if i < e.Len {
			fmt.Fprintf(&b, "%02X ", e.Opcode[i])
		} else {
			b.WriteString("   ")
		}
	}
	fmt.Fprintf(&b, " %-14s %3dc ", e.Mnemonic, e.Cycles)
	b.WriteString(regDelta(e.Before, e.After))
	for _, w := range e.Writes {
		fmt.Fprintf(&b, " [%04X]%02X->%02X", w.Addr, w.Old, w.New)
	}
	return b.String()
}

func regDelta(a, b Registers) string {
	var parts []string
	add := func(name string, x, y uint16) {
		if x != y {
			parts = append(parts, fmt.Sprintf("%s=%04X", name, y))
		}
	}
	add("AF", a.AF(), b.AF())
	add("BC", a.BC(), b.BC())
	add("DE", a.DE(), b.DE())
	add("HL", a.HL(), b.HL())
	add("SP", a.SP, b.SP)
	return strings.Join(parts, " ")
}

// Trace is a bounded ring of the most recent steps.
type Trace struct {
	buf  []TraceEntry
	next int
	full bool
}

// NewTrace returns a ring holding depth entries, or nil when depth <= 0.
func NewTrace(depth int) *Trace {
	if depth <= 0 {
		return nil
	}
	return &Trace{buf: make([]TraceEntry, depth)}
}

func (t *Trace) add(e TraceEntry) {
	t.buf[t.next] = e
	t.next++
	if t.next == len(t.buf) {
		t.next = 0
		t.full = true
	}
}

// Len returns the number of recorded entries.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	if t.full {
		return len(t.buf)
	}
	return t.next
}

// Entries returns a copy of the recorded steps, oldest first.
func (t *Trace) Entries() []TraceEntry {
	if t == nil {
		return nil
	}
	out := make([]TraceEntry, 0, t.Len())
	if t.full {
		out = append(out, t.buf[t.next:]...)
	}
	return append(out, t.buf[:t.next]...)
}

// Format renders entries one per line.
func Format(entries []TraceEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
