package ppu

import "testing"

func advanceLines(p *PPU, n int) { p.Step(456 * n) }

func TestWindowActivationAndCounter(t *testing.T) {
	p, _ := newPPU()
	p.CPUWrite(0xFF4A, 10) // WY
	p.CPUWrite(0xFF4B, 7)  // WX=7 -> column 0
	p.CPUWrite(0xFF40, 0x80|0x01|0x20)

	advanceLines(p, 10)
	if ly := p.CPURead(0xFF44); ly != 10 {
		t.Fatalf("expected LY=10, got %d", ly)
	}
	if p.winLine != 0 || !p.winTriggered {
		t.Fatalf("at WY: winLine=%d triggered=%v", p.winLine, p.winTriggered)
	}
	advanceLines(p, 1)
	if p.winLine != 1 {
		t.Fatalf("expected window line 1 at WY+1, got %d", p.winLine)
	}
	advanceLines(p, 5)
	if p.winLine != 6 {
		t.Fatalf("expected window line 6 at WY+6, got %d", p.winLine)
	}
}

func TestWindowCounterPausesWhileDisabled(t *testing.T) {
	p, _ := newPPU()
	p.CPUWrite(0xFF4A, 0)
	p.CPUWrite(0xFF4B, 7)
	p.CPUWrite(0xFF40, 0x80|0x01|0x20)
	advanceLines(p, 3)
	p.CPUWrite(0xFF40, 0x80|0x01)
	advanceLines(p, 4)
	p.CPUWrite(0xFF40, 0x80|0x01|0x20)
	advanceLines(p, 1)
	if p.winLine != 4 {
		t.Fatalf("window line got %d want 4", p.winLine)
	}
}

func TestWindowNotVisibleWhenWXTooLarge(t *testing.T) {
	p, _ := newPPU()
	p.CPUWrite(0xFF4A, 5)
	p.CPUWrite(0xFF4B, 200)
	p.CPUWrite(0xFF40, 0x80|0x01|0x20)
	advanceLines(p, 12)
	if p.winLine != 0 {
		t.Fatalf("expected window line 0 when WX>166, got %d", p.winLine)
	}
}

func TestWindowCounterResetsEachFrame(t *testing.T) {
	p, _ := newPPU()
	p.CPUWrite(0xFF4A, 0)
	p.CPUWrite(0xFF4B, 7)
	p.CPUWrite(0xFF40, 0x80|0x01|0x20)
	p.Step(DotsPerFrame)
	if p.winLine != 0 {
		t.Fatalf("window line after frame got %d want 0", p.winLine)
	}
}
