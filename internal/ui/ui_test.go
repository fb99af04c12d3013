package ui

import (
	"image/color"
	"testing"
)

func TestLCDPublishesOnDraw(t *testing.T) {
	l := newLCD()
	l.SetPixel(3, 2, color.RGBA{R: 10, G: 20, B: 30, A: 0xFF})
	if got := l.Frame().RGBAAt(3, 2); got.R != 0xFF {
		t.Fatalf("pixel visible before Draw: %v", got)
	}
	l.Draw()
	if got := l.Frame().RGBAAt(3, 2); got != (color.RGBA{10, 20, 30, 0xFF}) {
		t.Fatalf("pixel after Draw got %v", got)
	}
	l.TurnOff()
	if got := l.Frame().RGBAAt(3, 2); got != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Fatalf("pixel after TurnOff got %v", got)
	}
}

func TestStreamQueueOrderAndSilence(t *testing.T) {
	s := newStream(10)
	s.limit = 1 << 16
	s.Output(0x0102, -2)
	s.Output(3, 4)

	p := make([]byte, 16)
	n, err := s.Read(p)
	if err != nil || n != 8 {
		t.Fatalf("Read got n=%d err=%v want 8", n, err)
	}
	want := []byte{0x02, 0x01, 0xFE, 0xFF, 0x03, 0x00, 0x04, 0x00}
	for i, b := range want {
		if p[i] != b {
			t.Fatalf("byte %d got %02x want %02x", i, p[i], b)
		}
	}

	n, _ = s.Read(p)
	if n != 16 || s.underruns != 1 {
		t.Fatalf("empty Read got n=%d underruns=%d", n, s.underruns)
	}
	for i := 0; i < n; i++ {
		if p[i] != 0 {
			t.Fatalf("silence byte %d got %02x", i, p[i])
		}
	}
}

func TestStreamDropsOldestPastLimit(t *testing.T) {
	s := newStream(10)
	s.limit = 8
	s.Output(1, 1)
	s.Output(2, 2)
	s.Output(3, 3)
	p := make([]byte, 16)
	n, _ := s.Read(p)
	if n != 8 || p[0] != 2 || p[4] != 3 {
		t.Fatalf("Read got n=%d first=%d second=%d want 8,2,3", n, p[0], p[4])
	}
}

func TestStreamMuted(t *testing.T) {
	s := newStream(10)
	s.limit = 64
	s.Output(5, 5)
	s.SetMuted(true)
	p := make([]byte, 8)
	if n, _ := s.Read(p); n != 8 || p[0] != 0 {
		t.Fatalf("muted Read got n=%d first=%d", n, p[0])
	}
}

func TestWrapAndTruncate(t *testing.T) {
	a := &App{}
	lines := a.wrapText("one two three four", 9)
	if len(lines) != 3 || lines[0] != "one two" || lines[1] != "three" || lines[2] != "four" {
		t.Fatalf("wrapText got %q", lines)
	}
	if got := a.truncateText("abcdefgh", 6); got != "abc..." {
		t.Fatalf("truncateText got %q", got)
	}
	if got := a.truncateText("abc", 6); got != "abc" {
		t.Fatalf("truncateText short got %q", got)
	}
}
