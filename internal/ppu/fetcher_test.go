package ppu

import "testing"

type mockVRAM map[uint16]byte

func (m mockVRAM) Read(addr uint16) byte { return m[addr] }

// rowPixels decodes a tile row the way the hardware does: bit 7 is the
// leftmost pixel, the high byte supplies bit 1 of the color index.
func rowPixels(lo, hi byte) [8]byte {
	var px [8]byte
	for i := range px {
		b := 7 - uint(i)
		px[i] = (hi>>b&1)<<1 | lo>>b&1
	}
	return px
}

func TestFIFOWrapsAndMasks(t *testing.T) {
	var q fifo
	if _, ok := q.Pop(); ok {
		t.Fatalf("Pop on empty fifo succeeded")
	}
	// fill twice to exercise head/tail wrap-around
	for round := 0; round < 2; round++ {
		for i := 0; i < len(q.buf); i++ {
			if !q.Push(byte(i)) {
				t.Fatalf("round %d: Push %d reported full", round, i)
			}
		}
		if q.Push(0) {
			t.Fatalf("round %d: Push past capacity succeeded", round)
		}
		for i := 0; i < len(q.buf); i++ {
			v, ok := q.Pop()
			if !ok || v != byte(i)&3 {
				t.Fatalf("round %d: Pop %d got %d,%v want %d", round, i, v, ok, byte(i)&3)
			}
		}
	}
	q.Push(1)
	q.Clear()
	if q.Len() != 0 {
		t.Fatalf("Len after Clear got %d", q.Len())
	}
}

func TestFetcherTileAddressing(t *testing.T) {
	cases := []struct {
		name     string
		tile     byte
		unsigned bool
		fineY    byte
		rowAddr  uint16
	}{
		{"8000 tile 0", 0x00, true, 0, 0x8000},
		{"8000 tile 0x80", 0x80, true, 3, 0x8806},
		{"8800 tile 0", 0x00, false, 0, 0x9000},
		{"8800 tile -1", 0xFF, false, 5, 0x8FFA},
		{"8800 tile 0x80", 0x80, false, 7, 0x880E},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mem := mockVRAM{0x9C00: tc.tile, tc.rowAddr: 0xA5, tc.rowAddr + 1: 0x3C}
			var q fifo
			f := newBGFetcher(mem, &q)
			f.Configure(0x9C00, tc.unsigned, 0x9C00, tc.fineY)
			f.Fetch()
			if q.Len() != 8 {
				t.Fatalf("fifo holds %d pixels want 8", q.Len())
			}
			for i, want := range rowPixels(0xA5, 0x3C) {
				if got, _ := q.Pop(); got != want {
					t.Fatalf("px %d got %d want %d", i, got, want)
				}
			}
		})
	}
}
