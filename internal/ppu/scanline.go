package ppu

// bgLine renders 160 BG color indices for line ly.
// mapBase is 0x9800 or 0x9C00; tileData8000 selects unsigned 0x8000 tile
// addressing over the signed 0x8800 mode.
func bgLine(mem VRAMReader, mapBase uint16, tileData8000 bool, scx, scy, ly byte) [160]byte {
	var out [160]byte

	bgY := uint16(ly) + uint16(scy)
	fineY := byte(bgY & 7)
	mapY := (bgY >> 3) & 31

	tileX := (uint16(scx) >> 3) & 31
	fineX := int(scx & 7)

	var q fifo
	f := newBGFetcher(mem, &q)
	f.Configure(mapBase, tileData8000, mapBase+mapY*32+tileX, fineY)
	f.Fetch()
	for i := 0; i < fineX; i++ {
		_, _ = q.Pop()
	}

	for x := 0; x < Width; x++ {
		if q.Len() == 0 {
			tileX = (tileX + 1) & 31
			f.Configure(mapBase, tileData8000, mapBase+mapY*32+tileX, fineY)
			f.Fetch()
		}
		out[x], _ = q.Pop()
	}
	return out
}

// windowLine renders the window row winLine starting
// at screen column winXStart (WX-7, may be negative). Columns left of the
// window are left at 0.
func windowLine(mem VRAMReader, mapBase uint16, tileData8000 bool, winXStart int, winLine byte) [160]byte {
	var out [160]byte
	if winXStart >= Width {
		return out
	}
	rowBase := mapBase + uint16(winLine>>3)*32
	fineY := winLine & 7

	var q fifo
	f := newBGFetcher(mem, &q)
	tileX := uint16(0)
	f.Configure(mapBase, tileData8000, rowBase, fineY)
	f.Fetch()
	x := winXStart
	for ; x < 0; x++ {
		if q.Len() == 0 {
			tileX++
			f.Configure(mapBase, tileData8000, rowBase+tileX&31, fineY)
			f.Fetch()
		}
		_, _ = q.Pop()
	}
	for ; x < Width; x++ {
		if q.Len() == 0 {
			tileX++
			f.Configure(mapBase, tileData8000, rowBase+tileX&31, fineY)
			f.Fetch()
		}
		out[x], _ = q.Pop()
	}
	return out
}
