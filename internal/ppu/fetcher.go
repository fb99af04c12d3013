package ppu

// VRAMReader provides read-only access for the fetcher or scanline helpers.
// It abstracts how VRAM bytes are fetched (tests vs. live PPU).
type VRAMReader interface {
	Read(addr uint16) byte
}

// vram is the 8 KiB video RAM at 0x8000–0x9FFF.
type vram [0x2000]byte

func (v *vram) Read(addr uint16) byte { return v[addr&0x1FFF] }

// fifo is a ring buffer of 2-bit color indices.
type fifo struct {
	buf  [32]byte
	head int
	tail int
	size int
}

func (q *fifo) Clear()   { q.head, q.tail, q.size = 0, 0, 0 }
func (q *fifo) Len() int { return q.size }
func (q *fifo) Push(ci byte) bool {
	if q.size == len(q.buf) {
		return false
	}
	q.buf[q.tail] = ci & 0x03
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
	return true
}
func (q *fifo) Pop() (byte, bool) {
	if q.size == 0 {
		return 0, false
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

// bgFetcher pulls one tile row (8 pixels) of the background or window map into the FIFO.
type bgFetcher struct {
	mem           VRAMReader
	fifo          *fifo
	mapBase       uint16 // 0x9800 or 0x9C00
	tileData8000  bool   // true: 0x8000 addressing; false: 0x8800 signed
	tileIndexAddr uint16
	fineY         byte
}

func newBGFetcher(mem VRAMReader, f *fifo) *bgFetcher { return &bgFetcher{mem: mem, fifo: f} }

// Configure sets tilemap and addressing mode for the next fetch.
func (fch *bgFetcher) Configure(mapBase uint16, tileData8000 bool, tileIndexAddr uint16, fineY byte) {
	fch.mapBase = mapBase
	fch.tileData8000 = tileData8000
	fch.tileIndexAddr = tileIndexAddr
	fch.fineY = fineY & 7
}

// Fetch pushes 8 pixels (color indices) for the current tile row to the FIFO.
func (fch *bgFetcher) Fetch() {
	lo, hi := tileRow(fch.mem, fch.mem.Read(fch.tileIndexAddr), fch.tileData8000, fch.fineY)
	for px := 0; px < 8; px++ {
		_ = fch.fifo.Push(pixelAt(lo, hi, 7-byte(px)))
	}
}

func tileRow(mem VRAMReader, tileNum byte, tileData8000 bool, fineY byte) (lo, hi byte) {
	var base uint16
	if tileData8000 {
		base = 0x8000 + uint16(tileNum)*16 + uint16(fineY)*2
	} else {
		base = uint16(0x9000 + int(int8(tileNum))*16 + int(fineY)*2)
	}
	return mem.Read(base), mem.Read(base + 1)
}

func pixelAt(lo, hi, bit byte) byte {
	return (hi>>bit)&1<<1 | (lo>>bit)&1
}
