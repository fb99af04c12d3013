package ui

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// stream is the APU playback backend. Output appends 16-bit little-endian
// stereo frames to a bounded queue; the ebiten audio player drains it through
// Read on its own goroutine.
type stream struct {
	bufferMs int

	mu     sync.Mutex
	queue  []byte
	limit  int // bytes kept before the oldest frames are dropped
	muted  bool
	player *audio.Player

	underruns int
}

func newStream(bufferMs int) *stream {
	return &stream{bufferMs: bufferMs}
}

// Start opens the player at the given sample rate. The ebiten audio context
// can only be created once per process, so a later Start reuses it.
func (s *stream) Start(sampleRate int) error {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	}
	s.mu.Lock()
	s.queue = s.queue[:0]
	s.limit = sampleRate * 4 * s.bufferMs / 1000 * 2
	s.mu.Unlock()

	p, err := ctx.NewPlayer(s)
	if err != nil {
		return err
	}
	p.SetBufferSize(time.Duration(s.bufferMs) * time.Millisecond)
	p.Play()
	s.player = p
	return nil
}

func (s *stream) Output(l, r int16) {
	s.mu.Lock()
	if len(s.queue)+4 > s.limit && len(s.queue) >= 4 {
		// drop the oldest frame to bound latency
		s.queue = s.queue[4:]
	}
	s.queue = append(s.queue, byte(l), byte(uint16(l)>>8), byte(r), byte(uint16(r)>>8))
	s.mu.Unlock()
}

func (s *stream) Stop() error {
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}

// SetMuted discards queued audio and plays silence while muted.
func (s *stream) SetMuted(m bool) {
	s.mu.Lock()
	s.muted = m
	if m {
		s.queue = s.queue[:0]
	}
	s.mu.Unlock()
}

func (s *stream) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Read implements io.Reader for the audio player. When the queue is empty it
// returns a short run of silence so the player never stalls.
func (s *stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(p) &^ 3
	if n == 0 {
		clear(p)
		return len(p), nil
	}
	if s.muted || len(s.queue) == 0 {
		if !s.muted {
			s.underruns++
		}
		silence := 256 * 4
		if silence > n {
			silence = n
		}
		clear(p[:silence])
		return silence, nil
	}
	if n > len(s.queue) {
		n = len(s.queue)
	}
	copy(p, s.queue[:n])
	s.queue = s.queue[:copy(s.queue, s.queue[n:])]
	return n, nil
}
