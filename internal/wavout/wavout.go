// Package wavout records emulated audio to a WAV file. Samples are buffered
// in memory and written when playback stops.
package wavout

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/apu"
)

const (
	bitDepth  = 16
	channels  = 2
	pcmFormat = 1
)

var ErrNotStarted = errors.New("wavout: recorder not started")

// Recorder implements apu.Playback. Next, when set, receives every call as
// well so recording can run alongside live output.
type Recorder struct {
	Next apu.Playback

	filename string
	rate     int

	mu      sync.Mutex
	data    []int
	started bool
}

func New(filename string) *Recorder {
	return &Recorder{filename: filename}
}

func (r *Recorder) Start(sampleRate int) error {
	r.mu.Lock()
	r.rate = sampleRate
	r.data = r.data[:0]
	r.started = true
	r.mu.Unlock()
	if r.Next != nil {
		return r.Next.Start(sampleRate)
	}
	return nil
}

func (r *Recorder) Output(left, right int16) {
	r.mu.Lock()
	if r.started {
		r.data = append(r.data, int(left), int(right))
	}
	r.mu.Unlock()
	if r.Next != nil {
		r.Next.Output(left, right)
	}
}

// Frames returns the number of stereo frames recorded so far.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data) / channels
}

// Stop writes the recording to the file given to New.
func (r *Recorder) Stop() error {
	var nextErr error
	if r.Next != nil {
		nextErr = r.Next.Stop()
	}
	f, err := os.Create(r.filename)
	if err != nil {
		return fmt.Errorf("wavout: %w", err)
	}
	if err := r.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("wavout: %w", err)
	}
	return nextErr
}

// WriteTo encodes everything recorded so far as 16-bit stereo PCM.
func (r *Recorder) WriteTo(w io.WriteSeeker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return ErrNotStarted
	}
	enc := wav.NewEncoder(w, r.rate, bitDepth, channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: r.rate},
		Data:           r.data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavout: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavout: %w", err)
	}
	return nil
}
