package wavout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

type counter struct{ started, frames, stopped int }

func (c *counter) Start(int) error {
	c.started++
	return nil
}

func (c *counter) Output(_, _ int16) { c.frames++ }

func (c *counter) Stop() error {
	c.stopped++
	return nil
}

func TestRecorderWritesStereoPCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	r := New(path)
	next := &counter{}
	r.Next = next
	if err := r.Start(22050); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 100; i++ {
		r.Output(int16(i), int16(-i))
	}
	if r.Frames() != 100 {
		t.Fatalf("Frames got %d want 100", r.Frames())
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if next.started != 1 || next.frames != 100 || next.stopped != 1 {
		t.Fatalf("Next saw %+v", *next)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatalf("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.SampleRate != 22050 || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Fatalf("format got %d Hz %d ch %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(buf.Data) != 200 {
		t.Fatalf("samples got %d want 200", len(buf.Data))
	}
	if buf.Data[2] != 1 || buf.Data[3] != -1 {
		t.Fatalf("frame 1 got %d,%d want 1,-1", buf.Data[2], buf.Data[3])
	}
}

func TestWriteBeforeStart(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "x.wav"))
	r.Output(1, 1) // dropped
	f, err := os.Create(filepath.Join(t.TempDir(), "y.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := r.WriteTo(f); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("WriteTo before Start got %v want ErrNotStarted", err)
	}
}
