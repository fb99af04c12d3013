package emu

import (
	"context"
	"time"
)

// frameDuration is the real-time length of one frame at Speed 1.
const frameDuration = time.Second * FrameCycles / ClockHz

// step runs one CPU step and advances the peripherals by the same number of
// clocks. Deferred CPU writes are committed at their offsets so peripherals
// see them in the machine cycle they happen in. With VerifyBoot set, the
// step that unmaps the boot overlay also checks the handed-over registers.
func (m *Machine) step() (int, error) {
	booting := m.bus.BootROMActive()
	cycles, err := m.cpu.Step()
	done := 0
	for _, w := range m.cpu.PendingWrites() {
		if w.Offset > done {
			m.bus.Tick(w.Offset - done)
			done = w.Offset
		}
		m.bus.Write(w.Addr, w.Value)
	}
	if cycles > done {
		m.bus.Tick(cycles - done)
	}
	if err == nil && booting && m.cfg.VerifyBoot && !m.bus.BootROMActive() {
		err = m.cpu.VerifyPostBoot()
	}
	return cycles, err
}

// StepFrame runs until a frame's worth of clocks has elapsed. Clocks past
// the boundary carry into the next frame. The first CPU error stops the
// frame and is returned as is.
func (m *Machine) StepFrame() error {
	if m.cpu == nil {
		return ErrNoCartridge
	}
	for m.carry < FrameCycles {
		n, err := m.step()
		m.carry += n
		if err != nil {
			return err
		}
	}
	m.carry -= FrameCycles
	m.frames++
	return nil
}

// Run steps frames until Stop is called, ctx is cancelled, Config.MaxFrames
// frames have run or the CPU faults. With speed > 0 each frame is paced to
// frameDuration/speed; speed 0 runs flat out. Stop and ctx are only checked
// between frames.
func (m *Machine) Run(ctx context.Context, speed float64) error {
	if m.cpu == nil {
		return ErrNoCartridge
	}
	if !m.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer func() {
		m.running.Store(false)
		m.stop.Store(false)
	}()

	var tick <-chan time.Time
	if speed > 0 {
		t := time.NewTicker(time.Duration(float64(frameDuration) / speed))
		defer t.Stop()
		tick = t.C
	}
	start := m.frames
	for {
		if m.stop.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.cfg.MaxFrames > 0 && m.frames-start >= uint64(m.cfg.MaxFrames) {
			return nil
		}
		if err := m.StepFrame(); err != nil {
			return err
		}
		if tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
			}
		}
	}
}

// Stop asks a running Run to return at the next frame boundary. It is safe
// to call from any goroutine and does nothing when Run is not active.
func (m *Machine) Stop() {
	if m.running.Load() {
		m.stop.Store(true)
	}
}

// Running reports whether Run is active.
func (m *Machine) Running() bool { return m.running.Load() }
