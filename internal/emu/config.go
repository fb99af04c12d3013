package emu

// Config contains settings that affect emulation behavior.
type Config struct {
	TraceDepth int     // instructions kept in the CPU trace ring; 0 disables tracing
	Speed      float64 // 1 = real time, 2 = double speed, 0 = unthrottled
	SampleRate int     // APU output rate in Hz
	VerifyBoot bool    // check CPU registers when a boot ROM unmaps itself
	Palette    string  // palette name, or "" / "auto" to pick from the cartridge title
	MaxFrames  int     // Run returns after this many frames; 0 runs until stopped
}

// Defaults fills zero fields with usable values.
func (c *Config) Defaults() {
	if c.Speed < 0 {
		c.Speed = 0
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 48000
	}
	if c.TraceDepth < 0 {
		c.TraceDepth = 0
	}
	if c.MaxFrames < 0 {
		c.MaxFrames = 0
	}
}
