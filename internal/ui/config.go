package ui

// Config contains window/input/audio related settings.
type Config struct {
	Title         string // window title
	Scale         int    // integer upscaling factor
	AudioBufferMs int    // audio queued ahead of the player, in ms
	ROMsDir       string // directory to browse for ROMs
	WAVPath       string // also record audio to this WAV file
	// Per-ROM preferences
	PerROMPalette map[string]int // map of ROM path -> palette ID
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbemu"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.AudioBufferMs <= 0 {
		c.AudioBufferMs = 60
	}
	if c.ROMsDir == "" {
		c.ROMsDir = "roms"
	}
	if c.PerROMPalette == nil {
		c.PerROMPalette = make(map[string]int)
	}
}
