package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"golang.org/x/sync/errgroup"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/palette"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/ui"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/wavout"
)

const statsAddr = "localhost:18066"

type CLIFlags struct {
	ROMPath string
	BootROM string
	Scale   int
	Title   string
	Trace   int
	SaveRAM bool // persist battery RAM next to ROM (.sav)
	Palette string
	Speed   float64
	WAVOut  string
	Stats   bool

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer CRC32 hex (e.g., "1a2b3c4d")
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb)")
	flag.StringVar(&f.BootROM, "bootrom", "", "optional DMG boot ROM")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "gbemu", "window title")
	flag.IntVar(&f.Trace, "trace", 64, "instructions kept in the CPU trace (0 disables)")
	flag.BoolVar(&f.SaveRAM, "save", true, "persist battery RAM to ROM.sav on exit and load on start")
	flag.StringVar(&f.Palette, "palette", "auto", "palette: auto, "+strings.Join(palette.Names(), ", "))
	flag.Float64Var(&f.Speed, "speed", 0, "headless speed factor (1 = real time, 0 = unthrottled)")
	flag.StringVar(&f.WAVOut, "wav", "", "record audio to a WAV file")
	flag.BoolVar(&f.Stats, "statsview", false, "serve runtime statistics on "+statsAddr)

	// headless options
	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer CRC32 (hex)")
	flag.Parse()
	return f
}

// frameCapture is the headless screen: it keeps the last finished frame.
type frameCapture struct {
	cur, last *image.RGBA
}

func newFrameCapture() *frameCapture {
	return &frameCapture{
		cur:  image.NewRGBA(image.Rect(0, 0, ppu.Width, ppu.Height)),
		last: image.NewRGBA(image.Rect(0, 0, ppu.Width, ppu.Height)),
	}
}

func (c *frameCapture) TurnOn()                         {}
func (c *frameCapture) TurnOff()                        {}
func (c *frameCapture) SetPixel(x, y int, v color.RGBA) { c.cur.SetRGBA(x, y, v) }
func (c *frameCapture) Draw()                           { copy(c.last.Pix, c.cur.Pix) }

func runHeadless(m *emu.Machine, f CLIFlags) error {
	fc := newFrameCapture()
	m.SetScreen(fc)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	start := time.Now()
	g.Go(func() error {
		defer cancel()
		return m.Run(ctx, f.Speed)
	})
	g.Go(func() error {
		select {
		case <-sigs:
			log.Printf("interrupted, stopping")
			m.Stop()
		case <-ctx.Done():
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	dur := time.Since(start)

	frames := m.Frames()
	crc := crc32.ChecksumIEEE(fc.last.Pix)
	fps := float64(frames) / dur.Seconds()
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if f.PNGOut != "" {
		if err := savePNG(fc.last, f.PNGOut); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", f.PNGOut)
	}

	if f.Expect != "" {
		// normalize expected hex (allow with/without 0x, upper/lowercase)
		want := strings.TrimPrefix(strings.ToLower(f.Expect), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func mustRead(path string) []byte {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return b
}

func logHeader(h *cart.Header, rom []byte) {
	log.Printf("ROM: %q type=%s banks=%d ram=%dB", h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes)
	if !cart.HeaderChecksumOK(rom) {
		log.Printf("warning: header checksum mismatch (%02x)", h.HeaderChecksum)
	}
}

func launchStats() {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(statsAddr))
		statsview.New().Start()
	}()
	log.Printf("stats server available at http://%s/debug/statsview", statsAddr)
}

func main() {
	f := parseFlags()
	if f.Headless && f.ROMPath == "" {
		log.Fatal("headless mode needs -rom")
	}
	if f.Stats {
		launchStats()
	}

	m := emu.New(emu.Config{
		TraceDepth: f.Trace,
		Speed:      f.Speed,
		Palette:    f.Palette,
		MaxFrames:  f.Frames,
	})
	if boot := mustRead(f.BootROM); boot != nil {
		if err := m.SetBootROM(boot); err != nil {
			log.Fatalf("boot ROM: %v", err)
		}
	}

	var savPath string
	if f.ROMPath != "" {
		path := f.ROMPath
		// prefer absolute path for save placement consistency
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		rom := mustRead(path)
		if h, err := cart.ParseHeader(rom); err == nil {
			logHeader(h, rom)
		}
		if err := m.LoadROMFromFile(path); err != nil {
			log.Fatalf("load cart: %v", err)
		}
		if f.SaveRAM {
			savPath = emu.BatteryPath(path)
			if ok, err := m.LoadBatteryFile(savPath); err != nil {
				log.Printf("battery: %v", err)
			} else if ok {
				log.Printf("loaded save RAM: %s", savPath)
			}
		}
	}

	if f.Headless {
		if f.WAVOut != "" {
			if err := m.SetPlayback(wavout.New(f.WAVOut)); err != nil {
				log.Fatalf("wav: %v", err)
			}
		}
		err := runHeadless(m, f)
		if cerr := m.Close(); cerr != nil {
			log.Printf("close: %v", cerr)
		}
		if savPath != "" {
			if ok, serr := m.SaveBatteryFile(savPath); serr != nil {
				log.Printf("battery: %v", serr)
			} else if ok {
				log.Printf("wrote %s", savPath)
			}
		}
		if err != nil {
			var uo *cpu.UnmappedOpcodeError
			if errors.As(err, &uo) {
				log.Printf("last instructions:\n%s", cpu.Format(m.Trace()))
			}
			log.Fatal(err)
		}
		return
	}

	app, err := ui.NewApp(ui.Config{Title: f.Title, Scale: f.Scale, WAVPath: f.WAVOut}, m)
	if err != nil {
		log.Fatal(err)
	}
	runErr := app.Run()
	if f.SaveRAM {
		if err := app.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	} else if err := m.Close(); err != nil {
		log.Printf("close: %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
