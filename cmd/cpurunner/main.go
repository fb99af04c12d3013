package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/emu"
)

// serialTail keeps the last n bytes written to it.
type serialTail struct {
	buf []byte
	n   int
}

func (t *serialTail) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.n {
		t.buf = t.buf[len(t.buf)-t.n:]
	}
	return len(p), nil
}

var (
	// failure summary: "Failed <n> tests"
	failRe = regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)
	// test markers like "11:01"
	stageRe = regexp.MustCompile(`\b(\d{2}:\d{2})\b`)
)

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	bootPath := flag.String("bootrom", "", "optional DMG boot ROM to run from 0x0000 until FF50 disables it")
	frames := flag.Int("frames", 3600, "max frames to run")
	until := flag.String("until", "Passed", "stop when serial output contains this substring (case-insensitive); empty to disable")
	auto := flag.Bool("auto", false, "auto-detect 'Passed' or 'Failed N tests' in serial output and exit with code 0/1")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	traceWindow := flag.Int("traceWindow", 200, "number of recent instructions to dump on failure")
	serialWindow := flag.Int("serialWindow", 8192, "number of recent serial bytes to retain for diagnostics on fail")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	m := emu.New(emu.Config{TraceDepth: *traceWindow})
	if *bootPath != "" {
		boot, err := os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("read bootrom: %v", err)
		}
		if err := m.SetBootROM(boot); err != nil {
			log.Fatalf("bootrom: %v", err)
		}
	}
	if err := m.LoadROMFromFile(*romPath); err != nil {
		log.Fatalf("load rom: %v", err)
	}

	// Stream serial to stdout and capture in-memory for pattern detection
	var ser bytes.Buffer
	tail := &serialTail{n: max(*serialWindow, 256)}
	m.SetSerialWriter(io.MultiWriter(os.Stdout, &ser, tail))

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}
	done := func(frame int) {
		fmt.Printf("\nDone: frames=%d cycles~=%d elapsed=%s\n", frame, uint64(frame)*emu.FrameCycles, time.Since(start).Truncate(time.Millisecond))
	}
	dumpTrace := func() {
		entries := m.Trace()
		if len(entries) == 0 {
			return
		}
		fmt.Printf("\n--- recent trace (last %d instructions) ---\n", len(entries))
		fmt.Print(cpu.Format(entries))
		fmt.Printf("--- end trace ---\n")
	}

	lastStage := ""
	for i := 1; i <= *frames; i++ {
		if err := m.StepFrame(); err != nil {
			fmt.Printf("\nEmulation error: %v\n", err)
			dumpTrace()
			done(i)
			os.Exit(1)
		}
		s := ser.String()
		switch {
		case *auto:
			if mm := stageRe.FindAllString(s, -1); len(mm) > 0 {
				lastStage = mm[len(mm)-1]
			}
			if strings.Contains(strings.ToLower(s), "passed") {
				fmt.Printf("\nDetected PASS in serial output.\n")
				if lastStage != "" {
					fmt.Printf("Last stage seen: %s\n", lastStage)
				}
				done(i)
				os.Exit(0)
			}
			if mm := failRe.FindStringSubmatch(s); mm != nil {
				fmt.Printf("\nDetected %s in serial output.\n", mm[0])
				if lastStage != "" {
					fmt.Printf("Last stage seen: %s\n", lastStage)
				}
				dumpTrace()
				fmt.Printf("\n--- recent serial (last %d bytes) ---\n%s\n--- end serial ---\n", len(tail.buf), tail.buf)
				done(i)
				os.Exit(1)
			}
		case *until != "":
			if strings.Contains(strings.ToLower(s), strings.ToLower(*until)) {
				fmt.Printf("\nDetected '%s' in serial output.\n", *until)
				done(i)
				return
			}
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
			done(i)
			os.Exit(2)
		}
	}
	done(*frames)
}
