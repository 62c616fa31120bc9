/*
   fp11pp - a standalone diagnostic driver for the FP11 coprocessor core.
   Loads an optional diagnostic config file (trace categories, accumulator
   presets, a memory image) and a raw memory image, then drops into an
   interactive console for single-stepping and inspecting state.

   Modeled on an emulator's main entry point: getopt flag parsing, the
   slog.Logger/Handler setup and SIGINT/SIGTERM handling, generalized
   from a full CPU+channel+telnet boot to a single FPP core with no
   host CPU driving it.
*/

package main

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/fp11pp/internal/bus"
	"github.com/rcornwell/fp11pp/internal/console"
	"github.com/rcornwell/fp11pp/internal/diagconfig"
	"github.com/rcornwell/fp11pp/internal/fpp"
	"github.com/rcornwell/fp11pp/internal/fpplog"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Diagnostic config file")
	optImage := getopt.StringLong("image", 'i', "", "Memory image to load")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optVerbose := getopt.BoolLong("verbose", 'v', "Echo log to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile io.Writer
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			slog.Error("creating log file", "error", err)
			os.Exit(1)
		}
		logFile = f
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	logger := slog.New(fpplog.New(logFile, &slog.HandlerOptions{Level: programLevel}, *optVerbose))
	slog.SetDefault(logger)

	b := bus.New()
	state := fpp.NewState(b)
	state.Trace = func(msg string) { logger.Debug(msg) }

	imagePath := *optImage
	if *optConfig != "" {
		cfg, err := diagconfig.Load(*optConfig)
		if err != nil {
			logger.Error("loading diagnostic config", "error", err)
			os.Exit(1)
		}
		for _, preset := range cfg.Accums {
			state.AC[preset.Index] = preset.Value
		}
		state.TraceMask = cfg.Traps
		if cfg.Image != "" && imagePath == "" {
			imagePath = cfg.Image
		}
	}

	var fetch func() (uint16, bool)
	if imagePath != "" {
		if err := loadImage(b, imagePath); err != nil {
			logger.Error("loading image", "error", err)
			os.Exit(1)
		}
		fetch = func() (uint16, bool) {
			pc := uint32(b.Reg(7))
			w, ok := b.ReadWord(pc)
			if !ok {
				return 0, false
			}
			b.SetReg(7, uint16(pc+2))
			return w, true
		}
	}

	con := &console.Console{Bus: b, State: state, Fetch: fetch}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("fp11pp shutting down")
		os.Exit(0)
	}()

	logger.Info("fp11pp started")
	con.Run()
}

// loadImage reads a raw big-endian word image into memory starting at
// address 0.
func loadImage(b *bus.Bus, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(data); i += 2 {
		word := uint16(data[i])<<8 | uint16(data[i+1])
		b.WriteWord(uint32(i), word)
	}
	return nil
}
