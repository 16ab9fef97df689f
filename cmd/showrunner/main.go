// Package main is the entry point for the showrunner lighting controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/generalelectrix/showrunner/internal/clocks"
	"github.com/generalelectrix/showrunner/internal/config"
	"github.com/generalelectrix/showrunner/internal/control"
	"github.com/generalelectrix/showrunner/internal/fixture"
	_ "github.com/generalelectrix/showrunner/internal/fixture/profile"
	"github.com/generalelectrix/showrunner/internal/midi"
	"github.com/generalelectrix/showrunner/internal/osc"
	"github.com/generalelectrix/showrunner/internal/services/dmx"
	"github.com/generalelectrix/showrunner/internal/services/monitor"
	"github.com/generalelectrix/showrunner/internal/services/network"
	"github.com/generalelectrix/showrunner/internal/services/wled"
	"github.com/generalelectrix/showrunner/internal/show"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	checkOnly := flag.Bool("check", false, "validate the patch file and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <patch.yaml>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	patchPath := flag.Arg(0)

	cfg := config.Load()

	if *checkOnly {
		patch, err := loadPatch(patchPath)
		if err != nil {
			log.Fatalf("Patch validation failed: %v", err)
		}
		log.Printf("Patch OK: %d groups across %d universes", len(patch.Groups()), patch.UniverseCount())
		return
	}

	printBanner(cfg, patchPath)

	// Control transports
	listener, err := osc.ListenUDP(cfg.OSCPort)
	if err != nil {
		log.Fatalf("Failed to open OSC listener: %v", err)
	}
	defer listener.Close()

	sender, err := osc.NewSender()
	if err != nil {
		log.Fatalf("Failed to open OSC sender: %v", err)
	}
	go sender.Run()
	defer sender.Close()

	var midiManager *midi.Manager
	if cfg.MidiEnabled {
		midiManager = midi.NewManager()
		defer midiManager.Close()
	}

	controller := control.NewController(sender, midiManager)

	// WLED workers report request outcomes onto the control queue. The
	// sink must be in place before patching spawns any clients.
	wled.SetSink(controller)
	wled.SetDefaults(wled.Config{
		Timeout:           cfg.WledTimeout,
		RequestsPerSecond: cfg.WledRateLimit,
	})

	patch, err := loadPatch(patchPath)
	if err != nil {
		log.Fatalf("Failed to load patch %s: %v", patchPath, err)
	}
	log.Printf("Patched %d groups across %d universes", len(patch.Groups()), patch.UniverseCount())

	if midiManager != nil {
		if err := midiManager.Open(midi.LaunchControlXL{}, controller); err != nil {
			log.Printf("Warning: MIDI device unavailable: %v", err)
		}
	}

	// Clocks, optionally fed by a remote service
	var remoteSlot *clocks.RemoteSlot
	var remoteSub *clocks.Subscriber
	if cfg.RemoteClockURL != "" {
		remoteSlot = &clocks.RemoteSlot{}
		remoteSub = clocks.NewSubscriber(cfg.RemoteClockURL, remoteSlot)
		go remoteSub.Run()
		defer remoteSub.Close()
	}
	bank := clocks.NewBank(remoteSlot)

	// Output ports
	var ports []dmx.Port
	if cfg.ArtNetEnabled {
		broadcast := cfg.ArtNetBroadcast
		if broadcast == "auto" {
			broadcast = network.AutoBroadcast()
			log.Printf("Auto-selected Art-Net broadcast address %s", broadcast)
		}
		artnetPort, err := dmx.NewArtNetPort(dmx.ArtNetConfig{
			BroadcastAddr: broadcast,
			Port:          cfg.ArtNetPort,
		})
		if err != nil {
			log.Fatalf("Failed to open Art-Net port: %v", err)
		}
		defer func() { _ = artnetPort.Close() }()
		ports = append(ports, artnetPort)
	} else {
		log.Println("Art-Net disabled, running offline")
		ports = append(ports, dmx.OfflinePort{})
	}

	// Monitor surface
	var publisher show.Publisher
	if cfg.MonitorEnabled {
		mon := monitor.New(monitor.Config{
			Port:       cfg.MonitorPort,
			CORSOrigin: cfg.CORSOrigin,
		})
		mon.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mon.Shutdown(ctx); err != nil {
				log.Printf("Monitor shutdown error: %v", err)
			}
		}()
		ports = append(ports, mon)
		publisher = mon
	}

	sh := show.New(patch, bank, controller, ports, publisher, func() ([]fixture.GroupConfig, error) {
		return fixture.LoadPatchFile(patchPath)
	})

	go listener.Serve(controller)

	// A signal closes the control queue; the show loop drains and exits.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Printf("Received %s, shutting down...", sig)
		controller.Close()
	}()

	if err := sh.Run(); err != nil {
		log.Printf("Show loop stopped: %v", err)
	}
	log.Println("Show stopped")
}

func loadPatch(path string) (*fixture.Patch, error) {
	cfgs, err := fixture.LoadPatchFile(path)
	if err != nil {
		return nil, err
	}
	return fixture.PatchAll(cfgs)
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config, patchPath string) {
	fmt.Println("============================================")
	fmt.Println("  Showrunner")
	fmt.Printf("  Version: %s\n", Version)
	fmt.Printf("  Build:   %s\n", BuildTime)
	fmt.Printf("  Commit:  %s\n", GitCommit)
	fmt.Println("============================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Patch:       %s\n", patchPath)
	fmt.Printf("  OSC port:    %d\n", cfg.OSCPort)
	fmt.Printf("  Art-Net:     %v\n", cfg.ArtNetEnabled)
	fmt.Printf("  Monitor:     %v\n", cfg.MonitorEnabled)
	fmt.Println("============================================")
}
