// main.go - command-line host for the modular synthesis engine

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147mmodularcore\033[0m")
	fmt.Println("A realtime modular synthesis engine with a cycle-based pattern runtime.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/modularcore")
	fmt.Println("License: GPLv3 or later")
}

func main() {
	patchPath := flag.String("patch", "", "path to a patch-document JSON file to load at startup")
	recordPath := flag.String("record", "", "if set, start recording to this WAV path immediately")
	channels := flag.Int("channels", 2, "device output channels (the mono engine output is broadcast across all of them)")
	quiet := flag.Bool("quiet", false, "suppress the startup banner")
	flag.Parse()

	if !*quiet {
		boilerPlate()
	}

	patch := NewPatch()
	engine := NewEngine(patch)

	if *patchPath != "" {
		data, err := os.ReadFile(*patchPath)
		if err != nil {
			fmt.Printf("reading patch file: %v\n", err)
			os.Exit(1)
		}
		doc, err := ParsePatchDocument(data)
		if err != nil {
			fmt.Printf("parsing patch file: %v\n", err)
			os.Exit(1)
		}
		if err := engine.Apply(doc); err != nil {
			fmt.Printf("applying patch: %v\n", err)
			os.Exit(1)
		}
	}

	if *recordPath != "" {
		if _, err := engine.StartRecording(*recordPath); err != nil {
			fmt.Printf("starting recording: %v\n", err)
			os.Exit(1)
		}
	}

	out, err := newAudioOutput(engine, int(SampleRate), *channels)
	if err != nil {
		fmt.Printf("failed to initialize audio output: %v\n", err)
		os.Exit(1)
	}
	out.Start()
	defer out.Close()

	engine.SetStopped(false)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	engine.SetStopped(true)
	time.Sleep(50 * time.Millisecond) // let the fade-down ramp finish audibly
	if path, ok := engine.StopRecording(); ok {
		fmt.Printf("recording saved to %s\n", path)
	}
}
