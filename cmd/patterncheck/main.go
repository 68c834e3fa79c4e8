// patterncheck - parses a mini-notation string from argv and prints the
// haps it produces over one or more cycles (-cycles, default 1), for
// sanity-checking a pattern string
// by eye without starting the audio engine.

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

	"github.com/intuitionamiga/modularcore/pattern"
	"github.com/intuitionamiga/modularcore/pattern/mini"
)

func main() {
	cycles := flag.Int("cycles", 1, "number of cycles to print")
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: patterncheck [-cycles N] '<mini-notation pattern>'")
		os.Exit(2)
	}

	p, err := mini.ParseFloat64(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	for c := 0; c < *cycles; c++ {
		haps := p.Query(pattern.State{Span: pattern.Span(pattern.RInt(int64(c)), pattern.RInt(int64(c+1)))})
		fmt.Printf("cycle %d:\n", c)
		for _, h := range haps {
			onset := ""
			if h.HasOnset() {
				onset = " (onset)"
			}
			fmt.Printf("  part=[%v,%v) value=%v%s\n", h.Part.Begin, h.Part.End, h.Value, onset)
		}
	}
}
