// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/soundgraph/mixengine"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: mixdemo <input.{wav|mp3|ogg}>")
		os.Exit(1)
	}
	inPath := os.Args[1]

	sys, err := mixengine.New(mixengine.Config{SampleRate: 44100, Period: 1024})
	if err != nil {
		panic(err)
	}
	defer sys.Close()

	src, err := sys.LoadAudio(inPath, "track", false)
	if err != nil {
		panic(err)
	}

	group := sys.CreateGroup("lead")
	sys.AddToGroup(group, src)

	bus := sys.CreateBus("main")
	sys.AddToBus(bus, group)
	sys.AddBus(bus)

	aux := sys.CreateBus("reverb-return")
	mixengine.AddEffect(aux, sys.CreateReverb("room"))
	sys.AddAuxBus("reverb-return", aux)
	sys.AddSend(bus, "reverb-return", 0.25)

	sys.SetLimiter(true, 0.98)

	if err := sys.Start(); err != nil {
		panic(err)
	}

	type player interface {
		Play(fadeInSeconds float64)
	}
	src.(player).Play(0.2)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(5 * time.Second)

	for {
		select {
		case <-ticker.C:
			m := sys.GetMetrics()
			fmt.Printf("peak=%.3f/%.3f rms=%.3f/%.3f clips=%d underruns=%d cpu=%.1f%%\n",
				m.Peak[0], m.Peak[1], m.RMS[0], m.RMS[1], m.ClipCount, m.UnderrunCount, m.CPUPercent)
		case <-deadline:
			if err := sys.Stop(); err != nil {
				panic(err)
			}
			return
		}
	}
}
