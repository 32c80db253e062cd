package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-aurora/internal/app"
	"github.com/coreman2200/funtimes-aurora/internal/driver/fake"
	"github.com/coreman2200/funtimes-aurora/internal/led"
	"github.com/coreman2200/funtimes-aurora/internal/render"
	"github.com/coreman2200/funtimes-aurora/internal/render/scenes/custom"
)

// patternsim renders a drawer headlessly and prints a summary line per frame.
func main() {
	var (
		drawer    = flag.String("drawer", "AlienBlob", "drawer to run")
		frames    = flag.Int("frames", 200, "frames to render")
		fps       = flag.Int("fps", 40, "simulated frames per second")
		width     = flag.Int("width", 32, "matrix width")
		height    = flag.Int("height", 18, "matrix height")
		seed      = flag.Int64("seed", 1, "random seed (0 = clock)")
		gamma     = flag.Float64("gamma", 2.5, "output gamma")
		every     = flag.Int("every", 10, "print every nth frame")
		randomize = flag.Bool("randomize", false, "randomize settings before running")
		defPath   = flag.String("custom", "", "load and run a custom drawer definition file")
		example   = flag.Bool("example", false, "print an example custom drawer definition and exit")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if *example {
		fmt.Print(custom.ExampleYAML)
		return
	}

	core, err := app.InitCore(app.Options{
		Width: *width, Height: *height, LeftToRight: true,
		FPS: *fps, Seed: *seed,
		StartMode: render.ModePattern, StartDrawer: "Off",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	defer core.Close()

	name := *drawer
	if *defPath != "" {
		src, err := os.ReadFile(*defPath)
		if err != nil {
			log.Fatal().Err(err).Msg("read definition")
		}
		d, err := custom.Load(src)
		if err != nil {
			log.Fatal().Err(err).Msg("load definition")
		}
		defer d.Close()
		core.Mgr.Register(d)
		name = d.Name()
	}
	if err := core.Mgr.SetActiveDrawer(name); err != nil {
		log.Fatal().Err(err).Strs("available", core.Mgr.Status().Drawers).Msg("drawer")
	}
	if *randomize {
		_ = core.Mgr.RandomizeActive()
	}

	enc := led.NewEncoder(core.Layout, *gamma)
	out := &fake.Driver{Out: os.Stdout, Every: *every}
	dt := 1.0 / float64(max(1, *fps))

	start := time.Now()
	var drawTotal float64
	for i := 0; i < *frames; i++ {
		core.Step(dt)
		drawTotal += core.Mgr.DrawMS()
		buf, _ := core.Ch.Read()
		if err := out.Write(enc.Encode(buf)); err != nil {
			log.Fatal().Err(err).Msg("write")
		}
	}
	log.Info().
		Str("drawer", name).
		Int("frames", *frames).
		Float64("avg_draw_ms", drawTotal/float64(max(1, *frames))).
		Dur("wall", time.Since(start)).
		Msg("done")
}
