package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-aurora/internal/app"
	"github.com/coreman2200/funtimes-aurora/internal/config"
	"github.com/coreman2200/funtimes-aurora/internal/led"
	"github.com/coreman2200/funtimes-aurora/internal/render"
	"github.com/coreman2200/funtimes-aurora/internal/render/post"
	"github.com/coreman2200/funtimes-aurora/internal/ws"
)

func main() {
	// ---- Flags (override config.yaml when given) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		width      = flag.Int("width", 0, "matrix width")
		height     = flag.Int("height", 0, "matrix height")
		fps        = flag.Int("fps", 0, "render frames per second")
		driver     = flag.String("driver", "", "output driver: serial | spi | sim")
		device     = flag.String("device", "", "serial device or SPI port name")
		addr       = flag.String("addr", "", "HTTP listen address")
		drawer     = flag.String("drawer", "", "start drawer")
		customDir  = flag.String("custom-dir", "", "directory of custom drawer definitions")
		seed       = flag.Int64("seed", 0, "random seed (0 = clock)")
		level      = flag.String("log-level", "", "debug | info | warn | error")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		listPorts  = flag.Bool("list-ports", false, "print serial ports and exit")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	if *listPorts {
		ports, err := led.SerialPorts()
		if err != nil {
			log.Fatal().Err(err).Msg("list serial ports")
		}
		for _, p := range ports {
			log.Info().Str("port", p).Msg("serial")
		}
		return
	}

	// ---- Load config.yaml (optional) ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		}
		cfg = config.Default()
	}
	setInt(&cfg.Matrix.Width, *width)
	setInt(&cfg.Matrix.Height, *height)
	setInt(&cfg.Render.FPS, *fps)
	setStr(&cfg.Output.Driver, *driver)
	setStr(&cfg.Server.Addr, *addr)
	setStr(&cfg.Render.StartDrawer, *drawer)
	setStr(&cfg.Custom.Dir, *customDir)
	setStr(&cfg.LogLevel, *level)
	if *device != "" {
		cfg.Output.Device = *device
		cfg.Output.SPI.Dev = *device
	}
	if *seed != 0 {
		cfg.Render.Seed = *seed
	}
	if *simOnly {
		cfg.Output.Driver = "sim"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// ---- Core ----
	core, err := app.InitCore(app.Options{
		Width:         cfg.Matrix.Width,
		Height:        cfg.Matrix.Height,
		LeftToRight:   cfg.Matrix.LeftToRight,
		FPS:           cfg.Render.FPS,
		PaletteSize:   cfg.Render.PaletteSize,
		Curated:       cfg.Render.CuratedPalette,
		Seed:          cfg.Render.Seed,
		StartMode:     render.Mode(cfg.Render.StartMode),
		StartDrawer:   cfg.Render.StartDrawer,
		CustomDir:     cfg.Custom.Dir,
		CustomTimeout: cfg.CustomTimeout(),
		Playlist:      cfg.Playlist,
		Power: post.Limiter{
			WhiteCap:  cfg.Output.Power.WhiteCap,
			ChannelMA: cfg.Output.Power.ChannelMA,
			BudgetMA:  cfg.Output.Power.BudgetMA,
			Knee:      cfg.Output.Power.Knee,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}

	// ---- Output worker ----
	enc := led.NewEncoder(core.Layout, cfg.Matrix.Gamma)
	worker := led.NewWorker(core.Ch, enc, opener(cfg), cfg.Output.FPS)
	worker.Start()

	// ---- HTTP routes ----
	state := ws.NewState(core)
	state.Output = worker.Stats
	state.Driver = cfg.Output.Driver
	mux := http.NewServeMux()
	state.Routes(mux)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run render loop & server ----
	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		core.Run(ctx)
	}()
	go state.RunPreview(ctx, 20)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("driver", cfg.Output.Driver).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	_ = srv.Close()
	cancel()
	<-loopDone
	if err := worker.Stop(cfg.StopGrace()); err != nil {
		log.Warn().Err(err).Msg("output worker")
	}
	core.Close()
	st := worker.Stats()
	log.Info().Uint64("sent", st.Sent).Uint64("skipped", st.Skipped).Uint64("errors", st.Errors).Msg("bye")
}

// opener picks the hardware link. It runs on the output worker's thread.
func opener(cfg *config.Config) led.Opener {
	pixels := cfg.Matrix.Width * cfg.Matrix.Height
	out := cfg.Output
	return func() (led.Link, error) {
		switch out.Driver {
		case "serial":
			l, err := led.OpenSerial(out.Device, out.Baud)
			if err != nil {
				return nil, err
			}
			return l, nil
		case "spi":
			l, err := led.OpenSPI(out.SPI.Dev, pixels, physic.Frequency(out.SPI.SpeedHz)*physic.Hertz)
			if err != nil {
				return nil, err
			}
			return l, nil
		default:
			return led.NewSim(), nil
		}
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
