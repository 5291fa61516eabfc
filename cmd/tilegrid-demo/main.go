// Command tilegrid-demo walks an "@" around a small fogged map on a terminal,
// in a window, or renders a single frame to PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tilegrid/backend/raster"
	"github.com/lixenwraith/tilegrid/backend/record"
	"github.com/lixenwraith/tilegrid/config"
	"github.com/lixenwraith/tilegrid/layer"
	"github.com/lixenwraith/tilegrid/metrics"
	"github.com/lixenwraith/tilegrid/render"
)

var (
	configFlag   = flag.String("config", "tilegrid.toml", "Configuration file")
	backendFlag  = flag.String("backend", "", "Backend override: terminal, raster, window")
	debugFlag    = flag.Bool("debug", false, "Log to logs/tilegrid.log")
	strictFlag   = flag.Bool("strict", false, "Fail on the first out-of-bounds or capacity error")
	metricsFlag  = flag.String("metrics", "", "Serve Prometheus metrics on this address")
	snapshotFlag = flag.String("snapshot", "tilegrid.png", "Output file for the raster backend")
	fontFlag     = flag.String("font", "", "TrueType font for glyph layers (raster and window)")
	dumpFlag     = flag.Bool("dump", false, "Print one frame's draw calls to stdout and exit")
)

// builder creates the render context and scene on top of a backend
type builder func(render.Backend, ...render.Option) (*render.Context, *scene, error)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if logFile := setupLogging(cfg.Log.Debug); logFile != nil {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var exporter *metrics.Exporter
	if cfg.Metrics.Addr != "" {
		exporter, err = metrics.New(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register metrics: %v\n", err)
			os.Exit(1)
		}
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, nil); err != nil {
				log.Printf("metrics: %v", err)
			}
		}()
	}

	build := func(b render.Backend, opts ...render.Option) (*render.Context, *scene, error) {
		opts = append(opts, render.WithLogger(log.Default()), render.WithStrict(cfg.Strict))
		c := render.NewContext(b, cfg.Render(), opts...)
		if exporter != nil {
			exporter.Attach(c)
		}
		s, err := buildScene(c)
		if err != nil {
			c.Close()
			return nil, nil, err
		}
		if *fontFlag != "" {
			useFont(c, *fontFlag)
		}
		return c, s, nil
	}

	if err := run(ctx, cfg, build); err != nil {
		fmt.Fprintf(os.Stderr, "tilegrid-demo: %v\n", err)
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config) {
	if *backendFlag != "" {
		cfg.Backend = *backendFlag
	}
	if *debugFlag {
		cfg.Log.Debug = true
	}
	if *strictFlag {
		cfg.Strict = true
	}
	if *metricsFlag != "" {
		cfg.Metrics.Addr = *metricsFlag
	}
}

func run(ctx context.Context, cfg config.Config, build builder) error {
	if *dumpFlag {
		return runDump(os.Stdout, build)
	}
	switch cfg.Backend {
	case config.BackendRaster:
		return runSnapshot(cfg, *snapshotFlag, build)
	case config.BackendWindow:
		return runWindow(cfg, build)
	default:
		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return err
		}
		defer screen.Fini()
		return runTerminal(ctx, screen, cfg.Window.FPS, build)
	}
}

// runSnapshot draws two frames so the status line shows the first one
func runSnapshot(cfg config.Config, path string, build builder) error {
	b := raster.New(cfg.Window.Width, cfg.Window.Height)
	c, s, err := build(b, render.WithLoader(raster.Loader{}))
	if err != nil {
		return err
	}
	defer c.Close()

	ts := cfg.Grid.TileSize
	s.follow(int(float32(cfg.Window.Width)/ts), int(float32(cfg.Window.Height)/ts))
	for range 2 {
		if err := c.Frame(); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := b.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// runDump draws one frame into the recorder and prints the transcript
func runDump(w io.Writer, build builder) error {
	b := record.New()
	c, _, err := build(b)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Frame(); err != nil {
		return err
	}
	return b.Dump(w)
}

// useFont loads path into a font slot and selects it on every glyph layer
func useFont(c *render.Context, path string) {
	slot, err := c.LoadFont(path, c.Config().FontSize)
	if err != nil || slot < 0 {
		log.Printf("font %s: %v", path, err)
		return
	}
	for _, s := range []*layer.Stack{c.World, c.UI} {
		for _, l := range s.Layers() {
			l.Resource = slot
		}
	}
}
