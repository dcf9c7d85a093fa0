// Command openmaps is a map viewer with address search.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gioui.org/app"
	_ "gioui.org/app/permission/networkstate"
	_ "gioui.org/app/permission/storage"
	"gioui.org/font/gofont"
	"gioui.org/io/system"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/olablt/gio-openmaps/geocode"
	"github.com/olablt/gio-openmaps/internal/config"
	"github.com/olablt/gio-openmaps/internal/metrics"
	"github.com/olablt/gio-openmaps/internal/screen"
	"github.com/olablt/gio-openmaps/location"
	"github.com/olablt/gio-openmaps/tiles"
	"github.com/olablt/gio-openmaps/tiles/worker"
)

// accuracy reported for a position configured with MY_LOCATION, in metres
const staticAccuracy = 25

func main() {
	cfg := config.Load()
	logger := cfg.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go metrics.Serve(ctx, cfg.MetricsAddr, logger)

	w := new(app.Window)
	w.Option(app.Title("OpenMaps"), app.Size(unit.Dp(480), unit.Dp(800)))

	go func() {
		<-ctx.Done()
		w.Perform(system.ActionClose)
	}()

	go func() {
		if err := run(cfg, w); err != nil {
			logger.Error("window loop failed", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

func run(cfg *config.Config, w *app.Window) error {
	logger := cfg.Logger
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	cache, err := tiles.NewCache(cfg.TileCacheSize)
	if err != nil {
		return err
	}
	pool := worker.NewPool(cfg.TileWorkers, cfg.TileWorkers*16,
		worker.WithTimeout(cfg.HTTPTimeout), worker.WithLogger(logger))
	defer pool.Shutdown()
	manager := tiles.NewManager(
		tiles.NewOSMProvider(client, cfg.TileURL, cfg.UserAgent, logger),
		tiles.NewLocalProvider(),
		cache, pool, logger,
	)
	manager.SetOnLoadCallback(w.Invalidate)
	manager.SetOnFetchCallback(metrics.ObserveTile)
	defer manager.Close()

	geocoder, err := geocode.NewClient(cfg.NominatimURL, cfg.UserAgent, client,
		geocode.WithLanguage(cfg.Language),
		geocode.WithLogger(logger),
		geocode.WithObserver(metrics.ObserveGeocode),
	)
	if err != nil {
		return err
	}

	deps := screen.Deps{
		Tiles:       manager,
		Geocoder:    geocoder,
		Location:    platformLocation(cfg, logger),
		Permissions: platformPermissions(cfg, logger),
	}
	if cfg.MyLocation != nil {
		deps.Location = location.NewStaticProvider(*cfg.MyLocation, staticAccuracy)
	}

	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))

	s := screen.New(cfg, th, deps, w.Invalidate)
	defer s.Close()

	logger.Info("map ready",
		slog.String("tiles", cfg.TileURL),
		slog.String("nominatim", cfg.NominatimURL),
		slog.Any("start", cfg.Start))

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.ConfigEvent:
			if e.Config.Focused {
				s.Resume()
			} else {
				s.Pause()
			}
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			s.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}
