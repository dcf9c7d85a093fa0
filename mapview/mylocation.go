package mapview

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"github.com/olablt/gio-openmaps/location"
	"github.com/olablt/gio-openmaps/tiles"
)

var (
	locationDot      = color.NRGBA{R: 0x19, G: 0x76, B: 0xd2, A: 0xff}
	locationRing     = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	locationAccuracy = color.NRGBA{R: 0x19, G: 0x76, B: 0xd2, A: 0x30}
)

// MyLocationOverlay draws the device position reported by a provider and
// can keep the map centered on it.
type MyLocationOverlay struct {
	provider location.Provider
	mv       *MapView
	logger   *slog.Logger

	// touched from the subscription goroutine
	mu       sync.Mutex
	fix      *location.Fix
	recenter bool

	enabled bool
	follow  bool
	paused  bool
	cancel  context.CancelFunc
}

func NewMyLocationOverlay(provider location.Provider, mv *MapView, logger *slog.Logger) *MyLocationOverlay {
	if logger == nil {
		logger = slog.Default()
	}
	return &MyLocationOverlay{provider: provider, mv: mv, logger: logger}
}

// EnableMyLocation starts listening for fixes. Calling it again while
// enabled does nothing.
func (o *MyLocationOverlay) EnableMyLocation() error {
	if o.enabled {
		return nil
	}
	o.enabled = true
	if o.paused {
		return nil
	}
	return o.subscribe()
}

func (o *MyLocationOverlay) DisableMyLocation() {
	o.enabled = false
	o.unsubscribe()
}

func (o *MyLocationOverlay) IsMyLocationEnabled() bool {
	return o.enabled
}

// EnableFollowLocation keeps the map centered on each new fix until the
// user pans the map.
func (o *MyLocationOverlay) EnableFollowLocation() {
	o.follow = true
	o.mu.Lock()
	o.recenter = o.fix != nil
	o.mu.Unlock()
	o.mv.Invalidate()
}

func (o *MyLocationOverlay) DisableFollowLocation() {
	o.follow = false
}

func (o *MyLocationOverlay) IsFollowLocationEnabled() bool {
	return o.follow
}

// LastFix returns the most recent position, if any.
func (o *MyLocationOverlay) LastFix() (location.Fix, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fix == nil {
		return location.Fix{}, false
	}
	return *o.fix, true
}

func (o *MyLocationOverlay) subscribe() error {
	ctx, cancel := context.WithCancel(context.Background())
	fixes, err := o.provider.Locations(ctx)
	if err != nil {
		cancel()
		o.enabled = false
		return err
	}
	o.cancel = cancel

	go func() {
		for fix := range fixes {
			if ctx.Err() != nil {
				continue
			}
			o.mu.Lock()
			o.fix = &fix
			o.recenter = true
			o.mu.Unlock()
			o.mv.Invalidate()
		}
	}()
	return nil
}

func (o *MyLocationOverlay) unsubscribe() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

func (o *MyLocationOverlay) OnPause() {
	o.paused = true
	o.unsubscribe()
}

func (o *MyLocationOverlay) OnResume() {
	o.paused = false
	if o.enabled && o.cancel == nil {
		if err := o.subscribe(); err != nil {
			o.logger.Warn("could not resume location updates", "error", err)
		}
	}
}

func (o *MyLocationOverlay) OnUserDrag() {
	o.DisableFollowLocation()
}

func (o *MyLocationOverlay) Update(mv *MapView) {
	if !o.follow {
		return
	}
	o.mu.Lock()
	recenter, fix := o.recenter, o.fix
	o.recenter = false
	o.mu.Unlock()

	if recenter && fix != nil {
		mv.Center = fix.Position.Clamp()
	}
}

func (o *MyLocationOverlay) Draw(gtx layout.Context, mv *MapView) {
	fix, ok := o.LastFix()
	if !o.enabled || !ok {
		return
	}
	pt := mv.Projection().ToScreen(fix.Position)
	center := image.Pt(int(pt.X), int(pt.Y))

	if fix.Accuracy > 0 {
		r := int(fix.Accuracy / tiles.CalculateMetersPerPixel(fix.Position.Lat, mv.Zoom))
		if r > gtx.Dp(unit.Dp(10)) {
			fillCircle(gtx, center, r, locationAccuracy)
		}
	}
	fillCircle(gtx, center, gtx.Dp(unit.Dp(9)), locationRing)
	fillCircle(gtx, center, gtx.Dp(unit.Dp(7)), locationDot)
}

func fillCircle(gtx layout.Context, c image.Point, r int, col color.NRGBA) {
	rect := image.Rect(c.X-r, c.Y-r, c.X+r, c.Y+r)
	paint.FillShape(gtx.Ops, col, clip.Ellipse(rect).Op(gtx.Ops))
}
