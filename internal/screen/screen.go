// Package screen is the single map screen of the app: a search bar, the
// map with its overlays, zoom buttons and transient notices.
package screen

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/olablt/gio-openmaps/geocode"
	"github.com/olablt/gio-openmaps/internal/config"
	"github.com/olablt/gio-openmaps/internal/permission"
	"github.com/olablt/gio-openmaps/location"
	"github.com/olablt/gio-openmaps/mapview"
	"github.com/olablt/gio-openmaps/tiles"
	"github.com/olablt/gio-openmaps/tiles/worker"
)

const (
	searchZoom    = 15
	searchedTitle = "Searched Location"

	msgEmptyAddress = "Please enter an address"
	msgNotFound     = "Address not found"
	msgPermission   = "Location permission is required to show user location on map"
)

var requiredPermissions = []permission.Permission{
	permission.FineLocation,
	permission.WriteExternalStorage,
}

type Deps struct {
	Tiles       *tiles.Manager
	Geocoder    geocode.Service
	Location    location.Provider // nil when the device has no position source
	Permissions permission.Requester
}

type Screen struct {
	th       *material.Theme
	mv       *mapview.MapView
	geocoder geocode.Service
	provider location.Provider
	perms    permission.Requester
	logger   *slog.Logger

	myLocation *mapview.MyLocationOverlay

	// replaced, never accumulated; UI goroutine only
	searchMarker  *mapview.Marker
	reverseMarker *mapview.Marker

	searchPool  *worker.Pool
	reversePool *worker.Pool
	ctx         context.Context
	cancel      context.CancelFunc

	mu      sync.Mutex
	pending []func()

	address   widget.Editor
	searchBtn widget.Clickable
	zoomIn    widget.Clickable
	zoomOut   widget.Clickable
	notice    notice
}

// New builds the screen. invalidate must be safe to call from any
// goroutine; it is usually app.Window.Invalidate.
func New(cfg *config.Config, th *material.Theme, deps Deps, invalidate func()) *Screen {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	mv := mapview.New(deps.Tiles, th)
	mv.SetInvalidator(invalidate)
	mv.MinZoom = cfg.MinZoom
	mv.MaxZoom = cfg.MaxZoom
	mv.MultiTouch = true
	mv.SetZoom(cfg.StartZoom)
	mv.SetCenter(cfg.Start)

	s := &Screen{
		th:          th,
		mv:          mv,
		geocoder:    deps.Geocoder,
		provider:    deps.Location,
		perms:       deps.Permissions,
		logger:      logger,
		searchPool:  worker.NewPool(1, 4, worker.WithTimeout(cfg.HTTPTimeout), worker.WithLogger(logger)),
		reversePool: worker.NewPool(1, 4, worker.WithTimeout(cfg.HTTPTimeout), worker.WithLogger(logger)),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.address.SingleLine = true
	s.address.Submit = true
	mv.OnLongPress = func(tiles.LatLng) {
		s.ReverseGeocode(s.mv.MapCenter())
	}

	s.initializeMapControls()
	s.requestPermissionsIfNecessary()
	if s.perms == nil || s.perms.Granted(permission.FineLocation) {
		s.initializeLocationOverlay()
	}
	return s
}

func (s *Screen) MapView() *mapview.MapView {
	return s.mv
}

func (s *Screen) initializeMapControls() {
	compass := mapview.NewCompassOverlay()
	compass.Orientation = s.deviceHeading
	compass.EnableCompass()
	s.mv.Overlays().Add(compass)

	scale := mapview.NewScaleBarOverlay()
	scale.SetAlignBottom(true)
	s.mv.Overlays().Add(scale)

	rotation := mapview.NewRotationGestureOverlay()
	rotation.SetEnabled(true)
	s.mv.Overlays().Add(rotation)
}

// deviceHeading is the bearing of the last location fix, if it has one.
func (s *Screen) deviceHeading() (float64, bool) {
	if s.myLocation == nil {
		return 0, false
	}
	fix, ok := s.myLocation.LastFix()
	if !ok || !fix.HasHeading {
		return 0, false
	}
	return fix.Heading, true
}

func (s *Screen) initializeLocationOverlay() {
	if s.provider == nil || s.myLocation != nil {
		return
	}
	overlay := mapview.NewMyLocationOverlay(s.provider, s.mv, s.logger)
	if err := overlay.EnableMyLocation(); err != nil {
		s.logger.Warn("location updates unavailable", "error", err)
		return
	}
	overlay.EnableFollowLocation()
	s.mv.Overlays().Add(overlay)
	s.myLocation = overlay
}

func (s *Screen) requestPermissionsIfNecessary() {
	if s.perms == nil {
		return
	}
	missing := permission.Missing(s.perms, requiredPermissions)
	if len(missing) == 0 {
		return
	}
	s.perms.Request(missing, func(results []permission.Result) {
		s.post(func() { s.OnPermissionsResult(results) })
	})
}

// OnPermissionsResult handles the answer to the permission request.
func (s *Screen) OnPermissionsResult(results []permission.Result) {
	if permission.AllGranted(results) {
		s.initializeLocationOverlay()
		return
	}
	s.notice.Show(msgPermission, Short)
}

// Search geocodes address on the search worker. Blank input only shows a
// notice.
func (s *Screen) Search(address string) {
	if strings.TrimSpace(address) == "" {
		s.notice.Show(msgEmptyAddress, Short)
		return
	}
	err := s.searchPool.Submit(worker.Task{
		Ctx:  s.ctx,
		Name: "search",
		Work: func(ctx context.Context) error {
			ll, err := s.geocoder.Search(ctx, address)
			s.post(func() { s.onSearchResult(ll, err) })
			return err
		},
	})
	if err != nil {
		s.logger.Warn("could not queue search", "error", err)
		s.notice.Show(msgNotFound, Short)
	}
}

func (s *Screen) onSearchResult(ll tiles.LatLng, err error) {
	if err != nil {
		if errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
			return
		}
		s.logger.Info("forward geocoding failed", "error", err)
		s.notice.Show(msgNotFound, Short)
		return
	}

	if s.myLocation != nil {
		s.myLocation.DisableFollowLocation()
	}
	s.mv.SetCenter(ll)
	s.mv.SetZoom(searchZoom)
	s.searchMarker = s.replaceMarker(s.searchMarker, ll, searchedTitle)
}

// ReverseGeocode looks up the address of at on the reverse worker.
func (s *Screen) ReverseGeocode(at tiles.LatLng) {
	err := s.reversePool.Submit(worker.Task{
		Ctx:  s.ctx,
		Name: "reverse",
		Work: func(ctx context.Context) error {
			addr, err := s.geocoder.Reverse(ctx, at)
			s.post(func() { s.onReverseResult(at, addr, err) })
			return err
		},
	})
	if err != nil {
		s.logger.Warn("could not queue reverse lookup", "error", err)
		s.notice.Show(msgNotFound, Short)
	}
}

func (s *Screen) onReverseResult(at tiles.LatLng, addr string, err error) {
	if err != nil {
		if errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
			return
		}
		s.logger.Info("reverse geocoding failed", "error", err)
		s.notice.Show(msgNotFound, Short)
		return
	}
	s.notice.Show("Address: "+addr, Long)
	s.reverseMarker = s.replaceMarker(s.reverseMarker, at, addr)
}

// replaceMarker removes old, if any, and adds a fresh marker in its place.
func (s *Screen) replaceMarker(old *mapview.Marker, at tiles.LatLng, title string) *mapview.Marker {
	if old != nil {
		s.mv.Overlays().Remove(old)
	}
	m := mapview.NewMarker(at, title)
	m.SetAnchor(mapview.AnchorCenter, mapview.AnchorBottom)
	s.mv.Overlays().Add(m)
	s.mv.Invalidate()
	return m
}

// post schedules f to run on the UI goroutine during the next frame.
func (s *Screen) post(f func()) {
	s.mu.Lock()
	s.pending = append(s.pending, f)
	s.mu.Unlock()
	s.mv.Invalidate()
}

// RunPending runs the callbacks posted by background work and returns how
// many ran. Layout calls it at the start of every frame.
func (s *Screen) RunPending() int {
	s.mu.Lock()
	fns := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, f := range fns {
		f()
	}
	return len(fns)
}

func (s *Screen) Pause() {
	s.mv.OnPause()
}

// Resume restarts the map. Location permission granted from the system
// settings while the app was in the background takes effect here.
func (s *Screen) Resume() {
	s.mv.OnResume()
	if s.myLocation == nil && s.perms != nil && s.perms.Granted(permission.FineLocation) {
		s.initializeLocationOverlay()
	}
}

// Close cancels outstanding lookups and stops the workers.
func (s *Screen) Close() {
	s.cancel()
	s.searchPool.Shutdown()
	s.reversePool.Shutdown()
	if s.myLocation != nil {
		s.myLocation.DisableMyLocation()
	}
}
