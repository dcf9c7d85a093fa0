// Package location delivers position fixes to the map's location overlay.
package location

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olablt/gio-openmaps/tiles"
)

// Fix is a single position report.
type Fix struct {
	Position tiles.LatLng
	// Accuracy is the radius of 68% confidence, in meters. Zero when unknown.
	Accuracy float64
	// Heading is the device bearing in degrees clockwise from north. Only
	// meaningful when HasHeading is set.
	Heading    float64
	HasHeading bool
	Time       time.Time
}

// Provider streams fixes until ctx is done, then closes the channel.
type Provider interface {
	Locations(ctx context.Context) (<-chan Fix, error)
}

// StaticProvider always reports the same position. Desktop builds have no
// GPS, so this stands in for it.
type StaticProvider struct {
	fix Fix
}

func NewStaticProvider(pos tiles.LatLng, accuracy float64) *StaticProvider {
	return &StaticProvider{fix: Fix{Position: pos, Accuracy: accuracy}}
}

func (p *StaticProvider) Locations(ctx context.Context) (<-chan Fix, error) {
	ch := make(chan Fix, 1)
	fix := p.fix
	fix.Time = time.Now()
	ch <- fix
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// ManualProvider forwards whatever is passed to Push to every active
// subscriber. Platform bridges feed it from native location callbacks.
type ManualProvider struct {
	mu   sync.Mutex
	subs map[chan Fix]struct{}
	last *Fix
}

func NewManualProvider() *ManualProvider {
	return &ManualProvider{subs: make(map[chan Fix]struct{})}
}

func (p *ManualProvider) Locations(ctx context.Context) (<-chan Fix, error) {
	ch := make(chan Fix, 1)

	p.mu.Lock()
	p.subs[ch] = struct{}{}
	if p.last != nil {
		ch <- *p.last
	}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		delete(p.subs, ch)
		close(ch)
		p.mu.Unlock()
	}()
	return ch, nil
}

// Push delivers fix to subscribers. A subscriber that has not consumed the
// previous fix gets it replaced, so slow readers always see the newest one.
func (p *ManualProvider) Push(fix Fix) {
	if fix.Time.IsZero() {
		fix.Time = time.Now()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = &fix
	for ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- fix
	}
}

// ParseLatLng parses "lat,lng".
func ParseLatLng(s string) (tiles.LatLng, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return tiles.LatLng{}, fmt.Errorf("invalid position %q: want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return tiles.LatLng{}, fmt.Errorf("invalid latitude %q: %w", latStr, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return tiles.LatLng{}, fmt.Errorf("invalid longitude %q: %w", lngStr, err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return tiles.LatLng{}, fmt.Errorf("position %q out of range", s)
	}
	return tiles.LatLng{Lat: lat, Lng: lng}, nil
}
