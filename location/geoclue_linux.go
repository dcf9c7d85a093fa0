//go:build linux && !android

package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/olablt/gio-openmaps/tiles"
)

const (
	geoclueService  = "org.freedesktop.GeoClue2"
	geoclueManager  = "/org/freedesktop/GeoClue2/Manager"
	geoclueMgrIface = geoclueService + ".Manager"
	geoclueClient   = geoclueService + ".Client"
	geoclueLocation = geoclueService + ".Location"

	// GClueAccuracyLevel EXACT
	accuracyExact = uint32(8)
)

// GeoclueProvider reads positions from the GeoClue2 service on the system
// bus, the location service of Linux desktops.
type GeoclueProvider struct {
	desktopID string
	logger    *slog.Logger
}

// NewGeoclueProvider returns a provider that identifies itself to GeoClue
// with desktopID, the basename of the application's .desktop file.
func NewGeoclueProvider(desktopID string, logger *slog.Logger) *GeoclueProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeoclueProvider{desktopID: desktopID, logger: logger}
}

func (p *GeoclueProvider) Locations(ctx context.Context) (<-chan Fix, error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	client, path, err := p.startClient(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)

	ch := make(chan Fix, 1)
	go func() {
		defer close(ch)
		defer conn.Close()
		defer func() {
			stop, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := client.CallWithContext(stop, geoclueClient+".Stop", 0).Err; err != nil {
				p.logger.Debug("geoclue stop failed", "error", err)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if sig.Path != path || sig.Name != geoclueClient+".LocationUpdated" || len(sig.Body) != 2 {
					continue
				}
				locPath, ok := sig.Body[1].(dbus.ObjectPath)
				if !ok {
					continue
				}
				fix, err := p.read(ctx, conn, locPath)
				if err != nil {
					p.logger.Warn("could not read geoclue location", "path", locPath, "error", err)
					continue
				}
				select {
				case <-ch:
				default:
				}
				ch <- fix
			}
		}
	}()
	return ch, nil
}

func (p *GeoclueProvider) startClient(ctx context.Context, conn *dbus.Conn) (dbus.BusObject, dbus.ObjectPath, error) {
	var path dbus.ObjectPath
	mgr := conn.Object(geoclueService, geoclueManager)
	if err := mgr.CallWithContext(ctx, geoclueMgrIface+".GetClient", 0).Store(&path); err != nil {
		return nil, "", fmt.Errorf("geoclue client: %w", err)
	}

	client := conn.Object(geoclueService, path)
	if err := client.SetProperty(geoclueClient+".DesktopId", dbus.MakeVariant(p.desktopID)); err != nil {
		return nil, "", fmt.Errorf("geoclue desktop id: %w", err)
	}
	if err := client.SetProperty(geoclueClient+".RequestedAccuracyLevel", dbus.MakeVariant(accuracyExact)); err != nil {
		return nil, "", fmt.Errorf("geoclue accuracy: %w", err)
	}

	if err := conn.AddMatchSignalContext(ctx,
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(geoclueClient),
		dbus.WithMatchMember("LocationUpdated"),
	); err != nil {
		return nil, "", fmt.Errorf("geoclue subscribe: %w", err)
	}
	if err := client.CallWithContext(ctx, geoclueClient+".Start", 0).Err; err != nil {
		return nil, "", fmt.Errorf("geoclue start: %w", err)
	}
	p.logger.Debug("geoclue client started", "path", path)
	return client, path, nil
}

func (p *GeoclueProvider) read(ctx context.Context, conn *dbus.Conn, path dbus.ObjectPath) (Fix, error) {
	var props map[string]dbus.Variant
	err := conn.Object(geoclueService, path).
		CallWithContext(ctx, "org.freedesktop.DBus.Properties.GetAll", 0, geoclueLocation).
		Store(&props)
	if err != nil {
		return Fix{}, err
	}
	return fixFromProperties(props)
}

var errMissingCoordinates = errors.New("location without coordinates")

// fixFromProperties converts the properties of a GeoClue2 Location object.
// A negative Heading means unknown.
func fixFromProperties(props map[string]dbus.Variant) (Fix, error) {
	lat, okLat := props["Latitude"].Value().(float64)
	lng, okLng := props["Longitude"].Value().(float64)
	if !okLat || !okLng {
		return Fix{}, errMissingCoordinates
	}

	fix := Fix{
		Position: tiles.LatLng{Lat: lat, Lng: lng},
		Time:     time.Now(),
	}
	if acc, ok := props["Accuracy"].Value().(float64); ok && acc > 0 {
		fix.Accuracy = acc
	}
	if heading, ok := props["Heading"].Value().(float64); ok && heading >= 0 {
		fix.Heading = heading
		fix.HasHeading = true
	}
	if ts, ok := props["Timestamp"].Value().([]interface{}); ok && len(ts) == 2 {
		sec, okSec := ts[0].(uint64)
		usec, okUsec := ts[1].(uint64)
		if okSec && okUsec {
			fix.Time = time.Unix(int64(sec), int64(usec)*int64(time.Microsecond))
		}
	}
	return fix, nil
}
