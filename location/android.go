//go:build android

package location

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.wow.st/gmp/jni"
	"github.com/olablt/gio-openmaps/tiles"
)

// DefaultPollInterval is how often AndroidProvider asks the system for the
// last known position.
const DefaultPollInterval = 2 * time.Second

// providers are tried in order; the freshest fix wins.
var androidProviders = []string{"gps", "network", "passive"}

var errNoLocationService = errors.New("location service unavailable")

// AndroidProvider polls the platform LocationManager through JNI. The app
// must hold ACCESS_FINE_LOCATION, otherwise every poll fails.
type AndroidProvider struct {
	vm       jni.JVM
	appCtx   jni.Object
	interval time.Duration
	logger   *slog.Logger
}

// NewAndroidProvider takes the handles from gioui.org/app.JavaVM and
// gioui.org/app.AppContext.
func NewAndroidProvider(vm, appCtx uintptr, interval time.Duration, logger *slog.Logger) *AndroidProvider {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AndroidProvider{
		vm:       jni.JVMFor(vm),
		appCtx:   jni.Object(appCtx),
		interval: interval,
		logger:   logger,
	}
}

func (p *AndroidProvider) Locations(ctx context.Context) (<-chan Fix, error) {
	ch := make(chan Fix, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		var last time.Time
		for {
			fix, ok, err := p.lastKnown()
			switch {
			case err != nil:
				p.logger.Warn("location poll failed", "error", err)
			case ok && fix.Time.After(last):
				last = fix.Time
				select {
				case <-ch:
				default:
				}
				ch <- fix
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return ch, nil
}

func (p *AndroidProvider) lastKnown() (Fix, bool, error) {
	var (
		best  Fix
		found bool
	)
	err := jni.Do(p.vm, func(env jni.Env) error {
		ctxClass := jni.GetObjectClass(env, p.appCtx)
		getService := jni.GetMethodID(env, ctxClass, "getSystemService", "(Ljava/lang/String;)Ljava/lang/Object;")
		lm, err := jni.CallObjectMethod(env, p.appCtx, getService, jni.Value(jni.JavaString(env, "location")))
		if err != nil {
			return err
		}
		if lm == 0 {
			return errNoLocationService
		}
		getLast := jni.GetMethodID(env, jni.GetObjectClass(env, lm), "getLastKnownLocation", "(Ljava/lang/String;)Landroid/location/Location;")

		for _, name := range androidProviders {
			loc, err := jni.CallObjectMethod(env, lm, getLast, jni.Value(jni.JavaString(env, name)))
			if err != nil || loc == 0 {
				// disabled or unknown provider
				continue
			}
			fix, err := readLocation(env, loc)
			if err != nil {
				return err
			}
			if !found || fix.Time.After(best.Time) {
				best, found = fix, true
			}
		}
		return nil
	})
	return best, found, err
}

// readLocation copies an android.location.Location.
func readLocation(env jni.Env, loc jni.Object) (Fix, error) {
	cls := jni.GetObjectClass(env, loc)
	lat, err := jni.CallDoubleMethod(env, loc, jni.GetMethodID(env, cls, "getLatitude", "()D"))
	if err != nil {
		return Fix{}, err
	}
	lng, err := jni.CallDoubleMethod(env, loc, jni.GetMethodID(env, cls, "getLongitude", "()D"))
	if err != nil {
		return Fix{}, err
	}
	acc, err := jni.CallFloatMethod(env, loc, jni.GetMethodID(env, cls, "getAccuracy", "()F"))
	if err != nil {
		return Fix{}, err
	}
	millis, err := jni.CallLongMethod(env, loc, jni.GetMethodID(env, cls, "getTime", "()J"))
	if err != nil {
		return Fix{}, err
	}
	fix := Fix{
		Position: tiles.LatLng{Lat: lat, Lng: lng},
		Accuracy: float64(acc),
		Time:     time.UnixMilli(millis),
	}

	hasBearing, err := jni.CallBooleanMethod(env, loc, jni.GetMethodID(env, cls, "hasBearing", "()Z"))
	if err == nil && hasBearing {
		bearing, err := jni.CallFloatMethod(env, loc, jni.GetMethodID(env, cls, "getBearing", "()F"))
		if err == nil {
			fix.Heading = float64(bearing)
			fix.HasHeading = true
		}
	}
	return fix, nil
}
