// Package permission models the runtime permission round trip the map
// screen performs on start.
package permission

import "strings"

type Permission string

const (
	FineLocation         Permission = "android.permission.ACCESS_FINE_LOCATION"
	WriteExternalStorage Permission = "android.permission.WRITE_EXTERNAL_STORAGE"
)

type Result struct {
	Permission Permission
	Granted    bool
}

// Requester checks and asks for permissions. Request may answer
// asynchronously; the callback is invoked exactly once.
type Requester interface {
	Granted(p Permission) bool
	Request(ps []Permission, done func([]Result))
}

// Missing returns the subset of ps not granted yet.
func Missing(r Requester, ps []Permission) []Permission {
	var missing []Permission
	for _, p := range ps {
		if !r.Granted(p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// AllGranted reports whether every result is a grant. An empty set counts
// as granted.
func AllGranted(results []Result) bool {
	for _, r := range results {
		if !r.Granted {
			return false
		}
	}
	return true
}

// StaticRequester grants everything except the denied set. Nothing is
// granted until it has been requested once, like on a fresh install.
type StaticRequester struct {
	denied    map[Permission]bool
	requested map[Permission]bool
}

func NewStaticRequester(denied ...Permission) *StaticRequester {
	r := &StaticRequester{
		denied:    make(map[Permission]bool),
		requested: make(map[Permission]bool),
	}
	for _, p := range denied {
		r.denied[p] = true
	}
	return r
}

func (r *StaticRequester) Granted(p Permission) bool {
	return r.requested[p] && !r.denied[p]
}

func (r *StaticRequester) Request(ps []Permission, done func([]Result)) {
	results := make([]Result, 0, len(ps))
	for _, p := range ps {
		r.requested[p] = true
		results = append(results, Result{Permission: p, Granted: !r.denied[p]})
	}
	done(results)
}

// Parse maps short names ("location", "storage") or full Android names to
// permissions. Unknown names are returned as-is.
func Parse(list string) []Permission {
	var ps []Permission
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		switch strings.ToLower(name) {
		case "":
			continue
		case "location":
			ps = append(ps, FineLocation)
		case "storage":
			ps = append(ps, WriteExternalStorage)
		default:
			ps = append(ps, Permission(name))
		}
	}
	return ps
}
