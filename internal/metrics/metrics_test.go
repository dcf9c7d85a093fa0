package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/olablt/gio-openmaps/geocode"
	"github.com/olablt/gio-openmaps/tiles"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	testCases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{geocode.ErrEmptyQuery, "empty"},
		{fmt.Errorf("wrapped: %w", geocode.ErrNotFound), "not_found"},
		{context.DeadlineExceeded, "canceled"},
		{errors.New("connection refused"), "error"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Outcome(tc.err))
	}
}

func TestObserveGeocode(t *testing.T) {
	before := testutil.ToFloat64(geocodeRequestsTotal.WithLabelValues("search", "not_found"))
	ObserveGeocode("search", geocode.ErrNotFound)
	ObserveGeocode("search", geocode.ErrNotFound)
	after := testutil.ToFloat64(geocodeRequestsTotal.WithLabelValues("search", "not_found"))

	assert.Equal(t, 2.0, after-before)
}

func TestObserveTile(t *testing.T) {
	before := testutil.ToFloat64(tileFetchesTotal.WithLabelValues("ok"))
	ObserveTile(tiles.Tile{}, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(tileFetchesTotal.WithLabelValues("ok"))-before)
}

func TestServe_EmptyAddrReturns(t *testing.T) {
	Serve(context.Background(), "", nil)
}
