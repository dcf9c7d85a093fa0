package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaleFor(t *testing.T) {
	testCases := []struct {
		name       string
		mpp        float64
		maxPx      int
		wantMeters float64
		wantPx     int
	}{
		{name: "one meter per pixel", mpp: 1, maxPx: 110, wantMeters: 100, wantPx: 100},
		{name: "kilometers", mpp: 10, maxPx: 110, wantMeters: 1000, wantPx: 100},
		{name: "two", mpp: 3, maxPx: 100, wantMeters: 200, wantPx: 67},
		{name: "five", mpp: 0.6, maxPx: 100, wantMeters: 50, wantPx: 83},
		{name: "exact fit", mpp: 5, maxPx: 100, wantMeters: 500, wantPx: 100},
		{name: "no room", mpp: 5, maxPx: 0},
		{name: "degenerate", mpp: 0, maxPx: 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			meters, px := ScaleFor(tc.mpp, tc.maxPx)
			assert.InDelta(t, tc.wantMeters, meters, 1e-9)
			assert.Equal(t, tc.wantPx, px)
			assert.LessOrEqual(t, px, tc.maxPx)
		})
	}
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "200 m", FormatDistance(200))
	assert.Equal(t, "0.5 m", FormatDistance(0.5))
	assert.Equal(t, "1 km", FormatDistance(1000))
	assert.Equal(t, "20 km", FormatDistance(20000))
}

func TestScaleFor_PowerOfTen(t *testing.T) {
	meters, px := ScaleFor(10, 100)
	assert.Equal(t, 1000.0, meters)
	assert.Equal(t, 100, px)
}
