package exifmeta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bstardust/photo-geotagger/internal/geomath"
)

func dmsAny(dms geomath.DMS) []any {
	return []any{dms[0], dms[1], dms[2]}
}

func TestDialectEquivalence(t *testing.T) {
	// The same logical fix expressed in both dialect shapes must decode
	// to identical metadata.
	latTriple := dmsAny(geomath.DMSFromDegrees(40.446195))
	lonTriple := dmsAny(geomath.DMSFromDegrees(-79.982195))

	tree := TreeDialect{
		"GPS": {
			"GPSLatitude":     latTriple,
			"GPSLatitudeRef":  "N",
			"GPSLongitude":    lonTriple,
			"GPSLongitudeRef": "W",
			"GPSAltitude":     geomath.Rational{Num: 25000, Den: 100},
		},
		"EXIF": {
			"DateTimeOriginal": "2024:05:01 10:00:00",
		},
	}

	flat := FlatTagMap{
		tagGPSInfo: map[uint16]any{
			gpsTagLatitude:     latTriple,
			gpsTagLatitudeRef:  []byte("N"),
			gpsTagLongitude:    lonTriple,
			gpsTagLongitudeRef: []byte("W"),
			gpsTagAltitude:     geomath.Rational{Num: 25000, Den: 100},
		},
		tagDateTimeOriginal: "2024:05:01 10:00:00",
	}

	fromTree := Normalize(tree)
	fromFlat := Normalize(flat)

	require.True(t, fromTree.HasGPS())
	require.True(t, fromFlat.HasGPS())
	assert.Equal(t, fromTree.GPS, fromFlat.GPS)
	assert.Equal(t, fromTree.CaptureTime, fromFlat.CaptureTime)

	assert.InDelta(t, 40.446195, fromTree.GPS.Lat, 1e-4)
	assert.InDelta(t, -79.982195, fromTree.GPS.Lon, 1e-4)
	assert.InDelta(t, 250.0, fromTree.GPS.Alt, 1e-9)

	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	require.NotNil(t, fromTree.CaptureTime)
	assert.True(t, want.Equal(*fromTree.CaptureTime))
}

func TestPartialGPSIsNoGPS(t *testing.T) {
	lat := dmsAny(geomath.DMSFromDegrees(10))
	lon := dmsAny(geomath.DMSFromDegrees(20))

	cases := map[string]TreeDialect{
		"missing latitude": {
			"GPS": {"GPSLatitudeRef": "N", "GPSLongitude": lon, "GPSLongitudeRef": "E"},
		},
		"missing latitude ref": {
			"GPS": {"GPSLatitude": lat, "GPSLongitude": lon, "GPSLongitudeRef": "E"},
		},
		"missing longitude": {
			"GPS": {"GPSLatitude": lat, "GPSLatitudeRef": "N", "GPSLongitudeRef": "E"},
		},
		"missing longitude ref": {
			"GPS": {"GPSLatitude": lat, "GPSLatitudeRef": "N", "GPSLongitude": lon},
		},
		"altitude only": {
			"GPS": {"GPSAltitude": geomath.Rational{Num: 100, Den: 1}},
		},
		"no gps section": {
			"EXIF": {"DateTime": "2024:05:01 10:00:00"},
		},
	}

	for name, tree := range cases {
		meta := Normalize(tree)
		assert.False(t, meta.HasGPS(), name)
	}
}

func TestMalformedCoordinateIsNoGPSNotError(t *testing.T) {
	tree := TreeDialect{
		"GPS": {
			"GPSLatitude":     []any{geomath.Rational{Num: 40, Den: 0}, geomath.Rational{Num: 0, Den: 1}, geomath.Rational{Num: 0, Den: 1}},
			"GPSLatitudeRef":  "N",
			"GPSLongitude":    dmsAny(geomath.DMSFromDegrees(20)),
			"GPSLongitudeRef": "E",
		},
	}
	assert.False(t, Normalize(tree).HasGPS())
}

func TestCaptureTimeFallback(t *testing.T) {
	// DateTimeOriginal wins over DateTime.
	tree := TreeDialect{
		"EXIF": {
			"DateTimeOriginal": "2024:05:01 10:00:00",
			"DateTime":         "2024:06:02 11:30:00",
		},
	}
	meta := Normalize(tree)
	require.NotNil(t, meta.CaptureTime)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local), *meta.CaptureTime)

	// DateTime is used when DateTimeOriginal is absent.
	meta = Normalize(TreeDialect{"EXIF": {"DateTime": "2024:06:02 11:30:00"}})
	require.NotNil(t, meta.CaptureTime)
	assert.Equal(t, time.Date(2024, 6, 2, 11, 30, 0, 0, time.Local), *meta.CaptureTime)

	// Garbage timestamps are treated as absent, not fatal.
	meta = Normalize(TreeDialect{"EXIF": {"DateTimeOriginal": "not a timestamp"}})
	assert.Nil(t, meta.CaptureTime)
}

func TestUnknownShape(t *testing.T) {
	meta := Normalize(42)
	assert.False(t, meta.HasGPS())
	assert.Nil(t, meta.CaptureTime)
}
