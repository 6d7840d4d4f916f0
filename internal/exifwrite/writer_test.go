package exifwrite

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bstardust/photo-geotagger/internal/exifmeta"
)

func makeJPEG(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestWriteGPS_RoundTrip(t *testing.T) {
	// Write a fix into a freshly encoded JPEG and read it back through
	// the real decode path.
	path := makeJPEG(t, t.TempDir(), "pic.jpg")

	fixTime := time.Date(2024, 5, 1, 10, 2, 0, 0, time.Local)
	fix := exifmeta.GeoFix{Lat: 40.446195, Lon: -79.982195, Alt: 250, Time: &fixTime}
	require.NoError(t, WriteGPS(path, fix))

	meta := exifmeta.ReadFile(path)
	require.True(t, meta.HasGPS())
	assert.InDelta(t, fix.Lat, meta.GPS.Lat, 1e-4)
	assert.InDelta(t, fix.Lon, meta.GPS.Lon, 1e-4)
	assert.InDelta(t, fix.Alt, meta.GPS.Alt, 1e-2)
}

func TestWriteGPS_OverwriteReplacesSection(t *testing.T) {
	path := makeJPEG(t, t.TempDir(), "pic.jpg")

	require.NoError(t, WriteGPS(path, exifmeta.GeoFix{Lat: 1, Lon: 2}))
	require.NoError(t, WriteGPS(path, exifmeta.GeoFix{Lat: -33.8568, Lon: 151.2153}))

	meta := exifmeta.ReadFile(path)
	require.True(t, meta.HasGPS())
	assert.InDelta(t, -33.8568, meta.GPS.Lat, 1e-4)
	assert.InDelta(t, 151.2153, meta.GPS.Lon, 1e-4)
}

func TestWriteGPS_UnsupportedContainer(t *testing.T) {
	err := WriteGPS("photo.heic", exifmeta.GeoFix{Lat: 10, Lon: 20})
	assert.ErrorIs(t, err, ErrUnsupportedContainer)

	err = WriteGPS("photo.tiff", exifmeta.GeoFix{Lat: 10, Lon: 20})
	assert.ErrorIs(t, err, ErrUnsupportedContainer)
}

func TestWriteGPS_FailureLeavesOriginalIntact(t *testing.T) {
	// A .jpg that is not actually a JPEG must fail without touching the
	// original bytes and without leaving temp files behind.
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jpg")
	original := []byte("this is not a jpeg")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	err := WriteGPS(path, exifmeta.GeoFix{Lat: 10, Lon: 20})
	assert.Error(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
