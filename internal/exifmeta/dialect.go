// internal/exifmeta/dialect.go
//
// Camera firmware and editing tools disagree about how GPS metadata is
// shaped in memory once decoded. We normalize two dialects:
//
//   - TreeDialect: tags grouped under named IFD sections ("GPS", "EXIF").
//   - FlatTagMap: a flat tag-id map where tag 0x8825 (GPSInfo) holds a
//     nested sub-map of GPS tags.
//
// The dialect is resolved exactly once at read time; everything
// downstream sees only ImageMetadata.
package exifmeta

import (
	"strings"
	"time"

	"github.com/bstardust/photo-geotagger/internal/geomath"
	"github.com/bstardust/photo-geotagger/internal/logger"
)

// TreeDialect groups tag name/value pairs under IFD section names.
type TreeDialect map[string]map[string]any

// FlatTagMap maps numeric tag ids to values; the GPSInfo tag holds a
// nested map[uint16]any of GPS IFD tags.
type FlatTagMap map[uint16]any

// Tag ids used by the flat dialect.
const (
	tagGPSInfo          uint16 = 0x8825
	tagDateTime         uint16 = 0x0132
	tagDateTimeOriginal uint16 = 0x9003

	gpsTagLatitudeRef  uint16 = 0x0001
	gpsTagLatitude     uint16 = 0x0002
	gpsTagLongitudeRef uint16 = 0x0003
	gpsTagLongitude    uint16 = 0x0004
	gpsTagAltitude     uint16 = 0x0006
)

// exifTimeLayout is the fixed EXIF textual timestamp pattern,
// interpreted as local time, never UTC-converted.
const exifTimeLayout = "2006:01:02 15:04:05"

// Normalize resolves either dialect into the canonical model. Shapes it
// does not recognize produce empty metadata.
func Normalize(shape any) ImageMetadata {
	switch s := shape.(type) {
	case TreeDialect:
		return normalizeTree(s)
	case FlatTagMap:
		return normalizeFlat(s)
	default:
		return ImageMetadata{}
	}
}

func normalizeTree(tree TreeDialect) ImageMetadata {
	var meta ImageMetadata

	exifSec := tree["EXIF"]
	meta.CaptureTime = parseExifTime(exifSec["DateTimeOriginal"])
	if meta.CaptureTime == nil {
		meta.CaptureTime = parseExifTime(exifSec["DateTime"])
	}

	gps := tree["GPS"]
	if gps == nil {
		return meta
	}
	meta.GPS = buildFix(
		gps["GPSLatitude"], gps["GPSLatitudeRef"],
		gps["GPSLongitude"], gps["GPSLongitudeRef"],
		gps["GPSAltitude"],
	)
	return meta
}

func normalizeFlat(flat FlatTagMap) ImageMetadata {
	var meta ImageMetadata

	meta.CaptureTime = parseExifTime(flat[tagDateTimeOriginal])
	if meta.CaptureTime == nil {
		meta.CaptureTime = parseExifTime(flat[tagDateTime])
	}

	gps, ok := flat[tagGPSInfo].(map[uint16]any)
	if !ok {
		return meta
	}
	meta.GPS = buildFix(
		gps[gpsTagLatitude], gps[gpsTagLatitudeRef],
		gps[gpsTagLongitude], gps[gpsTagLongitudeRef],
		gps[gpsTagAltitude],
	)
	return meta
}

// buildFix applies the all-or-nothing GPS contract: latitude value,
// latitude ref, longitude value and longitude ref must all be present
// and convertible, or the image has no GPS. Altitude defaults to 0.
func buildFix(latVal, latRef, lonVal, lonRef, altVal any) *GeoFix {
	if latVal == nil || latRef == nil || lonVal == nil || lonRef == nil {
		return nil
	}

	latTriple, ok := latVal.([]any)
	if !ok {
		return nil
	}
	lonTriple, ok := lonVal.([]any)
	if !ok {
		return nil
	}

	latMag, err := geomath.DegreesFromDMS(latTriple)
	if err != nil {
		logger.Warn("Dropping GPS coordinate: %v", err)
		return nil
	}
	lonMag, err := geomath.DegreesFromDMS(lonTriple)
	if err != nil {
		logger.Warn("Dropping GPS coordinate: %v", err)
		return nil
	}

	fix := &GeoFix{
		Lat: geomath.SignedLatitude(latMag, latRef),
		Lon: geomath.SignedLongitude(lonMag, lonRef),
	}
	if alt, ok := scalarValue(altVal); ok {
		fix.Alt = alt
	}
	return fix
}

func parseExifTime(v any) *time.Time {
	var raw string
	switch s := v.(type) {
	case string:
		raw = s
	case []byte:
		raw = string(s)
	default:
		return nil
	}

	t, err := time.ParseInLocation(exifTimeLayout, strings.TrimSpace(raw), time.Local)
	if err != nil {
		logger.Warn("Unparsable EXIF timestamp %q: %v", raw, err)
		return nil
	}
	return &t
}

func scalarValue(v any) (float64, bool) {
	switch n := v.(type) {
	case geomath.Rational:
		f, err := n.Float()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case []int64:
		if len(n) == 2 && n[1] != 0 {
			return float64(n[0]) / float64(n[1]), true
		}
	}
	return 0, false
}
