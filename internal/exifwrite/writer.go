// internal/exifwrite/writer.go
package exifwrite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dexif "github.com/dsoprea/go-exif/v2"
	exifcommon "github.com/dsoprea/go-exif/v2/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure"

	"github.com/bstardust/photo-geotagger/internal/exifmeta"
	"github.com/bstardust/photo-geotagger/internal/geomath"
)

// ErrUnsupportedContainer marks image formats whose metadata we can
// read but not rewrite.
var ErrUnsupportedContainer = errors.New("container does not support metadata rewrite")

// gpsIfdPointerTag is the IFD0 tag referencing the GPS child IFD.
const gpsIfdPointerTag uint16 = 0x8825

// WriteGPS merges fix into the image's metadata blob and persists it.
// The GPS section is replaced wholesale. A partial existing section is
// discarded, never merged field by field. All other metadata sections
// and the image payload are preserved.
//
// The rewrite goes through a temp file in the same directory followed
// by a rename, so a failure never leaves a partially written image.
//
// Whether an existing GPS section may be overwritten is the caller's
// decision; it is not re-checked here.
func WriteGPS(path string, fix exifmeta.GeoFix) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".jpg" && ext != ".jpeg" {
		return fmt.Errorf("%w: %s", ErrUnsupportedContainer, ext)
	}

	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse container: %w", err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	rootIb, err := rootBuilder(sl)
	if err != nil {
		return err
	}

	// Drop any existing GPS child IFD before attaching the new one.
	rootIb.DeleteAll(gpsIfdPointerTag)

	gpsIb, err := buildGPSIfd(fix)
	if err != nil {
		return err
	}
	if err := rootIb.AddChildIb(gpsIb); err != nil {
		return fmt.Errorf("failed to attach GPS section: %w", err)
	}
	if err := sl.SetExif(rootIb); err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	return replaceFile(path, sl)
}

// rootBuilder returns an IFD builder seeded from the file's existing
// EXIF chain, or a fresh one when the file has no EXIF at all.
func rootBuilder(sl *jpegstructure.SegmentList) (*dexif.IfdBuilder, error) {
	rootIb, err := sl.ConstructExifBuilder()
	if err == nil {
		return rootIb, nil
	}

	im := dexif.NewIfdMappingWithStandard()
	ti := dexif.NewTagIndex()
	if err := dexif.LoadStandardTags(ti); err != nil {
		return nil, fmt.Errorf("failed to load standard tags: %w", err)
	}
	return dexif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder), nil
}

func buildGPSIfd(fix exifmeta.GeoFix) (*dexif.IfdBuilder, error) {
	im := dexif.NewIfdMappingWithStandard()
	ti := dexif.NewTagIndex()

	gpsIb := dexif.NewIfdBuilder(im, ti, exifcommon.IfdGpsInfoStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)

	alt := fix.Alt
	if alt < 0 {
		alt = -alt
	}

	type gpsField struct {
		name  string
		value any
	}
	fields := []gpsField{
		{"GPSVersionID", []byte{2, 0, 0, 0}},
		{"GPSLatitudeRef", geomath.LatitudeRef(fix.Lat)},
		{"GPSLatitude", toRationals(geomath.DMSFromDegrees(fix.Lat))},
		{"GPSLongitudeRef", geomath.LongitudeRef(fix.Lon)},
		{"GPSLongitude", toRationals(geomath.DMSFromDegrees(fix.Lon))},
		// Altitude reference 0 = above sea level
		{"GPSAltitudeRef", []byte{0}},
		{"GPSAltitude", []exifcommon.Rational{{Numerator: uint32(alt * 100), Denominator: 100}}},
	}

	if fix.Time != nil {
		t := *fix.Time
		fields = append(fields,
			gpsField{"GPSTimeStamp", []exifcommon.Rational{
				{Numerator: uint32(t.Hour()), Denominator: 1},
				{Numerator: uint32(t.Minute()), Denominator: 1},
				{Numerator: uint32(t.Second()), Denominator: 1},
			}},
			gpsField{"GPSDateStamp", t.Format("2006:01:02")},
		)
	}

	for _, f := range fields {
		if err := gpsIb.SetStandardWithName(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", f.name, err)
		}
	}
	return gpsIb, nil
}

func toRationals(dms geomath.DMS) []exifcommon.Rational {
	out := make([]exifcommon.Rational, len(dms))
	for i, r := range dms {
		out[i] = exifcommon.Rational{Numerator: uint32(r.Num), Denominator: uint32(r.Den)}
	}
	return out
}

// replaceFile writes the rebuilt container next to the original and
// renames it into place.
func replaceFile(path string, sl *jpegstructure.SegmentList) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat original: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".geotag-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := sl.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write rebuilt image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush rebuilt image: %w", err)
	}

	if err := os.Chmod(tmpPath, info.Mode()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to restore file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace original: %w", err)
	}
	return nil
}
