package exifmeta

import (
	"time"
)

// GeoFix is a single geographic position sample. Immutable once built.
type GeoFix struct {
	Lat  float64
	Lon  float64
	Alt  float64
	Time *time.Time
}

// ImageMetadata is the normalized view of one image's metadata,
// independent of which tag dialect it was decoded from. It is rebuilt
// from disk after every write so callers always reason about current
// on-disk truth.
type ImageMetadata struct {
	GPS         *GeoFix
	CaptureTime *time.Time
}

// HasGPS reports whether the image carries a complete GPS position.
func (m ImageMetadata) HasGPS() bool {
	return m.GPS != nil
}
