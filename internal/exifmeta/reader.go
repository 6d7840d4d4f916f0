// internal/exifmeta/reader.go
package exifmeta

import (
	"os"
	"strings"

	dexif "github.com/dsoprea/go-exif/v2"
	exifcommon "github.com/dsoprea/go-exif/v2/common"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/bstardust/photo-geotagger/internal/geomath"
	"github.com/bstardust/photo-geotagger/internal/logger"
)

// ReadFile extracts normalized metadata from an image on disk. Any I/O
// or decode failure yields empty metadata and a logged error; a bad
// file must never abort a batch.
func ReadFile(path string) ImageMetadata {
	shape, err := extractShape(path)
	if err != nil {
		logger.Error("Failed to read metadata from %s: %v", path, err)
		return ImageMetadata{}
	}
	return Normalize(shape)
}

// extractShape decodes the embedded EXIF blob into one of the two
// dialect shapes. The structured-tree decoder runs first; the flat
// tag-id decoder is the fallback for containers it rejects.
func extractShape(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	x, decodeErr := exif.Decode(f)
	f.Close()
	if decodeErr == nil {
		tree := TreeDialect{}
		x.Walk(&treeWalker{tree: tree})
		return tree, nil
	}
	logger.Debug("Structured decode failed for %s, trying flat decode: %v", path, decodeErr)

	rawExif, err := dexif.SearchFileAndExtractExif(path)
	if err != nil {
		return nil, err
	}
	return flatFromRaw(rawExif)
}

// treeWalker collects goexif fields into the section-keyed tree shape.
type treeWalker struct {
	tree TreeDialect
}

func (w *treeWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	section := "EXIF"
	if strings.HasPrefix(string(name), "GPS") {
		section = "GPS"
	}
	sec := w.tree[section]
	if sec == nil {
		sec = map[string]any{}
		w.tree[section] = sec
	}

	switch name {
	case exif.GPSLatitude, exif.GPSLongitude:
		triple := make([]any, 0, 3)
		for i := 0; i < 3; i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				return nil
			}
			triple = append(triple, geomath.Rational{Num: num, Den: den})
		}
		sec[string(name)] = triple
	case exif.GPSAltitude:
		if num, den, err := tag.Rat2(0); err == nil {
			sec[string(name)] = geomath.Rational{Num: num, Den: den}
		}
	default:
		if s, err := tag.StringVal(); err == nil {
			sec[string(name)] = s
		}
	}
	return nil
}

// flatFromRaw builds the flat tag-id shape from a raw EXIF blob.
func flatFromRaw(rawExif []byte) (FlatTagMap, error) {
	tags, err := dexif.GetFlatExifData(rawExif)
	if err != nil {
		return nil, err
	}

	flat := FlatTagMap{}
	gps := map[uint16]any{}
	for _, t := range tags {
		switch t.IfdPath {
		case "IFD/GPSInfo":
			gps[t.TagId] = flatValue(t.Value)
		case "IFD", "IFD/Exif":
			flat[t.TagId] = flatValue(t.Value)
		}
	}
	if len(gps) > 0 {
		flat[tagGPSInfo] = gps
	}
	return flat, nil
}

// flatValue converts decoder-native values into the shapes the
// normalizer understands.
func flatValue(v any) any {
	switch val := v.(type) {
	case []exifcommon.Rational:
		if len(val) == 1 {
			return geomath.Rational{Num: int64(val[0].Numerator), Den: int64(val[0].Denominator)}
		}
		out := make([]any, len(val))
		for i, r := range val {
			out[i] = geomath.Rational{Num: int64(r.Numerator), Den: int64(r.Denominator)}
		}
		return out
	case []string:
		if len(val) == 1 {
			return val[0]
		}
		return val
	default:
		return v
	}
}
