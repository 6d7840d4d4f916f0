package geomath

import (
	"errors"
	"fmt"
)

// Conversion errors. Callers are expected to log and treat the
// coordinate as absent; none of these is fatal.
var (
	ErrInconsistentFormat = errors.New("mixed element formats in DMS triple")
	ErrDivisionByZero     = errors.New("zero denominator in DMS rational")
	ErrUnrecognizedFormat = errors.New("unrecognized DMS value format")
)

// Rational is an EXIF rational value: an exact numerator/denominator pair.
type Rational struct {
	Num int64
	Den int64
}

// Float returns the rational as a float64.
func (r Rational) Float() (float64, error) {
	if r.Den == 0 {
		return 0, ErrDivisionByZero
	}
	return float64(r.Num) / float64(r.Den), nil
}

// DMS is the degree/minute/second triple written into EXIF GPS tags.
type DMS [3]Rational

// DegreesFromDMS converts a degree/minute/second triple to decimal
// degrees. The three elements may arrive as Rational values, as plain
// numbers (float64 or int), or as nested 2-element []int64 pairs;
// different EXIF producers emit all three shapes. All elements must use
// the same shape.
func DegreesFromDMS(triple []any) (float64, error) {
	if len(triple) != 3 {
		return 0, fmt.Errorf("%w: want 3 elements, got %d", ErrUnrecognizedFormat, len(triple))
	}

	var parts [3]float64
	switch triple[0].(type) {
	case Rational:
		for i, v := range triple {
			r, ok := v.(Rational)
			if !ok {
				return 0, fmt.Errorf("%w: element %d is %T", ErrInconsistentFormat, i, v)
			}
			f, err := r.Float()
			if err != nil {
				return 0, err
			}
			parts[i] = f
		}
	case float64, int:
		for i, v := range triple {
			f, ok := asNumber(v)
			if !ok {
				return 0, fmt.Errorf("%w: element %d is %T", ErrInconsistentFormat, i, v)
			}
			parts[i] = f
		}
	case []int64:
		for i, v := range triple {
			pair, ok := v.([]int64)
			if !ok || len(pair) != 2 {
				return 0, fmt.Errorf("%w: element %d is %T", ErrInconsistentFormat, i, v)
			}
			if pair[1] == 0 {
				return 0, ErrDivisionByZero
			}
			parts[i] = float64(pair[0]) / float64(pair[1])
		}
	default:
		return 0, fmt.Errorf("%w: element type %T", ErrUnrecognizedFormat, triple[0])
	}

	return parts[0] + parts[1]/60.0 + parts[2]/3600.0, nil
}

// DMSFromDegrees converts decimal degrees to the rational triple used by
// EXIF. The sign is discarded; it travels separately in the hemisphere
// reference tag. Seconds are scaled over a fixed denominator of 10000
// for sub-second precision.
func DMSFromDegrees(deg float64) DMS {
	if deg < 0 {
		deg = -deg
	}
	d := int64(deg)
	minFloat := (deg - float64(d)) * 60
	m := int64(minFloat)
	secFloat := (minFloat - float64(m)) * 60
	return DMS{
		{Num: d, Den: 1},
		{Num: m, Den: 1},
		{Num: int64(secFloat * 10000), Den: 10000},
	}
}

// LatitudeRef returns the hemisphere reference for a signed latitude.
func LatitudeRef(lat float64) string {
	if lat >= 0 {
		return "N"
	}
	return "S"
}

// LongitudeRef returns the hemisphere reference for a signed longitude.
func LongitudeRef(lon float64) string {
	if lon >= 0 {
		return "E"
	}
	return "W"
}

// SignedLatitude applies a hemisphere reference to a latitude magnitude.
// Any reference other than "N" negates, matching how cameras that write
// a bare "S" are handled.
func SignedLatitude(magnitude float64, ref any) float64 {
	if DecodeRef(ref) == "N" {
		return magnitude
	}
	return -magnitude
}

// SignedLongitude applies a hemisphere reference to a longitude magnitude.
func SignedLongitude(magnitude float64, ref any) float64 {
	if DecodeRef(ref) == "E" {
		return magnitude
	}
	return -magnitude
}

// DecodeRef normalizes a hemisphere reference tag value. Some producers
// store it as text, others as raw bytes.
func DecodeRef(ref any) string {
	switch v := ref.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
