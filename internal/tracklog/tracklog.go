// internal/tracklog/tracklog.go
package tracklog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bstardust/photo-geotagger/internal/logger"
)

// Point is a single recorded fix in the track.
type Point struct {
	Time time.Time
	Lat  float64
	Lon  float64
	Alt  float64
}

// Log is a time-ordered sequence of track points. It is built once,
// sorted ascending by time, and never mutated afterwards. Safe to
// share across workers without synchronization.
type Log struct {
	points []Point
	times  []time.Time
}

const rowTimeLayout = "2006-01-02 15:04:05"

// Column header aliases, matched case-insensitively.
var (
	timestampAliases = []string{"timestamp", "time", "gpstime", "datatime"}
	latitudeAliases  = []string{"latitude", "lat"}
	longitudeAliases = []string{"longitude", "lon", "long"}
	altitudeAliases  = []string{"altitude", "alt"}
)

// Load parses a tabular track file. Rows that cannot be parsed are
// skipped with a warning; only an unreadable or empty file is an error.
func Load(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track log: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads track points from CSV content with a header row.
func Parse(r io.Reader) (*Log, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read track log header: %w", err)
	}
	if len(header) > 0 {
		// Strip a UTF-8 BOM left by spreadsheet exports.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	tsIdx := findColumn(header, timestampAliases)
	latIdx := findColumn(header, latitudeAliases)
	lonIdx := findColumn(header, longitudeAliases)
	altIdx := findColumn(header, altitudeAliases)

	if tsIdx < 0 || latIdx < 0 || lonIdx < 0 {
		// Fixed column positions used by common logger exports.
		logger.Warn("Could not resolve track log columns by header %v, guessing ts=0 lat=3 lon=2", header)
		tsIdx, latIdx, lonIdx = 0, 3, 2
		altIdx = -1
		if len(header) > 4 {
			altIdx = 4
		}
	} else {
		logger.Debug("Resolved track log columns: ts=%d lat=%d lon=%d alt=%d", tsIdx, latIdx, lonIdx, altIdx)
	}

	var points []Point
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("Skipping track log line %d: %v", line, err)
			continue
		}
		if len(row) <= max3(tsIdx, latIdx, lonIdx) {
			logger.Warn("Skipping track log line %d: not enough columns", line)
			continue
		}

		ts, err := parseRowTime(strings.TrimSpace(row[tsIdx]))
		if err != nil {
			logger.Warn("Skipping track log line %d: %v", line, err)
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[latIdx]), 64)
		if err != nil {
			logger.Warn("Skipping track log line %d: bad latitude: %v", line, err)
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[lonIdx]), 64)
		if err != nil {
			logger.Warn("Skipping track log line %d: bad longitude: %v", line, err)
			continue
		}

		alt := 0.0
		if altIdx >= 0 && altIdx < len(row) && strings.TrimSpace(row[altIdx]) != "" {
			if a, err := strconv.ParseFloat(strings.TrimSpace(row[altIdx]), 64); err == nil {
				alt = a
			}
		}

		points = append(points, Point{Time: ts, Lat: lat, Lon: lon, Alt: alt})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})

	times := make([]time.Time, len(points))
	for i, p := range points {
		times[i] = p.Time
	}

	logger.Info("Loaded %d track points", len(points))
	return &Log{points: points, times: times}, nil
}

// Len returns the number of points in the log.
func (l *Log) Len() int {
	return len(l.points)
}

// FindNearest returns the track point closest in time to target, if its
// distance is within tolerance (inclusive). Only the two points
// adjacent to the insertion position are considered; the log is assumed
// locally dense relative to the tolerance. When both candidates are
// equally distant the earlier one wins.
func (l *Log) FindNearest(target time.Time, tolerance time.Duration) (Point, bool) {
	if len(l.points) == 0 {
		return Point{}, false
	}

	idx := sort.Search(len(l.times), func(i int) bool {
		return !l.times[i].Before(target)
	})

	var candidates []Point
	if idx > 0 {
		candidates = append(candidates, l.points[idx-1])
	}
	if idx < len(l.points) {
		candidates = append(candidates, l.points[idx])
	}

	var best Point
	minDiff := tolerance + time.Second
	for _, p := range candidates {
		diff := target.Sub(p.Time)
		if diff < 0 {
			diff = -diff
		}
		if diff < minDiff {
			minDiff = diff
			best = p
		}
	}

	if minDiff <= tolerance {
		return best, true
	}
	return Point{}, false
}

func findColumn(header []string, aliases []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, a := range aliases {
			if h == a {
				return i
			}
		}
	}
	return -1
}

// parseRowTime accepts either a numeric Unix epoch value or a literal
// "YYYY-MM-DD HH:MM:SS" string; both are interpreted as local time.
func parseRowTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if isNumeric(s) {
		sec, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad epoch timestamp %q: %w", s, err)
		}
		return time.Unix(int64(sec), int64((sec-float64(int64(sec)))*1e9)), nil
	}

	t, err := time.ParseInLocation(rowTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}

func isNumeric(s string) bool {
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot && i > 0:
			dot = true
		default:
			return false
		}
	}
	return len(s) > 0
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
