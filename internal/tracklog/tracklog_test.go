package tracklog

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, csv string) *Log {
	t.Helper()
	log, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	return log
}

func TestParse_HeaderAliases(t *testing.T) {
	log := mustParse(t, "DataTime,Lat,Long,Alt\n2024-05-01 10:02:00,10.0,20.0,150.5\n")
	require.Equal(t, 1, log.Len())

	p, ok := log.FindNearest(time.Date(2024, 5, 1, 10, 2, 0, 0, time.Local), time.Minute)
	require.True(t, ok)
	assert.Equal(t, 10.0, p.Lat)
	assert.Equal(t, 20.0, p.Lon)
	assert.Equal(t, 150.5, p.Alt)
}

func TestParse_StripsHeaderBOM(t *testing.T) {
	log := mustParse(t, "\ufefftime,lat,lon\n2024-05-01 10:00:00,10.0,20.0\n")
	require.Equal(t, 1, log.Len())

	p, ok := log.FindNearest(time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local), time.Second)
	require.True(t, ok)
	assert.Equal(t, 10.0, p.Lat)
}

func TestParse_EpochTimestamps(t *testing.T) {
	target := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	epoch := target.Unix()

	csv := "timestamp,latitude,longitude\n" +
		strconv.FormatInt(epoch, 10) + ",1.5,2.5\n"
	log := mustParse(t, csv)

	p, ok := log.FindNearest(target, time.Second)
	require.True(t, ok)
	assert.True(t, target.Equal(p.Time))
	assert.Equal(t, 1.5, p.Lat)
}

func TestParse_PositionalFallback(t *testing.T) {
	// Unrecognized headers fall back to ts=0 lat=3 lon=2 alt=4.
	csv := "c0,c1,c2,c3,c4\n" +
		"2024-05-01 10:00:00,x,20.0,10.0,99.0\n"
	log := mustParse(t, csv)
	require.Equal(t, 1, log.Len())

	p, ok := log.FindNearest(time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local), time.Second)
	require.True(t, ok)
	assert.Equal(t, 10.0, p.Lat)
	assert.Equal(t, 20.0, p.Lon)
	assert.Equal(t, 99.0, p.Alt)
}

func TestParse_SkipsBadRows(t *testing.T) {
	csv := "time,lat,lon\n" +
		"2024-05-01 10:00:00,10.0,20.0\n" +
		"not-a-time,11.0,21.0\n" +
		"2024-05-01 10:05:00,not-a-number,21.0\n" +
		"2024-05-01 10:06:00\n" +
		"2024-05-01 10:10:00,12.0,22.0\n"
	log := mustParse(t, csv)
	assert.Equal(t, 2, log.Len())
}

func TestParse_SortsOutOfOrderRows(t *testing.T) {
	csv := "time,lat,lon\n" +
		"2024-05-01 10:10:00,2.0,2.0\n" +
		"2024-05-01 10:00:00,1.0,1.0\n"
	log := mustParse(t, csv)

	p, ok := log.FindNearest(time.Date(2024, 5, 1, 10, 1, 0, 0, time.Local), 2*time.Minute)
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Lat)
}

func TestFindNearest_ToleranceBoundary(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	csv := "time,lat,lon\n" +
		base.Add(1000*time.Second).Format("2006-01-02 15:04:05") + ",1.0,1.0\n" +
		base.Add(2000*time.Second).Format("2006-01-02 15:04:05") + ",2.0,2.0\n"
	log := mustParse(t, csv)

	query := base.Add(1300 * time.Second)

	// diff to the earlier point is exactly 300s: inclusive boundary.
	p, ok := log.FindNearest(query, 300*time.Second)
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Lat)

	// one second tighter and nothing matches.
	_, ok = log.FindNearest(query, 299*time.Second)
	assert.False(t, ok)
}

func TestFindNearest_PicksCloserNeighbor(t *testing.T) {
	csv := "time,lat,lon\n" +
		"2024-05-01 10:00:00,1.0,1.0\n" +
		"2024-05-01 10:10:00,2.0,2.0\n"
	log := mustParse(t, csv)

	p, ok := log.FindNearest(time.Date(2024, 5, 1, 10, 9, 0, 0, time.Local), 10*time.Minute)
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Lat)
}

func TestFindNearest_EqualDistanceTieBreak(t *testing.T) {
	// Both neighbors 5 minutes away: the earlier point wins.
	csv := "time,lat,lon\n" +
		"2024-05-01 10:00:00,1.0,1.0\n" +
		"2024-05-01 10:10:00,2.0,2.0\n"
	log := mustParse(t, csv)

	p, ok := log.FindNearest(time.Date(2024, 5, 1, 10, 5, 0, 0, time.Local), 10*time.Minute)
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Lat)
}

func TestFindNearest_EmptyLog(t *testing.T) {
	log := mustParse(t, "time,lat,lon\n")
	_, ok := log.FindNearest(time.Now(), time.Hour)
	assert.False(t, ok)
}
