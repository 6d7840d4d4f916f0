// internal/tagger/tagger.go
package tagger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bstardust/photo-geotagger/internal/config"
	"github.com/bstardust/photo-geotagger/internal/exifmeta"
	"github.com/bstardust/photo-geotagger/internal/exifwrite"
	"github.com/bstardust/photo-geotagger/internal/logger"
	"github.com/bstardust/photo-geotagger/internal/progress"
	"github.com/bstardust/photo-geotagger/internal/scan"
	"github.com/bstardust/photo-geotagger/internal/tracklog"
	"github.com/bstardust/photo-geotagger/internal/worker"
)

// HoldingDirName is the sibling directory no-GPS images are moved into.
const HoldingDirName = "_nogps_"

// MetadataReader extracts normalized metadata from an image file.
type MetadataReader interface {
	ReadFile(path string) exifmeta.ImageMetadata
}

// GPSWriter persists a GPS fix into an image file.
type GPSWriter interface {
	WriteGPS(path string, fix exifmeta.GeoFix) error
}

// Result is the terminal outcome for one file. Never mutated after the
// worker returns it.
type Result struct {
	Filename string
	HadGPS   bool
	HasGPS   bool
	GPSAdded bool
	Moved    bool
	Note     string
}

// StatusLine renders the per-file report line.
func (r Result) StatusLine() string {
	line := r.Filename + ": "
	if r.HasGPS {
		line += "has GPS"
		if r.GPSAdded {
			line += " (added)"
		}
	} else {
		line += "no GPS"
	}
	if r.Note != "" {
		line += " [" + r.Note + "]"
	}
	if r.Moved {
		line += " -> moved"
	}
	return line
}

// Summary aggregates a whole run.
type Summary struct {
	Total      int
	WithGPS    int
	WithoutGPS int
	Added      int
	Moved      int
}

// Tagger runs the per-file pipeline across a worker pool
type Tagger struct {
	ctx      context.Context
	cfg      config.TagConfig
	log      *tracklog.Log // nil in check/move-only mode
	reader   MetadataReader
	writer   GPSWriter
	pool     *worker.Pool
	progress *progress.Reporter
}

// New creates a Tagger with explicit collaborators.
func New(ctx context.Context, cfg config.TagConfig, log *tracklog.Log,
	reader MetadataReader, writer GPSWriter, pool *worker.Pool,
	prog *progress.Reporter) *Tagger {
	return &Tagger{
		ctx:      ctx,
		cfg:      cfg,
		log:      log,
		reader:   reader,
		writer:   writer,
		pool:     pool,
		progress: prog,
	}
}

// NewDefault wires a Tagger against the real filesystem reader/writer.
func NewDefault(ctx context.Context, cfg config.TagConfig, log *tracklog.Log) *Tagger {
	return New(ctx, cfg, log, fsReader{}, fsWriter{},
		worker.NewPool(cfg.Concurrency), progress.New())
}

// Run processes every eligible file in the configured folder. Results
// are collected as workers complete but returned in input (sorted
// filename) order. Per-file failures never abort the run; context
// cancellation stops dispatch of new files without interrupting
// in-flight ones.
func (t *Tagger) Run() ([]Result, Summary, error) {
	files, err := scan.ListImages(t.cfg.Folder, config.SupportedExtensions)
	if err != nil {
		return nil, Summary{}, err
	}
	if len(files) == 0 {
		logger.Info("No supported image files found in %s", t.cfg.Folder)
		return nil, Summary{}, nil
	}

	t.progress.Start(len(files))

	results := make([]Result, len(files))
	for i, name := range files {
		i, name := i, name

		if t.ctx.Err() != nil {
			results[i] = Result{Filename: name, Note: "skipped: run canceled"}
			continue
		}

		t.pool.Submit(func() {
			res := t.processFile(name)
			results[i] = res
			t.progress.FileDone(res.GPSAdded, res.Moved, strings.Contains(res.Note, "failed"))
		})
	}
	t.pool.Wait()
	t.progress.Finish()

	summary := Summary{Total: len(files)}
	for _, r := range results {
		if r.HasGPS {
			summary.WithGPS++
		}
		if r.GPSAdded {
			summary.Added++
		}
		if r.Moved {
			summary.Moved++
		}
	}
	summary.WithoutGPS = summary.Total - summary.WithGPS

	return results, summary, nil
}

// processFile runs the strictly ordered read → match → write → re-read
// → classify → move pipeline for one file.
func (t *Tagger) processFile(name string) Result {
	path := filepath.Join(t.cfg.Folder, name)

	meta := t.reader.ReadFile(path)
	res := Result{Filename: name, HadGPS: meta.HasGPS()}

	if t.log != nil && (!res.HadGPS || t.cfg.Overwrite) {
		if meta.CaptureTime != nil {
			meta = t.tryAddGPS(path, meta, &res)
		} else if !res.HadGPS {
			res.Note = "no capture time"
		}
	}

	res.HasGPS = meta.HasGPS()
	if res.HasGPS {
		if t.cfg.ShowCoords && meta.GPS != nil {
			res.Note = appendNote(res.Note, fmt.Sprintf("%.6f, %.6f", meta.GPS.Lat, meta.GPS.Lon))
		}
		return res
	}

	if t.cfg.MoveNoGPS {
		t.moveToHolding(path, name, &res)
	}
	return res
}

// tryAddGPS looks up the nearest track point and writes it. On success
// the metadata is re-read from disk; the on-disk state, not the
// in-memory fix, is the source of truth for final classification.
func (t *Tagger) tryAddGPS(path string, meta exifmeta.ImageMetadata, res *Result) exifmeta.ImageMetadata {
	point, ok := t.log.FindNearest(*meta.CaptureTime, t.cfg.Tolerance)
	if !ok {
		if !res.HadGPS {
			res.Note = fmt.Sprintf("no track match (%s)", meta.CaptureTime.Format("15:04:05"))
		}
		return meta
	}

	fixTime := point.Time
	fix := exifmeta.GeoFix{Lat: point.Lat, Lon: point.Lon, Alt: point.Alt, Time: &fixTime}
	if err := t.writer.WriteGPS(path, fix); err != nil {
		logger.Error("Failed to write GPS to %s: %v", path, err)
		res.Note = "add failed"
		return meta
	}

	logger.Info("Added GPS to %s: (%.6f, %.6f)", res.Filename, fix.Lat, fix.Lon)
	res.GPSAdded = true
	return t.reader.ReadFile(path)
}

// moveToHolding relocates a no-GPS file into the holding directory.
// The directory is created lazily; concurrent workers may race on the
// MkdirAll, which is safe. A move failure is noted but never changes
// the GPS classification.
func (t *Tagger) moveToHolding(path, name string, res *Result) {
	holding := filepath.Join(t.cfg.Folder, HoldingDirName)
	if err := os.MkdirAll(holding, 0o755); err != nil {
		logger.Error("Failed to create holding directory: %v", err)
		res.Note = appendNote(res.Note, "move failed")
		return
	}
	if err := os.Rename(path, filepath.Join(holding, name)); err != nil {
		logger.Error("Failed to move %s: %v", name, err)
		res.Note = appendNote(res.Note, "move failed")
		return
	}
	res.Moved = true
}

func appendNote(note, add string) string {
	if note == "" {
		return add
	}
	return note + "; " + add
}

type fsReader struct{}

func (fsReader) ReadFile(path string) exifmeta.ImageMetadata {
	return exifmeta.ReadFile(path)
}

type fsWriter struct{}

func (fsWriter) WriteGPS(path string, fix exifmeta.GeoFix) error {
	return exifwrite.WriteGPS(path, fix)
}
