// internal/progress/reporter.go
package progress

import (
	"sync"
	"time"

	"github.com/bstardust/photo-geotagger/internal/logger"
)

// Reporter tracks and reports batch processing progress
type Reporter struct {
	mu             sync.Mutex
	total          int
	processed      int
	tagged         int
	moved          int
	failed         int
	startTime      time.Time
	lastUpdateTime time.Time
	updateInterval time.Duration
}

// New creates a new progress reporter
func New() *Reporter {
	return &Reporter{
		updateInterval: 2 * time.Second,
	}
}

// Start initializes the reporter with the total number of files
func (r *Reporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = total
	r.processed = 0
	r.tagged = 0
	r.moved = 0
	r.failed = 0
	r.startTime = time.Now()
	r.lastUpdateTime = time.Now()

	logger.Info("Processing %d files", total)
}

// FileDone records one finished file
func (r *Reporter) FileDone(tagged, moved, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.processed++
	if tagged {
		r.tagged++
	}
	if moved {
		r.moved++
	}
	if failed {
		r.failed++
	}
	r.updateProgress()
}

// Finish completes the progress reporting
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := time.Since(r.startTime)
	logger.Info("Done: %d/%d files processed, %d tagged, %d moved, %d failed in %s",
		r.processed, r.total, r.tagged, r.moved, r.failed, duration.Round(time.Second))
}

// updateProgress displays progress at most once per interval
func (r *Reporter) updateProgress() {
	now := time.Now()
	if now.Sub(r.lastUpdateTime) < r.updateInterval {
		return
	}
	r.lastUpdateTime = now

	if r.processed == 0 {
		return
	}

	percentage := float64(r.processed) / float64(r.total) * 100
	duration := now.Sub(r.startTime)

	timePerFile := duration / time.Duration(r.processed)
	remaining := timePerFile * time.Duration(r.total-r.processed)

	logger.Info("Progress: %.1f%% (%d/%d, %d tagged, %d moved, %d failed) ETA: %s",
		percentage, r.processed, r.total, r.tagged, r.moved, r.failed,
		remaining.Round(time.Second))
}
