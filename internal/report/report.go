package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bstardust/photo-geotagger/internal/tagger"
)

// Write persists the detailed run report: a header, one status line per
// file and the aggregate summary.
func Write(path, folder string, results []tagger.Result, summary tagger.Summary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Geotag report - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Folder: %s\n", folder)
	b.WriteString(strings.Repeat("-", 30) + "\n")

	for _, r := range results {
		b.WriteString(r.StatusLine() + "\n")
	}

	b.WriteString(strings.Repeat("-", 30) + "\n")
	b.WriteString(SummaryLine(summary) + "\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// SummaryLine renders the aggregate counters on a single line.
func SummaryLine(s tagger.Summary) string {
	return fmt.Sprintf("Summary: total=%d, with_gps=%d, without_gps=%d, added=%d, moved=%d",
		s.Total, s.WithGPS, s.WithoutGPS, s.Added, s.Moved)
}
