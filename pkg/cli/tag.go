package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bstardust/photo-geotagger/internal/config"
	"github.com/bstardust/photo-geotagger/internal/export"
	"github.com/bstardust/photo-geotagger/internal/logger"
	"github.com/bstardust/photo-geotagger/internal/report"
	"github.com/bstardust/photo-geotagger/internal/tagger"
	"github.com/bstardust/photo-geotagger/internal/tracklog"
)

func newTagCommand(cfg *config.Config) *cobra.Command {
	var toleranceSecs int

	cmd := &cobra.Command{
		Use:   "tag [flags] <image-folder>",
		Short: "Scan a folder and backfill GPS metadata from a track log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Tag.Folder = args[0]
			cfg.Tag.Tolerance = time.Duration(toleranceSecs) * time.Second
			return runTag(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.Tag.TrackPath, "gps-file", "g", "", "CSV track log with timestamp/latitude/longitude columns")
	cmd.Flags().IntVarP(&toleranceSecs, "tolerance", "t", int(config.DefaultTolerance/time.Second), "Maximum time-match tolerance in seconds")
	cmd.Flags().BoolVar(&cfg.Tag.Overwrite, "overwrite", false, "Replace GPS sections that already exist")
	cmd.Flags().BoolVarP(&cfg.Tag.MoveNoGPS, "move", "m", false, "Move files still lacking GPS into the "+tagger.HoldingDirName+" subfolder")
	cmd.Flags().BoolVarP(&cfg.Tag.ShowCoords, "coordinates", "c", false, "Include decimal coordinates in status lines")
	cmd.Flags().StringVarP(&cfg.Tag.ReportPath, "report", "o", "", "Write the detailed run report to this file")
	cmd.Flags().IntVar(&cfg.Tag.Concurrency, "concurrency", cfg.Tag.Concurrency, "Number of files processed in parallel")

	// Optional export destination
	cmd.Flags().StringVar(&cfg.S3.Endpoint, "s3-endpoint", "", "S3 endpoint; when set, tagged images are uploaded after the run")
	cmd.Flags().StringVar(&cfg.S3.Region, "s3-region", cfg.S3.Region, "S3 region")
	cmd.Flags().StringVar(&cfg.S3.Bucket, "s3-bucket", "", "S3 bucket name")
	cmd.Flags().StringVar(&cfg.S3.AccessKey, "s3-access-key", "", "S3 access key")
	cmd.Flags().StringVar(&cfg.S3.SecretKey, "s3-secret-key", "", "S3 secret key")
	cmd.Flags().BoolVar(&cfg.S3.UseSSL, "s3-use-ssl", true, "Use SSL for the S3 connection")
	cmd.Flags().StringVar(&cfg.S3.Prefix, "s3-prefix", "", "Prefix for uploaded object keys")

	viper.BindPFlags(cmd.Flags())

	return cmd
}

func runTag(ctx context.Context, cfg *config.Config) error {
	logger.SetLevel(cfg.LogLevel)

	// Pre-flight: these two are the only fatal conditions.
	if info, err := os.Stat(cfg.Tag.Folder); err != nil || !info.IsDir() {
		return fmt.Errorf("folder %s does not exist or is not a directory", cfg.Tag.Folder)
	}
	if cfg.Tag.TrackPath != "" {
		if _, err := os.Stat(cfg.Tag.TrackPath); err != nil {
			return fmt.Errorf("track log %s does not exist", cfg.Tag.TrackPath)
		}
	}

	// A track log that exists but cannot be parsed degrades the run to
	// check/move-only mode instead of aborting it.
	var log *tracklog.Log
	if cfg.Tag.TrackPath != "" {
		var err error
		log, err = tracklog.Load(cfg.Tag.TrackPath)
		if err != nil {
			logger.Warn("Could not load track log, running in check/move-only mode: %v", err)
			log = nil
		}
	}

	results, summary, err := tagger.NewDefault(ctx, cfg.Tag, log).Run()
	if err != nil {
		return err
	}

	// The summary always prints, regardless of partial failures.
	logger.Info("%s", report.SummaryLine(summary))

	if cfg.Tag.ReportPath != "" {
		if err := report.Write(cfg.Tag.ReportPath, cfg.Tag.Folder, results, summary); err != nil {
			logger.Error("Failed to write report: %v", err)
		} else {
			logger.Info("Report written to %s", cfg.Tag.ReportPath)
		}
	}

	if cfg.S3.Endpoint != "" {
		exportResults(ctx, cfg, results)
	}

	return nil
}

// exportResults uploads the files that ended the run with GPS and are
// still in place.
func exportResults(ctx context.Context, cfg *config.Config, results []tagger.Result) {
	client, err := export.New(ctx, cfg.S3)
	if err != nil {
		logger.Error("Failed to initialize S3 export: %v", err)
		return
	}

	var names []string
	for _, r := range results {
		if r.HasGPS && !r.Moved {
			names = append(names, r.Filename)
		}
	}

	uploaded, err := client.UploadFiles(ctx, cfg.Tag.Folder, names)
	if err != nil {
		logger.Error("Export interrupted: %v", err)
	}
	logger.Info("Exported %d/%d tagged images", uploaded, len(names))
}
