package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bstardust/photo-geotagger/internal/config"
	"github.com/bstardust/photo-geotagger/internal/exifmeta"
	"github.com/bstardust/photo-geotagger/internal/logger"
)

func newCheckCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check <image>",
		Short: "Show the GPS and capture-time metadata of a single image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.SetLevel(cfg.LogLevel)

			meta := exifmeta.ReadFile(args[0])

			if meta.CaptureTime != nil {
				fmt.Printf("Capture time: %s\n", meta.CaptureTime.Format("2006-01-02 15:04:05"))
			} else {
				fmt.Println("Capture time: none")
			}

			if meta.HasGPS() {
				fmt.Printf("GPS: (%.6f, %.6f) altitude %.1fm\n", meta.GPS.Lat, meta.GPS.Lon, meta.GPS.Alt)
			} else {
				fmt.Println("GPS: none")
			}
			return nil
		},
	}
}
