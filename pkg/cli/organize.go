package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bstardust/photo-geotagger/internal/config"
	"github.com/bstardust/photo-geotagger/internal/logger"
	"github.com/bstardust/photo-geotagger/internal/scan"
)

func newOrganizeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "organize <folder>",
		Short: "Sort a folder's files into per-extension subdirectories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.SetLevel(cfg.LogLevel)

			folder := args[0]
			if info, err := os.Stat(folder); err != nil || !info.IsDir() {
				return fmt.Errorf("folder %s does not exist or is not a directory", folder)
			}

			moved, err := scan.OrganizeByExtension(folder)
			if err != nil {
				return err
			}
			logger.Info("Moved %d files", moved)
			return nil
		},
	}
}
