package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bstardust/photo-geotagger/internal/config"
	"github.com/bstardust/photo-geotagger/internal/logger"
)

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interruption signals
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	rootCmd := &cobra.Command{
		Use:   "geotag",
		Short: "Backfill GPS metadata in photo collections from a track log",
		Long: `Scans image folders for EXIF GPS metadata, cross-references a
time-indexed GPS track log and writes missing geotags back into the
images. Files still lacking GPS can be collected into a holding folder.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyViper(cmd)
		},
	}

	// Global flags
	cfg := config.New()
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	initViper(rootCmd)

	// Add commands
	rootCmd.AddCommand(newTagCommand(cfg))
	rootCmd.AddCommand(newCheckCommand(cfg))
	rootCmd.AddCommand(newOrganizeCommand(cfg))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("Error executing command: %v", err)
		os.Exit(1)
	}
}

// initViper layers an optional config file and GEOTAG_* environment
// variables under the command-line flags.
func initViper(rootCmd *cobra.Command) {
	viper.SetConfigName("geotag")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("GEOTAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("Using config file %s", viper.ConfigFileUsed())
	}

	viper.BindPFlags(rootCmd.PersistentFlags())
}

// applyViper copies config-file and environment values into any flag
// the user left untouched, so the precedence is flag > env > file >
// default.
func applyViper(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || !viper.IsSet(f.Name) {
			return
		}
		if setErr := f.Value.Set(viper.GetString(f.Name)); setErr != nil {
			err = fmt.Errorf("invalid value for --%s: %w", f.Name, setErr)
		}
	})
	return err
}
