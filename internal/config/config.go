package config

import (
	"runtime"
	"time"
)

// SupportedExtensions lists the image containers the scanner accepts.
// Only JPEG can be rewritten; the others are still checked and moved.
var SupportedExtensions = []string{".jpg", ".jpeg", ".tif", ".tiff", ".hif", ".heic"}

// DefaultTolerance is the default time-match window for track lookups.
const DefaultTolerance = 600 * time.Second

// Config represents the application configuration
type Config struct {
	LogLevel string
	Tag      TagConfig
	S3       S3Config
}

// TagConfig controls a geotagging run
type TagConfig struct {
	Folder      string
	TrackPath   string
	Tolerance   time.Duration
	Overwrite   bool
	MoveNoGPS   bool
	ShowCoords  bool
	ReportPath  string
	Concurrency int
}

// S3Config holds the optional export destination
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		LogLevel: "info",
		Tag: TagConfig{
			Tolerance:   DefaultTolerance,
			Concurrency: runtime.NumCPU(),
		},
		S3: S3Config{
			Region: "us-east-1",
			UseSSL: true,
		},
	}
}
