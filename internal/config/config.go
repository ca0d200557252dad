package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // ROLODEX_DATABASE_URL (required)
	GRPCAddr    string // ROLODEX_GRPC_ADDR (default ":9090")
	HTTPAddr    string // ROLODEX_HTTP_ADDR (default ":8080")
	NATSURL     string // ROLODEX_NATS_URL (optional, empty = no events)

	// Snapshot settings
	SnapshotInterval time.Duration // ROLODEX_SNAPSHOT_INTERVAL (default 1h; 0 = disabled)
	SnapshotDir      string        // ROLODEX_SNAPSHOT_DIR (enables local files when set)
	S3Bucket         string        // ROLODEX_S3_BUCKET (enables S3 when set)
	S3Endpoint       string        // ROLODEX_S3_ENDPOINT (custom endpoint for MinIO)
	S3Region         string        // ROLODEX_S3_REGION (default "us-east-1")
	S3Prefix         string        // ROLODEX_S3_PREFIX (default "rolodex/")
	GitRepo          string        // ROLODEX_GIT_REPO (enables git when set; path to clone)
	GitDir           string        // ROLODEX_GIT_DIR (default "exports")
	GitBranch        string        // ROLODEX_GIT_BRANCH (default "main")

	// Export envelope defaults
	ExportCompany string // ROLODEX_EXPORT_COMPANY (default "Company")
	ExportAuthor  string // ROLODEX_EXPORT_AUTHOR (default "User")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:   os.Getenv("ROLODEX_DATABASE_URL"),
		GRPCAddr:      envOrDefault("ROLODEX_GRPC_ADDR", ":9090"),
		HTTPAddr:      envOrDefault("ROLODEX_HTTP_ADDR", ":8080"),
		NATSURL:       os.Getenv("ROLODEX_NATS_URL"),
		SnapshotDir:   os.Getenv("ROLODEX_SNAPSHOT_DIR"),
		S3Bucket:      os.Getenv("ROLODEX_S3_BUCKET"),
		S3Endpoint:    os.Getenv("ROLODEX_S3_ENDPOINT"),
		S3Region:      envOrDefault("ROLODEX_S3_REGION", "us-east-1"),
		S3Prefix:      envOrDefault("ROLODEX_S3_PREFIX", "rolodex/"),
		GitRepo:       os.Getenv("ROLODEX_GIT_REPO"),
		GitDir:        envOrDefault("ROLODEX_GIT_DIR", "exports"),
		GitBranch:     envOrDefault("ROLODEX_GIT_BRANCH", "main"),
		ExportCompany: envOrDefault("ROLODEX_EXPORT_COMPANY", "Company"),
		ExportAuthor:  envOrDefault("ROLODEX_EXPORT_AUTHOR", "User"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("ROLODEX_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("ROLODEX_SNAPSHOT_INTERVAL", "1h")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("ROLODEX_SNAPSHOT_INTERVAL: %w", err)
		}
		c.SnapshotInterval = d
	}

	return c, nil
}

// SnapshotsEnabled reports whether any snapshot destination is configured
// and the interval is positive.
func (c *Config) SnapshotsEnabled() bool {
	if c.SnapshotInterval <= 0 {
		return false
	}
	return c.SnapshotDir != "" || c.S3Bucket != "" || c.GitRepo != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
