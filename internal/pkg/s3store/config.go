package s3store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AutoVinReports/VinFox/internal/pkg/env"
)

// Config holds object-store configuration for the report artifact cache.
// Works against AWS S3 or any S3-compatible endpoint (Supabase, B2, MinIO).
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	PublicBaseURL   string // Base URL for public object links
	Enabled         bool
}

// LoadConfig loads object-store configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		PublicBaseURL:   strings.TrimRight(env.GetEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		Enabled:         env.GetEnv("S3_STORE_ENABLED", "false") == "true",
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when the S3 store is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when the S3 store is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when the S3 store is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the S3 artifact store is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKey generates the object key for a report artifact.
// Format: reports/{vin}/{objectName}
func (c *Config) ObjectKey(vin, objectName string) string {
	return fmt.Sprintf("reports/%s/%s", vin, objectName)
}

// ObjectPrefix returns the listing prefix for all artifacts of a VIN.
func (c *Config) ObjectPrefix(vin string) string {
	return fmt.Sprintf("reports/%s/", vin)
}

// PublicURL builds the public link for a stored object.
func (c *Config) PublicURL(objectKey string) string {
	if c.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", c.PublicBaseURL, objectKey)
	}
	if c.EndpointURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.EndpointURL, "/"), c.BucketName, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.BucketName, c.Region, objectKey)
}
