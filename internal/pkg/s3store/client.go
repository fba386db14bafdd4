package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v2/log"

	"github.com/AutoVinReports/VinFox/internal/pkg/report"
)

// Client wraps the S3 client as a report.ArtifactStore: uploaded PDFs become
// publicly linkable artifacts keyed by VIN.
type Client struct {
	s3Client *s3.Client
	config   *Config
}

// NewClient creates a new S3 artifact store client
func NewClient(cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("S3 store is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible endpoints need path-style URLs
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	client := &Client{
		s3Client: s3Client,
		config:   cfg,
	}

	if err := client.testConnection(); err != nil {
		return nil, fmt.Errorf("failed to connect to S3: %w", err)
	}

	log.Infof("[S3Store] Successfully initialized S3 client for bucket: %s", cfg.BucketName)
	return client, nil
}

// testConnection checks that the configured bucket is reachable
func (c *Client) testConnection() error {
	ctx := context.Background()

	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.config.BucketName),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", c.config.BucketName, err)
	}

	return nil
}

// Save uploads the artifact's PDF bytes and stamps its public URL.
func (c *Client) Save(ctx context.Context, artifact *report.Artifact) error {
	if artifact == nil || len(artifact.PDF) == 0 {
		return errors.New("no PDF bytes to upload")
	}

	objectKey := c.config.ObjectKey(artifact.VIN, artifact.ObjectName)
	log.Infof("[S3Store] Uploading artifact: s3://%s/%s (Size: %d bytes)",
		c.config.BucketName, objectKey, len(artifact.PDF))

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.config.BucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(artifact.PDF),
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(int64(len(artifact.PDF))),
		Metadata: map[string]string{
			"vin":           artifact.VIN,
			"upload-source": "vinfox-report",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	artifact.URL = c.config.PublicURL(objectKey)
	log.Infof("[S3Store] Successfully uploaded: %s", artifact.URL)
	return nil
}

// Lookup returns the most recently stored artifact for a VIN, or (nil, nil)
// when nothing is cached.
func (c *Client) Lookup(ctx context.Context, vin string) (*report.Artifact, error) {
	out, err := c.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.config.BucketName),
		Prefix: aws.String(c.config.ObjectPrefix(vin)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts for %s: %w", vin, err)
	}
	if len(out.Contents) == 0 {
		return nil, nil
	}

	latest := newestObject(out.Contents)
	key := aws.ToString(latest.Key)

	return &report.Artifact{
		VIN:        vin,
		ObjectName: objectName(key),
		URL:        c.config.PublicURL(key),
	}, nil
}

// newestObject returns the listing entry with the latest LastModified.
// Entries without a timestamp sort oldest; the SDK leaves the field nil for
// some S3-compatible backends.
func newestObject(objects []types.Object) types.Object {
	sorted := make([]types.Object, len(objects))
	copy(sorted, objects)
	sort.Slice(sorted, func(i, j int) bool {
		return objectModTime(sorted[i]).Before(objectModTime(sorted[j]))
	})
	return sorted[len(sorted)-1]
}

func objectModTime(o types.Object) time.Time {
	if o.LastModified == nil {
		return time.Time{}
	}
	return *o.LastModified
}

// ObjectExists checks if an object exists in the bucket
func (c *Client) ObjectExists(ctx context.Context, objectKey string) (bool, error) {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

func objectName(objectKey string) string {
	for i := len(objectKey) - 1; i >= 0; i-- {
		if objectKey[i] == '/' {
			return objectKey[i+1:]
		}
	}
	return objectKey
}
