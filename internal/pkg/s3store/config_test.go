package s3store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyLayout(t *testing.T) {
	cfg := &Config{BucketName: "reports"}

	key := cfg.ObjectKey("1HGCM82633A004352", "1HGCM82633A004352-abc.pdf")
	assert.Equal(t, "reports/1HGCM82633A004352/1HGCM82633A004352-abc.pdf", key)
	assert.Equal(t, "reports/1HGCM82633A004352/", cfg.ObjectPrefix("1HGCM82633A004352"))
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit public base",
			cfg:  Config{PublicBaseURL: "https://cdn.example.com", BucketName: "b", Region: "us-east-1"},
			want: "https://cdn.example.com/reports/v/x.pdf",
		},
		{
			name: "s3-compatible endpoint",
			cfg:  Config{EndpointURL: "https://storage.example.com/", BucketName: "b"},
			want: "https://storage.example.com/b/reports/v/x.pdf",
		},
		{
			name: "plain aws",
			cfg:  Config{BucketName: "b", Region: "eu-central-1"},
			want: "https://b.s3.eu-central-1.amazonaws.com/reports/v/x.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.PublicURL("reports/v/x.pdf"))
		})
	}
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "x.pdf", objectName("reports/v/x.pdf"))
	assert.Equal(t, "x.pdf", objectName("x.pdf"))
}
