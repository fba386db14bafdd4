package carsimulcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AutoVinReports/VinFox/internal/pkg/env"
)

const (
	defaultBaseURL = "https://connect.carsimulcast.com"

	// Payloads below this size are placeholders, not reports.
	minReportPayloadLength = 100

	noRecordSentinel = "No record found"
)

var (
	// ErrUpstream covers any non-2xx response or network failure from the
	// provider. The upstream detail is logged, never returned to clients.
	ErrUpstream = errors.New("carsimulcast: upstream request failed")

	// ErrReportNotReady indicates the provider has no usable report payload
	// for the VIN yet.
	ErrReportNotReady = errors.New("carsimulcast: report not ready")
)

// Client is a thin HTTP client for the Carsimulcast vehicle-record API.
// Every request carries the API-KEY/API-SECRET header pair.
type Client struct {
	BaseURL   string
	APIKey    string
	APISecret string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from CARSIMULCAST_* environment variables.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL:   strings.TrimRight(env.GetEnv("CARSIMULCAST_BASE_URL", defaultBaseURL), "/"),
		APIKey:    strings.TrimSpace(env.GetEnv("CARSIMULCAST_API_KEY", "")),
		APISecret: strings.TrimSpace(env.GetEnv("CARSIMULCAST_API_SECRET", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// VehicleRecord is the summary record returned by the checkrecords endpoint.
type VehicleRecord struct {
	VIN        string `json:"vin"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	Year       string `json:"year"`
	ReportLink string `json:"report_link"`
	Report     string `json:"report"`
}

// HasReport reports whether the provider has finished generating a report
// artifact for this VIN, either as a hosted link or an encoded payload.
func (r *VehicleRecord) HasReport() bool {
	return strings.TrimSpace(r.ReportLink) != "" || strings.TrimSpace(r.Report) != ""
}

// Descriptor returns a human-readable vehicle description like "2014 Ford F-150".
func (r *VehicleRecord) Descriptor() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Year, r.Make, r.Model} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " ")
}

// CheckRecords fetches the summary record for a VIN.
func (c *Client) CheckRecords(ctx context.Context, vin string) (*VehicleRecord, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/checkrecords/%s", c.BaseURL, vin))
	if err != nil {
		return nil, err
	}

	var record VehicleRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("%w: invalid checkrecords response: %v", ErrUpstream, err)
	}
	if record.VIN == "" {
		record.VIN = vin
	}
	return &record, nil
}

// GetReport fetches the full base64-encoded report payload for a VIN.
func (c *Client) GetReport(ctx context.Context, vin string) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/getrecords/%s", c.BaseURL, vin))
	if err != nil {
		return "", err
	}

	var payload struct {
		Report string `json:"report"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: invalid getrecords response: %v", ErrUpstream, err)
	}
	if !usableReportPayload(payload.Report) {
		return "", ErrReportNotReady
	}
	return payload.Report, nil
}

// ConvertToPDF submits an encoded report payload to the provider's conversion
// endpoint and returns the resulting PDF bytes.
func (c *Client) ConvertToPDF(ctx context.Context, encoded string) ([]byte, error) {
	if !usableReportPayload(encoded) {
		return nil, ErrReportNotReady
	}

	reqBody, err := json.Marshal(map[string]string{"report": encoded})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/pdfconversion", strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: pdfconversion returned status %d", ErrUpstream, resp.StatusCode)
	}
	if len(pdf) < minReportPayloadLength {
		return nil, ErrReportNotReady
	}
	return pdf, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setAuthHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUpstream, url, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("API-KEY", c.APIKey)
	req.Header.Set("API-SECRET", c.APISecret)
}

func usableReportPayload(payload string) bool {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" || strings.Contains(trimmed, noRecordSentinel) {
		return false
	}
	return len(trimmed) >= minReportPayloadLength
}
