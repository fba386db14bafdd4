package report

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/AutoVinReports/VinFox/internal/pkg/retry"
)

// ConvertingProvider polls for the encoded report payload and converts it to
// PDF bytes through the provider's conversion endpoint.
type ConvertingProvider struct {
	API  VehicleAPI
	Poll retry.Policy
}

func (p *ConvertingProvider) Materialize(ctx context.Context, vin, descriptor string) (*Artifact, error) {
	record, err := AwaitReportReference(ctx, p.API, vin, p.Poll)
	if err != nil {
		return nil, err
	}

	encoded := record.Report
	if encoded == "" {
		// Summary carried only a link reference; fetch the payload separately.
		encoded, err = p.API.GetReport(ctx, vin)
		if err != nil {
			return nil, err
		}
	}

	pdf, err := p.API.ConvertToPDF(ctx, encoded)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		VIN:        vin,
		ObjectName: fmt.Sprintf("%s-%s.pdf", vin, uuid.New().String()),
		PDF:        pdf,
	}, nil
}

// LinkProvider waits for the provider-hosted report link and passes it
// through untouched. No conversion, no local bytes.
type LinkProvider struct {
	API  VehicleAPI
	Poll retry.Policy
}

func (p *LinkProvider) Materialize(ctx context.Context, vin, descriptor string) (*Artifact, error) {
	record, err := AwaitReportReference(ctx, p.API, vin, p.Poll)
	if err != nil {
		return nil, err
	}
	if record.ReportLink == "" {
		return nil, ErrReportUnavailable
	}

	return &Artifact{
		VIN: vin,
		URL: record.ReportLink,
	}, nil
}

// CachingProvider serves artifacts from an ArtifactStore and falls back to the
// wrapped provider on a miss. A cache hit performs zero provider calls, which
// keeps duplicate webhook deliveries from paying for a second conversion.
type CachingProvider struct {
	Inner ArtifactProvider
	Store ArtifactStore
}

func (p *CachingProvider) Materialize(ctx context.Context, vin, descriptor string) (*Artifact, error) {
	cached, err := p.Store.Lookup(ctx, vin)
	if err != nil {
		log.Warnf("[Report] Artifact cache lookup failed for %s: %v", vin, err)
	} else if cached != nil {
		log.Infof("[Report] Reusing cached artifact for %s (%s)", vin, cached.ObjectName)
		return cached, nil
	}

	artifact, err := p.Inner.Materialize(ctx, vin, descriptor)
	if err != nil {
		return nil, err
	}

	// Only converted artifacts carry bytes to persist; hosted links pass
	// through without a store write.
	if len(artifact.PDF) > 0 {
		if err := p.Store.Save(ctx, artifact); err != nil {
			// A failed upload must short-circuit before anyone emails a
			// broken link.
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
	}

	return artifact, nil
}
