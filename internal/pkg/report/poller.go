package report

import (
	"context"
	"errors"

	"github.com/AutoVinReports/VinFox/internal/pkg/carsimulcast"
	"github.com/AutoVinReports/VinFox/internal/pkg/retry"
)

// VehicleAPI is the slice of the provider client used by the report pipeline.
// Satisfied by *carsimulcast.Client; tests substitute doubles.
type VehicleAPI interface {
	CheckRecords(ctx context.Context, vin string) (*carsimulcast.VehicleRecord, error)
	GetReport(ctx context.Context, vin string) (string, error)
	ConvertToPDF(ctx context.Context, encoded string) ([]byte, error)
}

// AwaitReportReference polls the summary endpoint until a report reference
// appears. The provider generates reports asynchronously after the first
// lookup, so a bounded fixed-delay poll is the contract here. When the policy
// is exhausted the caller gets ErrReportUnavailable, never a nil record.
func AwaitReportReference(ctx context.Context, api VehicleAPI, vin string, policy retry.Policy) (*carsimulcast.VehicleRecord, error) {
	var record *carsimulcast.VehicleRecord

	err := policy.Do(ctx, func(ctx context.Context) error {
		rec, err := api.CheckRecords(ctx, vin)
		if err != nil {
			return err
		}
		if !rec.HasReport() {
			return ErrReportUnavailable
		}
		record = rec
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.Join(ErrReportUnavailable, err)
	}

	return record, nil
}
