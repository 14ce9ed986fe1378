package assembler

import (
	"context"
	"sync"

	"github.com/ngmaloney/reefcast/internal/cwb"
	"github.com/ngmaloney/reefcast/internal/models"
)

// Batch holds the region-wide data shared by every location in one ranking
// pass. Alerts and advisories are fetched on first use and reused for the
// rest of the batch. Start a new Batch for each pass.
type Batch struct {
	alertsOnce sync.Once
	alerts     []models.Alert
	alertsErr  error

	advisoriesOnce sync.Once
	advisories     []cwb.Advisory
	advisoriesErr  error
}

// NewBatch returns an empty batch
func NewBatch() *Batch {
	return &Batch{}
}

// marineAlerts returns the batch's alerts. fresh is true for the call that
// did the fetch, so a failure is reported once per batch.
func (b *Batch) marineAlerts(ctx context.Context, src AlertSource, area string) (alerts []models.Alert, fresh bool, err error) {
	b.alertsOnce.Do(func() {
		fresh = true
		data, err := src.GetRegionAlerts(ctx, area)
		if err != nil {
			b.alertsErr = err
			return
		}
		if data != nil {
			b.alerts = data.Alerts
		}
	})
	return b.alerts, fresh, b.alertsErr
}

func (b *Batch) oahuAdvisories(ctx context.Context, src AdvisorySource) (advisories []cwb.Advisory, fresh bool, err error) {
	b.advisoriesOnce.Do(func() {
		fresh = true
		b.advisories, b.advisoriesErr = src.GetOahuAdvisories(ctx)
	})
	return b.advisories, fresh, b.advisoriesErr
}
