package stockalert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

func TestRecordSaleAt_DescartaMuestrasVencidasDeLaClave(t *testing.T) {
	base := time.Date(2026, 10, 15, 22, 0, 0, 0, time.UTC)
	tracker := NewVelocityTracker(10 * time.Minute)
	for i := 0; i < 100; i++ {
		tracker.RecordSaleAt("p1", 1, "bar1", base.Add(time.Duration(i)*time.Minute))
	}

	key := entity.StockKey{BarID: "bar1", ProductID: "p1"}
	assert.Len(t, tracker.samples[key], 10)
}
