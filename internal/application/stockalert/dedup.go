package stockalert

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

var _ DedupLedger = (*MemoryDedupLedger)(nil)

type dedupEntry struct {
	at       time.Time
	severity entity.Severity
}

// MemoryDedupLedger ledger de enfriamiento en memoria (una instancia del proceso).
// Para varias réplicas usar redis.DedupLedger.
type MemoryDedupLedger struct {
	mu    sync.Mutex
	items map[string]dedupEntry
}

// NewMemoryDedupLedger construye el ledger vacío.
func NewMemoryDedupLedger() *MemoryDedupLedger {
	return &MemoryDedupLedger{items: make(map[string]dedupEntry)}
}

// ShouldNotify true si no hubo notificación para key dentro de window, o si la severidad subió.
func (d *MemoryDedupLedger) ShouldNotify(_ context.Context, key string, severity entity.Severity, now time.Time, window time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.items[key]; ok && window > 0 {
		if now.Sub(last.at) < window && severity.Rank() <= last.severity.Rank() {
			return false, nil
		}
	}
	d.items[key] = dedupEntry{at: now, severity: severity}
	if len(d.items) > 10000 {
		d.compactLocked(now, window)
	}
	return true, nil
}

func (d *MemoryDedupLedger) compactLocked(now time.Time, window time.Duration) {
	for k, e := range d.items {
		if now.Sub(e.at) >= window {
			delete(d.items, k)
		}
	}
}
