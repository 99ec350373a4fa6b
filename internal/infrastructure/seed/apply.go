package seed

import (
	"fmt"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// ConfigSetter lo implementa stockalert.ConfigStore.
type ConfigSetter interface {
	Replace(cfg entity.StockAlertConfig, userID string) (entity.StockAlertConfig, error)
}

// ProductTracker lo implementa stockalert.Monitor.
type ProductTracker interface {
	TrackProducts(products ...entity.ProductStock)
}

// RecipientRegistrar lo implementa stockalert.RecipientRegistry.
type RecipientRegistrar interface {
	Register(r entity.Recipient) bool
}

// Summary resultado de Apply.
type Summary struct {
	ConfigLoaded       bool
	Products           int
	Recipients         int
	RejectedRecipients []string
}

const seedUser = "seed"

// Apply carga el seed en los componentes. La configuración es opcional; un destinatario
// inválido se informa en RejectedRecipients y no aborta la carga.
func Apply(f *File, configs ConfigSetter, tracker ProductTracker, registry RecipientRegistrar, now time.Time) (Summary, error) {
	var s Summary
	if f.Config != nil {
		if _, err := configs.Replace(*f.Config, seedUser); err != nil {
			return s, fmt.Errorf("seed: configuración inválida: %w", err)
		}
		s.ConfigLoaded = true
	}

	products := f.ProductStock(now)
	tracker.TrackProducts(products...)
	s.Products = len(products)

	for _, r := range f.EntityRecipients() {
		if registry.Register(r) {
			s.Recipients++
			continue
		}
		s.RejectedRecipients = append(s.RejectedRecipients, r.UserID)
	}
	return s, nil
}
