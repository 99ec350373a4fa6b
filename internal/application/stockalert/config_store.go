package stockalert

import (
	"sync"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/stockalert"
)

// ConfigStore guarda la configuración del local. Lectura frecuente, escritura vía API.
type ConfigStore struct {
	mu      sync.RWMutex
	cfg     *entity.StockAlertConfig
	venueID string
	now     func() time.Time
	onSet   []func(entity.StockAlertConfig)
}

// NewConfigStore construye el store sin configuración (ErrConfigNotInitialized hasta el primer Replace).
func NewConfigStore(venueID string) *ConfigStore {
	return &ConfigStore{venueID: venueID, now: time.Now}
}

// OnChange registra un callback invocado (fuera del lock) tras cada cambio.
func (s *ConfigStore) OnChange(fn func(entity.StockAlertConfig)) {
	s.mu.Lock()
	s.onSet = append(s.onSet, fn)
	s.mu.Unlock()
}

// Get devuelve una copia de la configuración vigente.
func (s *ConfigStore) Get() (entity.StockAlertConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return entity.StockAlertConfig{}, domain.ErrConfigNotInitialized
	}
	return stockalert.CloneConfig(*s.cfg), nil
}

// Initialized indica si ya existe configuración.
func (s *ConfigStore) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg != nil
}

// Replace reemplaza la configuración completa (POST /config).
func (s *ConfigStore) Replace(cfg entity.StockAlertConfig, userID string) (entity.StockAlertConfig, error) {
	cfg = stockalert.WithDefaults(stockalert.CloneConfig(cfg))
	if cfg.VenueID == "" {
		cfg.VenueID = s.venueID
	}
	if err := stockalert.ValidateConfig(cfg); err != nil {
		return entity.StockAlertConfig{}, err
	}
	return s.store(cfg, userID), nil
}

// Patch aplica una actualización parcial (PATCH /config).
func (s *ConfigStore) Patch(p entity.StockAlertConfigPatch, userID string) (entity.StockAlertConfig, error) {
	return s.update(userID, func(old entity.StockAlertConfig) (entity.StockAlertConfig, error) {
		return stockalert.MergeConfig(old, p), nil
	})
}

// UpsertCategory agrega o reemplaza una categoría monitoreada.
func (s *ConfigStore) UpsertCategory(mc entity.MonitoredCategory, userID string) (entity.StockAlertConfig, error) {
	if err := stockalert.ValidateCategory(mc); err != nil {
		return entity.StockAlertConfig{}, err
	}
	return s.update(userID, func(old entity.StockAlertConfig) (entity.StockAlertConfig, error) {
		out := stockalert.CloneConfig(old)
		for i, existing := range out.MonitoredCategories {
			if existing.CategoryID == mc.CategoryID {
				out.MonitoredCategories[i] = mc
				return out, nil
			}
		}
		out.MonitoredCategories = append(out.MonitoredCategories, mc)
		return out, nil
	})
}

// PatchCategory actualiza parcialmente una categoría. ErrNotFound si no existe.
func (s *ConfigStore) PatchCategory(categoryID string, p entity.MonitoredCategoryPatch, userID string) (entity.StockAlertConfig, error) {
	return s.update(userID, func(old entity.StockAlertConfig) (entity.StockAlertConfig, error) {
		out := stockalert.CloneConfig(old)
		for i, existing := range out.MonitoredCategories {
			if existing.CategoryID == categoryID {
				out.MonitoredCategories[i] = stockalert.MergeCategory(existing, p)
				return out, nil
			}
		}
		return entity.StockAlertConfig{}, domain.ErrNotFound
	})
}

// DeleteCategory quita una categoría monitoreada. ErrNotFound si no existe.
func (s *ConfigStore) DeleteCategory(categoryID string, userID string) (entity.StockAlertConfig, error) {
	return s.update(userID, func(old entity.StockAlertConfig) (entity.StockAlertConfig, error) {
		out := stockalert.CloneConfig(old)
		for i, existing := range out.MonitoredCategories {
			if existing.CategoryID == categoryID {
				out.MonitoredCategories = append(out.MonitoredCategories[:i], out.MonitoredCategories[i+1:]...)
				return out, nil
			}
		}
		return entity.StockAlertConfig{}, domain.ErrNotFound
	})
}

// update lee-modifica-escribe bajo un único lock de escritura.
func (s *ConfigStore) update(userID string, fn func(entity.StockAlertConfig) (entity.StockAlertConfig, error)) (entity.StockAlertConfig, error) {
	s.mu.Lock()
	if s.cfg == nil {
		s.mu.Unlock()
		return entity.StockAlertConfig{}, domain.ErrConfigNotInitialized
	}
	next, err := fn(stockalert.CloneConfig(*s.cfg))
	if err == nil {
		next = stockalert.WithDefaults(next)
		err = stockalert.ValidateConfig(next)
	}
	if err != nil {
		s.mu.Unlock()
		return entity.StockAlertConfig{}, err
	}
	next.UpdatedAt = s.now()
	next.UpdatedBy = userID
	s.cfg = &next
	listeners := append([]func(entity.StockAlertConfig){}, s.onSet...)
	s.mu.Unlock()

	notifyConfig(listeners, next)
	return stockalert.CloneConfig(next), nil
}

func (s *ConfigStore) store(cfg entity.StockAlertConfig, userID string) entity.StockAlertConfig {
	s.mu.Lock()
	cfg.UpdatedAt = s.now()
	cfg.UpdatedBy = userID
	s.cfg = &cfg
	listeners := append([]func(entity.StockAlertConfig){}, s.onSet...)
	s.mu.Unlock()

	notifyConfig(listeners, cfg)
	return stockalert.CloneConfig(cfg)
}

func notifyConfig(listeners []func(entity.StockAlertConfig), cfg entity.StockAlertConfig) {
	for _, fn := range listeners {
		fn(stockalert.CloneConfig(cfg))
	}
}
