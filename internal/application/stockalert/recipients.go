package stockalert

import (
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// RecipientRegistry registro en memoria de destinatarios por UserID.
type RecipientRegistry struct {
	mu    sync.RWMutex
	items map[string]entity.Recipient
}

// NewRecipientRegistry construye el registro vacío.
func NewRecipientRegistry() *RecipientRegistry {
	return &RecipientRegistry{items: make(map[string]entity.Recipient)}
}

// Register agrega o reemplaza un destinatario. Devuelve false si el rol no está permitido,
// falta UserID o no tiene ningún canal válido.
func (r *RecipientRegistry) Register(rec entity.Recipient) bool {
	if rec.UserID == "" || !entity.IsAlertRole(rec.Role) {
		return false
	}
	channels := make([]entity.Channel, 0, len(rec.Channels))
	seen := make(map[entity.Channel]struct{}, len(rec.Channels))
	for _, ch := range rec.Channels {
		if _, dup := seen[ch]; dup || !ch.Valid() {
			continue
		}
		seen[ch] = struct{}{}
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return false
	}
	rec.Channels = channels
	rec.BarIDs = append([]string(nil), rec.BarIDs...)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	r.mu.Lock()
	r.items[rec.UserID] = rec
	r.mu.Unlock()
	return true
}

// Remove elimina un destinatario. false si no existía.
func (r *RecipientRegistry) Remove(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[userID]; !ok {
		return false
	}
	delete(r.items, userID)
	return true
}

// Get obtiene un destinatario por UserID.
func (r *RecipientRegistry) Get(userID string) (entity.Recipient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[userID]
	return rec, ok
}

// List devuelve los destinatarios, filtrados por rol si role no es vacío, ordenados por UserID.
func (r *RecipientRegistry) List(role string) []entity.Recipient {
	r.mu.RLock()
	out := make([]entity.Recipient, 0, len(r.items))
	for _, rec := range r.items {
		if role == "" || rec.Role == role {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
