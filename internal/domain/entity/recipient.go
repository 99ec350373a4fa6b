package entity

import "time"

// Roles que pueden recibir alertas de stock.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSupervisor = "supervisor"
)

// IsAlertRole indica si el rol puede registrarse como destinatario.
func IsAlertRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleSupervisor:
		return true
	}
	return false
}

// Channel canal de entrega de notificaciones.
type Channel string

const (
	ChannelWebsocket Channel = "websocket"
	ChannelPush      Channel = "push"
	ChannelEmail     Channel = "email"
)

// Valid indica si el canal es conocido.
func (c Channel) Valid() bool {
	switch c {
	case ChannelWebsocket, ChannelPush, ChannelEmail:
		return true
	}
	return false
}

// Recipient destinatario de notificaciones (registro en memoria por UserID).
type Recipient struct {
	UserID    string
	Name      string
	Role      string    // admin, manager, supervisor
	Channels  []Channel // websocket, push, email
	Email     string
	PushToken string
	BarIDs    []string // vacío = todas las barras
	CreatedAt time.Time
}

// HasChannel indica si el destinatario acepta el canal.
func (r Recipient) HasChannel(ch Channel) bool {
	for _, c := range r.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// CoversBar indica si el destinatario recibe alertas de la barra indicada.
func (r Recipient) CoversBar(barID string) bool {
	if len(r.BarIDs) == 0 {
		return true
	}
	for _, b := range r.BarIDs {
		if b == barID {
			return true
		}
	}
	return false
}
