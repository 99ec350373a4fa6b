package stockalert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

func TestRecipientRegistry_RolCajeroRechazado(t *testing.T) {
	r := stockalert.NewRecipientRegistry()

	ok := r.Register(entity.Recipient{UserID: "c1", Role: "cashier", Channels: []entity.Channel{entity.ChannelPush}})

	assert.False(t, ok)
	assert.Empty(t, r.List(""))
}

func TestRecipientRegistry_ManagerConPushSeLista(t *testing.T) {
	r := stockalert.NewRecipientRegistry()

	require.True(t, r.Register(entity.Recipient{UserID: "m1", Name: "Marta", Role: entity.RoleManager, Channels: []entity.Channel{entity.ChannelPush}}))

	managers := r.List(entity.RoleManager)
	require.Len(t, managers, 1)
	assert.Equal(t, "m1", managers[0].UserID)
	assert.Equal(t, []entity.Channel{entity.ChannelPush}, managers[0].Channels)
	assert.Empty(t, r.List(entity.RoleAdmin))
}

func TestRecipientRegistry_SinCanalesValidosRechazado(t *testing.T) {
	r := stockalert.NewRecipientRegistry()

	assert.False(t, r.Register(entity.Recipient{UserID: "a1", Role: entity.RoleAdmin}))
	assert.False(t, r.Register(entity.Recipient{UserID: "a1", Role: entity.RoleAdmin, Channels: []entity.Channel{"sms"}}))
	assert.False(t, r.Register(entity.Recipient{Role: entity.RoleAdmin, Channels: []entity.Channel{entity.ChannelEmail}}))
}

func TestRecipientRegistry_CanalesDuplicadosSeDepuran(t *testing.T) {
	r := stockalert.NewRecipientRegistry()
	require.True(t, r.Register(entity.Recipient{
		UserID:   "s1",
		Role:     entity.RoleSupervisor,
		Channels: []entity.Channel{entity.ChannelEmail, "sms", entity.ChannelEmail, entity.ChannelWebsocket},
	}))

	got, ok := r.Get("s1")
	require.True(t, ok)
	assert.Equal(t, []entity.Channel{entity.ChannelEmail, entity.ChannelWebsocket}, got.Channels)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRecipientRegistry_RemoveYOrden(t *testing.T) {
	r := stockalert.NewRecipientRegistry()
	for _, id := range []string{"u3", "u1", "u2"} {
		require.True(t, r.Register(entity.Recipient{UserID: id, Role: entity.RoleAdmin, Channels: []entity.Channel{entity.ChannelEmail}}))
	}

	all := r.List("")
	require.Len(t, all, 3)
	assert.Equal(t, "u1", all[0].UserID)
	assert.Equal(t, "u3", all[2].UserID)

	assert.True(t, r.Remove("u2"))
	assert.False(t, r.Remove("u2"))
	assert.Len(t, r.List(""), 2)
}
