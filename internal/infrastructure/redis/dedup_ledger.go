package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/pkg/config"
)

var _ stockalert.DedupLedger = (*DedupLedger)(nil)

// NewClient crea el cliente Redis.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping prueba la conexión.
func Ping(ctx context.Context, client *goredis.Client) error {
	return client.Ping(ctx).Err()
}

// DedupLedger ledger de enfriamiento compartido entre réplicas. Cada clave guarda el rango
// de la última severidad notificada y expira con la ventana.
type DedupLedger struct {
	client goredis.Cmdable
	prefix string
}

// NewDedupLedger construye el ledger. prefix separa locales que comparten Redis.
func NewDedupLedger(client goredis.Cmdable, prefix string) *DedupLedger {
	return &DedupLedger{client: client, prefix: prefix}
}

// ShouldNotify reserva la clave con SETNX; si ya existía solo deja pasar una severidad mayor.
func (d *DedupLedger) ShouldNotify(ctx context.Context, key string, severity entity.Severity, _ time.Time, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}
	k := d.prefix + key
	rank := severity.Rank()

	ok, err := d.client.SetNX(ctx, k, rank, window).Result()
	if err != nil {
		return true, fmt.Errorf("redis dedup setnx: %w", err)
	}
	if ok {
		return true, nil
	}

	raw, err := d.client.Get(ctx, k).Result()
	if err == goredis.Nil {
		// Expiró entre SETNX y GET.
		return true, d.client.Set(ctx, k, rank, window).Err()
	}
	if err != nil {
		return true, fmt.Errorf("redis dedup get: %w", err)
	}
	last, err := strconv.Atoi(raw)
	if err != nil || rank > last {
		if err := d.client.Set(ctx, k, rank, window).Err(); err != nil {
			return true, fmt.Errorf("redis dedup set: %w", err)
		}
		return true, nil
	}
	return false, nil
}
