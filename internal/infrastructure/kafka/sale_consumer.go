package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/pkg/config"
)

// Tipos de evento publicados por el POS.
const (
	EventSale      = "sale"
	EventInventory = "inventory"
)

// StockEventHandler recibe los eventos decodificados. Lo implementa stockalert.Monitor.
type StockEventHandler interface {
	OnSaleEvent(sale entity.SaleEvent)
	OnInventoryChanged(barID, productID string, newStock decimal.Decimal)
}

// StockEvent mensaje del tópico del POS.
type StockEvent struct {
	Type       string           `json:"type"`
	BarID      string           `json:"barId"`
	ProductID  string           `json:"productId"`
	Quantity   decimal.Decimal  `json:"quantity"`
	NewStock   *decimal.Decimal `json:"newStock,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// Decode interpreta un mensaje. Sin "type" se asume venta.
func Decode(value []byte) (StockEvent, error) {
	var ev StockEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return ev, fmt.Errorf("decodificar evento: %w", err)
	}
	if ev.Type == "" {
		ev.Type = EventSale
	}
	if ev.BarID == "" || ev.ProductID == "" {
		return ev, errors.New("evento sin barId o productId")
	}
	switch ev.Type {
	case EventSale:
		if !ev.Quantity.IsPositive() && ev.NewStock == nil {
			return ev, errors.New("venta sin cantidad ni newStock")
		}
	case EventInventory:
		if ev.NewStock == nil {
			return ev, errors.New("evento de inventario sin newStock")
		}
	default:
		return ev, fmt.Errorf("tipo de evento %q desconocido", ev.Type)
	}
	return ev, nil
}

// Dispatch entrega el evento al handler.
func Dispatch(ev StockEvent, h StockEventHandler) {
	if ev.Type == EventInventory {
		h.OnInventoryChanged(ev.BarID, ev.ProductID, *ev.NewStock)
		return
	}
	h.OnSaleEvent(entity.SaleEvent{
		BarID:      ev.BarID,
		ProductID:  ev.ProductID,
		Quantity:   ev.Quantity,
		NewStock:   ev.NewStock,
		OccurredAt: ev.OccurredAt,
	})
}

// SaleConsumer consume ventas y ajustes del POS desde Kafka.
type SaleConsumer struct {
	reader  *kafkago.Reader
	handler StockEventHandler
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewSaleConsumer construye el lector del grupo de consumo.
func NewSaleConsumer(cfg config.KafkaConfig, handler StockEventHandler, log zerolog.Logger) *SaleConsumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	return &SaleConsumer{
		reader:  reader,
		handler: handler,
		log:     log.With().Str("component", "kafka_consumer").Str("topic", cfg.Topic).Logger(),
	}
}

// Start lee en segundo plano hasta que ctx se cancele.
func (c *SaleConsumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.log.Info().Msg("consumo de eventos de stock iniciado")
		for {
			m, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.log.Warn().Err(err).Msg("error leyendo de kafka")
				continue
			}
			ev, err := Decode(m.Value)
			if err != nil {
				c.log.Warn().Err(err).Int64("offset", m.Offset).Msg("evento de stock descartado")
				continue
			}
			Dispatch(ev, c.handler)
		}
	}()
}

// Close espera la goroutine lectora y cierra el reader. Llamar tras cancelar el contexto de Start.
func (c *SaleConsumer) Close() error {
	c.wg.Wait()
	return c.reader.Close()
}
