package main

import (
	"github.com/jhoicas/stock-alerts/internal/application/stockalert"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/infrastructure/notify"
	"github.com/jhoicas/stock-alerts/pkg/config"
	"github.com/jhoicas/stock-alerts/pkg/logger"
)

// registerSenders registra un sender por canal. Los canales sin backend configurado
// quedan en el log para no perder la traza de lo que se habría enviado.
// Devuelve la función de cierre de las conexiones abiertas.
func registerSenders(cfg *config.Config, notifier *stockalert.NotificationOrchestrator, log *logger.Logger) func() {
	senderLog := log.Zerolog()
	closers := []func(){}

	if cfg.MQTT.Enabled {
		client, err := notify.NewMQTTClient(cfg.MQTT)
		if err != nil {
			log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("mqtt no disponible, canal websocket en log")
			notifier.RegisterSender(notify.NewLogSender(entity.ChannelWebsocket, senderLog))
		} else {
			notifier.RegisterSender(notify.NewMQTTSender(client, cfg.MQTT.TopicPrefix, byte(cfg.MQTT.QoS)))
			closers = append(closers, func() { client.Disconnect(250) })
		}
	} else {
		notifier.RegisterSender(notify.NewLogSender(entity.ChannelWebsocket, senderLog))
	}

	if cfg.Push.Enabled {
		notifier.RegisterSender(notify.NewPushSender(cfg.Push))
	} else {
		notifier.RegisterSender(notify.NewLogSender(entity.ChannelPush, senderLog))
	}

	if cfg.SMTP.Enabled {
		notifier.RegisterSender(notify.NewEmailSender(cfg.SMTP))
	} else {
		notifier.RegisterSender(notify.NewLogSender(entity.ChannelEmail, senderLog))
	}

	return func() {
		for _, c := range closers {
			c()
		}
	}
}
