package config

import (
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

func NewNATSConn(cfg *Config, logger *zap.Logger) (*nats.Conn, error) {
	return nats.Connect(cfg.NATSURL,
		nats.Name("human-connection-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
}
