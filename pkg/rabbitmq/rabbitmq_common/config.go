package rabbitmq_common

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const DefaultReconnectInterval = 5 * time.Second

// Config - общая часть конфигурации для всех клиентов RabbitMQ
type Config struct {
	URL               string
	ReconnectInterval time.Duration
}

func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("rabbitmq: URL is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq: invalid URL: %w", err)
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return fmt.Errorf("rabbitmq: unsupported URL scheme %q", u.Scheme)
	}
	if c.ReconnectInterval < 0 {
		return errors.New("rabbitmq: reconnect interval must not be negative")
	}
	return nil
}

func (c Config) reconnectInterval() time.Duration {
	if c.ReconnectInterval == 0 {
		return DefaultReconnectInterval
	}
	return c.ReconnectInterval
}
