package rabbitmq_consumer

import (
	"errors"
	"fmt"
	"real-estate-system/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig описывает очередь потребителя, ее привязку и механизм ретраев
type ConsumerConfig struct {
	rabbitmq_common.Config

	QueueName  string
	QueueArgs  amqp.Table
	Durable    bool
	AutoDelete bool

	// Обменник, к которому привязывается очередь. Пустое имя - без привязки
	Exchange     string
	ExchangeType string
	RoutingKey   string

	PrefetchCount int
	ConsumerTag   string

	// Sequential обрабатывает сообщения по одному в порядке доставки
	Sequential bool

	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int // мс
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.QueueName == "" {
		return errors.New("consumer: queue name is required")
	}
	if c.Exchange != "" && c.ExchangeType == "" {
		return fmt.Errorf("consumer: exchange type is required for exchange '%s'", c.Exchange)
	}
	if c.EnableRetryMechanism {
		if c.Exchange == "" {
			return errors.New("consumer: retry mechanism requires a bound exchange")
		}
		if c.RetryExchange == "" || c.RetryQueue == "" || c.FinalDLXExchange == "" || c.FinalDLQ == "" {
			return errors.New("consumer: retry mechanism requires retry exchange, retry queue, final DLX and final DLQ")
		}
		if c.RetryTTL <= 0 {
			return errors.New("consumer: retry TTL must be positive")
		}
		if c.MaxRetries < 0 {
			return errors.New("consumer: max retries must not be negative")
		}
	}
	return nil
}
