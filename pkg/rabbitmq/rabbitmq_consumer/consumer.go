package rabbitmq_consumer

import (
	"context"
	"fmt"
	"real-estate-system/pkg/rabbitmq/rabbitmq_common"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. Подтверждение делает потребитель по возвращенной ошибке
type MessageHandler func(delivery amqp.Delivery) error

// Consumer - общий контракт потребителей пакета
type Consumer interface {
	StartConsuming(ctx context.Context) error
	Close() error
}

type deadLetterPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// DistributingConsumer читает очередь и раздает сообщения обработчику,
// параллельно или строго по одному (Sequential)
type DistributingConsumer struct {
	config     ConsumerConfig
	handler    MessageHandler
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	dlx        deadLetterPublisher

	wg     sync.WaitGroup
	Logger rabbitmq_common.Logger
}

var _ Consumer = (*DistributingConsumer)(nil)

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing consumer: message handler is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("distributing consumer: invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.Channel()
	if err != nil {
		return nil, fmt.Errorf("distributing consumer: failed to get channel: %w", err)
	}

	queueName, err := declareTopology(ch, cfg)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("distributing consumer: %w", err)
	}
	logger.Debug("Consumer topology declared", "queue", queueName, "retry", cfg.EnableRetryMechanism)

	return &DistributingConsumer{
		config:     cfg,
		handler:    handler,
		connection: conn,
		channel:    ch,
		queueName:  queueName,
		dlx:        ch,
		Logger:     logger,
	}, nil
}

// StartConsuming блокируется до отмены ctx или закрытия соединения брокером
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("distributing consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.queueName, c.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("distributing consumer: failed to consume queue '%s': %w", c.queueName, err)
	}
	c.Logger.Info("[*] Waiting for messages", "queue_name", c.queueName, "sequential", c.config.Sequential)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Context cancelled, consumer stopped", "queue_name", c.queueName)
			return nil

		case amqpErr := <-notifyClose:
			if amqpErr == nil {
				return nil
			}
			c.Logger.Error(amqpErr, "Connection closed for consumer", "queue_name", c.queueName)
			return amqpErr

		case d, ok := <-msgs:
			if !ok {
				c.Logger.Info("Deliveries channel closed by broker", "queue_name", c.queueName)
				return nil
			}
			if c.config.Sequential {
				c.handle(ctx, d)
				continue
			}
			c.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer c.wg.Done()
				c.handle(ctx, delivery)
			}(d)
		}
	}
}

// handle вызывает обработчик и подтверждает сообщение согласно решению decide
func (c *DistributingConsumer) handle(ctx context.Context, d amqp.Delivery) {
	processErr := c.handler(d)

	deaths := DeathCount(d.Headers, c.queueName)
	switch decide(processErr, c.config.EnableRetryMechanism, deaths, c.config.MaxRetries) {
	case outcomeAck:
		_ = d.Ack(false)
		c.Logger.Debug("[+] Message acked", "delivery_tag", d.DeliveryTag)

	case outcomeDrop:
		c.Logger.Error(processErr, "Handler failed, retry disabled, message dropped", "delivery_tag", d.DeliveryTag)
		_ = d.Nack(false, false)

	case outcomeRetry:
		c.Logger.Warn("Handler failed, message sent to retry", "delivery_tag", d.DeliveryTag, "death_count", deaths, "error", processErr.Error())
		_ = d.Nack(false, false)

	case outcomeDeadLetter:
		c.Logger.Error(processErr, "Message moved to final DLQ", "delivery_tag", d.DeliveryTag, "death_count", deaths)
		err := c.dlx.PublishWithContext(context.WithoutCancel(ctx), c.config.FinalDLXExchange, c.config.FinalDLQRoutingKey, false, false, amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			Headers:      d.Headers,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		})
		if err != nil {
			// не смогли отложить в DLQ - пусть пройдет еще один круг ретрая
			c.Logger.Error(err, "Failed to publish to final DLX", "delivery_tag", d.DeliveryTag)
			_ = d.Nack(false, false)
			return
		}
		_ = d.Ack(false)
	}
}

// Close дожидается активных обработчиков и закрывает канал
func (c *DistributingConsumer) Close() error {
	c.Logger.Debug("Waiting for message handlers to finish")
	c.wg.Wait()

	if c.channel == nil {
		return nil
	}
	err := c.channel.Close()
	c.channel = nil
	if err != nil {
		c.Logger.Error(err, "Error closing consumer channel")
		return err
	}
	c.Logger.Info("Consumer closed", "queue_name", c.queueName)
	return nil
}
