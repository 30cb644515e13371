package rabbitmq_consumer

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// topologyChannel - часть *amqp.Channel, нужная для объявления сущностей
type topologyChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// declareTopology объявляет основную очередь и, если включено, контур ретраев:
// основная очередь -> retry exchange -> wait-очередь с TTL -> основной обменник.
// Возвращает фактическое имя очереди.
func declareTopology(ch topologyChannel, cfg ConsumerConfig) (string, error) {
	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return "", fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	queueArgs := amqp.Table{}
	for k, v := range cfg.QueueArgs {
		queueArgs[k] = v
	}

	if cfg.EnableRetryMechanism {
		queueArgs["x-dead-letter-exchange"] = cfg.RetryExchange

		if err := ch.ExchangeDeclare(cfg.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
			return "", fmt.Errorf("failed to declare final DLX: %w", err)
		}
		if _, err := ch.QueueDeclare(cfg.FinalDLQ, true, false, false, false, nil); err != nil {
			return "", fmt.Errorf("failed to declare final DLQ: %w", err)
		}
		if err := ch.QueueBind(cfg.FinalDLQ, cfg.FinalDLQRoutingKey, cfg.FinalDLXExchange, false, nil); err != nil {
			return "", fmt.Errorf("failed to bind final DLQ: %w", err)
		}

		if err := ch.ExchangeDeclare(cfg.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
			return "", fmt.Errorf("failed to declare retry exchange: %w", err)
		}
		// сообщение возвращается в основной обменник с исходным ключом маршрутизации
		_, err := ch.QueueDeclare(cfg.RetryQueue, true, false, false, false, amqp.Table{
			"x-message-ttl":          int32(cfg.RetryTTL),
			"x-dead-letter-exchange": cfg.Exchange,
		})
		if err != nil {
			return "", fmt.Errorf("failed to declare retry-wait queue: %w", err)
		}
		if err := ch.QueueBind(cfg.RetryQueue, "", cfg.RetryExchange, false, nil); err != nil {
			return "", fmt.Errorf("failed to bind retry-wait queue: %w", err)
		}
	}

	if cfg.Exchange != "" {
		if err := ch.ExchangeDeclare(cfg.Exchange, cfg.ExchangeType, true, false, false, false, nil); err != nil {
			return "", fmt.Errorf("failed to declare exchange '%s': %w", cfg.Exchange, err)
		}
	}

	q, err := ch.QueueDeclare(cfg.QueueName, cfg.Durable, cfg.AutoDelete, false, false, queueArgs)
	if err != nil {
		return "", fmt.Errorf("failed to declare queue '%s': %w", cfg.QueueName, err)
	}

	if cfg.Exchange != "" {
		if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
			return "", fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", q.Name, cfg.Exchange, err)
		}
	}
	return q.Name, nil
}
