package rabbitmq_consumer

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNonRetryable помечает ошибку, после которой повтор бессмысленен (битое сообщение).
// Такое сообщение сразу уходит в финальную DLQ.
var ErrNonRetryable = errors.New("non-retryable message")

type outcome int

const (
	outcomeAck outcome = iota
	outcomeRetry
	outcomeDeadLetter
	outcomeDrop
)

// DeathCount - сколько раз сообщение умирало в указанной очереди по заголовку x-death
func DeathCount(headers amqp.Table, queueName string) int64 {
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	// x-death содержит записи и для wait-очереди, нужна только основная
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, _ := tbl["queue"].(string); queue != queueName {
			continue
		}
		switch count := tbl["count"].(type) {
		case int64:
			return count
		case int32:
			return int64(count)
		case int:
			return int64(count)
		}
	}
	return 0
}

// decide выбирает судьбу сообщения по результату обработчика
func decide(handlerErr error, retryEnabled bool, deaths int64, maxRetries int) outcome {
	switch {
	case handlerErr == nil:
		return outcomeAck
	case !retryEnabled:
		return outcomeDrop
	case errors.Is(handlerErr, ErrNonRetryable):
		return outcomeDeadLetter
	case deaths < int64(maxRetries):
		return outcomeRetry
	default:
		return outcomeDeadLetter
	}
}
