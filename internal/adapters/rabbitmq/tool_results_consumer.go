package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"real-estate-system/internal/adapters/stream"
	"real-estate-system/internal/constants"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/contracts"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"
	"real-estate-system/pkg/rabbitmq/rabbitmq_common"
	"real-estate-system/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ToolEventDispatcher доставляет событие в поток документа
type ToolEventDispatcher interface {
	Dispatch(ctx context.Context, documentID uuid.UUID, kind domain.IngestionKind, event domain.ToolEvent) error
}

// ToolResultsConsumerAdapter читает события инструментов из очереди и передает их в потоки документов
type ToolResultsConsumerAdapter struct {
	consumer   rabbitmq_consumer.Consumer
	dispatcher ToolEventDispatcher
	logger     port.LoggerPort
}

var _ port.EventListenerPort = (*ToolResultsConsumerAdapter)(nil)

func NewToolResultsConsumerAdapter(
	cfg rabbitmq_consumer.ConsumerConfig,
	dispatcher ToolEventDispatcher,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*ToolResultsConsumerAdapter, error) {
	adapter := &ToolResultsConsumerAdapter{
		dispatcher: dispatcher,
		logger:     logger.WithFields(port.Fields{"component": "ToolResultsConsumerAdapter"}),
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_distributing_consumer", "consumer_tag": cfg.ConsumerTag})
	cfg.Logger = NewPkgLoggerBridge(pkgLogger)
	// порядок событий внутри документа важен
	cfg.Sequential = true

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(cfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, err
	}
	adapter.consumer = consumer
	return adapter, nil
}

func (a *ToolResultsConsumerAdapter) messageHandler(d amqp.Delivery) error {
	traceID, ok := d.Headers[constants.HeaderTraceID].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
	})

	version, ok := d.Headers[constants.HeaderEventVersion].(string)
	if !ok || version == "" {
		version = contracts.CurrentContractsVersion
	}
	if err := contracts.ValidateEvent(contracts.ToolResultEventType, version, d.Body); err != nil {
		msgLogger.Error("Tool result message failed schema validation", err, nil)
		return fmt.Errorf("%w: %v", rabbitmq_consumer.ErrNonRetryable, err)
	}

	var dto ToolResultMessageDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		msgLogger.Error("Failed to unmarshal tool result message", err, nil)
		return fmt.Errorf("%w: %v", rabbitmq_consumer.ErrNonRetryable, err)
	}

	kind, event := dto.toDomain()
	handlerLogger := msgLogger.WithFields(port.Fields{
		"document_id": dto.DocumentID.String(),
		"event_type":  event.Type,
	})

	ctx := contextkeys.ContextWithTraceID(context.Background(), traceID)
	ctx = contextkeys.ContextWithLogger(ctx, handlerLogger)

	if err := a.dispatcher.Dispatch(ctx, dto.DocumentID, kind, event); err != nil {
		if errors.Is(err, stream.ErrStreamClosed) {
			handlerLogger.Warn("Stream for document already closed, event dropped", nil)
			return nil
		}
		handlerLogger.Error("Failed to dispatch tool event, message will be retried", err, nil)
		return err
	}

	handlerLogger.Debug("Tool event dispatched", nil)
	return nil
}

func (a *ToolResultsConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *ToolResultsConsumerAdapter) Close() error { return a.consumer.Close() }
