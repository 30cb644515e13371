package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"real-estate-system/internal/constants"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/contracts"
	"real-estate-system/internal/core/port"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// DeltaPublisherAdapter публикует события версий документа в брокер
type DeltaPublisherAdapter struct {
	producer   publisher
	routingKey string
}

var _ port.DeltaNotifierPort = (*DeltaPublisherAdapter)(nil)

func NewDeltaPublisherAdapter(producer publisher, routingKey string) *DeltaPublisherAdapter {
	return &DeltaPublisherAdapter{
		producer:   producer,
		routingKey: routingKey,
	}
}

func (a *DeltaPublisherAdapter) Notify(ctx context.Context, event port.DeltaEvent) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":     "DeltaPublisherAdapter",
		"routing_key":   a.routingKey,
		"document_id":   event.DocumentID.String(),
		"version_index": event.VersionIndex,
	})

	body, err := json.Marshal(toDeltaEventDTO(event))
	if err != nil {
		adapterLogger.Error("Failed to marshal delta event", err, nil)
		return fmt.Errorf("failed to marshal delta event: %w", err)
	}

	if err := contracts.ValidateEvent(contracts.DeltaEventType, contracts.CurrentContractsVersion, body); err != nil {
		adapterLogger.Error("Delta event does not match its contract", err, nil)
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			constants.HeaderEventType:    contracts.DeltaEventType,
			constants.HeaderEventVersion: contracts.CurrentContractsVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish delta event", err, nil)
		return err
	}

	adapterLogger.Debug("Delta event published", port.Fields{"event_type": event.Type})
	return nil
}
