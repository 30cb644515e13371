package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"

	"github.com/google/uuid"
)

// IngestListingsUseCase превращает поток событий инструментов в историю версий документа.
// Каждый tool-result с пачкой дает ровно одну streaming-версию и одно delta-событие.
type IngestListingsUseCase struct {
	repo      port.DocumentRepositoryPort
	notifier  port.DeltaNotifierPort
	validator port.ContentValidatorPort
}

func NewIngestListingsUseCase(repo port.DocumentRepositoryPort, notifier port.DeltaNotifierPort, validator port.ContentValidatorPort) *IngestListingsUseCase {
	return &IngestListingsUseCase{
		repo:      repo,
		notifier:  notifier,
		validator: validator,
	}
}

func (uc *IngestListingsUseCase) Execute(ctx context.Context, documentID uuid.UUID, kind domain.IngestionKind, stream port.ToolEventStreamPort) (domain.IngestionReport, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "IngestListings",
		"document_id": documentID.String(),
		"kind":        string(kind),
	})

	report := domain.IngestionReport{State: domain.IngestionIdle}

	existing, err := uc.repo.CountVersions(ctx, documentID)
	if err != nil {
		ucLogger.Error("Repository failed to count versions", err, nil)
		return report, fmt.Errorf("failed to count document versions: %w", err)
	}
	if kind == domain.IngestionUpdate && existing == 0 {
		return report, domain.ErrDocumentNotFound
	}

	ucLogger.Info("Use case started", port.Fields{"existing_versions": existing})
	report.State = domain.IngestionStreaming

	var streamErr error
loop:
	for {
		if err := ctx.Err(); err != nil {
			return uc.abandon(ucLogger, report, err)
		}

		event, err := stream.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return uc.abandon(ucLogger, report, ctx.Err())
			}
			if !errors.Is(err, io.EOF) {
				streamErr = err
				report.Interrupted = true
				ucLogger.Warn("Tool event stream interrupted, finalizing with what was received", port.Fields{"error": err.Error()})
			}
			break
		}
		report.EventsSeen++

		switch event.Type {
		case domain.ToolEventFinish:
			break loop
		case domain.ToolEventAbort:
			return uc.abandon(ucLogger, report, domain.ErrIngestionAborted)
		case domain.ToolEventResult:
		default:
			continue
		}

		candidates, ok := event.Candidates()
		if !ok {
			report.EventsSkipped++
			ucLogger.Warn("Tool result does not carry a listing batch, skipping", nil)
			continue
		}

		content, err := domain.BuildBatch(candidates).Serialize()
		if err != nil {
			report.EventsSkipped++
			ucLogger.Error("Failed to serialize listing batch", err, nil)
			continue
		}
		if err := uc.validator.ValidateContent(content); err != nil {
			report.EventsSkipped++
			ucLogger.Error("Serialized batch does not match the listings schema", err, nil)
			continue
		}

		// отмена могла произойти, пока собиралась пачка
		if err := ctx.Err(); err != nil {
			return uc.abandon(ucLogger, report, err)
		}

		version, err := uc.repo.AppendVersion(ctx, documentID, content, domain.StatusStreaming)
		if err != nil {
			ucLogger.Error("Repository failed to append version", err, nil)
			report.State = domain.IngestionAbandoned
			return report, fmt.Errorf("failed to append version: %w", err)
		}
		report.VersionsAppended++
		report.LastVersion = &version

		ucLogger.Debug("Version appended", port.Fields{"version_index": version.VersionIndex})
		uc.notify(ctx, ucLogger, port.DeltaEventType, version)
	}

	final, err := uc.finalize(ctx, documentID, existing+report.VersionsAppended)
	if err != nil {
		ucLogger.Error("Failed to finalize document", err, nil)
		report.State = domain.IngestionAbandoned
		return report, fmt.Errorf("failed to finalize document: %w", err)
	}
	report.LastVersion = &final
	report.State = domain.IngestionComplete
	uc.notify(ctx, ucLogger, port.FinishEventType, final)

	ucLogger.Info("Use case finished", port.Fields{
		"versions_appended": report.VersionsAppended,
		"events_seen":       report.EventsSeen,
		"events_skipped":    report.EventsSkipped,
		"interrupted":       report.Interrupted,
	})

	if streamErr != nil {
		return report, fmt.Errorf("%w: %v", domain.ErrStreamInterrupted, streamErr)
	}
	return report, nil
}

// finalize переводит последнюю версию в complete.
// Если у документа нет ни одной версии, сразу дописывается пустая завершенная.
func (uc *IngestListingsUseCase) finalize(ctx context.Context, documentID uuid.UUID, total int) (domain.DocumentVersion, error) {
	if total == 0 {
		content, err := domain.ListingBatch{}.Serialize()
		if err != nil {
			return domain.DocumentVersion{}, err
		}
		return uc.repo.AppendVersion(ctx, documentID, content, domain.StatusComplete)
	}
	return uc.repo.CompleteLatest(ctx, documentID)
}

func (uc *IngestListingsUseCase) abandon(logger port.LoggerPort, report domain.IngestionReport, cause error) (domain.IngestionReport, error) {
	report.State = domain.IngestionAbandoned
	logger.Info("Consumer stopped observing, ingestion abandoned", port.Fields{
		"versions_appended": report.VersionsAppended,
		"reason":            cause.Error(),
	})
	return report, cause
}

func (uc *IngestListingsUseCase) notify(ctx context.Context, logger port.LoggerPort, eventType string, v domain.DocumentVersion) {
	event := port.DeltaEvent{
		Type:         eventType,
		DocumentID:   v.DocumentID,
		VersionIndex: v.VersionIndex,
		Status:       string(v.Status),
		Content:      v.Content,
	}
	if err := uc.notifier.Notify(ctx, event); err != nil {
		// доставка не влияет на сохраненную историю
		logger.Warn("Failed to notify subscribers", port.Fields{"event_type": eventType, "error": err.Error()})
	}
}
