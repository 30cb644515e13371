package usecase

import (
	"context"
	"errors"
	"testing"

	"real-estate-system/internal/contracts"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngest() (*IngestListingsUseCase, *fakeRepo, *recordingNotifier) {
	repo := newFakeRepo()
	notifier := &recordingNotifier{}
	return NewIngestListingsUseCase(repo, notifier, contracts.NewListingsContentValidator()), repo, notifier
}

func TestIngest_OneVersionPerBatchAndFinalize(t *testing.T) {
	uc, repo, notifier := newIngest()
	id := uuid.New()
	stream := &sliceStream{events: []domain.ToolEvent{
		toolResult(`[{"address": "a", "score": 0.1}, {"address": "b", "score": 0.9}]`),
		{Type: "text-delta"},
		toolResult(`{"listings": [{"address": "c"}]}`),
		toolResult(`[]`),
	}}

	report, err := uc.Execute(context.Background(), id, domain.IngestionCreate, stream)
	require.NoError(t, err)

	assert.Equal(t, domain.IngestionComplete, report.State)
	assert.Equal(t, 3, report.VersionsAppended)
	assert.Equal(t, 4, report.EventsSeen)
	assert.False(t, report.Interrupted)

	versions := repo.versions(id)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, i, v.VersionIndex)
	}
	assert.Equal(t, domain.StatusStreaming, versions[0].Status)
	assert.Equal(t, domain.StatusStreaming, versions[1].Status)
	assert.Equal(t, domain.StatusComplete, versions[2].Status)

	first, err := domain.ParseBatch(versions[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "b", first[0].Address, "batch is ordered by score")
	assert.JSONEq(t, `{"listings": []}`, versions[2].Content)

	assert.Equal(t, []string{
		port.DeltaEventType, port.DeltaEventType, port.DeltaEventType, port.FinishEventType,
	}, notifier.types())
	require.NotNil(t, report.LastVersion)
	assert.Equal(t, 2, report.LastVersion.VersionIndex)
}

func TestIngest_NoBatchesAppendsEmptyCompleteVersion(t *testing.T) {
	uc, repo, notifier := newIngest()
	id := uuid.New()

	report, err := uc.Execute(context.Background(), id, domain.IngestionCreate, &sliceStream{})
	require.NoError(t, err)

	versions := repo.versions(id)
	require.Len(t, versions, 1)
	assert.Equal(t, domain.StatusComplete, versions[0].Status)
	assert.JSONEq(t, `{"listings": []}`, versions[0].Content)
	assert.Equal(t, 0, report.VersionsAppended)
	assert.Equal(t, []string{port.FinishEventType}, notifier.types())
}

func TestIngest_SkipsResultsWithoutBatch(t *testing.T) {
	uc, repo, _ := newIngest()
	id := uuid.New()
	stream := &sliceStream{events: []domain.ToolEvent{
		toolResult(`{"error": "upstream failed"}`),
		toolResult(`[{"address": "a"}]`),
	}}

	report, err := uc.Execute(context.Background(), id, domain.IngestionCreate, stream)
	require.NoError(t, err)

	assert.Equal(t, 1, report.EventsSkipped)
	assert.Len(t, repo.versions(id), 1)
}

func TestIngest_FinishEventEndsStream(t *testing.T) {
	uc, repo, _ := newIngest()
	id := uuid.New()
	stream := &sliceStream{events: []domain.ToolEvent{
		toolResult(`[{"address": "a"}]`),
		{Type: domain.ToolEventFinish},
		toolResult(`[{"address": "never read"}]`),
	}}

	_, err := uc.Execute(context.Background(), id, domain.IngestionCreate, stream)
	require.NoError(t, err)

	versions := repo.versions(id)
	require.Len(t, versions, 1)
	assert.Equal(t, domain.StatusComplete, versions[0].Status)
}

func TestIngest_InterruptedStreamKeepsWhatWasAppended(t *testing.T) {
	uc, repo, _ := newIngest()
	id := uuid.New()
	stream := &sliceStream{
		events: []domain.ToolEvent{toolResult(`[{"address": "a"}]`)},
		err:    errors.New("connection reset"),
	}

	report, err := uc.Execute(context.Background(), id, domain.IngestionCreate, stream)
	require.ErrorIs(t, err, domain.ErrStreamInterrupted)

	assert.True(t, report.Interrupted)
	assert.Equal(t, domain.IngestionComplete, report.State)
	versions := repo.versions(id)
	require.Len(t, versions, 1)
	assert.Equal(t, domain.StatusComplete, versions[0].Status)
}

func TestIngest_CancellationStopsWithoutFinalizing(t *testing.T) {
	uc, repo, notifier := newIngest()
	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &sliceStream{
		events: []domain.ToolEvent{
			toolResult(`[{"address": "a"}]`),
			toolResult(`[{"address": "b"}]`),
		},
		onRecv: func(n int) {
			if n == 1 {
				cancel()
			}
		},
	}

	report, err := uc.Execute(ctx, id, domain.IngestionCreate, stream)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, domain.IngestionAbandoned, report.State)
	versions := repo.versions(id)
	require.Len(t, versions, 1)
	assert.Equal(t, domain.StatusStreaming, versions[0].Status)
	assert.Equal(t, []string{port.DeltaEventType}, notifier.types())
}

func TestIngest_AbortEventAbandons(t *testing.T) {
	uc, repo, _ := newIngest()
	id := uuid.New()
	stream := &sliceStream{events: []domain.ToolEvent{
		toolResult(`[{"address": "a"}]`),
		{Type: domain.ToolEventAbort},
	}}

	report, err := uc.Execute(context.Background(), id, domain.IngestionCreate, stream)
	require.ErrorIs(t, err, domain.ErrIngestionAborted)
	assert.Equal(t, domain.IngestionAbandoned, report.State)
	assert.Equal(t, domain.StatusStreaming, repo.versions(id)[0].Status)
}

func TestIngest_UpdateRequiresExistingDocument(t *testing.T) {
	uc, _, _ := newIngest()

	_, err := uc.Execute(context.Background(), uuid.New(), domain.IngestionUpdate, &sliceStream{})
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestIngest_UpdateContinuesHistory(t *testing.T) {
	uc, repo, _ := newIngest()
	id := uuid.New()

	_, err := uc.Execute(context.Background(), id, domain.IngestionCreate, &sliceStream{
		events: []domain.ToolEvent{toolResult(`[{"address": "a"}]`)},
	})
	require.NoError(t, err)

	report, err := uc.Execute(context.Background(), id, domain.IngestionUpdate, &sliceStream{
		events: []domain.ToolEvent{toolResult(`[{"address": "b"}]`)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.VersionsAppended)

	versions := repo.versions(id)
	require.Len(t, versions, 2)
	assert.Equal(t, 1, versions[1].VersionIndex)
	assert.Equal(t, domain.StatusComplete, versions[1].Status)

	// обновление без пачек не трогает историю
	_, err = uc.Execute(context.Background(), id, domain.IngestionUpdate, &sliceStream{})
	require.NoError(t, err)
	assert.Len(t, repo.versions(id), 2)
}
