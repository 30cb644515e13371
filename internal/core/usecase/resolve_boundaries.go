package usecase

import (
	"context"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"

	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 4

// ResolveBoundariesUseCase разрешает адреса пачки параллельно, с общим кэшем сессии.
// Результаты возвращаются в порядке входных адресов.
type ResolveBoundariesUseCase struct {
	single      *ResolveBoundaryUseCase
	concurrency int
}

func NewResolveBoundariesUseCase(single *ResolveBoundaryUseCase, concurrency int) *ResolveBoundariesUseCase {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	return &ResolveBoundariesUseCase{single: single, concurrency: concurrency}
}

func (uc *ResolveBoundariesUseCase) Execute(ctx context.Context, sessionID string, addresses []string) ([]domain.BoundaryResult, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "ResolveBoundaries",
		"session_id": sessionID,
		"addresses":  len(addresses),
	})

	results := make([]domain.BoundaryResult, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, address := range addresses {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = uc.single.Execute(gctx, sessionID, address)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		ucLogger.Warn("Batch resolution cancelled", port.Fields{"error": err.Error()})
		return nil, err
	}

	resolved := 0
	for _, r := range results {
		if r.Resolved {
			resolved++
		}
	}
	ucLogger.Info("Batch resolved", port.Fields{"resolved": resolved})

	return results, nil
}
