package port

import "real-estate-system/internal/core/domain"

// BoundaryCachePort - кэш результатов одной сессии рендеринга.
// Только вставка-если-нет: сохраненный результат никогда не перезаписывается.
type BoundaryCachePort interface {
	Get(address string) (domain.BoundaryResult, bool)
	// PutIfAbsent сохраняет результат, если адреса еще нет, и возвращает актуальное значение
	PutIfAbsent(address string, result domain.BoundaryResult) domain.BoundaryResult
}

// BoundarySessionsPort выдает кэш для сессии рендеринга
type BoundarySessionsPort interface {
	Session(sessionID string) BoundaryCachePort
}
