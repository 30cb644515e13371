package cache_adapter

import (
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// BoundaryCache - кэш одной сессии. Запись только вставкой-если-нет,
// сохраненный результат не перезаписывается.
type BoundaryCache struct {
	items sync.Map
}

func NewBoundaryCache() *BoundaryCache {
	return &BoundaryCache{}
}

// NormalizeAddress приводит адрес к ключу кэша:
// NFC, свертка регистра, схлопывание пробелов
func NormalizeAddress(address string) string {
	folded := cases.Fold().String(norm.NFC.String(address))
	return strings.Join(strings.Fields(folded), " ")
}

func (c *BoundaryCache) Get(address string) (domain.BoundaryResult, bool) {
	v, ok := c.items.Load(NormalizeAddress(address))
	if !ok {
		return domain.BoundaryResult{}, false
	}
	return v.(domain.BoundaryResult), true
}

func (c *BoundaryCache) PutIfAbsent(address string, result domain.BoundaryResult) domain.BoundaryResult {
	actual, _ := c.items.LoadOrStore(NormalizeAddress(address), result)
	return actual.(domain.BoundaryResult)
}

func (c *BoundaryCache) Len() int {
	n := 0
	c.items.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

var _ port.BoundaryCachePort = (*BoundaryCache)(nil)
