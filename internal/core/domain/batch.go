package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ListingBatch - упорядоченный результат одного цикла инжеста
type ListingBatch []ListingRecord

// documentContent - формат хранения и передачи: { "listings": [...] }
type documentContent struct {
	Listings ListingBatch `json:"listings"`
}

// BuildBatch валидирует каждого кандидата, отбрасывает не-объекты и упорядочивает результат.
// Если хотя бы у одной записи есть score, записи сортируются по убыванию score
// (стабильно, записи без score считаются нулевыми). Иначе порядок источника сохраняется.
func BuildBatch(candidates []any) ListingBatch {
	batch := make(ListingBatch, 0, len(candidates))
	scored := false

	for _, raw := range candidates {
		if !IsListingCandidate(raw) {
			continue
		}
		rec := ParseListing(raw)
		if rec.HasScore() {
			scored = true
		}
		batch = append(batch, rec)
	}

	if scored {
		sort.SliceStable(batch, func(i, j int) bool {
			return batch[i].ScoreOrZero() > batch[j].ScoreOrZero()
		})
	}
	return batch
}

// Serialize возвращает JSON-представление пачки
func (b ListingBatch) Serialize() (string, error) {
	listings := b
	if listings == nil {
		listings = ListingBatch{}
	}
	data, err := json.Marshal(documentContent{Listings: listings.normalized()})
	if err != nil {
		return "", fmt.Errorf("failed to serialize listing batch: %w", err)
	}
	return string(data), nil
}

// ParseBatch разбирает сохраненный контент документа.
// В отличие от ParseListing это строгий разбор: контент пишет только сам сервис.
func ParseBatch(content string) (ListingBatch, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.DisallowUnknownFields()

	var doc struct {
		Listings *ListingBatch `json:"listings"`
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document content: %w", err)
	}
	if doc.Listings == nil {
		return nil, fmt.Errorf("failed to parse document content: missing 'listings'")
	}
	return doc.Listings.normalized(), nil
}

// normalized гарантирует, что срезы никогда не сериализуются как null
func (b ListingBatch) normalized() ListingBatch {
	out := make(ListingBatch, len(b))
	for i, rec := range b {
		if rec.PhoneNumbers == nil {
			rec.PhoneNumbers = []string{}
		}
		if rec.Images == nil {
			rec.Images = []string{}
		}
		if rec.Features == nil {
			rec.Features = []string{}
		}
		out[i] = rec
	}
	return out
}
