package domain

import (
	"encoding/json"
	"math"
)

// ListingRecord - один объект недвижимости в каноническом виде.
// Price == 0 означает "цена по запросу".
type ListingRecord struct {
	ListingID    int64    `json:"listingId"`
	Address      string   `json:"address"`
	Price        float64  `json:"price"`
	PhoneNumbers []string `json:"phoneNumbers"`
	URL          string   `json:"url"`
	Images       []string `json:"images"`
	Features     []string `json:"features"`
	Description  string   `json:"description"`
	Score        *float64 `json:"score,omitempty"`
}

// HasScore сообщает, пришел ли score от источника
func (r ListingRecord) HasScore() bool {
	return r.Score != nil
}

// ScoreOrZero - score для ранжирования; отсутствующий считается нулем
func (r ListingRecord) ScoreOrZero() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// listingKeys - таблица допустимых ключей для каждого поля.
// Первый ключ канонический, остальные - алиасы от инструмента поиска и старой схемы артефакта.
var listingKeys = struct {
	id, address, price, phones, url, images, features, description, score []string
}{
	id:          []string{"listingId", "listing_id", "id"},
	address:     []string{"address", "detailed_address", "location"},
	price:       []string{"price"},
	phones:      []string{"phoneNumbers", "phone_numbers"},
	url:         []string{"url", "externalUrl", "external_url"},
	images:      []string{"images"},
	features:    []string{"features"},
	description: []string{"description"},
	score:       []string{"score"},
}

// IsListingCandidate - только JSON-объект может быть объявлением.
// Все остальное (null, строки, числа, массивы) пайплайн отбрасывает.
func IsListingCandidate(raw any) bool {
	_, ok := raw.(map[string]any)
	return ok
}

// ParseListing приводит сырое значение к ListingRecord.
// Функция никогда не падает: любое отсутствующее или неверно типизированное поле
// получает значение по умолчанию.
func ParseListing(raw any) ListingRecord {
	rec := ListingRecord{
		PhoneNumbers: []string{},
		Images:       []string{},
		Features:     []string{},
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return rec
	}

	if v, found := lookup(obj, listingKeys.id); found {
		rec.ListingID = toInt64(v)
	}
	if v, found := lookup(obj, listingKeys.address); found {
		rec.Address = toString(v)
	}
	if v, found := lookup(obj, listingKeys.price); found {
		if price, isNum := toFloat(v); isNum && price > 0 {
			rec.Price = price
		}
	}
	if v, found := lookup(obj, listingKeys.phones); found {
		rec.PhoneNumbers = toStringSlice(v)
	}
	if v, found := lookup(obj, listingKeys.url); found {
		rec.URL = toString(v)
	}
	if v, found := lookup(obj, listingKeys.images); found {
		rec.Images = toStringSlice(v)
	}
	if v, found := lookup(obj, listingKeys.features); found {
		rec.Features = toStringSlice(v)
	}
	if v, found := lookup(obj, listingKeys.description); found {
		rec.Description = toString(v)
	}
	if v, found := lookup(obj, listingKeys.score); found {
		if score, isNum := toFloat(v); isNum {
			rec.Score = &score
		}
	}

	return rec
}

// lookup ищет первый присутствующий ключ; null считается отсутствием поля
func lookup(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toInt64(v any) int64 {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, isStr := item.(string); isStr {
			out = append(out, s)
		}
	}
	return out
}
