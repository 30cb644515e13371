package domain

import "encoding/json"

// Типы входящих событий от слоя исполнения инструментов
const (
	ToolEventResult = "tool-result"
	ToolEventFinish = "finish"
	ToolEventAbort  = "abort"
)

// ToolEvent - одно событие потока. Result остается сырым JSON до разбора пайплайном.
type ToolEvent struct {
	Type   string          `json:"type"`
	Result json.RawMessage `json:"result,omitempty"`
}

// Candidates извлекает кандидатов в объявления из результата инструмента.
// Результат - это массив, либо объект-обертка { "listings": [...] }.
// ok == false означает, что событие не несет пачку вообще.
func (e ToolEvent) Candidates() (candidates []any, ok bool) {
	if e.Type != ToolEventResult || len(e.Result) == 0 {
		return nil, false
	}

	var raw any
	if err := json.Unmarshal(e.Result, &raw); err != nil {
		return nil, false
	}

	switch v := raw.(type) {
	case []any:
		return v, true
	case map[string]any:
		if inner, isArr := v["listings"].([]any); isArr {
			return inner, true
		}
	}
	return nil, false
}

// Тип запроса, породившего поток
type IngestionKind string

const (
	IngestionCreate IngestionKind = "create"
	IngestionUpdate IngestionKind = "update"
)

// IngestionState - состояние пайплайна инжеста
type IngestionState string

const (
	IngestionIdle      IngestionState = "idle"
	IngestionStreaming IngestionState = "streaming"
	IngestionComplete  IngestionState = "complete"
	IngestionAbandoned IngestionState = "abandoned"
)

// IngestionReport - итог одного запуска пайплайна
type IngestionReport struct {
	State            IngestionState
	VersionsAppended int
	EventsSeen       int
	EventsSkipped    int
	Interrupted      bool
	LastVersion      *DocumentVersion
}
