package constants

const MainExchange = "artifact_exchange"

// Имена очередей
const (
	QueueToolResults = "artifact_tool_results"
)

// Ключи маршрутизации
const (
	RoutingKeyToolResult      = "artifact.tool.result"
	RoutingKeyRealEstateDelta = "artifact.real-estate.delta"
)

const (
	FinalDLXExchange   = "artifact_tool_results_final_dlx"
	FinalDLQ           = "artifact_tool_results_final_dlq"
	FinalDLQRoutingKey = "artifact_tool_results.dlq.key"
)

const (
	RetryExchange = "artifact_retry_exchange"
	WaitQueue     = "artifact_wait_5s"
	RetryTTL      = 5000 // 5 секунд
	MaxRetries    = 3
)

// Заголовки сообщений
const (
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
	HeaderTraceID      = "x-trace-id"
)
