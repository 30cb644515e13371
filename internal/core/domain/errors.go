package domain

import "errors"

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrEmptyDocument     = errors.New("document has no versions")
	ErrVersionOutOfRange = errors.New("version index out of range")
	ErrVersionOutOfOrder = errors.New("version index does not continue the history")

	// ErrPlaceNotFound - геокодер не вернул ни одного объекта для адреса
	ErrPlaceNotFound = errors.New("place not found")

	ErrInvalidDirection  = errors.New("navigation direction must be prev or next")

	// ErrIngestionAborted - производитель явно отменил поток событием abort
	ErrIngestionAborted = errors.New("ingestion aborted by producer")

	// ErrStreamInterrupted - поток tool-result событий оборвался не по EOF
	ErrStreamInterrupted = errors.New("tool result stream interrupted")
)
