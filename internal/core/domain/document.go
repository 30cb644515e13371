package domain

import (
	"time"

	"github.com/google/uuid"
)

// VersionStatus - статус снапшота документа
type VersionStatus string

const (
	StatusStreaming VersionStatus = "streaming"
	StatusComplete  VersionStatus = "complete"
)

// DocumentVersion - неизменяемый снапшот контента документа
type DocumentVersion struct {
	DocumentID   uuid.UUID     `json:"document_id"`
	VersionIndex int           `json:"version_index"`
	Content      string        `json:"content"`
	Status       VersionStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Document - история версий одного артефакта. Только дописывается.
// Единственная допустимая правка - перевод последней версии в complete.
type Document struct {
	ID       uuid.UUID
	versions []DocumentVersion
}

func NewDocument(id uuid.UUID) *Document {
	return &Document{ID: id}
}

// RestoreDocument собирает документ из сохраненной истории, проверяя непрерывность индексов
func RestoreDocument(id uuid.UUID, versions []DocumentVersion) (*Document, error) {
	doc := NewDocument(id)
	for _, v := range versions {
		if v.VersionIndex != len(doc.versions) {
			return nil, ErrVersionOutOfOrder
		}
		doc.versions = append(doc.versions, v)
	}
	return doc, nil
}

// Append добавляет новую версию с индексом count
func (d *Document) Append(content string, status VersionStatus) DocumentVersion {
	v := DocumentVersion{
		DocumentID:   d.ID,
		VersionIndex: len(d.versions),
		Content:      content,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	d.versions = append(d.versions, v)
	return v
}

// AppendVersion дописывает готовую версию, индекс которой должен продолжать историю
func (d *Document) AppendVersion(v DocumentVersion) error {
	if v.VersionIndex != len(d.versions) {
		return ErrVersionOutOfOrder
	}
	v.DocumentID = d.ID
	d.versions = append(d.versions, v)
	return nil
}

// Complete переводит последнюю версию в статус complete
func (d *Document) Complete() (DocumentVersion, error) {
	if len(d.versions) == 0 {
		return DocumentVersion{}, ErrEmptyDocument
	}
	last := len(d.versions) - 1
	d.versions[last].Status = StatusComplete
	return d.versions[last], nil
}

func (d *Document) Version(index int) (DocumentVersion, error) {
	if index < 0 || index >= len(d.versions) {
		return DocumentVersion{}, ErrVersionOutOfRange
	}
	return d.versions[index], nil
}

func (d *Document) Latest() (DocumentVersion, error) {
	if len(d.versions) == 0 {
		return DocumentVersion{}, ErrEmptyDocument
	}
	return d.versions[len(d.versions)-1], nil
}

func (d *Document) Count() int {
	return len(d.versions)
}

// Versions возвращает копию истории
func (d *Document) Versions() []DocumentVersion {
	out := make([]DocumentVersion, len(d.versions))
	copy(out, d.versions)
	return out
}
