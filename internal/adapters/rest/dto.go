package rest

import (
	"real-estate-system/internal/core/domain"

	"github.com/google/uuid"
)

type IngestionResponse struct {
	DocumentID       string `json:"document_id"`
	Status           string `json:"status"`
	VersionsAppended int    `json:"versions_appended"`
	EventsSeen       int    `json:"events_seen"`
	EventsSkipped    int    `json:"events_skipped"`
	Interrupted      bool   `json:"interrupted"`
}

type VersionResponse struct {
	DocumentID   string `json:"document_id"`
	VersionIndex int    `json:"version_index"`
	Status       string `json:"status"`
	Content      string `json:"content"`
}

type DocumentResponse struct {
	DocumentID   string          `json:"document_id"`
	VersionCount int             `json:"version_count"`
	Current      VersionResponse `json:"current"`
}

type NavigationResponse struct {
	VersionResponse
	IsCurrentVersion bool `json:"is_current_version"`
}

type BatchBoundariesRequest struct {
	Addresses []string `json:"addresses"`
}

type BatchBoundariesResponse struct {
	Results []domain.BoundaryResult `json:"results"`
}

func toIngestionResponse(documentID uuid.UUID, report domain.IngestionReport) IngestionResponse {
	return IngestionResponse{
		DocumentID:       documentID.String(),
		Status:           string(report.State),
		VersionsAppended: report.VersionsAppended,
		EventsSeen:       report.EventsSeen,
		EventsSkipped:    report.EventsSkipped,
		Interrupted:      report.Interrupted,
	}
}

func toVersionResponse(v domain.DocumentVersion) VersionResponse {
	return VersionResponse{
		DocumentID:   v.DocumentID.String(),
		VersionIndex: v.VersionIndex,
		Status:       string(v.Status),
		Content:      v.Content,
	}
}
