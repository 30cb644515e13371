package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDocumentRepository хранит версии в таблице document_versions.
// Первичный ключ (document_id, version_index) не дает появиться дыркам и дублям.
type PostgresDocumentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresDocumentRepository(pool *pgxpool.Pool) (*PostgresDocumentRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresDocumentRepository{pool: pool}, nil
}

func (r *PostgresDocumentRepository) AppendVersion(ctx context.Context, documentID uuid.UUID, content string, status domain.VersionStatus) (domain.DocumentVersion, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresDocumentRepository",
		"method":      "AppendVersion",
		"document_id": documentID.String(),
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return domain.DocumentVersion{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// сериализуем дописывание в один документ
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, documentID.String()); err != nil {
		repoLogger.Error("Failed to take document lock", err, nil)
		return domain.DocumentVersion{}, fmt.Errorf("failed to lock document: %w", err)
	}

	v := domain.DocumentVersion{DocumentID: documentID, Content: content, Status: status}

	query := `
		INSERT INTO document_versions (document_id, version_index, content, status)
		SELECT $1, COALESCE(MAX(version_index) + 1, 0), $2, $3
		FROM document_versions WHERE document_id = $1
		RETURNING version_index, created_at
	`
	if err := tx.QueryRow(ctx, query, documentID, content, string(status)).Scan(&v.VersionIndex, &v.CreatedAt); err != nil {
		repoLogger.Error("Failed to insert version", err, nil)
		return domain.DocumentVersion{}, fmt.Errorf("failed to insert version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return domain.DocumentVersion{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	repoLogger.Debug("Version appended", port.Fields{"version_index": v.VersionIndex})
	return v, nil
}

func (r *PostgresDocumentRepository) CompleteLatest(ctx context.Context, documentID uuid.UUID) (domain.DocumentVersion, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresDocumentRepository",
		"method":      "CompleteLatest",
		"document_id": documentID.String(),
	})

	query := `
		UPDATE document_versions SET status = $2
		WHERE document_id = $1
		  AND version_index = (SELECT MAX(version_index) FROM document_versions WHERE document_id = $1)
		RETURNING version_index, content, status, created_at
	`
	v := domain.DocumentVersion{DocumentID: documentID}
	var status string
	err := r.pool.QueryRow(ctx, query, documentID, string(domain.StatusComplete)).Scan(&v.VersionIndex, &v.Content, &status, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DocumentVersion{}, domain.ErrDocumentNotFound
		}
		repoLogger.Error("Failed to complete latest version", err, nil)
		return domain.DocumentVersion{}, fmt.Errorf("failed to complete latest version: %w", err)
	}
	v.Status = domain.VersionStatus(status)
	return v, nil
}

func (r *PostgresDocumentRepository) GetVersions(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentVersion, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresDocumentRepository",
		"method":      "GetVersions",
		"document_id": documentID.String(),
	})

	rows, err := r.pool.Query(ctx, `
		SELECT version_index, content, status, created_at
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version_index
	`, documentID)
	if err != nil {
		repoLogger.Error("Failed to query versions", err, nil)
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}

	versions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DocumentVersion, error) {
		v := domain.DocumentVersion{DocumentID: documentID}
		var status string
		err := row.Scan(&v.VersionIndex, &v.Content, &status, &v.CreatedAt)
		v.Status = domain.VersionStatus(status)
		return v, err
	})
	if err != nil {
		repoLogger.Error("Failed to scan versions", err, nil)
		return nil, fmt.Errorf("failed to scan versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return versions, nil
}

func (r *PostgresDocumentRepository) CountVersions(ctx context.Context, documentID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM document_versions WHERE document_id = $1`, documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count versions: %w", err)
	}
	return count, nil
}
