package redis_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 5

// RedisDocumentRepository хранит историю документа списком: RPUSH дописывает,
// позиция в списке совпадает с индексом версии
type RedisDocumentRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisDocumentRepository; ttl == 0 - без срока жизни
func NewRedisDocumentRepository(client *redis.Client, keyPrefix string, ttl time.Duration) (*RedisDocumentRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if keyPrefix == "" {
		keyPrefix = "artifact"
	}
	return &RedisDocumentRepository{client: client, keyPrefix: keyPrefix, ttl: ttl}, nil
}

func (r *RedisDocumentRepository) key(documentID uuid.UUID) string {
	return versionsKey(r.keyPrefix, documentID)
}

func versionsKey(prefix string, documentID uuid.UUID) string {
	return fmt.Sprintf("%s:document:%s:versions", prefix, documentID.String())
}

type storedVersion struct {
	VersionIndex int       `json:"version_index"`
	Content      string    `json:"content"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func encodeVersion(v domain.DocumentVersion) (string, error) {
	b, err := json.Marshal(storedVersion{
		VersionIndex: v.VersionIndex,
		Content:      v.Content,
		Status:       string(v.Status),
		CreatedAt:    v.CreatedAt,
	})
	return string(b), err
}

func decodeVersion(documentID uuid.UUID, raw string) (domain.DocumentVersion, error) {
	var s storedVersion
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return domain.DocumentVersion{}, fmt.Errorf("corrupted version entry: %w", err)
	}
	return domain.DocumentVersion{
		DocumentID:   documentID,
		VersionIndex: s.VersionIndex,
		Content:      s.Content,
		Status:       domain.VersionStatus(s.Status),
		CreatedAt:    s.CreatedAt,
	}, nil
}

// withOptimisticTx повторяет транзакцию WATCH/MULTI, пока ключ меняют конкуренты
func (r *RedisDocumentRepository) withOptimisticTx(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = r.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (r *RedisDocumentRepository) AppendVersion(ctx context.Context, documentID uuid.UUID, content string, status domain.VersionStatus) (domain.DocumentVersion, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "RedisDocumentRepository",
		"method":      "AppendVersion",
		"document_id": documentID.String(),
	})

	key := r.key(documentID)
	var appended domain.DocumentVersion

	err := r.withOptimisticTx(ctx, key, func(tx *redis.Tx) error {
		n, err := tx.LLen(ctx, key).Result()
		if err != nil {
			return err
		}

		appended = domain.DocumentVersion{
			DocumentID:   documentID,
			VersionIndex: int(n),
			Content:      content,
			Status:       status,
			CreatedAt:    time.Now().UTC(),
		}
		payload, err := encodeVersion(appended)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, payload)
			if r.ttl > 0 {
				pipe.Expire(ctx, key, r.ttl)
			}
			return nil
		})
		return err
	})
	if err != nil {
		repoLogger.Error("Failed to append version", err, nil)
		return domain.DocumentVersion{}, fmt.Errorf("failed to append version: %w", err)
	}

	repoLogger.Debug("Version appended", port.Fields{"version_index": appended.VersionIndex})
	return appended, nil
}

func (r *RedisDocumentRepository) CompleteLatest(ctx context.Context, documentID uuid.UUID) (domain.DocumentVersion, error) {
	key := r.key(documentID)
	var completed domain.DocumentVersion

	err := r.withOptimisticTx(ctx, key, func(tx *redis.Tx) error {
		raw, err := tx.LIndex(ctx, key, -1).Result()
		if errors.Is(err, redis.Nil) {
			return domain.ErrDocumentNotFound
		}
		if err != nil {
			return err
		}

		v, err := decodeVersion(documentID, raw)
		if err != nil {
			return err
		}
		v.Status = domain.StatusComplete
		payload, err := encodeVersion(v)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LSet(ctx, key, -1, payload)
			return nil
		})
		completed = v
		return err
	})
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return domain.DocumentVersion{}, err
	}
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to complete latest version", err, port.Fields{
			"component":   "RedisDocumentRepository",
			"document_id": documentID.String(),
		})
		return domain.DocumentVersion{}, fmt.Errorf("failed to complete latest version: %w", err)
	}
	return completed, nil
}

func (r *RedisDocumentRepository) GetVersions(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentVersion, error) {
	raws, err := r.client.LRange(ctx, r.key(documentID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read versions: %w", err)
	}
	if len(raws) == 0 {
		return nil, domain.ErrDocumentNotFound
	}

	versions := make([]domain.DocumentVersion, 0, len(raws))
	for _, raw := range raws {
		v, err := decodeVersion(documentID, raw)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func (r *RedisDocumentRepository) CountVersions(ctx context.Context, documentID uuid.UUID) (int, error) {
	n, err := r.client.LLen(ctx, r.key(documentID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count versions: %w", err)
	}
	return int(n), nil
}
