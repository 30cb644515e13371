package logger_adapter

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"real-estate-system/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedPost struct {
	tag  string
	data port.Fields
}

type fakeFluent struct {
	mu    sync.Mutex
	posts []capturedPost
}

func (f *fakeFluent) Post(tag string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, capturedPost{tag: tag, data: message.(port.Fields)})
	return nil
}

func (f *fakeFluent) Close() error { return nil }

func TestFluentLoggerAdapter_LevelsTagsAndFields(t *testing.T) {
	client := &fakeFluent{}
	logger := newFluentLoggerAdapter(client, "artifact-service", slog.LevelInfo)

	scoped := logger.WithFields(port.Fields{"document_id": "d1"})
	scoped.Debug("dropped", nil)
	scoped.Info("appended", port.Fields{"version_index": 2})
	scoped.Error("failed", errors.New("boom"), nil)

	require.Len(t, client.posts, 2)
	assert.Equal(t, "artifact-service.info", client.posts[0].tag)
	assert.Equal(t, "d1", client.posts[0].data["document_id"])
	assert.Equal(t, 2, client.posts[0].data["version_index"])
	assert.Equal(t, "appended", client.posts[0].data["message"])

	assert.Equal(t, "artifact-service.error", client.posts[1].tag)
	assert.Equal(t, "boom", client.posts[1].data["error"])

	// поля родителя не меняются
	assert.Empty(t, logger.fields)
}

func TestSlogAdapter_WritesFieldsInKeyOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug})

	logger.WithFields(port.Fields{"component": "test"}).Info("hello", port.Fields{"b": 2, "a": 1})

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "component=test")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("a=1")), bytes.Index(buf.Bytes(), []byte("b=2")))
}

func TestMultiLogger(t *testing.T) {
	_, err := NewMultiloggerAdapter()
	assert.Error(t, err)

	first, second := &fakeFluent{}, &fakeFluent{}
	multi, err := NewMultiloggerAdapter(
		newFluentLoggerAdapter(first, "", slog.LevelDebug),
		nil,
		newFluentLoggerAdapter(second, "", slog.LevelWarn),
	)
	require.NoError(t, err)

	multi.WithFields(port.Fields{"k": "v"}).Info("info", nil)
	multi.Warn("warn", nil)

	assert.Len(t, first.posts, 2)
	require.Len(t, second.posts, 1)
	assert.Equal(t, "warn", second.posts[0].tag)
}
