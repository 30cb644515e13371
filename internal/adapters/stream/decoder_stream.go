package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"real-estate-system/internal/core/domain"
)

// DecoderStream читает события из NDJSON-тела запроса, по одному объекту на строку
type DecoderStream struct {
	decoder *json.Decoder
}

func NewDecoderStream(r io.Reader) *DecoderStream {
	return &DecoderStream{decoder: json.NewDecoder(r)}
}

func (s *DecoderStream) Recv(ctx context.Context) (domain.ToolEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.ToolEvent{}, err
	}

	for {
		var event domain.ToolEvent
		err := s.decoder.Decode(&event)
		if err == nil {
			return event, nil
		}
		if errors.Is(err, io.EOF) {
			return domain.ToolEvent{}, io.EOF
		}

		// значение валидный JSON, но не событие: декодер его уже вычитал, идем дальше
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if err := ctx.Err(); err != nil {
				return domain.ToolEvent{}, err
			}
			continue
		}

		// обрезанная строка или разрыв соединения - это обрыв, а не штатный конец
		return domain.ToolEvent{}, fmt.Errorf("failed to decode tool event: %w", err)
	}
}
