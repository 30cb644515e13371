package notifier

import (
	"context"
	"errors"
	"real-estate-system/internal/core/port"
)

// MultiNotifier доставляет событие во все транспорты.
// Сбой одного транспорта не мешает остальным.
type MultiNotifier struct {
	notifiers []port.DeltaNotifierPort
}

func NewMultiNotifier(notifiers ...port.DeltaNotifierPort) *MultiNotifier {
	active := make([]port.DeltaNotifierPort, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &MultiNotifier{notifiers: active}
}

func (m *MultiNotifier) Notify(ctx context.Context, event port.DeltaEvent) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
