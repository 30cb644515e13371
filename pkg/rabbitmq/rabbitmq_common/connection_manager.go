package rabbitmq_common

import (
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrManagerClosed = errors.New("rabbitmq: connection manager is closed")

// ConnectionManager держит одно соединение на процесс и восстанавливает его после обрыва.
// Каналы открываются поверх общего соединения.
type ConnectionManager struct {
	cfg    Config
	dial   func(url string) (*amqp.Connection, error)
	logger Logger

	mu         sync.RWMutex
	connection *amqp.Connection

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewConnectionManager подключается к брокеру и запускает слежение за соединением
func NewConnectionManager(cfg Config, logger Logger) (*ConnectionManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewNoopLogger()
	}

	m := &ConnectionManager{
		cfg:    cfg,
		dial:   amqp.Dial,
		logger: logger,
		done:   make(chan struct{}),
	}

	conn, err := m.getConnection()
	if err != nil {
		logger.Error(err, "Initial connection failed")
		return nil, fmt.Errorf("initial connection failed: %w", err)
	}

	m.wg.Add(1)
	go m.watch(conn)
	return m, nil
}

// getConnection возвращает живое соединение или устанавливает новое
func (m *ConnectionManager) getConnection() (*amqp.Connection, error) {
	m.mu.RLock()
	if m.connection != nil && !m.connection.IsClosed() {
		conn := m.connection
		m.mu.RUnlock()
		return conn, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return nil, ErrManagerClosed
	default:
	}

	// другой вызов мог успеть переподключиться, пока ждали блокировку
	if m.connection != nil && !m.connection.IsClosed() {
		return m.connection, nil
	}

	m.logger.Debug("ConnectionManager: connecting")
	conn, err := m.dial(m.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ConnectionManager: failed to dial RabbitMQ: %w", err)
	}
	m.connection = conn
	m.logger.Info("ConnectionManager: connected")
	return conn, nil
}

// Channel открывает новый канал на общем соединении
func (m *ConnectionManager) Channel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := m.getConnection()
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return conn, nil, fmt.Errorf("ConnectionManager: failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

// watch ждет закрытия соединения брокером и переподключается с паузой
func (m *ConnectionManager) watch(conn *amqp.Connection) {
	defer m.wg.Done()

	for {
		closed := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-m.done:
			return
		case amqpErr := <-closed:
			if amqpErr == nil {
				// закрыто нами
				return
			}
			m.logger.Warn("ConnectionManager: connection lost", "reason", amqpErr.Reason, "code", amqpErr.Code)
		}

		for {
			select {
			case <-m.done:
				return
			case <-time.After(m.cfg.reconnectInterval()):
			}

			next, err := m.getConnection()
			if err != nil {
				if errors.Is(err, ErrManagerClosed) {
					return
				}
				m.logger.Error(err, "ConnectionManager: reconnect failed")
				continue
			}
			conn = next
			break
		}
	}
}

// Close закрывает соединение и останавливает переподключение
func (m *ConnectionManager) Close() error {
	var closeErr error
	m.closeOnce.Do(func() {
		m.mu.Lock()
		close(m.done)
		if m.connection != nil && !m.connection.IsClosed() {
			closeErr = m.connection.Close()
		}
		m.connection = nil
		m.mu.Unlock()

		m.wg.Wait()
		if closeErr != nil {
			m.logger.Error(closeErr, "ConnectionManager: failed to close connection properly")
			return
		}
		m.logger.Debug("ConnectionManager: connection closed")
	})
	return closeErr
}
