package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event представляет собой любое событие в системе.
type Event interface {
	Name() string
}

// Listener - это обработчик (слушатель) событий.
type Listener func(ctx context.Context, event Event) error

// Bus - шина событий. Publish не блокирует вызывающего: каждый слушатель
// выполняется в своей горутине с таймаутом.
type Bus struct {
	listeners map[string][]Listener
	mu        sync.RWMutex
	inflight  sync.WaitGroup
	timeout   time.Duration
	logger    *zap.Logger
}

// New создает новую шину событий.
func New(logger *zap.Logger, timeout time.Duration) *Bus {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Bus{
		listeners: make(map[string][]Listener),
		timeout:   timeout,
		logger:    logger,
	}
}

// Subscribe подписывает слушателя на определенное событие.
func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// Publish публикует событие. Ошибки и паники слушателей только логируются.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners[event.Name()]...)
	b.mu.RUnlock()

	for _, listener := range listeners {
		b.inflight.Add(1)
		go b.run(listener, event)
	}
}

func (b *Bus) run(l Listener, event Event) {
	defer b.inflight.Done()

	// Контекст запроса к этому моменту может быть уже отменен, поэтому свой.
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			b.logger.Error("Паника в обработчике события",
				zap.String("event", event.Name()),
				zap.String("panic", fmt.Sprint(p)),
			)
		}
	}()

	if err := l(ctx, event); err != nil {
		b.logger.Error("Ошибка в обработчике события",
			zap.String("event", event.Name()),
			zap.Error(err),
		)
	}
}

// Wait ждет завершения всех запущенных обработчиков. Используется при
// остановке сервера и в тестах.
func (b *Bus) Wait() {
	b.inflight.Wait()
}
