package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct{}

func (testEvent) Name() string { return "test.event" }

func TestPublishRunsEveryListener(t *testing.T) {
	bus := New(zap.NewNop(), time.Second)
	var calls int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}

	bus.Publish(testEvent{})
	bus.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPublishDoesNotBlockOnSlowListener(t *testing.T) {
	bus := New(zap.NewNop(), time.Second)
	release := make(chan struct{})
	bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		bus.Publish(testEvent{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish заблокировался на медленном слушателе")
	}
	close(release)
	bus.Wait()
}

func TestListenerErrorsAndPanicsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := New(zap.New(core), time.Second)
	bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
		return errors.New("falhou")
	})
	bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
		panic("boom")
	})

	bus.Publish(testEvent{})
	bus.Wait()

	assert.Equal(t, 1, logs.FilterMessage("Ошибка в обработчике события").Len())
	assert.Equal(t, 1, logs.FilterMessage("Паника в обработчике события").Len())
}

func TestListenerContextHasTimeout(t *testing.T) {
	bus := New(zap.NewNop(), 50*time.Millisecond)
	var deadlineSet atomic.Bool
	bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
		_, ok := ctx.Deadline()
		deadlineSet.Store(ok)
		return nil
	})
	bus.Publish(testEvent{})
	bus.Wait()
	assert.True(t, deadlineSet.Load())
}
