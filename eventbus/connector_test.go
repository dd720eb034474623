// eventbus/connector_test.go
package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/StauntonTrade/staunton_chat/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakySource падает заданное число раз, затем подключается
// и эмитирует одно событие на каждое успешное соединение
type flakySource struct {
	mu       sync.Mutex
	failures int
	runs     int
}

func (s *flakySource) Run(ctx context.Context, ready func(), emit func(Event)) error {
	s.mu.Lock()
	s.runs++
	shouldFail := s.runs <= s.failures
	s.mu.Unlock()

	if shouldFail {
		return errors.New("connection refused")
	}

	ready()
	emit(NewEvent(EventPriceUpdated, PriceUpdate{Commodity: "wheat", Price: 240}))

	<-ctx.Done()
	return ctx.Err()
}

func (s *flakySource) runCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func fastBusConfig() config.BusConfig {
	return config.BusConfig{
		BaseDelay:  time.Millisecond,
		Multiplier: 2.0,
		MaxDelay:   5 * time.Millisecond,
		MaxRetries: 10,
	}
}

func waitForStatus(t *testing.T, bus *Bus, want ConnectionStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if bus.Status() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("status %v not reached, current: %v", want, bus.Status())
}

func TestConnect_RetriesWithBackoffUntilConnected(t *testing.T) {
	source := &flakySource{failures: 3}
	bus := NewBus(fastBusConfig(), source)

	received := make(chan Event, 1)
	bus.Subscribe(EventPriceUpdated, func(e Event) {
		select {
		case received <- e:
		default:
		}
	})

	require.NoError(t, bus.Connect(context.Background()))
	defer bus.Disconnect()

	waitForStatus(t, bus, StatusConnected)

	// Соединение установилось после трех неудачных попыток
	assert.Equal(t, 4, source.runCount())

	select {
	case e := <-received:
		assert.Equal(t, EventPriceUpdated, e.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("event from source not received")
	}
}

func TestConnect_SecondCallRejected(t *testing.T) {
	bus := NewBus(fastBusConfig(), &flakySource{})

	require.NoError(t, bus.Connect(context.Background()))
	defer bus.Disconnect()

	err := bus.Connect(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestConnect_ExhaustsRetriesAndStaysInError(t *testing.T) {
	// Источник падает всегда
	source := &flakySource{failures: 1 << 30}
	cfg := fastBusConfig()
	cfg.MaxRetries = 2
	bus := NewBus(cfg, source)

	require.NoError(t, bus.Connect(context.Background()))
	defer bus.Disconnect()

	waitForStatus(t, bus, StatusError)

	// Даем циклу время исчерпать попытки
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && source.runCount() < 3 {
		time.Sleep(time.Millisecond)
	}

	// Первая попытка плюс MaxRetries повторов, затем цикл останавливается
	assert.Equal(t, 3, source.runCount())
	assert.Equal(t, StatusError, bus.Status())
}

func TestDisconnect_SetsDisconnected(t *testing.T) {
	bus := NewBus(fastBusConfig(), &flakySource{})

	require.NoError(t, bus.Connect(context.Background()))
	waitForStatus(t, bus, StatusConnected)

	bus.Disconnect()
	waitForStatus(t, bus, StatusDisconnected)

	// После Disconnect можно подключиться снова
	require.NoError(t, bus.Connect(context.Background()))
	defer bus.Disconnect()
}

func TestSimulatedSource_EmitsAfterReady(t *testing.T) {
	source := NewSimulatedSource(time.Millisecond, 2*time.Millisecond)
	source.ConnectDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	events := make(chan Event, 16)

	go source.Run(ctx, func() { close(ready) }, func(e Event) {
		select {
		case events <- e:
		default:
		}
	})

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("source did not become ready")
	}

	select {
	case e := <-events:
		assert.NotEmpty(t, e.ID)
		assert.NotEmpty(t, string(e.Type))
	case <-time.After(2 * time.Second):
		t.Fatal("source did not emit")
	}
}
