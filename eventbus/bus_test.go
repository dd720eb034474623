// eventbus/bus_test.go
package eventbus

import (
	"context"
	"testing"

	"github.com/StauntonTrade/staunton_chat/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *Bus {
	return NewBus(config.DefaultConfig.Bus, nil)
}

func TestPublish_FillsIDAndTimestamp(t *testing.T) {
	bus := newTestBus()

	var got Event
	bus.Subscribe(EventPriceUpdated, func(e Event) {
		got = e
	})

	bus.Publish(Event{Type: EventPriceUpdated, Payload: PriceUpdate{Commodity: "wheat", Price: 240}})

	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, EventPriceUpdated, got.Type)
}

func TestPublish_KindListenersInRegistrationOrder(t *testing.T) {
	bus := newTestBus()

	var order []string
	bus.Subscribe(EventDealUpdated, func(Event) { order = append(order, "first") })
	bus.Subscribe(EventDealUpdated, func(Event) { order = append(order, "second") })
	bus.SubscribeAll(func(Event) { order = append(order, "all") })

	// Подписчик другого вида не вызывается
	bus.Subscribe(EventPriceUpdated, func(Event) { order = append(order, "price") })

	bus.Publish(NewEvent(EventDealUpdated, DealUpdate{DealID: 1, Status: "completed"}))

	// Сначала подписчики вида в порядке регистрации, затем подписчики на все
	assert.Equal(t, []string{"first", "second", "all"}, order)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	bus := newTestBus()

	calls := 0
	unsubscribe := bus.Subscribe(EventDealUpdated, func(Event) { calls++ })

	bus.Publish(NewEvent(EventDealUpdated, nil))
	unsubscribe()
	bus.Publish(NewEvent(EventDealUpdated, nil))

	assert.Equal(t, 1, calls)

	// Повторная отписка безопасна
	unsubscribe()
}

func TestSubscribeAll_ReceivesEveryKind(t *testing.T) {
	bus := newTestBus()

	var kinds []EventType
	bus.SubscribeAll(func(e Event) { kinds = append(kinds, e.Type) })

	bus.Publish(NewEvent(EventPriceUpdated, nil))
	bus.Publish(NewEvent(EventUserOnline, nil))
	bus.Publish(NewEvent(EventMessageReceived, nil))

	assert.Equal(t, []EventType{EventPriceUpdated, EventUserOnline, EventMessageReceived}, kinds)
}

func TestPublish_HandlerMayUnsubscribeDuringDispatch(t *testing.T) {
	bus := newTestBus()

	var unsubscribe func()
	calls := 0
	unsubscribe = bus.Subscribe(EventDealUpdated, func(Event) {
		calls++
		unsubscribe()
	})

	// Отписка внутри обработчика не должна приводить к дедлоку
	bus.Publish(NewEvent(EventDealUpdated, nil))
	bus.Publish(NewEvent(EventDealUpdated, nil))

	assert.Equal(t, 1, calls)
}

func TestStatus_DefaultDisconnected(t *testing.T) {
	bus := newTestBus()
	assert.Equal(t, StatusDisconnected, bus.Status())
	assert.Equal(t, "disconnected", bus.Status().String())
}

func TestSetStatus_NotifiesOnChangeOnly(t *testing.T) {
	bus := newTestBus()

	var seen []ConnectionStatus
	bus.OnStatusChange(func(s ConnectionStatus) { seen = append(seen, s) })

	bus.setStatus(StatusConnecting)
	bus.setStatus(StatusConnecting) // повтор не уведомляет
	bus.setStatus(StatusConnected)

	require.Equal(t, []ConnectionStatus{StatusConnecting, StatusConnected}, seen)
	assert.Equal(t, StatusConnected, bus.Status())
}

func TestConnect_NoSource(t *testing.T) {
	bus := newTestBus()
	err := bus.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
}
