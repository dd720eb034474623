// eventbus/bus.go
package eventbus

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/StauntonTrade/staunton_chat/config"
)

// ConnectionStatus описывает состояние подключения шины к источнику событий
type ConnectionStatus int32

const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusError
)

// String возвращает строковое представление статуса
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Handler обрабатывает одно событие шины
type Handler func(Event)

// StatusHandler получает уведомления об изменении статуса подключения
type StatusHandler func(ConnectionStatus)

// Подписка с порядковым номером: номер нужен для отписки,
// порядок регистрации сохраняется порядком в срезе
type subscription struct {
	id int
	fn Handler
}

type statusSubscription struct {
	id int
	fn StatusHandler
}

// Bus - шина типизированных событий реального времени.
// Создается явно при старте приложения и передается потребителям,
// у каждой шины свой набор подписчиков и свой статус подключения.
type Bus struct {
	mu              sync.RWMutex
	nextID          int
	kindListeners   map[EventType][]subscription
	allListeners    []subscription
	statusListeners []statusSubscription

	status atomic.Int32

	cfg    config.BusConfig
	source Source

	// Отмена активного цикла подключения
	stopConnect func()
}

// NewBus создает шину событий. Источник может быть nil -
// тогда шина работает только как внутренний диспетчер Publish/Subscribe.
func NewBus(cfg config.BusConfig, source Source) *Bus {
	return &Bus{
		kindListeners: make(map[EventType][]subscription),
		cfg:           cfg,
		source:        source,
	}
}

// Status возвращает текущий статус подключения
func (b *Bus) Status() ConnectionStatus {
	return ConnectionStatus(b.status.Load())
}

// setStatus меняет статус подключения и уведомляет подписчиков статуса
func (b *Bus) setStatus(status ConnectionStatus) {
	if ConnectionStatus(b.status.Swap(int32(status))) == status {
		return
	}

	b.mu.RLock()
	listeners := make([]statusSubscription, len(b.statusListeners))
	copy(listeners, b.statusListeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		l.fn(status)
	}
}

// Subscribe регистрирует обработчик событий заданного вида.
// Возвращается функция отписки: после ее вызова обработчик не получает
// новых событий. Гарантия действует относительно публикаций из той же
// горутины: Publish, уже начавший рассылку в другой горутине, может
// успеть доставить событие снятому обработчику.
func (b *Bus) Subscribe(eventType EventType, fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.kindListeners[eventType] = append(b.kindListeners[eventType], subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		listeners := b.kindListeners[eventType]
		for i, l := range listeners {
			if l.id == id {
				b.kindListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// SubscribeAll регистрирует обработчик, получающий все события шины
func (b *Bus) SubscribeAll(fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.allListeners = append(b.allListeners, subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.allListeners {
			if l.id == id {
				b.allListeners = append(b.allListeners[:i], b.allListeners[i+1:]...)
				break
			}
		}
	}
}

// OnStatusChange регистрирует обработчик изменений статуса подключения
func (b *Bus) OnStatusChange(fn StatusHandler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.statusListeners = append(b.statusListeners, statusSubscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.statusListeners {
			if l.id == id {
				b.statusListeners = append(b.statusListeners[:i], b.statusListeners[i+1:]...)
				break
			}
		}
	}
}

// Publish рассылает событие: сначала подписчикам его вида в порядке
// регистрации, затем подписчикам на все события. Рассылка синхронная.
// Если у события нет ID или временной метки, они присваиваются здесь.
func (b *Bus) Publish(event Event) {
	if event.ID == "" || event.Timestamp.IsZero() {
		filled := NewEvent(event.Type, event.Payload)
		if event.ID == "" {
			event.ID = filled.ID
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = filled.Timestamp
		}
	}

	// Снимок подписчиков под блокировкой, вызовы - без нее,
	// чтобы обработчик мог подписываться и отписываться
	b.mu.RLock()
	kind := make([]subscription, len(b.kindListeners[event.Type]))
	copy(kind, b.kindListeners[event.Type])
	all := make([]subscription, len(b.allListeners))
	copy(all, b.allListeners)
	b.mu.RUnlock()

	for _, l := range kind {
		l.fn(event)
	}
	for _, l := range all {
		l.fn(event)
	}
}
