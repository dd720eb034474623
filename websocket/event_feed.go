// websocket/event_feed.go
package websocket

import (
	"encoding/json"
	"log"

	"github.com/StauntonTrade/staunton_chat/eventbus"
)

// BindBus подписывает менеджер на шину событий: каждое событие
// пересылается всем подключенным клиентам кадром типа "event".
// Возвращает функцию отписки.
func (manager *Manager) BindBus() func() {
	if manager.Bus == nil {
		return func() {}
	}

	unsubscribe := manager.Bus.SubscribeAll(func(e eventbus.Event) {
		manager.BroadcastEvent(e)
	})

	// Смену статуса подключения к источнику тоже сообщаем клиентам
	unsubStatus := manager.Bus.OnStatusChange(func(s eventbus.ConnectionStatus) {
		statusMsg := Message{
			Type:   "feed_status",
			Status: s.String(),
		}
		if data, err := json.Marshal(statusMsg); err == nil {
			manager.broadcast(data)
		}
	})

	return func() {
		unsubscribe()
		unsubStatus()
	}
}

// BroadcastEvent рассылает событие шины всем клиентам
func (manager *Manager) BroadcastEvent(e eventbus.Event) {
	outMsg := Message{
		Type:  "event",
		Event: &e,
	}
	data, err := json.Marshal(outMsg)
	if err != nil {
		log.Printf("❌ Ошибка сериализации события %s: %v", e.Type, err)
		return
	}
	manager.broadcast(data)
}
