// websocket/manager.go
package websocket

import (
	"log"

	"github.com/StauntonTrade/staunton_chat/database"
	"github.com/StauntonTrade/staunton_chat/eventbus"
)

// Создание нового менеджера WebSocket-соединений.
// Менеджер получает хранилища и шину событий явно и не держит
// глобального состояния: в тестах у каждого менеджера свой набор.
func NewManager(chats *database.ChatStore, global *database.GlobalStore, profiles *database.ProfileStore, bus *eventbus.Bus) *Manager {
	return &Manager{
		Broadcast:    make(chan []byte),
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		Clients:      make(map[int]*Client),
		Chats:        chats,
		Global:       global,
		Profiles:     profiles,
		Bus:          bus,
		UserStatuses: make(map[int]*UserStatus),
	}
}

// Run запускает работу менеджера
func (manager *Manager) Run() {
	// Запускаем мониторинг активности пользователей
	go manager.checkUserActivity()

	for {
		select {
		case client := <-manager.Register:
			manager.clientsMutex.Lock()
			manager.Clients[client.ID] = client
			manager.clientsMutex.Unlock()
			log.Printf("👤 Клиент %d подключился", client.ID)

		case client := <-manager.Unregister:
			manager.clientsMutex.Lock()
			// Сравниваем по указателю: при замене соединения в карте уже
			// может находиться новый клиент с тем же ID
			if current, ok := manager.Clients[client.ID]; ok && current == client {
				delete(manager.Clients, client.ID)
				close(client.Send)
				manager.clientsMutex.Unlock()
				log.Printf("👤 Клиент %d отключился", client.ID)

				// Обновляем статус на "offline" при отключении
				manager.updateUserStatus(client.ID, "offline", false)
			} else {
				manager.clientsMutex.Unlock()
			}

		case message := <-manager.Broadcast:
			// Рассылаем сообщение всем подключенным клиентам
			manager.broadcast(message)
		}
	}
}

// broadcast отправляет сообщение всем подключенным клиентам
func (manager *Manager) broadcast(message []byte) {
	manager.clientsMutex.Lock()
	defer manager.clientsMutex.Unlock()
	for _, client := range manager.Clients {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(manager.Clients, client.ID)
		}
	}
}

// sendToUser доставляет сообщение одному пользователю, если он подключен.
// Возвращает false, если пользователь не в сети или его буфер переполнен.
func (manager *Manager) sendToUser(userID int, message []byte) bool {
	manager.clientsMutex.Lock()
	defer manager.clientsMutex.Unlock()
	client, ok := manager.Clients[userID]
	if !ok {
		return false
	}

	select {
	case client.Send <- message:
		return true
	default:
		close(client.Send)
		delete(manager.Clients, client.ID)
		return false
	}
}
