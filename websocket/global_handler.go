// websocket/global_handler.go
package websocket

import (
	"encoding/json"
	"log"

	"github.com/StauntonTrade/staunton_chat/database"
)

// HandleGlobalMessage обрабатывает сообщение общего чата: сохраняет его
// и рассылает всем подключенным клиентам
func (manager *Manager) HandleGlobalMessage(client *Client, msg Message) {
	// Профиль отправителя нужен для проекции с именем и компанией
	if err := manager.Profiles.EnsureProfile(client.ID); err != nil {
		log.Printf("❌ Ошибка создания профиля отправителя %d: %v", client.ID, err)
		manager.sendError(client, "Не удалось отправить сообщение в общий чат")
		return
	}

	saved, err := manager.Global.SaveGlobalMessage(client.ID, msg.Content)
	if err != nil {
		log.Printf("❌ Ошибка сохранения сообщения общего чата: %v", err)
		manager.sendError(client, "Не удалось отправить сообщение в общий чат")
		return
	}

	manager.DeliverGlobalMessage(saved)
}

// DeliverGlobalMessage рассылает сохраненное сообщение общего чата с
// профилем отправителя всем подключенным клиентам
func (manager *Manager) DeliverGlobalMessage(saved *database.GlobalMessage) {
	outMsg := Message{
		Type:   "global",
		Global: saved,
	}
	data, err := json.Marshal(outMsg)
	if err != nil {
		log.Printf("❌ Ошибка сериализации сообщения общего чата: %v", err)
		return
	}

	manager.broadcast(data)
	log.Printf("✅ Сообщение общего чата %d от пользователя %d разослано", saved.ID, saved.SenderID)
}
