// websocket/message_handler.go
package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/StauntonTrade/staunton_chat/database"
	"github.com/StauntonTrade/staunton_chat/eventbus"
)

// HandleDirectMessage обрабатывает личное сообщение: сохраняет его и
// доставляет обоим участникам беседы
func (manager *Manager) HandleDirectMessage(client *Client, msg Message) {
	if msg.ToID <= 0 || msg.ToID == client.ID {
		manager.sendError(client, "Некорректный получатель")
		return
	}

	// Профили участников должны существовать до создания беседы
	if err := manager.Profiles.EnsureProfile(client.ID); err != nil {
		log.Printf("❌ Ошибка создания профиля отправителя %d: %v", client.ID, err)
		manager.sendError(client, "Не удалось сохранить сообщение")
		return
	}
	if err := manager.Profiles.EnsureProfile(msg.ToID); err != nil {
		log.Printf("❌ Ошибка создания профиля получателя %d: %v", msg.ToID, err)
		manager.sendError(client, "Не удалось сохранить сообщение")
		return
	}

	conversationID, err := manager.Chats.GetOrCreateConversation(client.ID, msg.ToID)
	if err != nil {
		log.Printf("❌ Ошибка получения беседы: %v", err)
		manager.sendError(client, "Не удалось сохранить сообщение")
		return
	}

	saved, err := manager.Chats.SaveMessage(conversationID, client.ID, msg.Content)
	if err != nil {
		log.Printf("❌ Ошибка сохранения сообщения: %v", err)
		manager.sendError(client, "Не удалось сохранить сообщение")
		return
	}

	manager.DeliverDirectMessage(saved, msg.ToID)
}

// DeliverDirectMessage доставляет сохраненное сообщение обоим участникам
// беседы и публикует уведомление на шину событий. Отправитель получает
// ту же копию, что и получатель, с присвоенными ID и временной меткой.
func (manager *Manager) DeliverDirectMessage(saved *database.Message, toID int) {
	outMsg := Message{
		Type:           "message",
		ID:             saved.ID,
		ConversationID: saved.ConversationID,
		FromID:         saved.SenderID,
		ToID:           toID,
		Content:        saved.Body,
		CreatedAt:      saved.CreatedAt.Format(time.RFC3339),
	}

	data, err := json.Marshal(outMsg)
	if err != nil {
		log.Printf("❌ Ошибка сериализации сообщения: %v", err)
		return
	}

	if manager.sendToUser(toID, data) {
		log.Printf("✅ Сообщение %d доставлено получателю %d", saved.ID, toID)
	} else {
		log.Printf("ℹ️ Получатель %d не в сети, сообщение сохранено", toID)
	}
	manager.sendToUser(saved.SenderID, data)

	if manager.Bus != nil {
		manager.Bus.Publish(eventbus.NewEvent(eventbus.EventMessageReceived, eventbus.MessageNotification{
			MessageID:      saved.ID,
			ConversationID: saved.ConversationID,
			SenderID:       saved.SenderID,
			RecipientID:    toID,
		}))
	}
}

// HandleMarkRead отмечает сообщения беседы прочитанными и уведомляет
// второго участника
func (manager *Manager) HandleMarkRead(client *Client, msg Message) {
	if msg.ConversationID <= 0 {
		return
	}

	if err := manager.Chats.MarkMessagesAsRead(msg.ConversationID, client.ID); err != nil {
		log.Printf("❌ Ошибка отметки прочтения беседы %d: %v", msg.ConversationID, err)
		return
	}

	conv, err := manager.Chats.GetConversationByID(msg.ConversationID)
	if err != nil || conv == nil {
		log.Printf("⚠️ Не удалось найти беседу %d для уведомления о прочтении", msg.ConversationID)
		return
	}

	// Уведомляем второго участника о прочтении
	otherID := conv.ParticipantA
	if otherID == client.ID {
		otherID = conv.ParticipantB
	}

	readMsg := Message{
		Type:           "read",
		ConversationID: msg.ConversationID,
		UserID:         client.ID,
	}
	if data, err := json.Marshal(readMsg); err == nil {
		manager.sendToUser(otherID, data)
	}

	log.Printf("✅ Беседа %d отмечена прочитанной пользователем %d", msg.ConversationID, client.ID)
}

// sendError отправляет клиенту уведомление об ошибке
func (manager *Manager) sendError(client *Client, text string) {
	errorMsg := Message{
		Type:    "error",
		Content: text,
	}
	if data, err := json.Marshal(errorMsg); err == nil {
		select {
		case client.Send <- data:
		default:
		}
	}
}
