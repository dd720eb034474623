// routes/message_handlers.go
package routes

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/StauntonTrade/staunton_chat/database"
	"github.com/StauntonTrade/staunton_chat/websocket"
)

// MessagesResponse структура ответа API для истории сообщений
type MessagesResponse struct {
	Messages []database.Message `json:"messages"`
}

// SendMessageRequest структура запроса на отправку личного сообщения
type SendMessageRequest struct {
	FromID  int    `json:"fromId"`
	ToID    int    `json:"toId"`
	Content string `json:"content"`
}

// MarkReadRequest структура запроса на отметку прочтения
type MarkReadRequest struct {
	ConversationID int `json:"conversationId"`
	UserID         int `json:"userId"`
}

const defaultHistoryLimit = 50

// GetMessagesHandler обрабатывает запросы на получение истории сообщений.
// История возвращается в хронологическом порядке и не меняет статус
// прочтения: прочтение отмечается отдельным запросом.
func GetMessagesHandler(chats *database.ChatStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		conversationIdStr := query.Get("conversationId")
		if conversationIdStr == "" {
			conversationIdStr = query.Get("conversation_id")
		}
		if conversationIdStr == "" {
			http.Error(w, "Отсутствует обязательный параметр conversationId", http.StatusBadRequest)
			return
		}

		conversationId, err := strconv.Atoi(conversationIdStr)
		if err != nil {
			http.Error(w, "Неверный формат ID беседы", http.StatusBadRequest)
			return
		}

		limit := defaultHistoryLimit
		if limitStr := query.Get("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		// Сбой чтения не должен ломать страницу: отдаем пустую историю
		messages, err := chats.GetMessages(conversationId, limit)
		if err != nil {
			log.Printf("❌ Ошибка при запросе сообщений: %v", err)
			messages = []database.Message{}
		}

		writeJSON(w, MessagesResponse{Messages: messages})
		log.Printf("✅ Отправлено %d сообщений беседы %d", len(messages), conversationId)
	}
}

// SendMessageHandler обрабатывает отправку личного сообщения через REST.
// Сообщение сохраняется так же, как при отправке через WebSocket, и
// доставляется подключенным участникам.
func SendMessageHandler(chats *database.ChatStore, profiles *database.ProfileStore, wsManager *websocket.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Неверный формат тела запроса", http.StatusBadRequest)
			return
		}

		if req.FromID <= 0 || req.ToID <= 0 || req.FromID == req.ToID {
			http.Error(w, "Некорректная пара участников", http.StatusBadRequest)
			return
		}

		if err := profiles.EnsureProfile(req.FromID); err != nil {
			log.Printf("❌ Ошибка создания профиля %d: %v", req.FromID, err)
			http.Error(w, "Ошибка при отправке сообщения", http.StatusInternalServerError)
			return
		}
		if err := profiles.EnsureProfile(req.ToID); err != nil {
			log.Printf("❌ Ошибка создания профиля %d: %v", req.ToID, err)
			http.Error(w, "Ошибка при отправке сообщения", http.StatusInternalServerError)
			return
		}

		conversationID, err := chats.GetOrCreateConversation(req.FromID, req.ToID)
		if err != nil {
			log.Printf("❌ Ошибка получения беседы: %v", err)
			http.Error(w, "Ошибка при отправке сообщения", http.StatusInternalServerError)
			return
		}

		saved, err := chats.SaveMessage(conversationID, req.FromID, req.Content)
		if err != nil {
			if errors.Is(err, database.ErrEmptyMessage) {
				http.Error(w, "Пустое сообщение", http.StatusBadRequest)
				return
			}
			log.Printf("❌ Ошибка сохранения сообщения: %v", err)
			http.Error(w, "Ошибка при отправке сообщения", http.StatusInternalServerError)
			return
		}

		// Доставляем подключенным участникам тот же кадр, что и при
		// отправке через WebSocket
		if wsManager != nil {
			wsManager.DeliverDirectMessage(saved, req.ToID)
		}

		writeJSON(w, saved)
		log.Printf("✅ Сообщение %d сохранено в беседе %d", saved.ID, conversationID)
	}
}

// MarkReadHandler отмечает входящие сообщения беседы прочитанными
func MarkReadHandler(chats *database.ChatStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MarkReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Неверный формат тела запроса", http.StatusBadRequest)
			return
		}

		if req.ConversationID <= 0 || req.UserID <= 0 {
			http.Error(w, "Некорректные параметры", http.StatusBadRequest)
			return
		}

		if err := chats.MarkMessagesAsRead(req.ConversationID, req.UserID); err != nil {
			log.Printf("❌ Ошибка при обновлении статуса прочтения: %v", err)
			http.Error(w, "Ошибка при обновлении статуса прочтения", http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]interface{}{
			"success":        true,
			"conversationId": req.ConversationID,
		})
		log.Printf("✅ Беседа %d отмечена прочитанной пользователем %d", req.ConversationID, req.UserID)
	}
}
