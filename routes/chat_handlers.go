// routes/chat_handlers.go
package routes

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/StauntonTrade/staunton_chat/database"
)

// ConversationsResponse структура ответа API для списка бесед
type ConversationsResponse struct {
	Conversations []database.ConversationInfo `json:"conversations"`
}

// StartConversationRequest структура запроса на создание беседы
type StartConversationRequest struct {
	UserID  int `json:"userId"`
	OtherID int `json:"otherId"`
}

// GetConversationsHandler обрабатывает запросы на получение списка бесед
func GetConversationsHandler(chats *database.ChatStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userId, ok := requireUserID(w, r)
		if !ok {
			return
		}

		// Сбой чтения не должен ломать страницу: отдаем пустой список
		conversations, err := chats.GetUserConversations(userId)
		if err != nil {
			log.Printf("❌ Ошибка при запросе бесед: %v", err)
			conversations = []database.ConversationInfo{}
		}

		writeJSON(w, ConversationsResponse{Conversations: conversations})
		log.Printf("✅ Отправлен список из %d бесед для пользователя %d", len(conversations), userId)
	}
}

// StartConversationHandler создает беседу между двумя пользователями
// или возвращает уже существующую
func StartConversationHandler(chats *database.ChatStore, profiles *database.ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Неверный формат тела запроса", http.StatusBadRequest)
			return
		}

		if req.UserID <= 0 || req.OtherID <= 0 || req.UserID == req.OtherID {
			http.Error(w, "Некорректная пара участников", http.StatusBadRequest)
			return
		}

		// Профили участников должны существовать до создания беседы
		if err := profiles.EnsureProfile(req.UserID); err != nil {
			log.Printf("❌ Ошибка создания профиля %d: %v", req.UserID, err)
			http.Error(w, "Ошибка при создании беседы", http.StatusInternalServerError)
			return
		}
		if err := profiles.EnsureProfile(req.OtherID); err != nil {
			log.Printf("❌ Ошибка создания профиля %d: %v", req.OtherID, err)
			http.Error(w, "Ошибка при создании беседы", http.StatusInternalServerError)
			return
		}

		conversationID, err := chats.GetOrCreateConversation(req.UserID, req.OtherID)
		if err != nil {
			log.Printf("❌ Ошибка создания беседы: %v", err)
			http.Error(w, "Ошибка при создании беседы", http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]interface{}{
			"conversationId": conversationID,
		})
		log.Printf("✅ Беседа %d для пары (%d, %d)", conversationID, req.UserID, req.OtherID)
	}
}

// GetUnreadHandler возвращает суммарный счетчик непрочитанных сообщений
func GetUnreadHandler(chats *database.ChatStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userId, ok := requireUserID(w, r)
		if !ok {
			return
		}

		total, err := chats.GetUnreadTotal(userId)
		if err != nil {
			log.Printf("❌ Ошибка при подсчете непрочитанных: %v", err)
			http.Error(w, "Ошибка при подсчете непрочитанных сообщений", http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]interface{}{
			"userId": userId,
			"unread": total,
		})
	}
}

// requireUserID извлекает обязательный параметр userId из строки запроса
func requireUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	query := r.URL.Query()
	userIdStr := query.Get("userId")

	// Поддержка альтернативного формата параметра (user_id)
	if userIdStr == "" {
		userIdStr = query.Get("user_id")
	}

	if userIdStr == "" {
		http.Error(w, "Отсутствует обязательный параметр userId или user_id", http.StatusBadRequest)
		return 0, false
	}

	userId, err := strconv.Atoi(userIdStr)
	if err != nil {
		http.Error(w, "Неверный формат ID пользователя", http.StatusBadRequest)
		return 0, false
	}

	return userId, true
}

// writeJSON кодирует ответ и устанавливает заголовок Content-Type
func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Ошибка при кодировании JSON: %v", err)
	}
}
