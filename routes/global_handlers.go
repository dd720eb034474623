// routes/global_handlers.go
package routes

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/StauntonTrade/staunton_chat/database"
	"github.com/StauntonTrade/staunton_chat/websocket"
)

// GlobalMessagesResponse структура ответа API для общего чата
type GlobalMessagesResponse struct {
	Messages []database.GlobalMessage `json:"messages"`
}

// SendGlobalRequest структура запроса на отправку в общий чат
type SendGlobalRequest struct {
	SenderID int    `json:"senderId"`
	Content  string `json:"content"`
}

// Окно по умолчанию, в котором отправитель общего чата считается
// находящимся в сети; переопределяется настройкой PRESENCE_WINDOW
const defaultOnlineWindow = 5 * time.Minute

// GetGlobalMessagesHandler возвращает страницу сообщений общего чата.
// Без параметров отдается последняя страница; параметры before и
// beforeId задают курсор для подгрузки более старых сообщений.
func GetGlobalMessagesHandler(global *database.GlobalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		limit := defaultHistoryLimit
		if limitStr := query.Get("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		beforeStr := query.Get("before")
		beforeIdStr := query.Get("beforeId")

		var messages []database.GlobalMessage
		var err error

		if beforeStr != "" && beforeIdStr != "" {
			before, parseErr := time.Parse(time.RFC3339, beforeStr)
			if parseErr != nil {
				http.Error(w, "Неверный формат параметра before", http.StatusBadRequest)
				return
			}
			beforeId, parseErr := strconv.Atoi(beforeIdStr)
			if parseErr != nil {
				http.Error(w, "Неверный формат параметра beforeId", http.StatusBadRequest)
				return
			}
			messages, err = global.GetOlderGlobalMessages(before, beforeId, limit)
		} else {
			messages, err = global.GetGlobalMessages(limit)
		}

		// Сбой чтения не должен ломать страницу: отдаем пустую страницу
		if err != nil {
			log.Printf("❌ Ошибка при запросе общего чата: %v", err)
			messages = []database.GlobalMessage{}
		}

		writeJSON(w, GlobalMessagesResponse{Messages: messages})
		log.Printf("✅ Отправлено %d сообщений общего чата", len(messages))
	}
}

// SendGlobalMessageHandler сохраняет сообщение общего чата через REST
// и рассылает его подключенным клиентам
func SendGlobalMessageHandler(global *database.GlobalStore, profiles *database.ProfileStore, wsManager *websocket.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendGlobalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Неверный формат тела запроса", http.StatusBadRequest)
			return
		}

		if req.SenderID <= 0 {
			http.Error(w, "Некорректный отправитель", http.StatusBadRequest)
			return
		}

		if err := profiles.EnsureProfile(req.SenderID); err != nil {
			log.Printf("❌ Ошибка создания профиля %d: %v", req.SenderID, err)
			http.Error(w, "Ошибка при отправке сообщения", http.StatusInternalServerError)
			return
		}

		saved, err := global.SaveGlobalMessage(req.SenderID, req.Content)
		if err != nil {
			if errors.Is(err, database.ErrEmptyMessage) {
				http.Error(w, "Пустое сообщение", http.StatusBadRequest)
				return
			}
			log.Printf("❌ Ошибка сохранения сообщения общего чата: %v", err)
			http.Error(w, "Ошибка при отправке сообщения", http.StatusInternalServerError)
			return
		}

		if wsManager != nil {
			wsManager.DeliverGlobalMessage(saved)
		}

		writeJSON(w, saved)
		log.Printf("✅ Сообщение общего чата %d от пользователя %d", saved.ID, req.SenderID)
	}
}

// GetOnlineCountHandler возвращает число пользователей, писавших в общий
// чат внутри настроенного окна присутствия
func GetOnlineCountHandler(global *database.GlobalStore, window time.Duration) http.HandlerFunc {
	if window <= 0 {
		window = defaultOnlineWindow
	}
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := global.CountOnlineUsers(window)
		if err != nil {
			log.Printf("❌ Ошибка при подсчете пользователей в сети: %v", err)
			http.Error(w, "Ошибка при подсчете пользователей в сети", http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]interface{}{
			"online":        count,
			"windowSeconds": int(window.Seconds()),
		})
	}
}
