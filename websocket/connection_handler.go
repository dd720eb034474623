// websocket/connection_handler.go
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// HandleConnections обрабатывает WebSocket-соединения
func (manager *Manager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из URL
	params := mux.Vars(r)
	userIDStr := params["userId"]
	log.Printf("Получен запрос на установку WebSocket с параметром userId=%s, полный URL: %s", userIDStr, r.URL.String())

	// Проверяем, что ID является числом
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		log.Printf("Невалидный ID пользователя: %s, ошибка: %v", userIDStr, err)
		http.Error(w, "Невалидный ID пользователя", http.StatusBadRequest)
		return
	}

	// Профиль должен существовать до начала обмена сообщениями
	if err := manager.Profiles.EnsureProfile(userID); err != nil {
		log.Printf("❌ Ошибка проверки профиля %d: %v", userID, err)
		http.Error(w, "Ошибка проверки профиля", http.StatusInternalServerError)
		return
	}

	// Устанавливаем WebSocket-соединение
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Ошибка при установке WebSocket-соединения:", err)
		return
	}

	// Создаем нового клиента
	client := &Client{
		ID:     userID,
		Socket: conn,
		Send:   make(chan []byte, 256),
	}

	// Если клиент с таким ID уже существует, отключаем его
	manager.clientsMutex.Lock()
	if existingClient, ok := manager.Clients[userID]; ok {
		log.Printf("Пользователь ID: %d уже подключен. Заменяем соединение.", userID)

		// Удаляем клиента из менеджера перед закрытием канала
		delete(manager.Clients, userID)

		// Закрываем соединение и канал
		existingClient.Socket.Close()
		close(existingClient.Send)
	}
	manager.clientsMutex.Unlock()

	// Регистрируем клиента в менеджере
	manager.Register <- client

	// Обновляем статус пользователя при подключении
	manager.statusMutex.Lock()
	status, exists := manager.UserStatuses[userID]
	if !exists {
		status = &UserStatus{}
		manager.UserStatuses[userID] = status
	}
	status.Connected = true
	status.ConnectionID = r.RemoteAddr
	status.LastSeen = time.Now()
	manager.statusMutex.Unlock()

	// Вызываем обновление статуса через централизованную функцию
	manager.updateUserStatus(userID, "online", true)
	log.Printf("✅ Пользователь %d подключился с адреса %s", userID, r.RemoteAddr)

	// Отправляем новому клиенту статусы всех пользователей (кроме него самого)
	manager.statusMutex.RLock()
	for otherID, status := range manager.UserStatuses {
		// Не отправляем пользователю его собственный статус
		if otherID != userID {
			statusMsg := Message{
				Type:   "status",
				UserID: otherID,
				Status: status.Status,
			}
			if statusData, err := json.Marshal(statusMsg); err == nil {
				client.Send <- statusData
			}
		}
	}
	manager.statusMutex.RUnlock()

	// Запускаем горутины для чтения и отправки сообщений
	go client.readPump(manager)
	go client.writePump()
}
