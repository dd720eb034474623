// websocket/status.go
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/StauntonTrade/staunton_chat/eventbus"
)

// updateUserStatus обновляет статус пользователя
func (manager *Manager) updateUserStatus(userID int, status string, isActive bool) {
	manager.statusMutex.Lock()

	if _, exists := manager.UserStatuses[userID]; !exists {
		manager.UserStatuses[userID] = &UserStatus{
			LastSeen: time.Now(),
		}
	}

	statusObj := manager.UserStatuses[userID]
	oldStatus := statusObj.Status

	// Обновляем статус только если он действительно изменился
	changed := statusObj.Status != status || statusObj.IsActive != isActive
	if changed {
		statusObj.Status = status
		statusObj.IsActive = isActive
		statusObj.LastPing = time.Now()
		statusObj.LastSeen = time.Now()
	}
	manager.statusMutex.Unlock()

	if !changed {
		return
	}

	// Логируем изменение статуса
	log.Printf("📊 Статус пользователя %d изменен: %s -> %s (активен: %v)",
		userID, oldStatus, status, isActive)

	// Создаем сообщение о статусе
	statusMsg := Message{
		Type:   "status",
		UserID: userID,
		Status: status,
	}

	// Отправляем статус всем клиентам, кроме самого пользователя
	if data, err := json.Marshal(statusMsg); err == nil {
		manager.clientsMutex.RLock()
		for clientID, client := range manager.Clients {
			// Исключаем отправку статуса самому пользователю, чтобы избежать дублирования
			if clientID != userID {
				select {
				case client.Send <- data:
				default:
					// Переполненный клиент отключается циклом Run через Unregister
				}
			}
		}
		manager.clientsMutex.RUnlock()
	}

	// Публикуем событие присутствия на шину
	if manager.Bus != nil {
		kind := eventbus.EventUserOnline
		online := true
		if status == "offline" {
			kind = eventbus.EventUserOffline
			online = false
		}
		manager.Bus.Publish(eventbus.NewEvent(kind, eventbus.PresenceChange{
			UserID: userID,
			Online: online,
		}))
	}
}

// markDisconnected переводит пользователя в offline при обрыве
// соединения. Если клиента уже вытеснило новое соединение того же
// пользователя, переход не выполняется: иначе offline умирающего
// соединения перетер бы online только что подключившегося.
func (manager *Manager) markDisconnected(c *Client) {
	manager.clientsMutex.RLock()
	current := manager.Clients[c.ID] == c
	manager.clientsMutex.RUnlock()

	if !current {
		return
	}

	manager.statusMutex.Lock()
	if status, exists := manager.UserStatuses[c.ID]; exists {
		status.Connected = false
		status.LastSeen = time.Now()
	}
	manager.statusMutex.Unlock()

	manager.updateUserStatus(c.ID, "offline", false)
	log.Printf("❌ Пользователь %d отключился", c.ID)
}

// checkUserActivity проверяет активность пользователей и обновляет их статусы
func (manager *Manager) checkUserActivity() {
	for {
		time.Sleep(inactivityTimeout / 2) // Проверяем каждые 30 секунд

		type transition struct {
			userID int
			status string
		}
		var transitions []transition

		manager.statusMutex.RLock()
		now := time.Now()

		for userID, status := range manager.UserStatuses {
			// Проверяем время последней активности
			timeSinceLastPing := now.Sub(status.LastPing)

			// Если пользователь не пинговал сервер более 120 секунд
			if status.Connected && timeSinceLastPing > 120*time.Second {
				transitions = append(transitions, transition{userID, "offline"})
				continue
			}

			// Если пользователь подключен и неактивен более 60 секунд
			if status.Connected && status.Status == "online" && timeSinceLastPing > 60*time.Second {
				transitions = append(transitions, transition{userID, "away"})
			}
		}
		manager.statusMutex.RUnlock()

		for _, t := range transitions {
			switch t.status {
			case "offline":
				manager.updateUserStatus(t.userID, "offline", false)
				log.Printf("❌ Пользователь %d помечен как отключенный", t.userID)
			case "away":
				manager.updateUserStatus(t.userID, "away", false)
				log.Printf("⚠️ Пользователь %d помечен как неактивный", t.userID)
			}
		}
	}
}

// HandleStatus обрабатывает HTTP запросы для обновления статуса пользователя
func (manager *Manager) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if msg.Type != "status" {
		http.Error(w, "Invalid message type", http.StatusBadRequest)
		return
	}

	// Обновляем статус с учетом активности через единый метод
	manager.updateUserStatus(msg.UserID, msg.Status, msg.IsActive)

	// Отправляем успешный ответ с подтверждением
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// Возвращаем информацию о выполненном действии
	response := map[string]interface{}{
		"success": true,
		"message": "Status updated successfully",
		"userId":  msg.UserID,
		"status":  msg.Status,
	}

	json.NewEncoder(w).Encode(response)
}
