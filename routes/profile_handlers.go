// routes/profile_handlers.go
package routes

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/StauntonTrade/staunton_chat/database"
)

// VerificationRequest структура запроса на смену статуса верификации
type VerificationRequest struct {
	UserID int    `json:"userId"`
	Status string `json:"status"`
}

// GetProfileHandler возвращает профиль пользователя по ID
func GetProfileHandler(profiles *database.ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userId, ok := requireUserID(w, r)
		if !ok {
			return
		}

		profile, err := profiles.GetProfile(userId)
		if err != nil {
			log.Printf("❌ Ошибка при запросе профиля %d: %v", userId, err)
			http.Error(w, "Ошибка при получении профиля", http.StatusInternalServerError)
			return
		}
		if profile == nil {
			http.Error(w, "Профиль не найден", http.StatusNotFound)
			return
		}

		writeJSON(w, profile)
	}
}

// UpsertProfileHandler создает или обновляет профиль пользователя.
// Статус верификации через этот запрос не меняется.
func UpsertProfileHandler(profiles *database.ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var profile database.Profile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			http.Error(w, "Неверный формат тела запроса", http.StatusBadRequest)
			return
		}

		if profile.ID <= 0 {
			http.Error(w, "Некорректный ID пользователя", http.StatusBadRequest)
			return
		}

		if err := profiles.UpsertProfile(&profile); err != nil {
			log.Printf("❌ Ошибка сохранения профиля %d: %v", profile.ID, err)
			http.Error(w, "Ошибка при сохранении профиля", http.StatusInternalServerError)
			return
		}

		// Возвращаем сохраненный профиль с актуальным статусом верификации
		saved, err := profiles.GetProfile(profile.ID)
		if err != nil || saved == nil {
			log.Printf("⚠️ Профиль %d сохранен, но не прочитан обратно: %v", profile.ID, err)
			writeJSON(w, profile)
			return
		}

		writeJSON(w, saved)
		log.Printf("✅ Профиль %d сохранен", profile.ID)
	}
}

// SetVerificationHandler меняет статус верификации пользователя
func SetVerificationHandler(profiles *database.ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Неверный формат тела запроса", http.StatusBadRequest)
			return
		}

		if req.UserID <= 0 {
			http.Error(w, "Некорректный ID пользователя", http.StatusBadRequest)
			return
		}

		if err := profiles.SetVerificationStatus(req.UserID, req.Status); err != nil {
			log.Printf("❌ Ошибка смены статуса верификации %d: %v", req.UserID, err)
			http.Error(w, "Ошибка при смене статуса верификации", http.StatusBadRequest)
			return
		}

		writeJSON(w, map[string]interface{}{
			"success": true,
			"userId":  req.UserID,
			"status":  req.Status,
		})
		log.Printf("✅ Статус верификации пользователя %d: %s", req.UserID, req.Status)
	}
}
