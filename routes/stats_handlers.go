// routes/stats_handlers.go
package routes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/StauntonTrade/staunton_chat/stats"
)

// ActivityResponse структура ответа API для суточной активности
type ActivityResponse struct {
	Activity []stats.ActivityRow `json:"activity"`
}

const defaultActivityDays = 30

// GetActivityHandler возвращает суточную активность пользователей.
// Параметр days задает глубину выборки, userId ограничивает ее одним
// пользователем.
func GetActivityHandler(repo *stats.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		days := defaultActivityDays
		if daysStr := query.Get("days"); daysStr != "" {
			if parsed, err := strconv.Atoi(daysStr); err == nil && parsed > 0 {
				days = parsed
			}
		}

		userId := 0
		if userIdStr := query.Get("userId"); userIdStr != "" {
			parsed, err := strconv.Atoi(userIdStr)
			if err != nil {
				http.Error(w, "Неверный формат ID пользователя", http.StatusBadRequest)
				return
			}
			userId = parsed
		}

		activity, err := repo.GetActivity(userId, days)
		if err != nil {
			log.Printf("❌ Ошибка при запросе активности: %v", err)
			http.Error(w, "Ошибка при получении активности", http.StatusInternalServerError)
			return
		}

		writeJSON(w, ActivityResponse{Activity: activity})
	}
}
