// routes/api_routes.go
package routes

import (
	"net/http"
	"time"

	"github.com/StauntonTrade/staunton_chat/database"
	"github.com/StauntonTrade/staunton_chat/middleware"
	"github.com/StauntonTrade/staunton_chat/stats"
	"github.com/StauntonTrade/staunton_chat/websocket"
	"github.com/gorilla/mux"
)

// Stores объединяет хранилища и настройки, которые нужны HTTP-обработчикам
type Stores struct {
	Chats    *database.ChatStore
	Global   *database.GlobalStore
	Profiles *database.ProfileStore
	Stats    *stats.Repository

	// Окно эвристики присутствия в общем чате
	PresenceWindow time.Duration
}

// SetupRoutes настраивает все маршруты API и WebSocket
func SetupRoutes(router *mux.Router, stores Stores, wsManager *websocket.Manager) {
	// Применяем CORS middleware
	router.Use(middleware.CORSMiddleware)

	// WebSocket соединения
	router.HandleFunc("/ws/{userId}", wsManager.HandleConnections)

	// API статусов
	router.HandleFunc("/api/status", wsManager.HandleStatus).Methods("POST", "OPTIONS")

	// API бесед
	router.HandleFunc("/api/conversations", GetConversationsHandler(stores.Chats)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/conversations", StartConversationHandler(stores.Chats, stores.Profiles)).Methods("POST")
	router.HandleFunc("/api/unread", GetUnreadHandler(stores.Chats)).Methods("GET", "OPTIONS")

	// API личных сообщений
	router.HandleFunc("/api/messages", GetMessagesHandler(stores.Chats)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/messages", SendMessageHandler(stores.Chats, stores.Profiles, wsManager)).Methods("POST")
	router.HandleFunc("/api/messages/read", MarkReadHandler(stores.Chats)).Methods("POST", "OPTIONS")

	// API общего чата
	router.HandleFunc("/api/global/messages", GetGlobalMessagesHandler(stores.Global)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/global/messages", SendGlobalMessageHandler(stores.Global, stores.Profiles, wsManager)).Methods("POST")
	router.HandleFunc("/api/global/online", GetOnlineCountHandler(stores.Global, stores.PresenceWindow)).Methods("GET", "OPTIONS")

	// API профилей
	router.HandleFunc("/api/profiles", GetProfileHandler(stores.Profiles)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/profiles", UpsertProfileHandler(stores.Profiles)).Methods("POST")
	router.HandleFunc("/api/profiles/verification", SetVerificationHandler(stores.Profiles)).Methods("POST", "OPTIONS")

	// API активности
	router.HandleFunc("/api/stats/activity", GetActivityHandler(stores.Stats)).Methods("GET", "OPTIONS")

	// Статические файлы
	router.PathPrefix("/").Handler(http.FileServer(http.Dir("public")))
}
