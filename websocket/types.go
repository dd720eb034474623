// websocket/types.go
package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/StauntonTrade/staunton_chat/database"
	"github.com/StauntonTrade/staunton_chat/eventbus"
	"github.com/gorilla/websocket"
)

// Структура сообщения для обмена через WebSocket
type Message struct {
	Type           string                  `json:"type"`
	ID             int                     `json:"id,omitempty"`
	ConversationID int                     `json:"conversationId,omitempty"`
	FromID         int                     `json:"fromId,omitempty"`
	ToID           int                     `json:"toId,omitempty"`
	Content        string                  `json:"content,omitempty"`
	UserID         int                     `json:"userId,omitempty"`
	Status         string                  `json:"status,omitempty"`
	IsActive       bool                    `json:"isActive,omitempty"`
	CreatedAt      string                  `json:"createdAt,omitempty"`
	Global         *database.GlobalMessage `json:"global,omitempty"`
	Event          *eventbus.Event         `json:"event,omitempty"`
}

// Клиент WebSocket
type Client struct {
	ID     int
	Socket *websocket.Conn
	Send   chan []byte
}

// Структура для хранения статусов пользователей
type UserStatus struct {
	Status       string    `json:"status"`
	LastPing     time.Time `json:"last_ping"`
	IsActive     bool      `json:"is_active"`
	Connected    bool      `json:"connected"`
	LastSeen     time.Time `json:"last_seen"`
	ConnectionID string    `json:"connection_id"`
}

// Менеджер WebSocket-соединений
type Manager struct {
	Clients      map[int]*Client
	Broadcast    chan []byte
	Register     chan *Client
	Unregister   chan *Client
	Chats        *database.ChatStore
	Global       *database.GlobalStore
	Profiles     *database.ProfileStore
	Bus          *eventbus.Bus
	UserStatuses map[int]*UserStatus
	clientsMutex sync.RWMutex
	statusMutex  sync.RWMutex
}

// Конфигурация WebSocket-соединения
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Разрешаем подключения с любого источника (для разработки)
	},
}
