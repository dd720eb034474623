// eventbus/events.go
package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// EventType определяет вид события реального времени
type EventType string

// Виды событий, которые расходятся по шине
const (
	EventPriceUpdated     EventType = "price:updated"
	EventDealUpdated      EventType = "deal:updated"
	EventUserOnline       EventType = "user:online"
	EventUserOffline      EventType = "user:offline"
	EventShipmentUpdated  EventType = "shipment:updated"
	EventMessageReceived  EventType = "message:received"
	EventPaymentReceived  EventType = "payment:received"
	EventDocumentUploaded EventType = "document:uploaded"
)

// Event представляет типизированное событие реального времени.
// События живут только в памяти и на проводе, в БД они не сохраняются.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent создает событие с присвоенным ID и временной меткой
func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// PriceUpdate несет обновление котировки товара
type PriceUpdate struct {
	Commodity string  `json:"commodity"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
}

// DealUpdate несет изменение статуса сделки
type DealUpdate struct {
	DealID int    `json:"dealId"`
	Status string `json:"status"`
}

// PresenceChange несет изменение статуса присутствия пользователя
type PresenceChange struct {
	UserID int  `json:"userId"`
	Online bool `json:"online"`
}

// ShipmentUpdate несет изменение статуса отгрузки
type ShipmentUpdate struct {
	ShipmentID int    `json:"shipmentId"`
	Status     string `json:"status"`
	Location   string `json:"location"`
}

// MessageNotification уведомляет о новом личном сообщении
type MessageNotification struct {
	MessageID      int `json:"messageId"`
	ConversationID int `json:"conversationId"`
	SenderID       int `json:"senderId"`
	RecipientID    int `json:"recipientId"`
}

// PaymentNotification уведомляет о поступившем платеже по сделке
type PaymentNotification struct {
	DealID   int     `json:"dealId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// DocumentNotification уведомляет о загруженном документе по сделке
type DocumentNotification struct {
	DealID   int    `json:"dealId"`
	FileName string `json:"fileName"`
}
