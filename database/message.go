// database/message.go
package database

import (
	"errors"
	"log"
	"strings"
	"time"
)

// Текст-заглушка для сообщений, которые не удалось расшифровать
const decodeFailurePlaceholder = "[Ошибка расшифровки]"

// ErrEmptyMessage возвращается при попытке отправить пустое сообщение
var ErrEmptyMessage = errors.New("пустое сообщение")

// Message представляет личное сообщение в беседе
type Message struct {
	ID             int       `json:"id"`
	ConversationID int       `json:"conversationId"`
	SenderID       int       `json:"senderId"`
	Body           string    `json:"body"`
	ReadStatus     bool      `json:"readStatus"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SaveMessage сохраняет сообщение в базе данных.
// Текст сообщения проходит через кодек хранения (сжатие + шифрование).
// Возвращается сохраненное сообщение с присвоенным сервером ID и временной меткой.
func (s *ChatStore) SaveMessage(conversationID, senderID int, body string) (*Message, error) {
	// Пустые сообщения отклоняем до какого-либо обращения к БД
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	// Кодируем текст перед сохранением в БД
	encoded, err := s.codec.EncodeForStorage(body)
	if err != nil {
		log.Printf("❌ Ошибка кодирования сообщения: %v", err)
		return nil, err
	}

	// Вставляем закодированное сообщение в базу данных
	result, err := s.db.Exec(
		"INSERT INTO messages (conversation_id, sender_id, body) VALUES (?, ?, ?)",
		conversationID, senderID, encoded,
	)
	if err != nil {
		log.Printf("❌ Ошибка сохранения сообщения: %v", err)
		return nil, err
	}

	// Получаем ID вставленного сообщения
	messageID, err := result.LastInsertId()
	if err != nil {
		log.Printf("❌ Ошибка получения ID сообщения: %v", err)
		return nil, err
	}

	msg := &Message{
		ID:             int(messageID),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		ReadStatus:     false,
	}

	// Перечитываем присвоенную сервером временную метку
	err = s.db.QueryRow("SELECT created_at FROM messages WHERE id = ?", messageID).Scan(&msg.CreatedAt)
	if err != nil {
		log.Printf("⚠️ Не удалось получить временную метку сообщения %d: %v", messageID, err)
		msg.CreatedAt = time.Now()
	}

	// Обновляем время последней активности беседы.
	// Неудача здесь не критична для отправки сообщения, но ее стоит залогировать.
	if _, err := s.db.Exec("UPDATE conversations SET last_activity = NOW() WHERE id = ?", conversationID); err != nil {
		log.Printf("⚠️ Ошибка обновления активности беседы %d: %v", conversationID, err)
	}

	log.Printf("✅ Сообщение успешно сохранено в БД (ID: %d, беседа: %d, статус: непрочитано)", msg.ID, conversationID)
	return msg, nil
}

// MarkMessagesAsRead отмечает все сообщения в беседе как прочитанные
// для указанного пользователя. Повторный вызов ничего не меняет.
func (s *ChatStore) MarkMessagesAsRead(conversationID, readerID int) error {
	_, err := s.db.Exec(`
		UPDATE messages
		SET read_status = TRUE
		WHERE conversation_id = ? AND sender_id != ? AND read_status = FALSE
	`, conversationID, readerID)
	return err
}
