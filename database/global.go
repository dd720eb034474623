// database/global.go
package database

import (
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/StauntonTrade/staunton_chat/processor"
)

// GlobalMessage представляет сообщение общего чата вместе с проекцией
// профиля отправителя (имя, компания, статус верификации)
type GlobalMessage struct {
	ID                 int       `json:"id"`
	SenderID           int       `json:"senderId"`
	Body               string    `json:"body"`
	CreatedAt          time.Time `json:"createdAt"`
	SenderName         string    `json:"senderName"`
	SenderCompany      string    `json:"senderCompany"`
	SenderAvatarURL    string    `json:"senderAvatarUrl"`
	SenderVerification string    `json:"senderVerification"`
}

// GlobalStore отвечает за операции с общим чатом площадки
type GlobalStore struct {
	db    *sql.DB
	codec *processor.Codec
}

// NewGlobalStore создает новое хранилище общего чата
func NewGlobalStore(db *sql.DB, codec *processor.Codec) *GlobalStore {
	return &GlobalStore{db: db, codec: codec}
}

// SaveGlobalMessage сохраняет сообщение общего чата и возвращает его
// вместе с проекцией профиля отправителя.
func (s *GlobalStore) SaveGlobalMessage(senderID int, body string) (*GlobalMessage, error) {
	// Пустые сообщения отклоняем до какого-либо обращения к БД
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	// Кодируем текст перед сохранением в БД
	encoded, err := s.codec.EncodeForStorage(body)
	if err != nil {
		log.Printf("❌ Ошибка кодирования сообщения общего чата: %v", err)
		return nil, err
	}

	result, err := s.db.Exec(
		"INSERT INTO global_messages (sender_id, body) VALUES (?, ?)",
		senderID, encoded,
	)
	if err != nil {
		log.Printf("❌ Ошибка сохранения сообщения общего чата: %v", err)
		return nil, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		log.Printf("❌ Ошибка получения ID сообщения общего чата: %v", err)
		return nil, err
	}

	// Перечитываем строку вместе с профилем отправителя: именно в таком
	// виде сообщение уходит подписчикам
	msg, err := s.GetGlobalMessageByID(int(lastID))
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Сообщение общего чата сохранено (ID: %d, отправитель: %d)", lastID, senderID)
	return msg, nil
}

// GetGlobalMessageByID возвращает одно сообщение общего чата, соединенное
// с профилем отправителя. Используется и каналом живой рассылки: в сыром
// событии вставки профиля нет, поэтому строка перечитывается целиком.
func (s *GlobalStore) GetGlobalMessageByID(messageID int) (*GlobalMessage, error) {
	var msg GlobalMessage
	var encodedBody string

	err := s.db.QueryRow(`
		SELECT g.id, g.sender_id, g.body, g.created_at,
		       p.display_name, p.company, p.avatar_url, p.verification_status
		FROM global_messages g
		JOIN profiles p ON p.id = g.sender_id
		WHERE g.id = ?
	`, messageID).Scan(
		&msg.ID, &msg.SenderID, &encodedBody, &msg.CreatedAt,
		&msg.SenderName, &msg.SenderCompany, &msg.SenderAvatarURL, &msg.SenderVerification,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	// Расшифровываем сообщение
	decoded, err := s.codec.DecodeFromStorage(encodedBody)
	if err != nil {
		log.Printf("❌ Ошибка расшифровки сообщения общего чата %d: %v", msg.ID, err)
		msg.Body = decodeFailurePlaceholder
	} else {
		msg.Body = decoded
	}

	return &msg, nil
}
