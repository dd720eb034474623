// database/conversation.go
package database

import (
	"database/sql"
	"log"
	"time"

	"github.com/StauntonTrade/staunton_chat/processor"
	"github.com/go-sql-driver/mysql"
)

// Код ошибки MySQL для нарушения уникального индекса
const mysqlErrDuplicateEntry = 1062

// Conversation представляет беседу между двумя участниками площадки
type Conversation struct {
	ID           int
	ParticipantA int
	ParticipantB int
	CreatedAt    time.Time
	LastActivity time.Time
}

// ChatStore отвечает за операции с беседами и личными сообщениями
type ChatStore struct {
	db    *sql.DB
	codec *processor.Codec
}

// NewChatStore создает новое хранилище бесед
func NewChatStore(db *sql.DB, codec *processor.Codec) *ChatStore {
	return &ChatStore{db: db, codec: codec}
}

// GetOrCreateConversation находит существующую беседу между пользователями
// или создает новую, если такой беседы еще нет.
// Порядок аргументов не имеет значения: пара участников нормализуется
// (меньший id сначала), поэтому (a, b) и (b, a) дают одну и ту же беседу.
func (s *ChatStore) GetOrCreateConversation(userA, userB int) (int, error) {
	low, high := normalizePair(userA, userB)

	var conversationID int

	// Сначала попытаемся найти существующую беседу
	err := s.db.QueryRow(
		"SELECT id FROM conversations WHERE participant_low = ? AND participant_high = ?",
		low, high,
	).Scan(&conversationID)

	if err == sql.ErrNoRows {
		// Беседы нет - создаем новую
		res, err := s.db.Exec(
			"INSERT INTO conversations (participant_low, participant_high) VALUES (?, ?)",
			low, high,
		)
		if err != nil {
			// Два конкурентных вызова могли одновременно не найти беседу
			// и оба попытаться ее создать. Уникальный индекс пропустит только
			// одного, второй получает ошибку дубликата и перечитывает запись.
			if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == mysqlErrDuplicateEntry {
				err = s.db.QueryRow(
					"SELECT id FROM conversations WHERE participant_low = ? AND participant_high = ?",
					low, high,
				).Scan(&conversationID)
				if err != nil {
					log.Printf("❌ Ошибка повторного поиска беседы: %v", err)
					return 0, err
				}
				return conversationID, nil
			}

			log.Printf("❌ Ошибка создания беседы: %v", err)
			return 0, err
		}

		lastID, err := res.LastInsertId()
		if err != nil {
			log.Printf("❌ Ошибка получения ID беседы: %v", err)
			return 0, err
		}

		conversationID = int(lastID)
		log.Printf("✅ Создана новая беседа ID=%d между пользователями %d и %d",
			conversationID, low, high)
	} else if err != nil {
		log.Printf("❌ Ошибка поиска беседы: %v", err)
		return 0, err
	}

	return conversationID, nil
}

// GetConversationByID возвращает беседу по ее ID
func (s *ChatStore) GetConversationByID(conversationID int) (*Conversation, error) {
	var conv Conversation
	err := s.db.QueryRow(`
		SELECT id, participant_low, participant_high, created_at, last_activity
		FROM conversations
		WHERE id = ?
	`, conversationID).Scan(&conv.ID, &conv.ParticipantA, &conv.ParticipantB, &conv.CreatedAt, &conv.LastActivity)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return &conv, nil
}

// normalizePair приводит пару участников к каноническому порядку
func normalizePair(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
