// database/message_query.go
package database

import (
	"log"
)

// GetMessages возвращает последние limit сообщений беседы в хронологическом
// порядке (старые сначала). Внутри выборка идет от новых к старым, чтобы
// ограничение работало по последним сообщениям, затем порядок разворачивается.
// Сообщения автоматически расшифровываются при извлечении из БД.
func (s *ChatStore) GetMessages(conversationID, limit int) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT id, conversation_id, sender_id, body, read_status, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		var encodedBody string

		// Считываем данные из БД, включая закодированный текст сообщения
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &encodedBody, &msg.ReadStatus, &msg.CreatedAt); err != nil {
			return nil, err
		}

		// Расшифровываем сообщение
		decodedBody, err := s.codec.DecodeFromStorage(encodedBody)
		if err != nil {
			log.Printf("❌ Ошибка расшифровки сообщения %d: %v", msg.ID, err)
			msg.Body = decodeFailurePlaceholder // Помечаем сообщение с ошибкой
		} else {
			msg.Body = decodedBody
		}

		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	// Разворачиваем порядок: старые сначала
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// GetUnreadTotal возвращает общее количество непрочитанных сообщений
// пользователя по всем его беседам (значение для бейджа в шапке)
func (s *ChatStore) GetUnreadTotal(userID int) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON m.conversation_id = c.id
		WHERE (c.participant_low = ? OR c.participant_high = ?)
		  AND m.sender_id != ?
		  AND m.read_status = FALSE
	`, userID, userID, userID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
