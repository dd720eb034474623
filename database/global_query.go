// database/global_query.go
package database

import (
	"database/sql"
	"log"
	"time"
)

// scanGlobalRows разбирает строки выборки общего чата (новые сначала),
// расшифровывает тексты и разворачивает порядок на хронологический
func (s *GlobalStore) scanGlobalRows(rows *sql.Rows) ([]GlobalMessage, error) {
	var messages []GlobalMessage
	for rows.Next() {
		var msg GlobalMessage
		var encodedBody string

		err := rows.Scan(
			&msg.ID, &msg.SenderID, &encodedBody, &msg.CreatedAt,
			&msg.SenderName, &msg.SenderCompany, &msg.SenderAvatarURL, &msg.SenderVerification,
		)
		if err != nil {
			log.Printf("❌ Ошибка при сканировании сообщения общего чата: %v", err)
			continue
		}

		// Расшифровываем сообщение
		decoded, err := s.codec.DecodeFromStorage(encodedBody)
		if err != nil {
			log.Printf("❌ Ошибка расшифровки сообщения общего чата %d: %v", msg.ID, err)
			msg.Body = decodeFailurePlaceholder
		} else {
			msg.Body = decoded
		}

		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Разворачиваем порядок: старые сначала
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// GetGlobalMessages возвращает последние limit сообщений общего чата
// в хронологическом порядке (старые сначала)
func (s *GlobalStore) GetGlobalMessages(limit int) ([]GlobalMessage, error) {
	rows, err := s.db.Query(`
		SELECT g.id, g.sender_id, g.body, g.created_at,
		       p.display_name, p.company, p.avatar_url, p.verification_status
		FROM global_messages g
		JOIN profiles p ON p.id = g.sender_id
		ORDER BY g.created_at DESC, g.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanGlobalRows(rows)
}

// GetOlderGlobalMessages возвращает страницу сообщений строго старше курсора
// (created_at, id), старые сначала. Пустой результат означает, что история
// исчерпана - это сигнал остановки для подгрузки вверх.
func (s *GlobalStore) GetOlderGlobalMessages(before time.Time, beforeID, limit int) ([]GlobalMessage, error) {
	rows, err := s.db.Query(`
		SELECT g.id, g.sender_id, g.body, g.created_at,
		       p.display_name, p.company, p.avatar_url, p.verification_status
		FROM global_messages g
		JOIN profiles p ON p.id = g.sender_id
		WHERE g.created_at < ? OR (g.created_at = ? AND g.id < ?)
		ORDER BY g.created_at DESC, g.id DESC
		LIMIT ?
	`, before, before, beforeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanGlobalRows(rows)
}

// CountOnlineUsers возвращает приблизительное количество пользователей онлайн:
// число различных отправителей общего чата за последнее окно активности.
// Это эвристика по времени сообщений, а не настоящий протокол присутствия.
func (s *GlobalStore) CountOnlineUsers(window time.Duration) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(DISTINCT sender_id)
		FROM global_messages
		WHERE created_at >= DATE_SUB(NOW(), INTERVAL ? SECOND)
	`, int(window.Seconds())).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
