// database/conversation_query.go
package database

import (
	"log"
	"time"
)

// ConversationInfo содержит беседу вместе с профилем собеседника,
// количеством непрочитанных сообщений и превью последнего сообщения -
// все, что нужно списку бесед на клиенте.
type ConversationInfo struct {
	ID                 int       `json:"id"`
	OtherUserID        int       `json:"otherUserId"`
	OtherDisplayName   string    `json:"otherDisplayName"`
	OtherCompany       string    `json:"otherCompany"`
	OtherRoles         []string  `json:"otherRoles"`
	OtherVerification  string    `json:"otherVerification"`
	OtherAvatarURL     string    `json:"otherAvatarUrl"`
	UnreadCount        int       `json:"unreadCount"`
	LastMessage        string    `json:"lastMessage"`
	LastMessageSender  int       `json:"lastMessageSender"`
	LastMessageTime    time.Time `json:"lastMessageTime"`
	LastActivity       time.Time `json:"lastActivity"`
}

// GetUserConversations возвращает все беседы, в которых участвует пользователь.
// Профиль собеседника, счетчик непрочитанных и последнее сообщение собираются
// одним запросом, без отдельных обращений к БД на каждую беседу.
func (s *ChatStore) GetUserConversations(userID int) ([]ConversationInfo, error) {
	rows, err := s.db.Query(`
		SELECT
			c.id,
			CASE WHEN c.participant_low = ? THEN c.participant_high ELSE c.participant_low END AS other_id,
			p.display_name,
			p.company,
			p.roles,
			p.verification_status,
			p.avatar_url,
			c.last_activity,
			(SELECT COUNT(*) FROM messages m
			 WHERE m.conversation_id = c.id AND m.sender_id != ? AND m.read_status = FALSE) AS unread_count,
			IFNULL(
				(SELECT m.body FROM messages m
				 WHERE m.conversation_id = c.id
				 ORDER BY m.created_at DESC, m.id DESC LIMIT 1),
				''
			) AS last_body,
			IFNULL(
				(SELECT m.sender_id FROM messages m
				 WHERE m.conversation_id = c.id
				 ORDER BY m.created_at DESC, m.id DESC LIMIT 1),
				0
			) AS last_sender,
			IFNULL(
				(SELECT m.created_at FROM messages m
				 WHERE m.conversation_id = c.id
				 ORDER BY m.created_at DESC, m.id DESC LIMIT 1),
				c.created_at
			) AS last_time
		FROM conversations c
		JOIN profiles p ON p.id = CASE WHEN c.participant_low = ? THEN c.participant_high ELSE c.participant_low END
		WHERE c.participant_low = ? OR c.participant_high = ?
		ORDER BY last_time DESC
	`, userID, userID, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []ConversationInfo
	for rows.Next() {
		var info ConversationInfo
		var roles string
		var lastBody string

		err := rows.Scan(
			&info.ID,
			&info.OtherUserID,
			&info.OtherDisplayName,
			&info.OtherCompany,
			&roles,
			&info.OtherVerification,
			&info.OtherAvatarURL,
			&info.LastActivity,
			&info.UnreadCount,
			&lastBody,
			&info.LastMessageSender,
			&info.LastMessageTime,
		)
		if err != nil {
			log.Printf("❌ Ошибка при сканировании беседы: %v", err)
			continue
		}

		info.OtherRoles = splitRoles(roles)

		// Превью последнего сообщения хранится закодированным
		if lastBody != "" {
			decoded, err := s.codec.DecodeFromStorage(lastBody)
			if err != nil {
				log.Printf("❌ Ошибка расшифровки превью беседы %d: %v", info.ID, err)
				info.LastMessage = decodeFailurePlaceholder
			} else {
				info.LastMessage = decoded
			}
		}

		conversations = append(conversations, info)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return conversations, nil
}
