// database/profile.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"
)

// Допустимые статусы верификации профиля
const (
	VerificationUnverified = "unverified"
	VerificationPending    = "pending"
	VerificationVerified   = "verified"
)

// Profile представляет профиль участника торговой площадки
type Profile struct {
	ID                 int       `json:"id"`
	DisplayName        string    `json:"displayName"`
	Company            string    `json:"company"`
	Roles              []string  `json:"roles"`
	VerificationStatus string    `json:"verificationStatus"`
	AvatarURL          string    `json:"avatarUrl"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ProfileStore отвечает за операции с профилями пользователей
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore создает новое хранилище профилей
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// EnsureProfile проверяет, существует ли профиль с данным ID,
// и если нет, создает запись с дефолтными значениями.
func (s *ProfileStore) EnsureProfile(userID int) error {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM profiles WHERE id = ?)", userID).Scan(&exists)
	if err != nil {
		return err
	}

	if !exists {
		_, err := s.db.Exec("INSERT INTO profiles (id, display_name) VALUES (?, ?)",
			userID,
			fmt.Sprintf("trader%d", userID))
		if err != nil {
			return err
		}
		log.Printf("✅ Профиль %d создан в базе данных", userID)
	}

	return nil
}

// GetProfile возвращает профиль по его ID
func (s *ProfileStore) GetProfile(userID int) (*Profile, error) {
	var p Profile
	var roles string

	err := s.db.QueryRow(`
		SELECT id, display_name, company, roles, verification_status, avatar_url, created_at
		FROM profiles
		WHERE id = ?
	`, userID).Scan(&p.ID, &p.DisplayName, &p.Company, &roles, &p.VerificationStatus, &p.AvatarURL, &p.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	p.Roles = splitRoles(roles)
	return &p, nil
}

// UpsertProfile создает или обновляет профиль пользователя.
// Статус верификации при обновлении не затрагивается, его меняет
// только проверяющий через SetVerificationStatus.
func (s *ProfileStore) UpsertProfile(p *Profile) error {
	if strings.TrimSpace(p.DisplayName) == "" {
		return fmt.Errorf("пустое имя профиля")
	}

	_, err := s.db.Exec(`
		INSERT INTO profiles (id, display_name, company, roles, avatar_url)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			display_name = VALUES(display_name),
			company = VALUES(company),
			roles = VALUES(roles),
			avatar_url = VALUES(avatar_url)
	`, p.ID, p.DisplayName, p.Company, strings.Join(p.Roles, ","), p.AvatarURL)
	if err != nil {
		log.Printf("❌ Ошибка сохранения профиля %d: %v", p.ID, err)
		return err
	}

	return nil
}

// SetVerificationStatus изменяет статус верификации профиля.
// Допустимы только статусы unverified/pending/verified.
func (s *ProfileStore) SetVerificationStatus(userID int, status string) error {
	switch status {
	case VerificationUnverified, VerificationPending, VerificationVerified:
	default:
		return fmt.Errorf("недопустимый статус верификации: %s", status)
	}

	_, err := s.db.Exec("UPDATE profiles SET verification_status = ? WHERE id = ?", status, userID)
	if err != nil {
		log.Printf("❌ Ошибка обновления статуса верификации пользователя %d: %v", userID, err)
		return err
	}

	log.Printf("📋 Статус верификации пользователя %d изменен на %s", userID, status)
	return nil
}

// splitRoles разбирает SET-колонку ролей в срез строк
func splitRoles(roles string) []string {
	if roles == "" {
		return nil
	}
	return strings.Split(roles, ",")
}
