// stats/repository.go
package stats

import (
	"database/sql"
	"fmt"
	"time"
)

// RunLog представляет запись журнала о запуске расчета активности
type RunLog struct {
	ID            int
	StartTime     time.Time
	EndTime       time.Time
	Status        string
	LastMessageID int
	LastGlobalID  int
	ErrorMessage  string
}

// ActivityRow представляет суточную активность одного пользователя
type ActivityRow struct {
	UserID             int       `json:"userId"`
	ActivityDate       time.Time `json:"activityDate"`
	MessagesSent       int       `json:"messagesSent"`
	GlobalMessagesSent int       `json:"globalMessagesSent"`
}

// Repository отвечает за журнал запусков и агрегацию активности
type Repository struct {
	db *sql.DB
}

// NewRepository создает новый экземпляр Repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateLogEntry создает новую запись о запуске расчета
func (r *Repository) CreateLogEntry(startTime time.Time) (int, error) {
	result, err := r.db.Exec(
		"INSERT INTO stats_runs (start_time, status) VALUES (?, 'in_progress')",
		startTime,
	)
	if err != nil {
		return 0, fmt.Errorf("ошибка при создании записи о запуске расчета: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка при получении ID созданной записи: %w", err)
	}

	return int(id), nil
}

// GetLastSuccessfulRun возвращает метаданные последнего успешного запуска.
// Если успешных запусков еще не было, возвращается nil.
func (r *Repository) GetLastSuccessfulRun() (*RunLog, error) {
	var run RunLog
	err := r.db.QueryRow(`
		SELECT id, start_time, end_time, last_message_id, last_global_id
		FROM stats_runs
		WHERE status = 'success'
		ORDER BY end_time DESC
		LIMIT 1
	`).Scan(&run.ID, &run.StartTime, &run.EndTime, &run.LastMessageID, &run.LastGlobalID)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("ошибка при чтении журнала запусков: %w", err)
	}

	run.Status = "success"
	return &run, nil
}

// UpdateLogEntrySuccess обновляет запись при успешном завершении расчета
func (r *Repository) UpdateLogEntrySuccess(id int, endTime time.Time, lastMessageID, lastGlobalID int) error {
	_, err := r.db.Exec(`
		UPDATE stats_runs
		SET end_time = ?, status = 'success', last_message_id = ?, last_global_id = ?
		WHERE id = ?
	`, endTime, lastMessageID, lastGlobalID, id)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи журнала: %w", err)
	}
	return nil
}

// UpdateLogEntryFailure обновляет запись при ошибке расчета
func (r *Repository) UpdateLogEntryFailure(id int, endTime time.Time, errorMessage string) error {
	_, err := r.db.Exec(`
		UPDATE stats_runs
		SET end_time = ?, status = 'failed', error_message = ?
		WHERE id = ?
	`, endTime, errorMessage, id)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи журнала: %w", err)
	}
	return nil
}

// AggregateDirectMessages инкрементально сворачивает личные сообщения
// начиная с lastMessageID в суточные счетчики. Возвращает ID последнего
// обработанного сообщения и число затронутых пар (пользователь, дата).
func (r *Repository) AggregateDirectMessages(lastMessageID int) (int, int, error) {
	rows, err := r.db.Query(`
		SELECT sender_id, DATE(created_at) AS activity_date, COUNT(*), MAX(id)
		FROM messages
		WHERE id > ?
		GROUP BY sender_id, DATE(created_at)
	`, lastMessageID)
	if err != nil {
		return lastMessageID, 0, fmt.Errorf("ошибка при агрегации личных сообщений: %w", err)
	}
	defer rows.Close()

	maxID := lastMessageID
	processed := 0

	for rows.Next() {
		var senderID, count, batchMax int
		var activityDate time.Time

		if err := rows.Scan(&senderID, &activityDate, &count, &batchMax); err != nil {
			return maxID, processed, fmt.Errorf("ошибка при сканировании агрегата: %w", err)
		}

		_, err := r.db.Exec(`
			INSERT INTO user_activity_daily (user_id, activity_date, messages_sent)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE messages_sent = messages_sent + VALUES(messages_sent)
		`, senderID, activityDate, count)
		if err != nil {
			return maxID, processed, fmt.Errorf("ошибка при записи суточного счетчика: %w", err)
		}

		if batchMax > maxID {
			maxID = batchMax
		}
		processed++
	}

	if err := rows.Err(); err != nil {
		return maxID, processed, fmt.Errorf("ошибка при итерации по агрегатам: %w", err)
	}

	return maxID, processed, nil
}

// AggregateGlobalMessages инкрементально сворачивает сообщения общего
// чата начиная с lastGlobalID в суточные счетчики
func (r *Repository) AggregateGlobalMessages(lastGlobalID int) (int, int, error) {
	rows, err := r.db.Query(`
		SELECT sender_id, DATE(created_at) AS activity_date, COUNT(*), MAX(id)
		FROM global_messages
		WHERE id > ?
		GROUP BY sender_id, DATE(created_at)
	`, lastGlobalID)
	if err != nil {
		return lastGlobalID, 0, fmt.Errorf("ошибка при агрегации общего чата: %w", err)
	}
	defer rows.Close()

	maxID := lastGlobalID
	processed := 0

	for rows.Next() {
		var senderID, count, batchMax int
		var activityDate time.Time

		if err := rows.Scan(&senderID, &activityDate, &count, &batchMax); err != nil {
			return maxID, processed, fmt.Errorf("ошибка при сканировании агрегата: %w", err)
		}

		_, err := r.db.Exec(`
			INSERT INTO user_activity_daily (user_id, activity_date, global_messages_sent)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE global_messages_sent = global_messages_sent + VALUES(global_messages_sent)
		`, senderID, activityDate, count)
		if err != nil {
			return maxID, processed, fmt.Errorf("ошибка при записи суточного счетчика: %w", err)
		}

		if batchMax > maxID {
			maxID = batchMax
		}
		processed++
	}

	if err := rows.Err(); err != nil {
		return maxID, processed, fmt.Errorf("ошибка при итерации по агрегатам: %w", err)
	}

	return maxID, processed, nil
}

// GetActivity возвращает суточную активность за последние days дней.
// При userID > 0 выборка ограничивается одним пользователем.
func (r *Repository) GetActivity(userID, days int) ([]ActivityRow, error) {
	query := `
		SELECT user_id, activity_date, messages_sent, global_messages_sent
		FROM user_activity_daily
		WHERE activity_date >= DATE_SUB(CURDATE(), INTERVAL ? DAY)
	`
	args := []interface{}{days}

	if userID > 0 {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY activity_date DESC, user_id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении суточной активности: %w", err)
	}
	defer rows.Close()

	var result []ActivityRow
	for rows.Next() {
		var row ActivityRow
		if err := rows.Scan(&row.UserID, &row.ActivityDate, &row.MessagesSent, &row.GlobalMessagesSent); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании активности: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по активности: %w", err)
	}

	return result, nil
}
