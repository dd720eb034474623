// database/db.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/StauntonTrade/staunton_chat/config"
	_ "github.com/go-sql-driver/mysql"
)

// Connect устанавливает соединение с базой данных и проверяет схему
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		log.Printf("❌ Ошибка подключения к БД: %v", err)
		return nil, err
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Printf("❌ Ошибка проверки соединения с БД: %v", err)
		return nil, err
	}

	// Устанавливаем параметры пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("✅ Успешное подключение к базе данных")

	// Проверяем существование необходимых таблиц
	if err := createTablesIfNotExist(db); err != nil {
		log.Printf("❌ Ошибка создания таблиц: %v", err)
		return nil, err
	}

	return db, nil
}

// Создание необходимых таблиц, если они не существуют
func createTablesIfNotExist(db *sql.DB) error {
	// SQL для создания таблицы профилей
	createProfilesTable := `
	CREATE TABLE IF NOT EXISTS profiles (
		id INT AUTO_INCREMENT PRIMARY KEY,
		display_name VARCHAR(100) NOT NULL,
		company VARCHAR(150) NOT NULL DEFAULT '',
		roles SET('buyer','seller','trader') NOT NULL DEFAULT 'trader',
		verification_status ENUM('unverified','pending','verified') NOT NULL DEFAULT 'unverified',
		avatar_url VARCHAR(512) NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

	// SQL для создания таблицы бесед.
	// Пара участников хранится в нормализованном виде (меньший id сначала),
	// уникальный индекс гарантирует не более одной беседы на пару.
	createConversationsTable := `
	CREATE TABLE IF NOT EXISTS conversations (
		id INT AUTO_INCREMENT PRIMARY KEY,
		participant_low INT NOT NULL,
		participant_high INT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_activity TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_participants (participant_low, participant_high),
		INDEX idx_participant_high (participant_high)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

	// SQL для создания таблицы сообщений
	createMessagesTable := `
	CREATE TABLE IF NOT EXISTS messages (
		id INT AUTO_INCREMENT PRIMARY KEY,
		conversation_id INT NOT NULL,
		sender_id INT NOT NULL,
		body TEXT NOT NULL,
		read_status BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id),
		INDEX idx_conversation_id (conversation_id, created_at, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

	// SQL для создания таблицы сообщений общего чата
	createGlobalMessagesTable := `
	CREATE TABLE IF NOT EXISTS global_messages (
		id INT AUTO_INCREMENT PRIMARY KEY,
		sender_id INT NOT NULL,
		body TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_created (created_at, id),
		INDEX idx_sender_created (sender_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

	// SQL для создания таблицы дневной активности пользователей
	createActivityTable := `
	CREATE TABLE IF NOT EXISTS user_activity_daily (
		user_id INT NOT NULL,
		activity_date DATE NOT NULL,
		messages_sent INT NOT NULL DEFAULT 0,
		global_messages_sent INT NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, activity_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

	// SQL для создания журнала запусков расчета активности
	createStatsRunsTable := `
	CREATE TABLE IF NOT EXISTS stats_runs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		start_time DATETIME NOT NULL,
		end_time DATETIME NULL,
		status ENUM('in_progress','success','failed') NOT NULL DEFAULT 'in_progress',
		last_message_id INT NOT NULL DEFAULT 0,
		last_global_id INT NOT NULL DEFAULT 0,
		error_message TEXT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

	tables := []struct {
		name string
		ddl  string
	}{
		{"profiles", createProfilesTable},
		{"conversations", createConversationsTable},
		{"messages", createMessagesTable},
		{"global_messages", createGlobalMessagesTable},
		{"user_activity_daily", createActivityTable},
		{"stats_runs", createStatsRunsTable},
	}

	// Выполняем создание таблиц
	for _, t := range tables {
		if _, err := db.Exec(t.ddl); err != nil {
			return fmt.Errorf("ошибка создания таблицы %s: %v", t.name, err)
		}
	}

	log.Println("✅ Структура базы данных проверена и актуализирована")
	return nil
}
