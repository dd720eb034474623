// database/conversation_test.go
package database

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/StauntonTrade/staunton_chat/processor"
	"github.com/go-sql-driver/mysql"
)

var testStorageKey = []byte("0123456789abcdef0123456789abcdef")

func newChatStoreWithMock(t *testing.T) (*ChatStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	codec, err := processor.NewCodec(testStorageKey)
	if err != nil {
		t.Fatalf("processor.NewCodec error: %v", err)
	}
	return NewChatStore(db, codec), mock, db
}

func TestNormalizePair(t *testing.T) {
	low, high := normalizePair(7, 3)
	if low != 3 || high != 7 {
		t.Fatalf("unexpected pair: (%d, %d)", low, high)
	}

	low, high = normalizePair(3, 7)
	if low != 3 || high != 7 {
		t.Fatalf("unexpected pair: (%d, %d)", low, high)
	}
}

func TestGetOrCreateConversation_Existing(t *testing.T) {
	store, mock, db := newChatStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM conversations WHERE participant_low = \? AND participant_high = \?`).
		WithArgs(3, 7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(15))

	// Порядок аргументов не играет роли
	id, err := store.GetOrCreateConversation(7, 3)
	if err != nil {
		t.Fatalf("GetOrCreateConversation error: %v", err)
	}
	if id != 15 {
		t.Fatalf("expected conversation 15, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetOrCreateConversation_CreatesNew(t *testing.T) {
	store, mock, db := newChatStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM conversations WHERE participant_low = \? AND participant_high = \?`).
		WithArgs(3, 7).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectExec(`INSERT INTO conversations \(participant_low, participant_high\) VALUES \(\?, \?\)`).
		WithArgs(3, 7).
		WillReturnResult(sqlmock.NewResult(21, 1))

	id, err := store.GetOrCreateConversation(3, 7)
	if err != nil {
		t.Fatalf("GetOrCreateConversation error: %v", err)
	}
	if id != 21 {
		t.Fatalf("expected conversation 21, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetOrCreateConversation_DuplicateRace(t *testing.T) {
	store, mock, db := newChatStoreWithMock(t)
	defer db.Close()

	// Конкурентный вызов успел создать беседу между нашим SELECT и INSERT:
	// уникальный индекс отбивает вставку, запись перечитывается
	mock.ExpectQuery(`SELECT id FROM conversations WHERE participant_low = \? AND participant_high = \?`).
		WithArgs(3, 7).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectExec(`INSERT INTO conversations \(participant_low, participant_high\) VALUES \(\?, \?\)`).
		WithArgs(3, 7).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '3-7'"})

	mock.ExpectQuery(`SELECT id FROM conversations WHERE participant_low = \? AND participant_high = \?`).
		WithArgs(3, 7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(33))

	id, err := store.GetOrCreateConversation(3, 7)
	if err != nil {
		t.Fatalf("GetOrCreateConversation error: %v", err)
	}
	if id != 33 {
		t.Fatalf("expected conversation 33, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetOrCreateConversation_InsertError(t *testing.T) {
	store, mock, db := newChatStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM conversations`).
		WithArgs(3, 7).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectExec(`INSERT INTO conversations`).
		WithArgs(3, 7).
		WillReturnError(errors.New("db down"))

	_, err := store.GetOrCreateConversation(3, 7)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestGetConversationByID_NotFound(t *testing.T) {
	store, mock, db := newChatStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, participant_low, participant_high, created_at, last_activity`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	conv, err := store.GetConversationByID(99)
	if err != nil {
		t.Fatalf("GetConversationByID error: %v", err)
	}
	if conv != nil {
		t.Fatalf("expected nil conversation, got %+v", conv)
	}
}
