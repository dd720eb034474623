// database/conversation_query_test.go
package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func conversationInfoColumns() []string {
	return []string{
		"id", "other_id", "display_name", "company", "roles",
		"verification_status", "avatar_url", "last_activity",
		"unread_count", "last_body", "last_sender", "last_time",
	}
}

func TestGetUserConversations_SingleQuery(t *testing.T) {
	store, mock, db := newChatStoreWithMock(t)
	defer db.Close()

	preview, err := store.codec.EncodeForStorage("last offer stands")
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	now := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(conversationInfoColumns()).
		AddRow(5, 3, "trader3", "Grain Co", "seller", "verified", "", now, 2, preview, 3, now).
		AddRow(6, 4, "trader4", "", "", "unverified", "", now.Add(-time.Hour), 0, "", 0, now.Add(-time.Hour))

	// Весь список с профилями, счетчиками и превью собирается одним запросом
	mock.ExpectQuery(`SELECT\s+c.id,\s+CASE WHEN c.participant_low`).
		WithArgs(2, 2, 2, 2, 2).
		WillReturnRows(rows)

	conversations, err := store.GetUserConversations(2)
	if err != nil {
		t.Fatalf("GetUserConversations error: %v", err)
	}
	if len(conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(conversations))
	}

	first := conversations[0]
	if first.ID != 5 || first.OtherUserID != 3 || first.UnreadCount != 2 {
		t.Fatalf("unexpected conversation: %+v", first)
	}
	if first.LastMessage != "last offer stands" || first.LastMessageSender != 3 {
		t.Fatalf("unexpected preview: %+v", first)
	}
	if len(first.OtherRoles) != 1 || first.OtherRoles[0] != "seller" {
		t.Fatalf("unexpected roles: %v", first.OtherRoles)
	}

	// Беседа без сообщений: пустое превью остается пустым
	second := conversations[1]
	if second.LastMessage != "" || second.UnreadCount != 0 {
		t.Fatalf("unexpected empty conversation: %+v", second)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
