// database/profile_test.go
package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newProfileStoreWithMock(t *testing.T) (*ProfileStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewProfileStore(db), mock, db
}

func TestEnsureProfile_CreatesWhenMissing(t *testing.T) {
	store, mock, db := newProfileStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM profiles WHERE id = \?\)`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO profiles \(id, display_name\) VALUES \(\?, \?\)`).
		WithArgs(7, "trader7").
		WillReturnResult(sqlmock.NewResult(7, 1))

	if err := store.EnsureProfile(7); err != nil {
		t.Fatalf("EnsureProfile error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureProfile_AlreadyExists(t *testing.T) {
	store, mock, db := newProfileStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM profiles WHERE id = \?\)`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := store.EnsureProfile(7); err != nil {
		t.Fatalf("EnsureProfile error: %v", err)
	}
	// Вставки быть не должно
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetProfile_SplitsRoles(t *testing.T) {
	store, mock, db := newProfileStoreWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "display_name", "company", "roles", "verification_status", "avatar_url", "created_at",
	}).AddRow(7, "trader7", "Grain Co", "buyer,seller", "verified", "", time.Now())

	mock.ExpectQuery(`SELECT id, display_name, company, roles, verification_status, avatar_url, created_at`).
		WithArgs(7).
		WillReturnRows(rows)

	p, err := store.GetProfile(7)
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if p == nil {
		t.Fatal("expected profile, got nil")
	}
	if len(p.Roles) != 2 || p.Roles[0] != "buyer" || p.Roles[1] != "seller" {
		t.Fatalf("unexpected roles: %v", p.Roles)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	store, mock, db := newProfileStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, display_name, company, roles, verification_status, avatar_url, created_at`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	p, err := store.GetProfile(99)
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile, got %+v", p)
	}
}

func TestUpsertProfile_EmptyName(t *testing.T) {
	store, mock, db := newProfileStoreWithMock(t)
	defer db.Close()

	err := store.UpsertProfile(&Profile{ID: 7, DisplayName: "  "})
	if err == nil {
		t.Fatal("expected error for empty display name")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db calls: %v", err)
	}
}

func TestUpsertProfile_JoinsRoles(t *testing.T) {
	store, mock, db := newProfileStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO profiles \(id, display_name, company, roles, avatar_url\)`).
		WithArgs(7, "trader7", "Grain Co", "buyer,seller", "").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := store.UpsertProfile(&Profile{
		ID:          7,
		DisplayName: "trader7",
		Company:     "Grain Co",
		Roles:       []string{"buyer", "seller"},
	})
	if err != nil {
		t.Fatalf("UpsertProfile error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetVerificationStatus_Invalid(t *testing.T) {
	store, mock, db := newProfileStoreWithMock(t)
	defer db.Close()

	if err := store.SetVerificationStatus(7, "golden"); err == nil {
		t.Fatal("expected error for invalid status")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db calls: %v", err)
	}
}

func TestSetVerificationStatus_Valid(t *testing.T) {
	store, mock, db := newProfileStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE profiles SET verification_status = \? WHERE id = \?`).
		WithArgs("verified", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.SetVerificationStatus(7, "verified"); err != nil {
		t.Fatalf("SetVerificationStatus error: %v", err)
	}
}
