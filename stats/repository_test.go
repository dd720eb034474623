// stats/repository_test.go
package stats

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*Repository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewRepository(db), mock, db
}

func TestCreateLogEntry(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	start := time.Date(2026, 8, 23, 3, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO stats_runs \(start_time, status\) VALUES \(\?, 'in_progress'\)`).
		WithArgs(start).
		WillReturnResult(sqlmock.NewResult(9, 1))

	id, err := repo.CreateLogEntry(start)
	require.NoError(t, err)
	assert.Equal(t, 9, id)
}

func TestGetLastSuccessfulRun_None(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, start_time, end_time, last_message_id, last_global_id`).
		WillReturnError(sql.ErrNoRows)

	run, err := repo.GetLastSuccessfulRun()
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestGetLastSuccessfulRun_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	end := time.Date(2026, 8, 23, 2, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "start_time", "end_time", "last_message_id", "last_global_id"}).
		AddRow(8, end.Add(-time.Minute), end, 500, 120)

	mock.ExpectQuery(`SELECT id, start_time, end_time, last_message_id, last_global_id`).
		WillReturnRows(rows)

	run, err := repo.GetLastSuccessfulRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, 500, run.LastMessageID)
	assert.Equal(t, 120, run.LastGlobalID)
	assert.Equal(t, "success", run.Status)
}

func TestAggregateDirectMessages_Incremental(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	day := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)

	// Сворачиваются только сообщения новее курсора
	rows := sqlmock.NewRows([]string{"sender_id", "activity_date", "count", "max_id"}).
		AddRow(2, day, 4, 510).
		AddRow(3, day, 1, 508)

	mock.ExpectQuery(`SELECT sender_id, DATE\(created_at\) AS activity_date, COUNT\(\*\), MAX\(id\)\s+FROM messages\s+WHERE id > \?`).
		WithArgs(500).
		WillReturnRows(rows)

	mock.ExpectExec(`INSERT INTO user_activity_daily \(user_id, activity_date, messages_sent\)`).
		WithArgs(2, day, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`INSERT INTO user_activity_daily \(user_id, activity_date, messages_sent\)`).
		WithArgs(3, day, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	maxID, processed, err := repo.AggregateDirectMessages(500)
	require.NoError(t, err)
	assert.Equal(t, 510, maxID)
	assert.Equal(t, 2, processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateDirectMessages_NoNewRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT sender_id, DATE\(created_at\)`).
		WithArgs(500).
		WillReturnRows(sqlmock.NewRows([]string{"sender_id", "activity_date", "count", "max_id"}))

	// Курсор не двигается, если новых сообщений нет
	maxID, processed, err := repo.AggregateDirectMessages(500)
	require.NoError(t, err)
	assert.Equal(t, 500, maxID)
	assert.Equal(t, 0, processed)
}

func TestAggregateGlobalMessages(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	day := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"sender_id", "activity_date", "count", "max_id"}).
		AddRow(2, day, 3, 125)

	mock.ExpectQuery(`FROM global_messages\s+WHERE id > \?`).
		WithArgs(120).
		WillReturnRows(rows)

	mock.ExpectExec(`INSERT INTO user_activity_daily \(user_id, activity_date, global_messages_sent\)`).
		WithArgs(2, day, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	maxID, processed, err := repo.AggregateGlobalMessages(120)
	require.NoError(t, err)
	assert.Equal(t, 125, maxID)
	assert.Equal(t, 1, processed)
}

func TestGetActivity_FiltersByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	day := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"user_id", "activity_date", "messages_sent", "global_messages_sent"}).
		AddRow(2, day, 4, 3)

	mock.ExpectQuery(`SELECT user_id, activity_date, messages_sent, global_messages_sent`).
		WithArgs(30, 2).
		WillReturnRows(rows)

	activity, err := repo.GetActivity(2, 30)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, 2, activity[0].UserID)
	assert.Equal(t, 4, activity[0].MessagesSent)
	assert.Equal(t, 3, activity[0].GlobalMessagesSent)
}
