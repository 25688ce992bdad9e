package todos

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var cols = []string{"id", "user_id", "title", "description", "priority", "due_date", "completed", "attachment_key", "created_at", "updated_at"}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	high := models.PriorityHigh

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+todos.*RETURNING\s+id,`).
		WithArgs("u1", "Buy milk", "2%", "HIGH", nil, false).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("t1", "u1", "Buy milk", "2%", "HIGH", nil, false, "", now, now))

	got, err := repo.Create(context.Background(), &models.Todo{UserID: "u1", Title: "Buy milk", Description: "2%", Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	require.NotNil(t, got.Priority)
	assert.Equal(t, models.PriorityHigh, *got.Priority)
	assert.Nil(t, got.DueDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+todos\s+WHERE\s+id\s*=\s*\$1`).WithArgs("x").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "x")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_BuildsFilteredPage(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	low := models.PriorityLow
	done := false

	mock.ExpectQuery(`(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+todos\s+WHERE\s+priority\s*=\s*\$1\s+AND\s+completed\s*=\s*\$2\s+AND\s+\(title\s+ILIKE\s+\$3\s+OR\s+description\s+ILIKE\s+\$3\)$`).
		WithArgs("LOW", false, "%milk%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`(?s)ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+\$4\s+OFFSET\s+\$5$`).
		WithArgs("LOW", false, "%milk%", 10, 10).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("t11", "u1", "milk", "d", "LOW", nil, false, "", now, now))

	items, total, err := repo.List(context.Background(), models.TodoFilter{
		Priority: &low, Completed: &done, Search: " milk ", Offset: 10, Limit: 10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 11, total)
	require.Len(t, items, 1)
	assert.Equal(t, "t11", items[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_NoFilter(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+todos$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`LIMIT\s+\$1\s+OFFSET\s+\$2$`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(cols))

	items, total, err := repo.List(context.Background(), models.TodoFilter{Limit: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestUpdate_PartialFieldsAreNull(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	title := "new"

	mock.ExpectQuery(`(?s)UPDATE\s+todos\s+SET.*COALESCE\(\$2,\s*title\)`).
		WithArgs("t1", "new", nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("t1", "u1", "new", "d", nil, nil, false, "", now, now))

	got, err := repo.Update(context.Background(), "t1", models.TodoUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Nil(t, got.Priority)
}

func TestToggleCompleted(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`SET\s+completed\s*=\s*NOT\s+completed`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("t1", "u1", "x", "d", nil, nil, true, "", now, now))

	got, err := repo.ToggleCompleted(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE\s+FROM\s+todos\s+WHERE\s+id\s*=\s*\$1`).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "t1"))

	mock.ExpectExec(`DELETE\s+FROM\s+todos`).WithArgs("t2").WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Delete(context.Background(), "t2"), common.ErrorNotFound)

	mock.ExpectExec(`DELETE\s+FROM\s+todos`).WithArgs("t3").WillReturnError(errors.New("boom"))
	require.Error(t, repo.Delete(context.Background(), "t3"))
}

func TestSetAttachment(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`SET\s+attachment_key\s*=\s*\$2`).WithArgs("t1", "k1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetAttachment(context.Background(), "t1", "k1"))
}

func TestStats(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)GROUP\s+BY\s+priority,\s*completed`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"priority", "completed", "count"}).
			AddRow("HIGH", true, 2).
			AddRow("HIGH", false, 1).
			AddRow(nil, false, 4))

	s, err := repo.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 7, s.Total)
	assert.EqualValues(t, 2, s.Completed)
	assert.EqualValues(t, 5, s.Pending)
	assert.EqualValues(t, 3, s.ByPriority[models.PriorityHigh])
}
