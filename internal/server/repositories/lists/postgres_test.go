package lists

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestSelect_DefaultOrderNewestFirst(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery("SELECT id, name, owner_id, created_at FROM lists WHERE owner_id = $1 ORDER BY created_at DESC").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "created_at"}).
			AddRow("l2", "Farmácia", "u1", now).
			AddRow("l1", "Mercado", "u1", now.Add(-time.Hour)))

	got, err := repo.Select(context.Background(), "u1", nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "l2", got[0].ID)
	assert.Equal(t, "Mercado", got[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_FiltersAndExplicitOrder(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery("SELECT id, name, owner_id, created_at FROM lists WHERE owner_id = $1 AND owner_id = $2 ORDER BY created_at DESC").
		WithArgs("u1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "created_at"}))

	got, err := repo.Select(context.Background(), "u1",
		[]models.Filter{{Column: "owner_id", Value: "u1"}},
		[]models.Order{{Column: "created_at", Ascending: false}})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSelect_ForeignOwnerFilterYieldsNothing(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery("SELECT id, name, owner_id, created_at FROM lists WHERE owner_id = $1 AND owner_id = $2 ORDER BY created_at DESC").
		WithArgs("u1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "created_at"}))

	got, err := repo.Select(context.Background(), "u1", []models.Filter{{Column: "owner_id", Value: "u2"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelect_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	_, err := repo.Select(context.Background(), "u1", []models.Filter{{Column: "secret", Value: "x"}}, nil)
	assert.ErrorIs(t, err, common.ErrorValidation)

	mock.ExpectQuery("SELECT id, name, owner_id, created_at FROM lists WHERE owner_id = $1 ORDER BY created_at DESC").
		WithArgs("u1").
		WillReturnError(errors.New("db down"))
	_, err = repo.Select(context.Background(), "u1", nil, nil)
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	const q = "SELECT id, name, owner_id, created_at FROM lists WHERE owner_id = $1 AND id = $2"

	mock.ExpectQuery(q).WithArgs("u1", "l1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "created_at"}).
			AddRow("l1", "Mercado", "u1", time.Now()))
	l, err := repo.Get(context.Background(), "u1", "l1")
	require.NoError(t, err)
	assert.Equal(t, "Mercado", l.Name)

	mock.ExpectQuery(q).WithArgs("u1", "l9").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), "u1", "l9")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Now()

	mock.ExpectQuery("INSERT INTO lists (name,owner_id) VALUES ($1,$2) RETURNING id, created_at").
		WithArgs("Mercado", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("l1", created))

	l, err := repo.Create(context.Background(), &models.List{Name: "Mercado", OwnerID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "l1", l.ID)
	assert.Equal(t, created, l.CreatedAt)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec("DELETE FROM lists WHERE owner_id = $1 AND id = $2").
		WithArgs("u1", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.Delete(context.Background(), "u1", []models.Filter{{Column: "id", Value: "missing"}})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.Delete(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, common.ErrorValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_MalformedID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec("DELETE FROM lists WHERE owner_id = $1 AND id = $2").
		WithArgs("u1", "42").
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "42"`})

	_, err := repo.Delete(context.Background(), "u1", []models.Filter{{Column: "id", Value: "42"}})
	assert.ErrorIs(t, err, common.ErrorValidation)
}
