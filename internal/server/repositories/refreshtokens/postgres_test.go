package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shoplist/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	insertQuery       = `(?s)^INSERT\s+INTO\s+refresh_tokens\s*\(user_id,\s*token,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`
	findQuery         = `(?s)^SELECT\s+id,\s*user_id,\s*token,\s*expires_at\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`
	deleteQuery       = `(?s)^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`
	consumeQuery      = `(?s)^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s+RETURNING\s+id,\s*user_id,\s*token,\s*expires_at\s*$`
	deleteByUserQuery = `(?s)^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+user_id\s*=\s*\$1\s*$`
)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WithArgs("u1", "tok123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), "u1", "tok123", 30*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WithArgs("u1", "tok123", sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), "u1", "tok123", time.Hour)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFind(t *testing.T) {
	expires := time.Now().Add(10 * time.Minute)

	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr func(error) bool
	}{
		{
			name: "found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(findQuery).WithArgs("tok123").
					WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at"}).
						AddRow("rt-1", "u1", "tok123", expires))
			},
			wantErr: func(err error) bool { return err == nil },
		},
		{
			name: "not found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(findQuery).WithArgs("tok123").WillReturnError(sql.ErrNoRows)
			},
			wantErr: func(err error) bool { return errors.Is(err, common.ErrorNotFound) },
		},
		{
			name: "db error",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(findQuery).WithArgs("tok123").WillReturnError(errors.New("db err"))
			},
			wantErr: func(err error) bool {
				return err != nil && regexp.MustCompile(`db error: .*db err`).MatchString(err.Error())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()
			tt.setup(mock)

			got, err := repo.Find(context.Background(), "tok123")
			if !tt.wantErr(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if err == nil && (got.UserID != "u1" || got.ID != "rt-1" || !got.Expires.Equal(expires)) {
				t.Fatalf("unexpected row: %+v", got)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQuery).WithArgs("tok123").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), "tok123"); err != nil {
		t.Fatalf("deleting an unknown token must not fail: %v", err)
	}

	mock.ExpectExec(deleteQuery).WithArgs("tok123").WillReturnError(errors.New("db err"))
	if err := repo.Delete(context.Background(), "tok123"); err == nil {
		t.Fatal("expected error")
	}
}

func TestConsume(t *testing.T) {
	expires := time.Now().Add(10 * time.Minute)
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(consumeQuery).WithArgs("tok123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at"}).
			AddRow("rt-1", "u1", "tok123", expires))
	got, err := repo.Consume(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u1" || !got.Expires.Equal(expires) {
		t.Fatalf("unexpected row: %+v", got)
	}

	// A second consume of the same token deletes nothing.
	mock.ExpectQuery(consumeQuery).WithArgs("tok123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at"}))
	if _, err := repo.Consume(context.Background(), "tok123"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}

	mock.ExpectQuery(consumeQuery).WithArgs("tok123").WillReturnError(errors.New("db err"))
	if _, err := repo.Consume(context.Background(), "tok123"); err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want wrapped db error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteByUserQuery).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("want 3 rows, got %d", n)
	}
}
