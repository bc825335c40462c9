package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-blog/internal/models"
)

var userRowColumns = []string{
	"id", "first_name", "last_name", "email", "username", "password",
	"date_created", "token", "token_expiration",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "pgx"), mock
}

func TestUserReadRepository_GetByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db, nil)
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("FROM users WHERE username = ").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(1, "Alice", "Smith", "alice@example.com", "alice", "digest", created, nil, nil))

		user, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "digest", user.Password)
		assert.Nil(t, user.Token)
		assert.Nil(t, user.TokenExpiration)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("FROM users WHERE username = ").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		user, err := repo.GetByUsername(ctx, "ghost")
		assert.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery("FROM users WHERE username = ").
			WithArgs("bob").
			WillReturnError(sql.ErrConnDone)

		user, err := repo.GetByUsername(ctx, "bob")
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Nil(t, user)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserReadRepository_GetByToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db, nil)
	created := time.Now().Add(-time.Hour)
	exp := time.Now().Add(time.Hour)

	mock.ExpectQuery("FROM users WHERE token = ").
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(2, "Bob", "B", "bob@example.com", "bob", "digest", created, "tok", exp))

	user, err := repo.GetByToken(context.Background(), "tok")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, user.Token)
	assert.Equal(t, "tok", *user.Token)
	require.NotNil(t, user.TokenExpiration)
	assert.WithinDuration(t, exp, *user.TokenExpiration, time.Second)

	mock.ExpectQuery("FROM users WHERE token = ").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	user, err = repo.GetByToken(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserReadRepository_ExistsByUsernameOrEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db, nil)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("alice", "alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUsernameOrEmail(context.Background(), "alice", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_Save(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db, nil)
	created := time.Now()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("Alice", "Smith", "alice@example.com", "alice", "digest").
			WillReturnRows(sqlmock.NewRows([]string{"id", "date_created"}).AddRow(5, created))

		user := &models.UserDB{FirstName: "Alice", LastName: "Smith", Email: "alice@example.com", Username: "alice", Password: "digest"}
		require.NoError(t, repo.Save(context.Background(), user))
		assert.Equal(t, int64(5), user.ID)
		assert.WithinDuration(t, created, user.DateCreated, time.Second)
	})

	t.Run("unique violation", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		user := &models.UserDB{FirstName: "A", LastName: "S", Email: "alice@example.com", Username: "alice2", Password: "digest"}
		err := repo.Save(context.Background(), user)
		assert.ErrorIs(t, err, ErrUniqueViolation)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_LockByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db, nil)

	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(3, "C", "D", "c@example.com", "carol", "digest", time.Now(), nil, nil))

	user, err := repo.LockByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "carol", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_SaveToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db, nil)
	exp := time.Now().Add(time.Hour)

	mock.ExpectExec("UPDATE users SET token = ").
		WithArgs(int64(1), "tok", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SaveToken(context.Background(), 1, "tok", exp))

	mock.ExpectExec("UPDATE users SET token = ").
		WithArgs(int64(99), "tok", exp).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SaveToken(context.Background(), 99, "tok", exp), sql.ErrNoRows)

	mock.ExpectExec("UPDATE users SET token = ").
		WillReturnError(errors.New("connection reset"))
	assert.Error(t, repo.SaveToken(context.Background(), 1, "tok", exp))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_UsesRequestTx(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	tx, err := db.Beginx()
	require.NoError(t, err)

	repo := NewUserWriteRepository(db, func(ctx context.Context) *sqlx.Tx { return tx })

	mock.ExpectExec("UPDATE users SET token = ").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	require.NoError(t, repo.SaveToken(context.Background(), 1, "tok", time.Now().Add(time.Hour)))
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePattern(t *testing.T) {
	tests := map[string]string{
		"":        "%%",
		"go":      "%go%",
		"100%":    `%100\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
	}
	for in, want := range tests {
		assert.Equal(t, want, likePattern(in), "input %q", in)
	}
}
