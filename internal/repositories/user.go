package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/gw-blog/internal/models"
)

const userColumns = `id, first_name, last_name, email, username, password, date_created, token, token_expiration`

// UserReadRepository handles user lookups.
type UserReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewUserReadRepository(db *sqlx.DB, txGetter TxGetter) *UserReadRepository {
	return &UserReadRepository{db: db, txGetter: txGetter}
}

// GetByUsername returns the user with exactly this username, or nil.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

// GetByToken returns the user currently holding token, or nil.
// Expiration is not checked here.
func (r *UserReadRepository) GetByToken(ctx context.Context, token string) (*models.UserDB, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE token = $1`

	var user models.UserDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user, query, token)
	logQuery(query, []any{"<token>"}, user.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsernameOrEmail reports whether username or email is already taken.
func (r *UserReadRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`

	var exists bool
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &exists, query, username, email)
	logQuery(query, []any{username, email}, exists, err)

	return exists, err
}

func (r *UserReadRepository) getOne(ctx context.Context, query string, arg any) (*models.UserDB, error) {
	var user models.UserDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user, query, arg)
	logQuery(query, []any{arg}, user.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserWriteRepository handles user inserts and token updates.
type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewUserWriteRepository(db *sqlx.DB, txGetter TxGetter) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts user and fills in its generated id and creation time.
// A taken username or email yields ErrUniqueViolation.
func (r *UserWriteRepository) Save(ctx context.Context, user *models.UserDB) error {
	const query = `
		INSERT INTO users (first_name, last_name, email, username, password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, date_created
	`

	err := executor(ctx, r.db, r.txGetter).
		QueryRowxContext(ctx, query, user.FirstName, user.LastName, user.Email, user.Username, user.Password).
		Scan(&user.ID, &user.DateCreated)
	logQuery(query, []any{user.FirstName, user.LastName, user.Email, user.Username, "<digest>"}, user.ID, err)

	return translateError(err)
}

// LockByID reads the user row with FOR UPDATE. It only serializes callers
// when run inside a transaction.
func (r *UserWriteRepository) LockByID(ctx context.Context, id int64) (*models.UserDB, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	var user models.UserDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user, query, id)
	logQuery(query, []any{id}, user.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveToken writes token and its expiration in one statement.
func (r *UserWriteRepository) SaveToken(ctx context.Context, id int64, token string, expiration time.Time) error {
	const query = `UPDATE users SET token = $2, token_expiration = $3 WHERE id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, id, token, expiration)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{id, "<token>", expiration}, rowsAffected, err)

	if err != nil {
		return translateError(err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
