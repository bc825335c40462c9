package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/gw-blog/internal/models"
)

const postSelect = `
	SELECT p.id, p.title, p.body, p.date_created, p.user_id,
	       u.id AS "author.id", u.first_name AS "author.first_name", u.last_name AS "author.last_name",
	       u.username AS "author.username", u.email AS "author.email"
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

// PostReadRepository handles post reads. Every post comes with its author.
type PostReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewPostReadRepository(db *sqlx.DB, txGetter TxGetter) *PostReadRepository {
	return &PostReadRepository{db: db, txGetter: txGetter}
}

// GetByID returns the post with the given id, or nil.
func (r *PostReadRepository) GetByID(ctx context.Context, id int64) (*models.PostDB, error) {
	const query = postSelect + `WHERE p.id = $1`

	var post models.PostDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &post, query, id)
	logQuery(query, []any{id}, post.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns posts whose title contains search, ignoring case, newest first.
// An empty search matches every post.
func (r *PostReadRepository) List(ctx context.Context, search string) ([]*models.PostDB, error) {
	const query = postSelect + `WHERE p.title ILIKE $1 ORDER BY p.date_created DESC, p.id DESC`

	pattern := likePattern(search)
	posts := []*models.PostDB{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &posts, query, pattern)
	logQuery(query, []any{pattern}, len(posts), err)

	if err != nil {
		return nil, err
	}
	return posts, nil
}

// PostWriteRepository handles post inserts, updates and deletes.
type PostWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewPostWriteRepository(db *sqlx.DB, txGetter TxGetter) *PostWriteRepository {
	return &PostWriteRepository{db: db, txGetter: txGetter}
}

// Create inserts post and fills in its generated id and creation time.
func (r *PostWriteRepository) Create(ctx context.Context, post *models.PostDB) error {
	const query = `
		INSERT INTO posts (title, body, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, date_created
	`

	err := executor(ctx, r.db, r.txGetter).
		QueryRowxContext(ctx, query, post.Title, post.Body, post.UserID).
		Scan(&post.ID, &post.DateCreated)
	logQuery(query, []any{post.Title, post.UserID}, post.ID, err)

	return err
}

// Update writes the mutable columns of post.
func (r *PostWriteRepository) Update(ctx context.Context, post *models.PostDB) error {
	const query = `UPDATE posts SET title = $2, body = $3 WHERE id = $1`
	return r.exec(ctx, query, post.ID, post.Title, post.Body)
}

// Delete removes the post. Its comments go with it through ON DELETE CASCADE.
func (r *PostWriteRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM posts WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *PostWriteRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, args, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
