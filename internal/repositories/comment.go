package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/gw-blog/internal/models"
)

const commentSelect = `
	SELECT c.id, c.body, c.date_created, c.user_id, c.post_id,
	       u.id AS "user.id", u.first_name AS "user.first_name", u.last_name AS "user.last_name",
	       u.username AS "user.username", u.email AS "user.email"
	FROM comments c
	JOIN users u ON u.id = c.user_id
`

// CommentReadRepository handles comment reads. Every comment comes with its author.
type CommentReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewCommentReadRepository(db *sqlx.DB, txGetter TxGetter) *CommentReadRepository {
	return &CommentReadRepository{db: db, txGetter: txGetter}
}

// GetByID returns the comment with the given id, or nil.
func (r *CommentReadRepository) GetByID(ctx context.Context, id int64) (*models.CommentDB, error) {
	const query = commentSelect + `WHERE c.id = $1`

	var comment models.CommentDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &comment, query, id)
	logQuery(query, []any{id}, comment.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPostIDs returns the comments of all given posts, oldest first.
func (r *CommentReadRepository) ListByPostIDs(ctx context.Context, postIDs []int64) ([]*models.CommentDB, error) {
	comments := []*models.CommentDB{}
	if len(postIDs) == 0 {
		return comments, nil
	}

	query, args, err := sqlx.In(commentSelect+`WHERE c.post_id IN (?) ORDER BY c.date_created, c.id`, postIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	err = sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &comments, query, args...)
	logQuery(query, args, len(comments), err)

	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CommentWriteRepository handles comment inserts and deletes.
type CommentWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewCommentWriteRepository(db *sqlx.DB, txGetter TxGetter) *CommentWriteRepository {
	return &CommentWriteRepository{db: db, txGetter: txGetter}
}

// Create inserts comment and fills in its generated id and creation time.
func (r *CommentWriteRepository) Create(ctx context.Context, comment *models.CommentDB) error {
	const query = `
		INSERT INTO comments (body, user_id, post_id)
		VALUES ($1, $2, $3)
		RETURNING id, date_created
	`

	err := executor(ctx, r.db, r.txGetter).
		QueryRowxContext(ctx, query, comment.Body, comment.UserID, comment.PostID).
		Scan(&comment.ID, &comment.DateCreated)
	logQuery(query, []any{comment.UserID, comment.PostID}, comment.ID, err)

	return err
}

// Delete removes the comment with the given id.
func (r *CommentWriteRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM comments WHERE id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, id)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{id}, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
