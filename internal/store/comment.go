package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/inkwell-blog/apiserver/types"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Get(ctx context.Context, id int) (types.Comment, error) {
	const query = `
		SELECT id, body, author_handle, post_id, author_id, created_at
		FROM comments
		WHERE id = $1`
	var comment types.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.Body,
		&comment.AuthorHandle,
		&comment.PostID,
		&comment.AuthorID,
		&comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Comment{}, ErrNotFound
		}
		return types.Comment{}, err
	}
	return comment, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	const query = `
		SELECT id, body, author_handle, post_id, author_id, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]types.Comment, 0)
	for rows.Next() {
		var comment types.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.Body,
			&comment.AuthorHandle,
			&comment.PostID,
			&comment.AuthorID,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.CreatedAt = time.Now()

	const query = `
		INSERT INTO comments (body, author_handle, post_id, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		comment.Body,
		comment.AuthorHandle,
		comment.PostID,
		comment.AuthorID,
		comment.CreatedAt,
	).Scan(&comment.ID); err != nil {
		return types.Comment{}, translate(err)
	}
	return comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM comments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByPost removes every comment referencing the post. Zero matches is
// not an error.
func (r *CommentRepository) DeleteByPost(ctx context.Context, postID int) (int64, error) {
	const query = `DELETE FROM comments WHERE post_id = $1`
	result, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteByAuthor removes every comment authored by the account. Zero matches
// is not an error.
func (r *CommentRepository) DeleteByAuthor(ctx context.Context, authorID int) (int64, error) {
	const query = `DELETE FROM comments WHERE author_id = $1`
	result, err := r.db.ExecContext(ctx, query, authorID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
