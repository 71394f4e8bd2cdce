package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inkwell-blog/apiserver/types"
)

// PostRepository handles persistence for posts.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `id, title, body, photo, categories, author_handle, author_id, created_at, updated_at`

func (r *PostRepository) List(ctx context.Context, filter PostFilter) ([]types.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts`
	condition, args := filter.Predicate(0)
	if condition != "" {
		query += `
		WHERE ` + condition
	}
	query += `
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int) ([]types.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *PostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE id = $1`
	var post types.Post
	var categoriesJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.Photo,
		&categoriesJSON,
		&post.AuthorHandle,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	if post.Categories, err = decodeCategories(categoriesJSON); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	categoriesJSON, err := json.Marshal(post.Categories)
	if err != nil {
		return types.Post{}, err
	}

	const query = `
		INSERT INTO posts (title, body, photo, categories, author_handle, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		post.Title,
		post.Body,
		post.Photo,
		categoriesJSON,
		post.AuthorHandle,
		post.AuthorID,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID); err != nil {
		return types.Post{}, translate(err)
	}
	return post, nil
}

func (r *PostRepository) Update(ctx context.Context, post types.Post) (types.Post, error) {
	post.UpdatedAt = time.Now()

	categoriesJSON, err := json.Marshal(post.Categories)
	if err != nil {
		return types.Post{}, err
	}

	const query = `
		UPDATE posts
		SET title = $1,
			body = $2,
			photo = $3,
			categories = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		post.Title,
		post.Body,
		post.Photo,
		categoriesJSON,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return types.Post{}, translate(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Post{}, err
	}
	if affected == 0 {
		return types.Post{}, ErrNotFound
	}
	return post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM posts WHERE id = $1`
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

// DeleteByAuthor removes every post owned by the account. Zero matches is
// not an error; cascade sweeps must be re-invocable.
func (r *PostRepository) DeleteByAuthor(ctx context.Context, authorID int) (int64, error) {
	const query = `DELETE FROM posts WHERE author_id = $1`
	result, err := r.db.ExecContext(ctx, query, authorID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanPosts(rows *sql.Rows) ([]types.Post, error) {
	posts := make([]types.Post, 0)
	for rows.Next() {
		var post types.Post
		var categoriesJSON []byte
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Body,
			&post.Photo,
			&categoriesJSON,
			&post.AuthorHandle,
			&post.AuthorID,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, err
		}
		categories, err := decodeCategories(categoriesJSON)
		if err != nil {
			return nil, err
		}
		post.Categories = categories
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// decodeCategories parses the stored categories column. An empty value is
// a post without categories, not corrupt data.
func decodeCategories(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var categories []string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}
