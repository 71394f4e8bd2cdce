package services

import (
	"context"
	"strings"

	"github.com/inkwell-blog/apiserver/internal/store"
	"github.com/inkwell-blog/apiserver/types"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	List(ctx context.Context, filter store.PostFilter) ([]types.Post, error)
	ListByAuthor(ctx context.Context, authorID int) ([]types.Post, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, post types.Post) (types.Post, error)
	Delete(ctx context.Context, id int) error
	DeleteByAuthor(ctx context.Context, authorID int) (int64, error)
}

// PostService encapsulates post use-cases.
type PostService struct {
	repo    PostRepository
	cascade *Cascade
}

func NewPostService(repo PostRepository, cascade *Cascade) *PostService {
	return &PostService{repo: repo, cascade: cascade}
}

// List returns posts newest-first. A non-empty search term narrows the
// result to titles containing it, case-insensitively and literally.
func (s *PostService) List(ctx context.Context, search string) ([]types.Post, error) {
	return s.repo.List(ctx, store.PostFilter{Search: search})
}

func (s *PostService) ListByAuthor(ctx context.Context, authorID int) ([]types.Post, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

func (s *PostService) Get(ctx context.Context, id int) (types.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *PostService) Create(ctx context.Context, post types.Post) (types.Post, error) {
	post.Title = strings.TrimSpace(post.Title)
	return s.repo.Create(ctx, post)
}

// Update applies the changed fields. An empty photo keeps the stored one,
// matching the behavior clients already rely on.
func (s *PostService) Update(ctx context.Context, post types.Post) (types.Post, error) {
	current, err := s.repo.Get(ctx, post.ID)
	if err != nil {
		return types.Post{}, err
	}
	if post.Photo == "" {
		post.Photo = current.Photo
	}
	if post.Title == "" {
		post.Title = current.Title
	}
	if post.Body == "" {
		post.Body = current.Body
	}
	if post.Categories == nil {
		post.Categories = current.Categories
	}
	post.AuthorHandle = current.AuthorHandle
	post.AuthorID = current.AuthorID
	return s.repo.Update(ctx, post)
}

// Delete removes the post and then cascades to its comments and photo
// object. A missing post surfaces store.ErrNotFound with no cascade; a
// committed delete with incomplete cleanup surfaces *PartialCascadeError.
func (s *PostService) Delete(ctx context.Context, id int) error {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.cascade.OnPostDeleted(ctx, id, post.Photo)
}
