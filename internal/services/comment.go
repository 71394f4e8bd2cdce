package services

import (
	"context"

	"github.com/inkwell-blog/apiserver/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Get(ctx context.Context, id int) (types.Comment, error)
	ListByPost(ctx context.Context, postID int) ([]types.Comment, error)
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	Delete(ctx context.Context, id int) error
	DeleteByPost(ctx context.Context, postID int) (int64, error)
	DeleteByAuthor(ctx context.Context, authorID int) (int64, error)
}

// CommentService encapsulates comment use-cases.
type CommentService struct {
	repo  CommentRepository
	posts PostRepository
}

func NewCommentService(repo CommentRepository, posts PostRepository) *CommentService {
	return &CommentService{repo: repo, posts: posts}
}

func (s *CommentService) Get(ctx context.Context, id int) (types.Comment, error) {
	return s.repo.Get(ctx, id)
}

func (s *CommentService) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	return s.repo.ListByPost(ctx, postID)
}

// Create stores a comment after confirming the referenced post exists.
// Nothing prevents the post from being deleted between the check and the
// insert; that window is what the cascade sweeps and the reconciler exist
// to clean up.
func (s *CommentService) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	if _, err := s.posts.Get(ctx, comment.PostID); err != nil {
		return types.Comment{}, err
	}
	return s.repo.Create(ctx, comment)
}

func (s *CommentService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
