package services

import (
	"context"

	"github.com/inkwell-blog/apiserver/internal/events"
	"github.com/inkwell-blog/apiserver/types"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id int) (types.Account, error)
	GetByEmail(ctx context.Context, email string) (types.Account, error)
	GetByHandle(ctx context.Context, handle string) (types.Account, error)
	Create(ctx context.Context, account types.Account) (types.Account, error)
	Update(ctx context.Context, account types.Account) (types.Account, error)
	Delete(ctx context.Context, id int) error
}

// AccountService encapsulates account use-cases, including the cascading
// removal of an account's posts and comments.
type AccountService struct {
	repo    AccountRepository
	posts   PostRepository
	cascade *Cascade
}

func NewAccountService(repo AccountRepository, posts PostRepository, cascade *Cascade) *AccountService {
	return &AccountService{repo: repo, posts: posts, cascade: cascade}
}

func (s *AccountService) GetByID(ctx context.Context, id int) (types.Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (types.Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *AccountService) Create(ctx context.Context, account types.Account) (types.Account, error) {
	return s.repo.Create(ctx, account)
}

func (s *AccountService) Update(ctx context.Context, account types.Account) (types.Account, error) {
	return s.repo.Update(ctx, account)
}

// Delete removes the account and then cascades to its posts, comments, and
// photo objects. A missing account surfaces store.ErrNotFound and no
// cascade runs; a committed delete with incomplete cleanup surfaces
// *PartialCascadeError.
func (s *AccountService) Delete(ctx context.Context, id int) error {
	// Photo keys must be captured before the posts sweep destroys them.
	// A listing failure here does not block the delete; the media sweep
	// is reported failed instead so the orphaned objects stay visible.
	photoKeys, listErr := s.photoKeys(ctx, id)

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	err := s.cascade.OnAccountDeleted(ctx, id, photoKeys)
	if listErr != nil {
		return mergeCascadeFailure(err, events.EntityAccount, id, collectionMedia)
	}
	return err
}

func (s *AccountService) photoKeys(ctx context.Context, authorID int) ([]string, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, post := range posts {
		if post.Photo != "" {
			keys = append(keys, post.Photo)
		}
	}
	return keys, nil
}
