package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/inkwell-blog/apiserver/internal/events"
	"github.com/inkwell-blog/apiserver/internal/store"
	"github.com/inkwell-blog/apiserver/types"
)

// In-memory fakes implementing the service repository interfaces. Error
// injection flags simulate storage outages for the partial-cascade paths.

type memAccounts struct {
	byID   map[int]types.Account
	nextID int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[int]types.Account), nextID: 1}
}

func (m *memAccounts) GetByID(_ context.Context, id int) (types.Account, error) {
	account, ok := m.byID[id]
	if !ok {
		return types.Account{}, store.ErrNotFound
	}
	return account, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (types.Account, error) {
	for _, account := range m.byID {
		if account.Email == email {
			return account, nil
		}
	}
	return types.Account{}, store.ErrNotFound
}

func (m *memAccounts) GetByHandle(_ context.Context, handle string) (types.Account, error) {
	for _, account := range m.byID {
		if account.Handle == handle {
			return account, nil
		}
	}
	return types.Account{}, store.ErrNotFound
}

func (m *memAccounts) Create(_ context.Context, account types.Account) (types.Account, error) {
	for _, existing := range m.byID {
		if existing.Handle == account.Handle || existing.Email == account.Email {
			return types.Account{}, store.ErrConflict
		}
	}
	account.ID = m.nextID
	m.nextID++
	m.byID[account.ID] = account
	return account, nil
}

func (m *memAccounts) Update(_ context.Context, account types.Account) (types.Account, error) {
	if _, ok := m.byID[account.ID]; !ok {
		return types.Account{}, store.ErrNotFound
	}
	m.byID[account.ID] = account
	return account, nil
}

func (m *memAccounts) Delete(_ context.Context, id int) error {
	if _, ok := m.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memPosts struct {
	byID               map[int]types.Post
	nextID             int
	failDeleteByAuthor bool
	failListByAuthor   bool
}

func newMemPosts() *memPosts {
	return &memPosts{byID: make(map[int]types.Post), nextID: 1}
}

func (m *memPosts) List(_ context.Context, filter store.PostFilter) ([]types.Post, error) {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	posts := make([]types.Post, 0)
	for _, post := range m.byID {
		if term == "" || strings.Contains(strings.ToLower(post.Title), term) {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (m *memPosts) ListByAuthor(_ context.Context, authorID int) ([]types.Post, error) {
	if m.failListByAuthor {
		return nil, errors.New("posts storage unavailable")
	}
	posts := make([]types.Post, 0)
	for _, post := range m.byID {
		if post.AuthorID == authorID {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (m *memPosts) Get(_ context.Context, id int) (types.Post, error) {
	post, ok := m.byID[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return post, nil
}

func (m *memPosts) Create(_ context.Context, post types.Post) (types.Post, error) {
	for _, existing := range m.byID {
		if existing.Title == post.Title {
			return types.Post{}, store.ErrConflict
		}
	}
	post.ID = m.nextID
	m.nextID++
	m.byID[post.ID] = post
	return post, nil
}

func (m *memPosts) Update(_ context.Context, post types.Post) (types.Post, error) {
	if _, ok := m.byID[post.ID]; !ok {
		return types.Post{}, store.ErrNotFound
	}
	m.byID[post.ID] = post
	return post, nil
}

func (m *memPosts) Delete(_ context.Context, id int) error {
	if _, ok := m.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memPosts) DeleteByAuthor(_ context.Context, authorID int) (int64, error) {
	if m.failDeleteByAuthor {
		return 0, errors.New("posts storage unavailable")
	}
	var swept int64
	for id, post := range m.byID {
		if post.AuthorID == authorID {
			delete(m.byID, id)
			swept++
		}
	}
	return swept, nil
}

type memComments struct {
	byID               map[int]types.Comment
	nextID             int
	failDeleteByPost   bool
	failDeleteByAuthor bool
}

func newMemComments() *memComments {
	return &memComments{byID: make(map[int]types.Comment), nextID: 1}
}

func (m *memComments) Get(_ context.Context, id int) (types.Comment, error) {
	comment, ok := m.byID[id]
	if !ok {
		return types.Comment{}, store.ErrNotFound
	}
	return comment, nil
}

func (m *memComments) ListByPost(_ context.Context, postID int) ([]types.Comment, error) {
	comments := make([]types.Comment, 0)
	for _, comment := range m.byID {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}

func (m *memComments) Create(_ context.Context, comment types.Comment) (types.Comment, error) {
	comment.ID = m.nextID
	m.nextID++
	m.byID[comment.ID] = comment
	return comment, nil
}

func (m *memComments) Delete(_ context.Context, id int) error {
	if _, ok := m.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memComments) DeleteByPost(_ context.Context, postID int) (int64, error) {
	if m.failDeleteByPost {
		return 0, errors.New("comments storage unavailable")
	}
	var swept int64
	for id, comment := range m.byID {
		if comment.PostID == postID {
			delete(m.byID, id)
			swept++
		}
	}
	return swept, nil
}

func (m *memComments) DeleteByAuthor(_ context.Context, authorID int) (int64, error) {
	if m.failDeleteByAuthor {
		return 0, errors.New("comments storage unavailable")
	}
	var swept int64
	for id, comment := range m.byID {
		if comment.AuthorID == authorID {
			delete(m.byID, id)
			swept++
		}
	}
	return swept, nil
}

// memObjects is an in-memory media.ObjectStore.
type memObjects struct {
	objects    map[string]bool
	failDelete bool
}

func newMemObjects() *memObjects {
	return &memObjects{objects: make(map[string]bool)}
}

func (m *memObjects) EnsureBucket(context.Context) error { return nil }

func (m *memObjects) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	m.objects[key] = true
	return nil
}

func (m *memObjects) Get(context.Context, string) (io.ReadCloser, error) { return nil, nil }

func (m *memObjects) Delete(_ context.Context, key string) error {
	if m.failDelete {
		return errors.New("media storage unavailable")
	}
	delete(m.objects, key)
	return nil
}

func (m *memObjects) Bucket() string { return "test-bucket" }

// memBackend is an in-memory events.Backend capturing publishes and
// replaying them to a subscriber.
type memBackend struct {
	mu          sync.Mutex
	messages    []events.Message
	failPublish bool
}

func (m *memBackend) Publish(_ context.Context, _ string, data []byte, attrs map[string]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPublish {
		return "", errors.New("broker unavailable")
	}
	m.messages = append(m.messages, events.Message{Data: data, Attributes: attrs})
	return "", nil
}

func (m *memBackend) Subscribe(ctx context.Context, _ string, handler events.Handler) error {
	m.mu.Lock()
	buffered := append([]events.Message(nil), m.messages...)
	m.mu.Unlock()
	for _, msg := range buffered {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (m *memBackend) Close() error { return nil }

func (m *memBackend) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		kinds = append(kinds, msg.Attributes["kind"])
	}
	return kinds
}
