package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-blog/apiserver/internal/auth"
	"github.com/inkwell-blog/apiserver/internal/services"
	"github.com/inkwell-blog/apiserver/internal/store"
	"github.com/inkwell-blog/apiserver/types"
)

// In-memory repositories backing the full handler stack in tests. The
// services and handlers under test are the real ones; only persistence is
// swapped out.

type memAccounts struct {
	byID   map[int]types.Account
	nextID int
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
	for id, existing := range m.byID {
		if id != account.ID && (existing.Handle == account.Handle || existing.Email == account.Email) {
			return types.Account{}, store.ErrConflict
		}
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
	byID   map[int]types.Post
	nextID int
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
	for id, existing := range m.byID {
		if id != post.ID && existing.Title == post.Title {
			return types.Post{}, store.ErrConflict
		}
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
	byID   map[int]types.Comment
	nextID int
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
	var swept int64
	for id, comment := range m.byID {
		if comment.AuthorID == authorID {
			delete(m.byID, id)
			swept++
		}
	}
	return swept, nil
}

const testCookieName = "token"

// env wires the real handlers, services, and session guard over in-memory
// repositories.
type env struct {
	accounts *memAccounts
	posts    *memPosts
	comments *memComments
	tokens   *auth.Tokens
	router   *chi.Mux
}

func newEnv() *env {
	return newEnvWithRevoker(nil)
}

func newEnvWithRevoker(revoker SessionRevoker) *env {
	e := &env{
		accounts: &memAccounts{byID: make(map[int]types.Account), nextID: 1},
		posts:    &memPosts{byID: make(map[int]types.Post), nextID: 1},
		comments: &memComments{byID: make(map[int]types.Comment), nextID: 1},
		tokens:   auth.NewTokens("test-secret", time.Hour),
	}

	cascade := services.NewCascade(e.posts, e.comments, nil, nil)
	accountSvc := services.NewAccountService(e.accounts, e.posts, cascade)
	postSvc := services.NewPostService(e.posts, cascade)
	commentSvc := services.NewCommentService(e.comments, e.posts)

	guard := RequireSession(e.tokens, revoker, testCookieName)

	e.router = chi.NewRouter()
	e.router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, NewAuthHandler(accountSvc, e.tokens, revoker, testCookieName, false), guard)
	})
	e.router.Route("/accounts", func(r chi.Router) {
		AccountRouter(r, NewAccountHandler(accountSvc), guard)
	})
	e.router.Route("/posts", func(r chi.Router) {
		PostRouter(r, NewPostHandler(postSvc, accountSvc), guard)
	})
	e.router.Route("/comments", func(r chi.Router) {
		CommentRouter(r, NewCommentHandler(commentSvc), guard)
	})
	return e
}

func (e *env) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) register(t *testing.T, handle, password string) types.Account {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register", RegisterRequest{
		Handle:   handle,
		Email:    handle + "@example.com",
		Password: password,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %q: status %d, body %s", handle, rec.Code, rec.Body.String())
	}
	var account types.Account
	decode(t, rec, &account)
	return account
}

func (e *env) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %q: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookieName {
			return cookie
		}
	}
	t.Fatalf("login %q: no session cookie in response", email)
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
