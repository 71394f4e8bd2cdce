package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/inkwell-blog/apiserver/types"
)

func (e *env) createPost(t *testing.T, cookie *http.Cookie, title, body string) types.Post {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/posts/", PostUpsertRequest{Title: title, Body: body}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post %q: status %d, body %s", title, rec.Code, rec.Body.String())
	}
	var post types.Post
	decode(t, rec, &post)
	return post
}

func TestPostCreateAndGet(t *testing.T) {
	e := newEnv()
	account := e.register(t, "alice", "pw")
	cookie := e.login(t, "alice@example.com", "pw")

	post := e.createPost(t, cookie, "First Light", "the body")
	if post.AuthorID != account.ID || post.AuthorHandle != "alice" {
		t.Fatalf("post authored by %d %q, want %d alice", post.AuthorID, post.AuthorHandle, account.ID)
	}

	rec := e.do(t, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get post: status %d", rec.Code)
	}
	var fetched types.Post
	decode(t, rec, &fetched)
	if fetched.Title != "First Light" {
		t.Fatalf("Title = %q", fetched.Title)
	}
}

func TestPostCreateValidation(t *testing.T) {
	e := newEnv()
	e.register(t, "alice", "pw")
	cookie := e.login(t, "alice@example.com", "pw")

	rec := e.do(t, http.MethodPost, "/posts/", PostUpsertRequest{Title: "  ", Body: "b"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank title: status %d, want 400", rec.Code)
	}
	rec = e.do(t, http.MethodPost, "/posts/", PostUpsertRequest{Title: "t", Body: ""}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank body: status %d, want 400", rec.Code)
	}
}

func TestPostDuplicateTitle(t *testing.T) {
	e := newEnv()
	e.register(t, "alice", "pw")
	cookie := e.login(t, "alice@example.com", "pw")
	e.createPost(t, cookie, "Taken", "body")

	rec := e.do(t, http.MethodPost, "/posts/", PostUpsertRequest{Title: "Taken", Body: "other"}, cookie)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate title: status %d, want 409", rec.Code)
	}
}

func TestPostSearch(t *testing.T) {
	e := newEnv()
	e.register(t, "alice", "pw")
	cookie := e.login(t, "alice@example.com", "pw")
	e.createPost(t, cookie, "Foobar Adventures", "body one")
	e.createPost(t, cookie, "Bazqux Diaries", "body two")

	var posts []types.Post

	// An empty term matches everything.
	rec := e.do(t, http.MethodGet, "/posts/?search=", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	decode(t, rec, &posts)
	if len(posts) != 2 {
		t.Fatalf("empty search returned %d posts, want 2", len(posts))
	}

	// Case-insensitive substring of the title.
	rec = e.do(t, http.MethodGet, "/posts/?search=foo", nil, nil)
	decode(t, rec, &posts)
	if len(posts) != 1 || posts[0].Title != "Foobar Adventures" {
		t.Fatalf("search foo returned %v", posts)
	}

	rec = e.do(t, http.MethodGet, "/posts/?search=nothing-here", nil, nil)
	decode(t, rec, &posts)
	if len(posts) != 0 {
		t.Fatalf("unmatched search returned %d posts", len(posts))
	}
}

func TestPostUpdateOwnershipEnforced(t *testing.T) {
	e := newEnv()
	e.register(t, "alice", "pw")
	e.register(t, "mallory", "pw")
	aliceCookie := e.login(t, "alice@example.com", "pw")
	malloryCookie := e.login(t, "mallory@example.com", "pw")
	post := e.createPost(t, aliceCookie, "Alice's Post", "body")

	path := fmt.Sprintf("/posts/%d", post.ID)
	rec := e.do(t, http.MethodPut, path, PostUpsertRequest{Body: "defaced"}, malloryCookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign update: status %d, want 403", rec.Code)
	}
	rec = e.do(t, http.MethodDelete, path, nil, malloryCookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: status %d, want 403", rec.Code)
	}

	// The owner can.
	rec = e.do(t, http.MethodPut, path, PostUpsertRequest{Body: "edited"}, aliceCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update: status %d, body %s", rec.Code, rec.Body.String())
	}
	var updated types.Post
	decode(t, rec, &updated)
	if updated.Body != "edited" || updated.Title != "Alice's Post" {
		t.Fatalf("update result: %q / %q", updated.Title, updated.Body)
	}
}

func TestPostDeleteCascadesComments(t *testing.T) {
	e := newEnv()
	e.register(t, "alice", "pw")
	cookie := e.login(t, "alice@example.com", "pw")
	post := e.createPost(t, cookie, "Doomed", "body")

	rec := e.do(t, http.MethodPost, "/comments/", CommentCreateRequest{Body: "nice", PostID: post.ID}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create comment: status %d", rec.Code)
	}

	rec = e.do(t, http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete post: status %d, body %s", rec.Code, rec.Body.String())
	}

	var comments []types.Comment
	rec = e.do(t, http.MethodGet, fmt.Sprintf("/comments/post/%d", post.ID), nil, nil)
	decode(t, rec, &comments)
	if len(comments) != 0 {
		t.Fatalf("%d comments survived the post delete", len(comments))
	}

	// The post itself is gone too.
	rec = e.do(t, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted post still fetchable: status %d", rec.Code)
	}
}

func TestPostDeleteMissingIs404(t *testing.T) {
	e := newEnv()
	e.register(t, "alice", "pw")
	cookie := e.login(t, "alice@example.com", "pw")

	rec := e.do(t, http.MethodDelete, "/posts/321", nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing post: status %d, want 404", rec.Code)
	}
}

func TestPostListByAuthor(t *testing.T) {
	e := newEnv()
	alice := e.register(t, "alice", "pw")
	e.register(t, "bob", "pw")
	aliceCookie := e.login(t, "alice@example.com", "pw")
	bobCookie := e.login(t, "bob@example.com", "pw")
	e.createPost(t, aliceCookie, "Hers", "body")
	e.createPost(t, bobCookie, "His", "body")

	var posts []types.Post
	rec := e.do(t, http.MethodGet, fmt.Sprintf("/posts/user/%d", alice.ID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list by author: status %d", rec.Code)
	}
	decode(t, rec, &posts)
	if len(posts) != 1 || posts[0].Title != "Hers" {
		t.Fatalf("list by author returned %v", posts)
	}
}
