package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-blog/apiserver/internal/services"
	"github.com/inkwell-blog/apiserver/internal/store"
	"github.com/inkwell-blog/apiserver/types"
)

// PostHandler provides HTTP handlers for posts.
type PostHandler struct {
	posts    *services.PostService
	accounts *services.AccountService
}

func NewPostHandler(posts *services.PostService, accounts *services.AccountService) *PostHandler {
	return &PostHandler{posts: posts, accounts: accounts}
}

// PostRouter registers post routes on the given router. Reads are public;
// mutations require a session and post ownership.
func PostRouter(r chi.Router, handler *PostHandler, guard func(http.Handler) http.Handler) {
	r.Get("/", handler.List)
	r.Get("/user/{accountID}", handler.ListByAuthor)
	r.With(guard).Post("/", handler.Create)
	r.Route("/{postID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(guard).Put("/", handler.Update)
		r.With(guard).Delete("/", handler.Delete)
	})
}

// List returns all posts, optionally narrowed by the search query
// parameter (case-insensitive substring of the title, matched literally).
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	posts, err := h.posts.List(r.Context(), search)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "accountID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := h.posts.ListByAuthor(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

type PostUpsertRequest struct {
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Photo      string   `json:"photo"`
	Categories []string `json:"categories"`
}

// Create stores a new post owned by the authenticated account. The owning
// account must still exist; its handle is denormalized onto the post.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, err := accountIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "you are not authenticated")
		return
	}

	var req PostUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Body) == "" {
		writeError(w, http.StatusBadRequest, "title and body are required")
		return
	}

	account, err := h.accounts.GetByID(r.Context(), callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	post, err := h.posts.Create(r.Context(), types.Post{
		Title:        req.Title,
		Body:         req.Body,
		Photo:        req.Photo,
		Categories:   req.Categories,
		AuthorHandle: account.Handle,
		AuthorID:     account.ID,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "a post with this title already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req PostUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.posts.Update(r.Context(), types.Post{
		ID:         id,
		Title:      strings.TrimSpace(req.Title),
		Body:       req.Body,
		Photo:      req.Photo,
		Categories: req.Categories,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "post not found")
		case errors.Is(err, store.ErrConflict):
			writeError(w, http.StatusConflict, "a post with this title already exists")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update post")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	err := h.posts.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeCascadeOutcome(w, err, "post has been deleted")
}

// requireOwner parses the postID route param and rejects the request
// unless the authenticated account owns the post.
func (h *PostHandler) requireOwner(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := parseIDParam(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}

	callerID, err := accountIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "you are not authenticated")
		return 0, false
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return 0, false
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch post")
		return 0, false
	}
	if post.AuthorID != callerID {
		writeError(w, http.StatusForbidden, "you can only modify your own posts")
		return 0, false
	}
	return id, true
}
