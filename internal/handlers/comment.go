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

// CommentHandler provides HTTP handlers for comments.
type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// CommentRouter registers comment routes on the given router.
func CommentRouter(r chi.Router, handler *CommentHandler, guard func(http.Handler) http.Handler) {
	r.Get("/post/{postID}", handler.ListByPost)
	r.With(guard).Post("/", handler.Create)
	r.With(guard).Delete("/{commentID}", handler.Delete)
}

func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := parseIDParam(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comments, err := h.comments.ListByPost(r.Context(), postID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

type CommentCreateRequest struct {
	Body   string `json:"body"`
	PostID int    `json:"post_id"`
}

// Create stores a comment authored by the authenticated account on an
// existing post.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "you are not authenticated")
		return
	}
	callerID, err := claims.AccountID()
	if err != nil {
		writeError(w, http.StatusUnauthorized, "you are not authenticated")
		return
	}

	var req CommentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Body) == "" || req.PostID < 1 {
		writeError(w, http.StatusBadRequest, "body and post_id are required")
		return
	}

	comment, err := h.comments.Create(r.Context(), types.Comment{
		Body:         req.Body,
		AuthorHandle: claims.Handle,
		PostID:       req.PostID,
		AuthorID:     callerID,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create comment")
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// Delete removes a comment owned by the authenticated account.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "commentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	callerID, err := accountIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "you are not authenticated")
		return
	}

	comment, err := h.comments.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch comment")
		return
	}
	if comment.AuthorID != callerID {
		writeError(w, http.StatusForbidden, "you can only delete your own comments")
		return
	}

	if err := h.comments.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete comment")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "comment has been deleted"})
}
