package handler

import (
	"encoding/json"
	"net/http"

	"mindclaire/internal/api/middleware"
	"mindclaire/internal/app/service"
	"mindclaire/internal/common"

	"github.com/go-chi/chi/v5"
)

type CommentHandler struct {
	commentService *service.CommentService
	likeService    *service.LikeService
}

func NewCommentHandler(cs *service.CommentService, ls *service.LikeService) *CommentHandler {
	return &CommentHandler{commentService: cs, likeService: ls}
}

// RegisterRoutes covers direct comment manipulation; creation and listing live
// under the blog routes.
func (h *CommentHandler) RegisterRoutes(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Group(func(authRouter chi.Router) {
		authRouter.Use(authn)
		authRouter.Put("/{commentID}", h.updateComment)
		authRouter.Delete("/{commentID}", h.deleteComment)
		authRouter.Post("/{commentID}/like", h.toggleLike)
	})
}

func (h *CommentHandler) updateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	comment, err := h.commentService.Update(r.Context(), chi.URLParam(r, "commentID"), userID, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) deleteComment(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actorFromContext(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := h.commentService.Delete(r.Context(), chi.URLParam(r, "commentID"), userID, role); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Comment deleted successfully")
}

func (h *CommentHandler) toggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	result, err := h.likeService.ToggleCommentLike(r.Context(), chi.URLParam(r, "commentID"), userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
