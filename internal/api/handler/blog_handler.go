package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mindclaire/internal/api/middleware"
	"mindclaire/internal/app/service"
	"mindclaire/internal/common"

	"github.com/go-chi/chi/v5"
)

type BlogHandler struct {
	blogService    *service.BlogService
	commentService *service.CommentService
	likeService    *service.LikeService
}

func NewBlogHandler(bs *service.BlogService, cs *service.CommentService, ls *service.LikeService) *BlogHandler {
	return &BlogHandler{blogService: bs, commentService: cs, likeService: ls}
}

func (h *BlogHandler) RegisterRoutes(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Get("/", h.listBlogs)                     // GET /api/v1/blogs
	r.Get("/slug/{blogSlug}", h.getBlog)        // GET /api/v1/blogs/slug/my-first-post
	r.Get("/{blogID}/comments", h.listComments) // GET /api/v1/blogs/{id}/comments

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(authn)
		authRouter.Post("/", h.createBlog)
		authRouter.Put("/{blogID}", h.updateBlog)
		authRouter.Delete("/{blogID}", h.deleteBlog)
		authRouter.Post("/{blogID}/comments", h.addComment)
		authRouter.Post("/{blogID}/like", h.toggleLike)
	})
}

func (h *BlogHandler) createBlog(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.BlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	blog, err := h.blogService.Create(r.Context(), userID, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, blog)
}

func (h *BlogHandler) listBlogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.blogService.List(r.Context(), service.BlogListFilter{
		Page:       page,
		Limit:      limit,
		Status:     q.Get("status"),
		CategoryID: q.Get("category"),
		Search:     q.Get("search"),
	})
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *BlogHandler) getBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogService.GetBySlug(r.Context(), chi.URLParam(r, "blogSlug"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) updateBlog(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actorFromContext(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.BlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	blog, err := h.blogService.Update(r.Context(), chi.URLParam(r, "blogID"), userID, role, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) deleteBlog(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actorFromContext(r)
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := h.blogService.Delete(r.Context(), chi.URLParam(r, "blogID"), userID, role); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Blog deleted successfully")
}

func (h *BlogHandler) addComment(w http.ResponseWriter, r *http.Request) {
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

	comment, err := h.commentService.Add(r.Context(), chi.URLParam(r, "blogID"), userID, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, comment)
}

func (h *BlogHandler) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.ListByBlog(r.Context(), chi.URLParam(r, "blogID"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(comments),
		"comments": comments,
	})
}

func (h *BlogHandler) toggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	result, err := h.likeService.ToggleBlogLike(r.Context(), chi.URLParam(r, "blogID"), userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func actorFromContext(r *http.Request) (userID, role string, ok bool) {
	userID, ok = middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return "", "", false
	}
	role, ok = middleware.GetUserRoleFromContext(r.Context())
	return userID, role, ok
}
