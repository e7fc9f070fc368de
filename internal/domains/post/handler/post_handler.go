package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blog-backend/internal/domains/post"
	"blog-backend/internal/shared"
	"blog-backend/internal/shared/middleware"
	"blog-backend/internal/shared/response"
	"blog-backend/pkg/logger"
)

type PostHandler struct {
	service post.Service
}

func NewPostHandler(svc post.Service) *PostHandler {
	return &PostHandler{service: svc}
}

// statusByKind maps the stable error kind onto an HTTP status. The kind
// itself travels in the error envelope's code field.
var statusByKind = map[post.Kind]int{
	post.KindInvalidInput:      http.StatusBadRequest,
	post.KindNotFound:          http.StatusNotFound,
	post.KindForbidden:         http.StatusForbidden,
	post.KindInvalidTransition: http.StatusConflict,
	post.KindConflict:          http.StatusConflict,
	post.KindUpstream:          http.StatusInternalServerError,
}

// handleError writes the error envelope and reports whether err was set.
func handleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	kind := post.KindOf(err)
	if kind == post.KindUpstream {
		logger.Error("post operation failed", err)
		response.ErrorResponse(c, http.StatusInternalServerError, string(kind), "internal server error")
		return true
	}

	response.ErrorResponse(c, statusByKind[kind], string(kind), err.Error())
	return true
}

// ========== CREATE: POST /posts ==========
func (h *PostHandler) Create(c *gin.Context) {
	var req post.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	resp, err := h.service.Create(c.Request.Context(), principal, &req)
	if handleError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// ========== READ: GET /posts/:id ==========
func (h *PostHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(c)
	resp, err := h.service.GetByID(c.Request.Context(), principal, id)
	if handleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ========== UPDATE: PUT /posts/:id ==========
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req post.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	resp, err := h.service.Update(c.Request.Context(), principal, id, &req)
	if handleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ========== DELETE: DELETE /posts/:id ==========
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(c)
	if handleError(c, h.service.Delete(c.Request.Context(), principal, id)) {
		return
	}

	c.Status(http.StatusNoContent)
}

// ========== MODERATION ==========

// Approve - POST /posts/:id/approve
func (h *PostHandler) Approve(c *gin.Context) {
	h.moderate(c, h.service.Approve)
}

// Publish - POST /posts/:id/publish
func (h *PostHandler) Publish(c *gin.Context) {
	h.moderate(c, h.service.Publish)
}

// Archive - POST /posts/:id/archive
func (h *PostHandler) Archive(c *gin.Context) {
	h.moderate(c, h.service.Archive)
}

// Reject - POST /posts/:id/reject
func (h *PostHandler) Reject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req post.RejectPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	resp, err := h.service.Reject(c.Request.Context(), principal, id, &req)
	if handleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ========== ENGAGEMENT ==========

// Like - PUT /posts/:id/like
func (h *PostHandler) Like(c *gin.Context) {
	h.moderate(c, h.service.Like)
}

// Unlike - DELETE /posts/:id/like
func (h *PostHandler) Unlike(c *gin.Context) {
	h.moderate(c, h.service.Unlike)
}

// AddComment - POST /posts/:id/comments
func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req post.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	resp, err := h.service.AddComment(c.Request.Context(), principal, id, &req)
	if handleError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// DeleteComment - DELETE /posts/:id/comments/:commentId
func (h *PostHandler) DeleteComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(c)
	resp, err := h.service.DeleteComment(c.Request.Context(), principal, id, commentID)
	if handleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ========== LISTS ==========

// ListOwn - GET /posts/me
func (h *PostHandler) ListOwn(c *gin.Context) {
	var req post.ListOwnRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	posts, meta, err := h.service.ListOwn(c.Request.Context(), principal, &req)
	if handleError(c, err) {
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, posts, listMeta(meta))
}

// ListPending - GET /admin/posts/pending
func (h *PostHandler) ListPending(c *gin.Context) {
	var req post.AdminListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	posts, meta, err := h.service.ListPending(c.Request.Context(), principal, &req)
	if handleError(c, err) {
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, posts, listMeta(meta))
}

// ListAll - GET /admin/posts
func (h *PostHandler) ListAll(c *gin.Context) {
	var req post.AdminListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	posts, meta, err := h.service.ListAll(c.Request.Context(), principal, &req)
	if handleError(c, err) {
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, posts, listMeta(meta))
}

// ListPublished - GET /blog
func (h *PostHandler) ListPublished(c *gin.Context) {
	var req post.PublicListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	posts, meta, err := h.service.ListPublished(c.Request.Context(), &req)
	if handleError(c, err) {
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, posts, listMeta(meta))
}

// GetBySlug - GET /blog/:slug
func (h *PostHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, "slug is required")
		return
	}

	resp, err := h.service.GetBySlug(c.Request.Context(), slug)
	if handleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Stats - GET /admin/posts/stats
func (h *PostHandler) Stats(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	resp, err := h.service.Stats(c.Request.Context(), principal)
	if handleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ========== HELPERS ==========

// moderate handles the body-less principal+id actions.
func (h *PostHandler) moderate(c *gin.Context, call func(ctx context.Context, principal shared.Principal, id uuid.UUID) (*post.PostResponse, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(c)
	resp, err := call(c.Request.Context(), principal, id)
	if handleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

func listMeta(meta *post.PaginationMeta) *response.Meta {
	if meta == nil {
		return nil
	}
	return &response.Meta{
		Page:       meta.Page,
		Limit:      meta.PageSize,
		Total:      meta.Total,
		TotalPages: meta.TotalPages,
	}
}
