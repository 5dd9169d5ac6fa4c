package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/platform/response"
)

// ItemHandler serves decorated item views and comments.
type ItemHandler struct {
	items    *application.ItemService
	comments *application.CommentService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(items *application.ItemService, comments *application.CommentService) *ItemHandler {
	return &ItemHandler{items: items, comments: comments}
}

// RegisterRoutes registers item routes on the given router group.
func (h *ItemHandler) RegisterRoutes(r *gin.RouterGroup) {
	items := r.Group("/items")
	{
		items.GET("", h.ListOwnerItems)
		items.GET("/:id", h.GetItem)
		items.POST("/:id/comment", h.AddComment)
	}
}

// ListOwnerItems handles GET /api/v1/items.
func (h *ItemHandler) ListOwnerItems(c *gin.Context) {
	callerID, ok := callerOrAbort(c)
	if !ok {
		return
	}

	result, err := h.items.ListOwnerItems(c.Request.Context(), callerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetItem handles GET /api/v1/items/:id.
func (h *ItemHandler) GetItem(c *gin.Context) {
	callerID, ok := callerOrAbort(c)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	result, err := h.items.GetItem(c.Request.Context(), callerID, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AddComment handles POST /api/v1/items/:id/comment.
func (h *ItemHandler) AddComment(c *gin.Context) {
	callerID, ok := callerOrAbort(c)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	var req application.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.comments.AddComment(c.Request.Context(), callerID, itemID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
