package handler

import (
	"net/http"

	"paydesk/internal/middleware"
	"paydesk/internal/model"
	"paydesk/internal/service"
	"paydesk/pkg/pagination"
	"paydesk/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestTypeHandler struct {
	types service.RequestTypeService
}

func NewRequestTypeHandler(types service.RequestTypeService) *RequestTypeHandler {
	return &RequestTypeHandler{types: types}
}

func (h *RequestTypeHandler) RegisterRoutes(router *gin.RouterGroup) {
	types := router.Group("/api/request-types")
	{
		types.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleFinancialManager), h.Create)
		types.GET("", middleware.RequireAuth(), h.List)
		types.GET("/:id", middleware.RequireAuth(), h.Get)
		types.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleFinancialManager), h.Update)
		types.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
	}
}

// Create godoc
// @Summary  Create a request type
// @Tags     request-types
// @Accept   json
// @Produce  json
// @Param    body body service.CreateRequestTypeDTO true "Request type"
// @Success  201 {object} response.Response
// @Security BearerAuth
// @Router   /api/request-types [post]
func (h *RequestTypeHandler) Create(c *gin.Context) {
	var dto service.CreateRequestTypeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	actorID, _, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	result, err := h.types.Create(c.Request.Context(), dto, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// List returns request types, all or active-only
func (h *RequestTypeHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	activeOnly := c.DefaultQuery("active", "false") == "true"

	types, total, err := h.types.List(c.Request.Context(), activeOnly, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   types,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

func (h *RequestTypeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request type id"))
		return
	}

	result, err := h.types.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Update applies a partial update; omitted field_config keys are preserved
func (h *RequestTypeHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request type id"))
		return
	}

	var dto service.UpdateRequestTypeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.types.Update(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

func (h *RequestTypeHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request type id"))
		return
	}

	if err := h.types.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
