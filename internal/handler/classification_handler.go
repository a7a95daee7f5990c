package handler

import (
	"net/http"

	"paydesk/internal/middleware"
	"paydesk/internal/model"
	"paydesk/internal/service"
	"paydesk/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClassificationHandler struct {
	classification service.ClassificationService
}

func NewClassificationHandler(classification service.ClassificationService) *ClassificationHandler {
	return &ClassificationHandler{classification: classification}
}

func (h *ClassificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	groups := router.Group("/api/request-groups")
	{
		groups.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleFinancialManager), h.CreateGroup)
		groups.GET("", middleware.RequireAuth(), h.ListGroups)
		groups.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleFinancialManager), h.UpdateGroup)
		groups.DELETE("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleFinancialManager), h.DeleteGroup)
	}

	subGroups := router.Group("/api/request-subgroups")
	{
		subGroups.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleFinancialManager), h.CreateSubGroup)
		subGroups.GET("", middleware.RequireAuth(), h.ListSubGroups)
		subGroups.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleFinancialManager), h.UpdateSubGroup)
		subGroups.DELETE("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleFinancialManager), h.DeleteSubGroup)
	}
}

// --- Groups ---

func (h *ClassificationHandler) CreateGroup(c *gin.Context) {
	var dto service.CreateGroupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	actorID, _, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	result, err := h.classification.CreateGroup(c.Request.Context(), dto, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListGroups returns active groups, optionally filtered by request type
func (h *ClassificationHandler) ListGroups(c *gin.Context) {
	var typeID *uuid.UUID
	if raw := c.Query("request_type_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request_type_id"))
			return
		}
		typeID = &parsed
	}

	groups, err := h.classification.ListActiveGroups(c.Request.Context(), typeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, groups))
}

func (h *ClassificationHandler) UpdateGroup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid group id"))
		return
	}

	var dto service.UpdateGroupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.classification.UpdateGroup(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DeleteGroup removes a group, or deactivates it when it still has dependents
func (h *ClassificationHandler) DeleteGroup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid group id"))
		return
	}

	result, err := h.classification.DeleteGroup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// --- SubGroups ---

func (h *ClassificationHandler) CreateSubGroup(c *gin.Context) {
	var dto service.CreateSubGroupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	actorID, _, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	result, err := h.classification.CreateSubGroup(c.Request.Context(), dto, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

func (h *ClassificationHandler) ListSubGroups(c *gin.Context) {
	var groupID *uuid.UUID
	if raw := c.Query("group_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid group_id"))
			return
		}
		groupID = &parsed
	}

	subGroups, err := h.classification.ListActiveSubGroups(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, subGroups))
}

func (h *ClassificationHandler) UpdateSubGroup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid subgroup id"))
		return
	}

	var dto service.UpdateSubGroupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.classification.UpdateSubGroup(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

func (h *ClassificationHandler) DeleteSubGroup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid subgroup id"))
		return
	}

	result, err := h.classification.DeleteSubGroup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
