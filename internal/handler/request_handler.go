package handler

import (
	"context"
	"net/http"

	"paydesk/internal/middleware"
	"paydesk/internal/model"
	"paydesk/internal/notification"
	"paydesk/internal/repository"
	"paydesk/internal/service"
	"paydesk/pkg/pagination"
	"paydesk/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 20 MB per attachment
const maxAttachmentSize = 20 << 20

type RequestHandler struct {
	requests   service.RequestService
	activities service.ActivityService
	dispatcher *notification.Dispatcher
}

func NewRequestHandler(requests service.RequestService, activities service.ActivityService, dispatcher *notification.Dispatcher) *RequestHandler {
	return &RequestHandler{requests: requests, activities: activities, dispatcher: dispatcher}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests", middleware.RequireAuth())
	{
		requests.POST("", h.Create)
		requests.GET("", h.List)
		requests.GET("/:id", h.Get)
		requests.PUT("/:id", h.Update)
		requests.PUT("/:id/status", h.ChangeStatus)
		requests.GET("/:id/activities", h.ListActivities)
		requests.POST("/:id/attachments", h.UploadAttachment)
		requests.DELETE("/:id/attachments/:attachmentId", h.DeleteAttachment)
	}
}

// Create godoc
// @Summary  Submit a payment request
// @Tags     requests
// @Accept   json
// @Produce  json
// @Param    body body service.CreateRequestDTO true "Request"
// @Success  201 {object} response.Response
// @Security BearerAuth
// @Router   /api/requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var dto service.CreateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	actorID, _, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	result, err := h.requests.Create(c.Request.Context(), dto, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// List returns requests visible to the actor. Non-privileged users only see
// requests they created; privileged roles see everything and may filter by
// creator.
func (h *RequestHandler) List(c *gin.Context) {
	actorID, actorRole, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	params := pagination.Parse(c)

	var filter repository.RequestFilter
	filter.Status = c.Query("status")
	if raw := c.Query("request_type_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request_type_id"))
			return
		}
		filter.RequestTypeID = &parsed
	}
	if raw := c.Query("group_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid group_id"))
			return
		}
		filter.GroupID = &parsed
	}

	if model.IsPrivilegedRole(actorRole) {
		if raw := c.Query("creator_id"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid creator_id"))
				return
			}
			filter.CreatorID = &parsed
		}
	} else {
		filter.CreatorID = &actorID
	}

	requests, total, err := h.requests.List(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   requests,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

func (h *RequestHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}

	actorID, actorRole, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	result, err := h.requests.Get(c.Request.Context(), id, actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

func (h *RequestHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}

	var dto service.UpdateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	actorID, actorRole, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	result, err := h.requests.Update(c.Request.Context(), id, dto, actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ChangeStatus transitions the request and, once the new state is committed,
// notifies subscribers. Paid transitions additionally trigger an SMS to the
// beneficiary; notification failures never fail the transition.
func (h *RequestHandler) ChangeStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}

	var dto service.ChangeStatusDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	actorID, actorRole, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	result, err := h.requests.ChangeStatus(c.Request.Context(), id, dto, actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.dispatcher != nil {
		ev := notification.Event{
			RequestID:        result.ID,
			Title:            result.Title,
			Status:           result.Status,
			BeneficiaryPhone: result.BeneficiaryPhone,
		}
		if result.Amount != nil {
			ev.Amount = *result.Amount
		}
		h.dispatcher.StatusChanged(ev)
		if result.Status == model.StatusPaid {
			// detached from the request context so a closed connection
			// cannot cancel the SMS delivery
			go h.dispatcher.RequestPaid(context.Background(), ev)
		}
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListActivities returns the request's audit trail, newest first.
func (h *RequestHandler) ListActivities(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}

	actorID, actorRole, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	if err := h.requests.CanAccess(c.Request.Context(), id, actorID, actorRole); err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.activities.ListActivities(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

func (h *RequestHandler) UploadAttachment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}

	actorID, actorRole, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "file is required"))
		return
	}
	if fileHeader.Size > maxAttachmentSize {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "file exceeds maximum size"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "failed to read file"))
		return
	}
	defer file.Close()

	dto := service.UploadAttachmentDTO{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     file,
	}

	result, err := h.requests.UploadAttachment(c.Request.Context(), id, dto, actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

func (h *RequestHandler) DeleteAttachment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request id"))
		return
	}
	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid attachment id"))
		return
	}

	actorID, actorRole, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	if err := h.requests.DeleteAttachment(c.Request.Context(), id, attachmentID, actorID, actorRole); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
