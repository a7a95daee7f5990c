package handler

import (
	"net/http"

	"paydesk/internal/middleware"
	"paydesk/internal/model"
	"paydesk/internal/service"
	"paydesk/pkg/pagination"
	"paydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/api/users")
	{
		users.POST("/login", h.Login)
		users.POST("/logout", h.Logout)
		users.GET("/me", middleware.RequireAuth(), h.Me)

		users.POST("", middleware.RequireRole(model.RoleAdmin), h.Create)
		users.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleFinancialManager), h.List)
		users.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleFinancialManager), h.Get)
		users.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.Update)
		users.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
	}
}

// Login godoc
// @Summary  Authenticate and receive a token
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body service.LoginUserRequest true "Credentials"
// @Success  200 {object} response.Response
// @Router   /api/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	token, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid email or password"))
		return
	}

	middleware.SetTokenCookie(c, token.Token)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

func (h *UserHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"logged_out": true}))
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	actorID, _, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid actor"))
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), actorID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

func (h *UserHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	users, total, err := h.users.ListUsers(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   users,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
