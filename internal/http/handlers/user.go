package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tickethub-backend/internal/http/response"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/platform/apierr"
	"github.com/yungbote/tickethub-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{
		log:         log.With("handler", "UserHandler"),
		userService: userService,
	}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, me)
}

// GET /api/users
func (uh *UserHandler) List(c *gin.Context) {
	users, err := uh.userService.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, users)
}

// GET /api/agents
func (uh *UserHandler) ListAgents(c *gin.Context) {
	agents, err := uh.userService.ListAgents(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, agents)
}

// POST /api/users
// body: { "email": "...", "password": "...", "name": "...", "role": "ADMIN" | "STAFF" }
func (uh *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, uh.log, apierr.BadRequest("invalid request body"))
		return
	}
	u, err := uh.userService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondCreated(c, u)
}

// PATCH /api/users/:id
// body: { "name"?: "...", "role"?: "ADMIN" | "STAFF", "isActive"?: bool }
func (uh *UserHandler) Update(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	var req services.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, uh.log, apierr.BadRequest("invalid request body"))
		return
	}
	u, err := uh.userService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, u)
}

// DELETE /api/users/:id
func (uh *UserHandler) Delete(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	if err := uh.userService.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, response.Message{Message: "User deleted successfully"})
}

// GET /api/users/:id/avatar.png
func (uh *UserHandler) Avatar(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	png, err := uh.userService.Avatar(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=86400")
	c.Header("Content-Length", strconv.Itoa(len(png)))
	c.Data(http.StatusOK, "image/png", png)
}
