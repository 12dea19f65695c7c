package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/middleware"
	"github.com/gojenga/gojenga/shared/models"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	CreateUser(context.Context, cqrs.CreateUserCommand) (store.Outcome, error)
	UpdateUser(context.Context, cqrs.UpdateUserCommand) (store.Outcome, error)
	DeleteUser(context.Context, cqrs.DeleteUserCommand) (store.Outcome, error)
}

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	GetUser(context.Context, cqrs.GetUserQuery) (*models.UserView, error)
}

type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type UpdateUserRequest struct {
	Name     string `json:"name"`
	Password string `json:"password" validate:"required,max=72"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier) *UserHandler {
	return &UserHandler{commands: commands, queries: queries}
}

// CreateUser registers a user. It is the only unauthenticated write.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	outcome, err := h.commands.CreateUser(c.Request.Context(), cqrs.CreateUserCommand{
		Name:     req.Name,
		Password: req.Password,
		IsTest:   middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, outcome)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	if !authorizeUser(c, c.Param("username"), "view") {
		return
	}
	view, err := h.queries.GetUser(c.Request.Context(), cqrs.GetUserQuery{
		Name:   c.Param("username"),
		IsTest: middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, view)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	if !authorizeUser(c, c.Param("username"), "update") {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	outcome, err := h.commands.UpdateUser(c.Request.Context(), cqrs.UpdateUserCommand{
		Name:     c.Param("username"),
		Password: req.Password,
		IsTest:   middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, outcome)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if !authorizeUser(c, c.Param("username"), "delete") {
		return
	}
	outcome, err := h.commands.DeleteUser(c.Request.Context(), cqrs.DeleteUserCommand{
		Name:   c.Param("username"),
		IsTest: middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, outcome)
}
