package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gojenga/gojenga/internal/query"
	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// AuthQuerier defines the operations used by AuthHandler.
type AuthQuerier interface {
	Login(context.Context, cqrs.LoginCommand) (*query.TokenPair, error)
	RefreshToken(context.Context, cqrs.RefreshTokenCommand) (string, error)
}

// AuthHandler handles login and token refresh. No command service needed.
type AuthHandler struct {
	queries AuthQuerier
}

// LoginRequest is an OAuth2 password-grant form.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type RefreshTokenResponse struct {
	Token string `json:"token"`
}

func NewAuthHandler(queries AuthQuerier) *AuthHandler {
	return &AuthHandler{queries: queries}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	pair, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Username: req.Username,
		Password: req.Password,
		IsTest:   middleware.IsTest(c),
	})
	if errors.Is(err, query.ErrInvalidCredentials) {
		c.Header("WWW-Authenticate", "Bearer")
		middleware.RespondWithError(c, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, err := h.queries.RefreshToken(c.Request.Context(), cqrs.RefreshTokenCommand{Token: req.Token})
	if errors.Is(err, jwt.ErrTokenExpired) {
		middleware.RespondWithError(c, http.StatusForbidden, "token has been expired")
		return
	}
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		middleware.RespondWithError(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	c.JSON(http.StatusOK, RefreshTokenResponse{Token: token})
}
