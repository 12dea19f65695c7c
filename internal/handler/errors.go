package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gojenga/gojenga/internal/command"
	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/middleware"
	"github.com/gojenga/gojenga/shared/utils"
)

// respondWithServiceError maps a service error to a status. Unclassified
// errors are returned verbatim with 500.
func respondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrIllegalCharacters):
		middleware.RespondWithError(c, http.StatusPartialContent, "special characters not allowed")
	case errors.Is(err, store.ErrNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "item not found")
	case errors.Is(err, command.ErrUserExists):
		middleware.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, command.ErrInvalidAmount), errors.Is(err, command.ErrSelfTransfer):
		middleware.RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, err.Error())
	}
}

// authorizeUser reports whether the token subject may act on name and answers
// 403 otherwise. Illegal names pass through so the service rejects them with
// 206 before any store access.
func authorizeUser(c *gin.Context, name, action string) bool {
	normalized, err := utils.NormalizeName(name)
	if err != nil {
		return true
	}
	if subject, ok := middleware.GetUsername(c); ok && subject == normalized {
		return true
	}
	middleware.RespondWithError(c, http.StatusForbidden, "You can only "+action+" your own account")
	return false
}
