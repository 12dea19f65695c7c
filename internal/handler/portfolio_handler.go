package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/middleware"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/shopspring/decimal"
)

type PortfolioCommander interface {
	MergePortfolio(context.Context, cqrs.MergePortfolioCommand) (*models.Portfolio, error)
}

type PortfolioQuerier interface {
	GetPortfolio(context.Context, cqrs.GetPortfolioQuery) (*models.Portfolio, error)
}

type PortfolioHandler struct {
	commands PortfolioCommander
	queries  PortfolioQuerier
}

type CoinRequest struct {
	Symbol   string           `json:"symbol" validate:"required,alphanum,max=16"`
	Quantity *decimal.Decimal `json:"quantity" validate:"required"`
}

type UpdatePortfolioRequest struct {
	Coins []CoinRequest `json:"coins" validate:"required,dive"`
}

func NewPortfolioHandler(commands PortfolioCommander, queries PortfolioQuerier) *PortfolioHandler {
	return &PortfolioHandler{commands: commands, queries: queries}
}

func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	if !authorizeUser(c, c.Param("username"), "view") {
		return
	}
	portfolio, err := h.queries.GetPortfolio(c.Request.Context(), cqrs.GetPortfolioQuery{
		Name:   c.Param("username"),
		IsTest: middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, portfolio)
}

// UpdatePortfolio merges the given coins into the stored list.
func (h *PortfolioHandler) UpdatePortfolio(c *gin.Context) {
	if !authorizeUser(c, c.Param("username"), "update") {
		return
	}
	var req UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	coins := make([]models.Coin, 0, len(req.Coins))
	for _, coin := range req.Coins {
		if !coin.Quantity.IsPositive() {
			middleware.RespondWithValidationError(c, []middleware.ValidationError{
				{Field: "quantity", Message: "Value must be greater than 0", Type: "gt"},
			})
			return
		}
		coins = append(coins, models.Coin{Symbol: coin.Symbol, Quantity: *coin.Quantity})
	}

	portfolio, err := h.commands.MergePortfolio(c.Request.Context(), cqrs.MergePortfolioCommand{
		Name:   c.Param("username"),
		Coins:  coins,
		IsTest: middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, portfolio)
}
