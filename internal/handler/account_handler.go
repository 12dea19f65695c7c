package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gojenga/gojenga/internal/command"
	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/middleware"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/shopspring/decimal"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (store.Outcome, error)
	UpdateAccount(context.Context, cqrs.UpdateAccountCommand) (store.Outcome, error)
	ModifyAccount(context.Context, cqrs.ModifyAccountCommand) (*models.AccountView, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) (store.Outcome, error)
	Transaction(context.Context, cqrs.TransactionCommand) (*command.TransferResult, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.AccountView, error)
	ListHistory(context.Context, cqrs.ListHistoryQuery) ([]models.HistoryEntry, error)
}

// AccountHandler handles ledger HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type CreateAccountRequest struct {
	Name    string           `json:"name" validate:"required"`
	Balance *decimal.Decimal `json:"balance" validate:"required"`
}

type UpdateAccountRequest struct {
	Name    string           `json:"name"`
	Balance *decimal.Decimal `json:"balance" validate:"required"`
}

type DepositRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

type TransactionRequest struct {
	Sender   string           `json:"sender" validate:"required"`
	Receiver string           `json:"receiver" validate:"required"`
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
}

type TransactionResponse struct {
	ID              string `json:"id"`
	Sender          string `json:"sender"`
	Receiver        string `json:"receiver"`
	Amount          string `json:"amount"`
	Balance         string `json:"balance"`
	ReceiverBalance string `json:"receiverBalance"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if verr := middleware.ValidateAmount("balance", *req.Balance, false); verr != nil {
		middleware.RespondWithValidationError(c, []middleware.ValidationError{*verr})
		return
	}

	if !authorizeUser(c, req.Name, "open") {
		return
	}

	outcome, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		Name:    req.Name,
		Balance: *req.Balance,
		IsTest:  middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, outcome)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	if !authorizeUser(c, c.Param("username"), "view") {
		return
	}
	view, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{
		Name:   c.Param("username"),
		IsTest: middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, view)
}

// UpdateAccount sets the balance of the account named in the path.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	if !authorizeUser(c, c.Param("username"), "update") {
		return
	}
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if verr := middleware.ValidateAmount("balance", *req.Balance, false); verr != nil {
		middleware.RespondWithValidationError(c, []middleware.ValidationError{*verr})
		return
	}

	outcome, err := h.commands.UpdateAccount(c.Request.Context(), cqrs.UpdateAccountCommand{
		Name:    c.Param("username"),
		Balance: *req.Balance,
		IsTest:  middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, outcome)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	if !authorizeUser(c, c.Param("username"), "delete") {
		return
	}
	outcome, err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{
		Name:   c.Param("username"),
		IsTest: middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, outcome)
}

func (h *AccountHandler) Deposit(c *gin.Context) {
	if !authorizeUser(c, c.Param("username"), "modify") {
		return
	}
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if verr := middleware.ValidateAmount("amount", *req.Amount, true); verr != nil {
		middleware.RespondWithValidationError(c, []middleware.ValidationError{*verr})
		return
	}

	view, err := h.commands.ModifyAccount(c.Request.Context(), cqrs.ModifyAccountCommand{
		Name:   c.Param("username"),
		Delta:  *req.Amount,
		IsTest: middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, view)
}

// Transaction moves funds out of the account named in the path and responds
// with the sender's new balance.
func (h *AccountHandler) Transaction(c *gin.Context) {
	if !authorizeUser(c, c.Param("username"), "transfer from") {
		return
	}
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if verr := middleware.ValidateAmount("amount", *req.Amount, true); verr != nil {
		middleware.RespondWithValidationError(c, []middleware.ValidationError{*verr})
		return
	}

	if !authorizeUser(c, req.Sender, "transfer from") {
		return
	}

	result, err := h.commands.Transaction(c.Request.Context(), cqrs.TransactionCommand{
		Sender:   req.Sender,
		Receiver: req.Receiver,
		Amount:   *req.Amount,
		IsTest:   middleware.IsTest(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, TransactionResponse{
		ID:              result.ID,
		Sender:          result.Sender,
		Receiver:        result.Receiver,
		Amount:          result.Amount.StringFixed(2),
		Balance:         result.SenderBalance.StringFixed(2),
		ReceiverBalance: result.ReceiverBalance.StringFixed(2),
	})
}

func (h *AccountHandler) ListHistory(c *gin.Context) {
	if !authorizeUser(c, c.Param("username"), "view") {
		return
	}
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			middleware.RespondWithValidationError(c, []middleware.ValidationError{
				{Field: "limit", Message: "Value must be a positive integer", Type: "gt"},
			})
			return
		}
		limit = n
	}

	entries, err := h.queries.ListHistory(c.Request.Context(), cqrs.ListHistoryQuery{
		Name:   c.Param("username"),
		IsTest: middleware.IsTest(c),
		Limit:  limit,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	middleware.RespondWithResult(c, http.StatusOK, entries)
}
