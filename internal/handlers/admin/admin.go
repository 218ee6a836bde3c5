package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/dto"
	"github.com/finlab/walletcore/internal/handlers/balance"
	"github.com/finlab/walletcore/internal/handlers/deposits"
	"github.com/finlab/walletcore/internal/handlers/orders"
	"github.com/finlab/walletcore/pkg/auth"
	"github.com/finlab/walletcore/pkg/utils"
)

type DepositService interface {
	GetPending(ctx context.Context) ([]domain.DepositRequest, error)
	Resolve(ctx context.Context, depositID, adminID int, decision domain.DepositStatus, notes string) (*domain.DepositRequest, *domain.Transaction, error)
}

type OrderService interface {
	GetPending(ctx context.Context) ([]domain.Order, error)
	Resolve(ctx context.Context, orderID, adminID int, decision domain.OrderStatus, notes string) (*domain.Order, *domain.Transaction, error)
}

type LedgerService interface {
	CreateAccount(ctx context.Context, role domain.Role) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID int) (*domain.Account, error)
	Credit(ctx context.Context, accountID int, amount int64, txType domain.TransactionType, description string, metadata map[string]string) (*domain.Transaction, error)
	Debit(ctx context.Context, accountID int, amount int64, txType domain.TransactionType, description string, metadata map[string]string) (*domain.Transaction, error)
	Adjust(ctx context.Context, accountID int, newBalance int64, reason string) (*domain.Transaction, error)
	GetLedger(ctx context.Context, accountID, page int) ([]domain.Transaction, error)
	CheckConsistency(ctx context.Context, accountID int) (bool, error)
}

type AdminHandler struct {
	depositService DepositService
	orderService   OrderService
	ledgerService  LedgerService
}

func New(depositService DepositService, orderService OrderService, ledgerService LedgerService) *AdminHandler {
	return &AdminHandler{
		depositService: depositService,
		orderService:   orderService,
		ledgerService:  ledgerService,
	}
}

// CreateAccount godoc
//
//	@Summary		Create an account
//	@Description	Open a new wallet account with the given role and a zero balance.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateAccountRequestDTO	true	"Account payload"
//	@Success		201		{object}	dto.AccountResponseDTO		"Created account"
//	@Failure		400		{object}	utils.Response				"Invalid request"
//	@Failure		403		{object}	utils.Response				"Forbidden"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/admin/accounts [post]
func (h *AdminHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequestDTO
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.ledgerService.CreateAccount(r.Context(), domain.Role(req.Role))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toAccountDTO(account))
}

// GetAccount godoc
//
//	@Summary		Get an account
//	@Description	Retrieve any account by id.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int						true	"Account ID"
//	@Success		200	{object}	dto.AccountResponseDTO	"Account"
//	@Failure		403	{object}	utils.Response			"Forbidden"
//	@Failure		404	{object}	utils.Response			"Account not found"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/admin/accounts/{id} [get]
func (h *AdminHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	account, err := h.ledgerService.GetAccount(r.Context(), accountID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toAccountDTO(account))
}

// AdjustBalance godoc
//
//	@Summary		Adjust an account balance
//	@Description	Apply a manual ledger operation: add books a BONUS credit, withdraw a PENALTY debit, refund a REFUND credit, set books the delta to the target balance.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Account ID"
//	@Param			request	body		dto.AdjustBalanceRequestDTO		true	"Adjustment payload"
//	@Success		200		{object}	dto.AdjustBalanceResponseDTO	"Account and the booked transaction"
//	@Failure		400		{object}	utils.Response					"Invalid request"
//	@Failure		402		{object}	utils.Response					"Insufficient balance"
//	@Failure		403		{object}	utils.Response					"Forbidden"
//	@Failure		404		{object}	utils.Response					"Account not found"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/admin/accounts/{id}/balance [post]
func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	adminID := r.Context().Value(auth.AccountIDKey).(int)

	accountID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req dto.AdjustBalanceRequestDTO
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	metadata := map[string]string{"admin_id": strconv.Itoa(adminID)}
	var tx *domain.Transaction
	switch req.Action {
	case "add":
		tx, err = h.ledgerService.Credit(r.Context(), accountID, req.Amount, domain.BonusTransaction, req.Reason, metadata)
	case "withdraw":
		tx, err = h.ledgerService.Debit(r.Context(), accountID, req.Amount, domain.PenaltyTransaction, req.Reason, metadata)
	case "refund":
		tx, err = h.ledgerService.Credit(r.Context(), accountID, req.Amount, domain.RefundTransaction, req.Reason, metadata)
	case "set":
		tx, err = h.ledgerService.Adjust(r.Context(), accountID, req.Amount, req.Reason)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	account, err := h.ledgerService.GetAccount(r.Context(), accountID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.AdjustBalanceResponseDTO{
		Account:     toAccountDTO(account),
		Transaction: balance.ToTransactionDTO(tx),
	})
}

// GetTransactions godoc
//
//	@Summary		Get any account's transaction history
//	@Description	Retrieve a page of ledger entries for the given account, newest first.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id		path		int							true	"Account ID"
//	@Param			page	query		int							false	"Page number, 1-based"
//	@Success		200		{array}		dto.TransactionResponseDTO	"Ledger page"
//	@Failure		403		{object}	utils.Response				"Forbidden"
//	@Failure		404		{object}	utils.Response				"Account not found"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/admin/accounts/{id}/transactions [get]
func (h *AdminHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	transactions, err := h.ledgerService.GetLedger(r.Context(), accountID, page)
	if err != nil {
		respondError(w, err)
		return
	}

	response := make([]dto.TransactionResponseDTO, len(transactions))
	for i, tx := range transactions {
		response[i] = balance.ToTransactionDTO(&tx)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// CheckConsistency godoc
//
//	@Summary		Audit an account
//	@Description	Verify that the stored balance equals the sum of the account's ledger entries.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int							true	"Account ID"
//	@Success		200	{object}	dto.ConsistencyResponseDTO	"Audit verdict"
//	@Failure		403	{object}	utils.Response				"Forbidden"
//	@Failure		404	{object}	utils.Response				"Account not found"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/api/admin/accounts/{id}/consistency [get]
func (h *AdminHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	consistent, err := h.ledgerService.CheckConsistency(r.Context(), accountID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ConsistencyResponseDTO{
		AccountID:  accountID,
		Consistent: consistent,
	})
}

// GetPendingDeposits godoc
//
//	@Summary		List deposits awaiting review
//	@Description	Get all PENDING and VALIDATING deposit requests, oldest first.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.DepositResponseDTO	"Review queue"
//	@Failure		403	{object}	utils.Response			"Forbidden"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/admin/deposits/pending [get]
func (h *AdminHandler) GetPendingDeposits(w http.ResponseWriter, r *http.Request) {
	queue, err := h.depositService.GetPending(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.DepositResponseDTO, len(queue))
	for i, deposit := range queue {
		response[i] = deposits.ToDTO(&deposit)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// ResolveDeposit godoc
//
//	@Summary		Resolve a deposit request
//	@Description	Approve or reject a deposit. Approval credits the account atomically with the status change.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Deposit request ID"
//	@Param			request	body		dto.ResolveDepositRequestDTO	true	"Decision payload"
//	@Success		200		{object}	dto.ResolveDepositResponseDTO	"Resolved deposit and its ledger effect"
//	@Failure		400		{object}	utils.Response					"Invalid request"
//	@Failure		403		{object}	utils.Response					"Forbidden"
//	@Failure		404		{object}	utils.Response					"Deposit not found"
//	@Failure		409		{object}	utils.Response					"Deposit already resolved"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/admin/deposits/{id}/resolve [post]
func (h *AdminHandler) ResolveDeposit(w http.ResponseWriter, r *http.Request) {
	adminID := r.Context().Value(auth.AccountIDKey).(int)

	depositID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid deposit id")
		return
	}

	var req dto.ResolveDepositRequestDTO
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deposit, tx, err := h.depositService.Resolve(r.Context(), depositID, adminID, domain.DepositStatus(req.Decision), req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}

	response := dto.ResolveDepositResponseDTO{Deposit: deposits.ToDTO(deposit)}
	if tx != nil {
		txDTO := balance.ToTransactionDTO(tx)
		response.Transaction = &txDTO
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetPendingOrders godoc
//
//	@Summary		List orders awaiting review
//	@Description	Get all PENDING and VALIDATING orders, oldest first.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.OrderResponseDTO	"Review queue"
//	@Failure		403	{object}	utils.Response			"Forbidden"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/admin/orders/pending [get]
func (h *AdminHandler) GetPendingOrders(w http.ResponseWriter, r *http.Request) {
	queue, err := h.orderService.GetPending(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.OrderResponseDTO, len(queue))
	for i, order := range queue {
		response[i] = orders.ToDTO(&order)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// ResolveOrder godoc
//
//	@Summary		Resolve an order
//	@Description	Complete, cancel or refund an order. Completing a wallet-paid order debits the buyer atomically with the status change.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Order ID"
//	@Param			request	body		dto.ResolveOrderRequestDTO	true	"Decision payload"
//	@Success		200		{object}	dto.ResolveOrderResponseDTO	"Resolved order and its ledger effect"
//	@Failure		400		{object}	utils.Response				"Invalid request"
//	@Failure		402		{object}	utils.Response				"Insufficient balance"
//	@Failure		403		{object}	utils.Response				"Forbidden"
//	@Failure		404		{object}	utils.Response				"Order not found"
//	@Failure		409		{object}	utils.Response				"Order already resolved"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/admin/orders/{id}/resolve [post]
func (h *AdminHandler) ResolveOrder(w http.ResponseWriter, r *http.Request) {
	adminID := r.Context().Value(auth.AccountIDKey).(int)

	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req dto.ResolveOrderRequestDTO
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, tx, err := h.orderService.Resolve(r.Context(), orderID, adminID, domain.OrderStatus(req.Status), req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}

	response := dto.ResolveOrderResponseDTO{Order: orders.ToDTO(order)}
	if tx != nil {
		txDTO := balance.ToTransactionDTO(tx)
		response.Transaction = &txDTO
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func toAccountDTO(account *domain.Account) dto.AccountResponseDTO {
	return dto.AccountResponseDTO{
		ID:        account.ID,
		Role:      string(account.Role),
		Balance:   account.Balance,
		CreatedAt: account.CreatedAt,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
