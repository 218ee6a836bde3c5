package balance

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/dto"
	"github.com/finlab/walletcore/pkg/auth"
	"github.com/finlab/walletcore/pkg/utils"
)

type Service interface {
	GetBalance(ctx context.Context, accountID int) (int64, error)
	GetLedger(ctx context.Context, accountID int, page int) ([]domain.Transaction, error)
}

type BalanceHandler struct {
	ledgerService Service
}

func New(ledgerService Service) *BalanceHandler {
	return &BalanceHandler{
		ledgerService: ledgerService,
	}
}

// GetBalance godoc
//
//	@Summary		Get current balance
//	@Description	Retrieve the current balance of the authenticated account in minor units.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO	"Current balance"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		404	{object}	utils.Response			"Account not found"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/wallet/balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := r.Context().Value(auth.AccountIDKey).(int)

	balance, err := h.ledgerService.GetBalance(r.Context(), accountID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{
		AccountID: accountID,
		Balance:   balance,
	})
}

// GetLedger godoc
//
//	@Summary		Get transaction history
//	@Description	Get the account's ledger entries, newest first, paginated.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page	query		int								false	"Page number, 1-based"
//	@Success		200		{array}		dto.TransactionResponseDTO		"Ledger page"
//	@Failure		401		{object}	utils.Response					"User not authorized"
//	@Failure		404		{object}	utils.Response					"Account not found"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/wallet/transactions [get]
func (h *BalanceHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	accountID := r.Context().Value(auth.AccountIDKey).(int)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	transactions, err := h.ledgerService.GetLedger(r.Context(), accountID, page)
	if err != nil {
		respondError(w, err)
		return
	}

	response := make([]dto.TransactionResponseDTO, len(transactions))
	for i, tx := range transactions {
		response[i] = ToTransactionDTO(&tx)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// ToTransactionDTO is shared with the admin handlers, which return the ledger
// effect of a resolution alongside the resolved entity.
func ToTransactionDTO(tx *domain.Transaction) dto.TransactionResponseDTO {
	return dto.TransactionResponseDTO{
		ID:           tx.ID,
		AccountID:    tx.AccountID,
		Type:         string(tx.Type),
		Amount:       tx.Amount,
		BalanceAfter: tx.BalanceAfter,
		Description:  tx.Description,
		Reference:    tx.Reference,
		Metadata:     tx.Metadata,
		CreatedAt:    tx.CreatedAt,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
