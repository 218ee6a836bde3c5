package deposits

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/finlab/walletcore/internal/dto"
	"github.com/finlab/walletcore/pkg/auth"
	"github.com/finlab/walletcore/pkg/utils"
)

type Service interface {
	CreateDeposit(ctx context.Context, userID int, amount int64, method string) (*domain.DepositRequest, error)
	SubmitProof(ctx context.Context, depositID, userID int, proofURL string) (*domain.DepositRequest, error)
	GetUserDeposits(ctx context.Context, userID int) ([]domain.DepositRequest, error)
}

type DepositHandler struct {
	depositService Service
}

func New(depositService Service) *DepositHandler {
	return &DepositHandler{
		depositService: depositService,
	}
}

// CreateDeposit godoc
//
//	@Summary		Create a deposit request
//	@Description	Open a pending top-up request for the authenticated account.
//	@Tags			Deposits
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateDepositRequestDTO	true	"Deposit request payload"
//	@Success		201		{object}	dto.DepositResponseDTO		"Created deposit request"
//	@Failure		400		{object}	utils.Response				"Invalid request"
//	@Failure		401		{object}	utils.Response				"User not authorized"
//	@Failure		404		{object}	utils.Response				"Account not found"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/wallet/deposits [post]
func (h *DepositHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.AccountIDKey).(int)

	var req dto.CreateDepositRequestDTO
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deposit, err := h.depositService.CreateDeposit(r.Context(), userID, req.Amount, req.PaymentMethod)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, ToDTO(deposit))
}

// SubmitProof godoc
//
//	@Summary		Attach a payment proof
//	@Description	Attach the external payment proof and move the request to VALIDATING.
//	@Tags			Deposits
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Deposit request ID"
//	@Param			request	body		dto.SubmitProofRequestDTO	true	"Proof payload"
//	@Success		200		{object}	dto.DepositResponseDTO		"Updated deposit request"
//	@Failure		400		{object}	utils.Response				"Invalid request"
//	@Failure		401		{object}	utils.Response				"User not authorized"
//	@Failure		404		{object}	utils.Response				"Deposit not found"
//	@Failure		409		{object}	utils.Response				"Deposit is not pending"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/wallet/deposits/{id}/proof [post]
func (h *DepositHandler) SubmitProof(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.AccountIDKey).(int)

	depositID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid deposit id")
		return
	}

	var req dto.SubmitProofRequestDTO
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deposit, err := h.depositService.SubmitProof(r.Context(), depositID, userID, req.ProofURL)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ToDTO(deposit))
}

// GetDeposits godoc
//
//	@Summary		List own deposit requests
//	@Description	Get all deposit requests of the authenticated account, newest first.
//	@Tags			Deposits
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.DepositResponseDTO	"Deposit requests"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/wallet/deposits [get]
func (h *DepositHandler) GetDeposits(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.AccountIDKey).(int)

	deposits, err := h.depositService.GetUserDeposits(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.DepositResponseDTO, len(deposits))
	for i, deposit := range deposits {
		response[i] = ToDTO(&deposit)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func ToDTO(deposit *domain.DepositRequest) dto.DepositResponseDTO {
	return dto.DepositResponseDTO{
		ID:            deposit.ID,
		UserID:        deposit.UserID,
		Amount:        deposit.Amount,
		PaymentMethod: deposit.PaymentMethod,
		Status:        string(deposit.Status),
		ProofURL:      deposit.ProofURL,
		AdminNotes:    deposit.AdminNotes,
		ProcessedBy:   deposit.ProcessedBy,
		ProcessedAt:   deposit.ProcessedAt,
		TransactionID: deposit.TransactionID,
		CreatedAt:     deposit.CreatedAt,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
