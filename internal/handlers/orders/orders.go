package orders

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
	CreateOrder(ctx context.Context, userID, itemID int, amount int64, method string) (*domain.Order, error)
	SubmitProof(ctx context.Context, orderID, userID int, proofURL string) (*domain.Order, error)
	GetUserOrders(ctx context.Context, userID int) ([]domain.Order, error)
}

type OrderHandler struct {
	orderService Service
}

func New(orderService Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// CreateOrder godoc
//
//	@Summary		Create an order
//	@Description	Open a pending purchase order against a catalog item.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateOrderRequestDTO	true	"Order payload"
//	@Success		201		{object}	dto.OrderResponseDTO		"Created order"
//	@Failure		400		{object}	utils.Response				"Invalid request"
//	@Failure		401		{object}	utils.Response				"User not authorized"
//	@Failure		402		{object}	utils.Response				"Insufficient balance"
//	@Failure		404		{object}	utils.Response				"Catalog item not found"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/wallet/orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.AccountIDKey).(int)

	var req dto.CreateOrderRequestDTO
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), userID, req.ItemID, req.Amount, req.PaymentMethod)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, ToDTO(order))
}

// SubmitProof godoc
//
//	@Summary		Attach a payment proof
//	@Description	Attach the external payment proof and move the order to VALIDATING.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Order ID"
//	@Param			request	body		dto.SubmitProofRequestDTO	true	"Proof payload"
//	@Success		200		{object}	dto.OrderResponseDTO		"Updated order"
//	@Failure		400		{object}	utils.Response				"Invalid request"
//	@Failure		401		{object}	utils.Response				"User not authorized"
//	@Failure		404		{object}	utils.Response				"Order not found"
//	@Failure		409		{object}	utils.Response				"Order is not pending"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/wallet/orders/{id}/proof [post]
func (h *OrderHandler) SubmitProof(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.AccountIDKey).(int)

	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req dto.SubmitProofRequestDTO
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.SubmitProof(r.Context(), orderID, userID, req.ProofURL)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ToDTO(order))
}

// GetOrders godoc
//
//	@Summary		List own orders
//	@Description	Get all orders of the authenticated account, newest first.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.OrderResponseDTO	"Orders"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/wallet/orders [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.AccountIDKey).(int)

	orders, err := h.orderService.GetUserOrders(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.OrderResponseDTO, len(orders))
	for i, order := range orders {
		response[i] = ToDTO(&order)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func ToDTO(order *domain.Order) dto.OrderResponseDTO {
	return dto.OrderResponseDTO{
		ID:            order.ID,
		UserID:        order.UserID,
		ItemID:        order.ItemID,
		Amount:        order.Amount,
		PaymentMethod: order.PaymentMethod,
		Status:        string(order.Status),
		PaymentProof:  order.PaymentProof,
		AdminNotes:    order.AdminNotes,
		ProcessedBy:   order.ProcessedBy,
		ProcessedAt:   order.ProcessedAt,
		TransactionID: order.TransactionID,
		CreatedAt:     order.CreatedAt,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
