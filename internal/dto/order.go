package dto

import "time"

type CreateOrderRequestDTO struct {
	ItemID        int    `json:"item_id" validate:"required,gt=0" example:"3"`
	Amount        int64  `json:"amount" validate:"required,gt=0" example:"30000"`
	PaymentMethod string `json:"payment_method" validate:"required" example:"WALLET"`
}

type ResolveOrderRequestDTO struct {
	Status string `json:"status" validate:"required,oneof=COMPLETED CANCELLED REFUNDED" example:"COMPLETED"`
	Notes  string `json:"notes" example:"payment confirmed"`
}

type OrderResponseDTO struct {
	ID            int        `json:"id" example:"12"`
	UserID        int        `json:"user_id" example:"1"`
	ItemID        int        `json:"item_id" example:"3"`
	Amount        int64      `json:"amount" example:"30000"`
	PaymentMethod string     `json:"payment_method" example:"WALLET"`
	Status        string     `json:"status" example:"PENDING"`
	PaymentProof  string     `json:"payment_proof,omitempty"`
	AdminNotes    string     `json:"admin_notes,omitempty"`
	ProcessedBy   *int       `json:"processed_by,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	TransactionID *int       `json:"transaction_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ResolveOrderResponseDTO struct {
	Order       OrderResponseDTO        `json:"order"`
	Transaction *TransactionResponseDTO `json:"transaction,omitempty"`
}
